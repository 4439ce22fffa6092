package csv2pcap

import (
	"fmt"
	"os"
	"time"

	"github.com/timpalpant/go-csv2pcap/phydump"
)

// OpenFiles opens a Source for each path and returns the modification
// times of the files, in the same order. If any file cannot be opened,
// the sources opened so far are closed and an error is returned.
func OpenFiles(paths []string) ([]*phydump.Source, []time.Time, error) {
	sources := make([]*phydump.Source, 0, len(paths))
	mtimes := make([]time.Time, 0, len(paths))

	fail := func(path string, err error) ([]*phydump.Source, []time.Time, error) {
		for _, s := range sources {
			s.Close()
		}
		return nil, nil, fmt.Errorf("can't open '%s': %w", path, err)
	}

	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return fail(path, err)
		}

		info, err := f.Stat()
		if err != nil {
			f.Close()
			return fail(path, err)
		}

		src, err := phydump.NewSource(path, f)
		if err != nil {
			return fail(path, err)
		}

		sources = append(sources, src)
		mtimes = append(mtimes, info.ModTime())
	}

	return sources, mtimes, nil
}
