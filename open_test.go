package csv2pcap

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeDump(t *testing.T, dir, name, content string, mtime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpenFiles(t *testing.T) {
	dir := t.TempDir()
	mtime := time.Date(2022, time.June, 3, 4, 5, 6, 0, time.UTC)
	a := writeDump(t, dir, "a.csv", "start_time,packet_size\n1,0\n", mtime)
	b := writeDump(t, dir, "b.csv", "", mtime.Add(time.Hour))

	sources, mtimes, err := OpenFiles([]string{a, b})
	if err != nil {
		t.Fatal(err)
	}
	defer NewMerger(sources).Close()

	if len(sources) != 2 || len(mtimes) != 2 {
		t.Fatalf("got %d sources and %d mtimes", len(sources), len(mtimes))
	}
	if !mtimes[0].Equal(mtime) || !mtimes[1].Equal(mtime.Add(time.Hour)) {
		t.Fatalf("unexpected mtimes: %v", mtimes)
	}
	if sources[0].Name() != a {
		t.Fatalf("unexpected name: %v", sources[0].Name())
	}

	row, err := sources[0].Next()
	if err != nil || row.StartTime != 1 {
		t.Fatalf("Next() = %+v, %v", row, err)
	}
	if _, err := sources[1].Next(); err != io.EOF {
		t.Fatalf("expected io.EOF from empty file, got: %v", err)
	}
}

func TestOpenFilesMissing(t *testing.T) {
	dir := t.TempDir()
	a := writeDump(t, dir, "a.csv", "start_time\n1\n", time.Now())
	missing := filepath.Join(dir, "missing.csv")

	sources, _, err := OpenFiles([]string{a, missing})
	if err == nil {
		t.Fatal("expected an error")
	}
	if sources != nil {
		t.Fatalf("expected no sources, got %d", len(sources))
	}
	if !errors.Is(err, fs.ErrNotExist) || !strings.Contains(err.Error(), "can't open '"+missing+"'") {
		t.Fatalf("unexpected error: %v", err)
	}
}
