package csv2pcap

import (
	"errors"
	"io"

	"github.com/golang/glog"

	"github.com/timpalpant/go-csv2pcap/phydump"
)

// Merger merges rows from several sources, each sorted by start time,
// into a single sequence sorted by start time. It keeps one row of
// lookahead per source.
type Merger struct {
	sources []*phydump.Source
	heads   []head
	primed  bool

	truncated int
}

type head struct {
	row phydump.Row
	ok  bool
}

func NewMerger(sources []*phydump.Source) *Merger {
	return &Merger{
		sources: sources,
		heads:   make([]head, len(sources)),
	}
}

// Next returns the earliest row across all sources, and the index of
// the source it came from. Rows with equal start times are returned
// in source order. Next returns io.EOF once all sources are exhausted.
//
// A source whose input ends with a truncated line is treated as
// exhausted. Any other error from a source is returned.
func (m *Merger) Next() (phydump.Row, int, error) {
	if !m.primed {
		m.primed = true
		for i := range m.sources {
			if err := m.fill(i); err != nil {
				return phydump.Row{}, -1, err
			}
		}
	}

	next := -1
	for i, h := range m.heads {
		if !h.ok {
			continue
		}
		if next < 0 || h.row.StartTime < m.heads[next].row.StartTime {
			next = i
		}
	}

	if next < 0 {
		return phydump.Row{}, -1, io.EOF
	}

	row := m.heads[next].row
	if err := m.fill(next); err != nil {
		return phydump.Row{}, -1, err
	}

	return row, next, nil
}

// Truncated returns the number of sources that ended with a truncated line.
func (m *Merger) Truncated() int {
	return m.truncated
}

// Close closes all sources and returns the first error.
func (m *Merger) Close() error {
	var first error
	for _, s := range m.sources {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}

	return first
}

func (m *Merger) fill(i int) error {
	row, err := m.sources[i].Next()
	m.heads[i] = head{row: row, ok: err == nil}

	switch {
	case err == nil, err == io.EOF:
		return nil
	case errors.Is(err, phydump.ErrTruncatedLine):
		m.truncated++
		if glog.V(2) {
			glog.Infof("Dropping the rest of %s", m.sources[i].Name())
		}
		return nil
	default:
		return err
	}
}
