package phydump

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/golang/glog"
)

// Source reads Rows from a single dump. Next returns rows until io.EOF.
//
// The underlying reader is closed (if it is an io.Closer) as soon as
// the source stops producing rows, whether by exhaustion, truncation or
// error, and at most once.
type Source struct {
	name   string
	r      io.Reader
	csv    *csv.Reader
	header []string
	index  [numColumns]int

	// line and offset mark the end of the last record read, used to spot
	// empty lines, which encoding/csv skips silently.
	line   int
	offset int64

	done   bool
	closed bool
}

// NewSource reads the header line of the dump in r. An empty input is
// not an error: the source simply has no rows.
func NewSource(name string, r io.Reader) (*Source, error) {
	cr := csv.NewReader(r)
	cr.Comma = ','
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	s := &Source{
		name: name,
		r:    r,
		csv:  cr,
	}

	header, err := cr.Read()
	if err == io.EOF {
		glog.Warningf("File %s is fully empty", name)
		header = []string{}
	} else if err != nil {
		s.Close()
		return nil, fmt.Errorf("%s: reading header: %w", name, err)
	}

	if len(header) > 0 {
		s.line = s.endLine(header)
	}
	s.offset = cr.InputOffset()
	s.header = NormalizeHeader(header)
	for c := column(0); c < numColumns; c++ {
		s.index[c] = indexOf(s.header, columnNames[c])
	}

	if glog.V(2) {
		glog.Infof("Opened %s with columns %v", name, s.header)
	}

	return s, nil
}

// Name returns the name the source was created with.
func (s *Source) Name() string {
	return s.name
}

// Header returns the normalized column names.
func (s *Source) Header() []string {
	return s.header
}

// Next returns the next row. It returns io.EOF once the input is
// exhausted, and ErrTruncatedLine (once, followed by io.EOF) at the
// first incomplete or empty line.
func (s *Source) Next() (Row, error) {
	if s.done {
		return Row{}, io.EOF
	}

	record, err := s.csv.Read()
	if err == io.EOF {
		if s.csv.InputOffset() > s.offset {
			return Row{}, s.truncated(s.line + 1)
		}
		if glog.V(2) {
			glog.Infof("Reached end of %s", s.name)
		}
		s.finish()
		return Row{}, io.EOF
	} else if err != nil {
		s.finish()
		return Row{}, fmt.Errorf("%s: %w", s.name, err)
	}

	line, _ := s.csv.FieldPos(0)
	if line > s.line+1 {
		return Row{}, s.truncated(s.line + 1)
	}
	if len(record) < len(s.header) {
		return Row{}, s.truncated(line)
	}
	s.line = s.endLine(record)
	s.offset = s.csv.InputOffset()

	row := Row{
		Source: s.name,
		Line:   line,
	}
	for c := column(0); c < numColumns; c++ {
		i := s.index[c]
		if i < 0 {
			row.missing[c] = true
			continue
		}

		v := record[i]
		switch c {
		case colCenterFreq:
			row.CenterFreq = v
		case colPhyAddress:
			row.PhyAddress = v
		case colPacketSize:
			row.PacketSize = v
		case colPacket:
			row.Packet = v
		case colModulation:
			row.Modulation = v
		}
	}

	if row.missing[colStartTime] {
		s.finish()
		return Row{}, row.fieldError(colStartTime, "", ErrMissingColumn)
	}
	raw := strings.TrimSpace(record[s.index[colStartTime]])
	row.StartTime, err = strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.finish()
		return Row{}, row.fieldError(colStartTime, raw, err)
	}

	return row, nil
}

// Close releases the underlying reader. It is safe to call more than once.
func (s *Source) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.done = true

	if c, ok := s.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// truncated ends the source at the given line. Only the last line of a
// dump should ever be cut short, so nothing past it is worth reading.
func (s *Source) truncated(line int) error {
	glog.Warningf("Input file %s truncated mid line %d, ignoring line",
		s.name, line)
	s.finish()
	return ErrTruncatedLine
}

// endLine returns the line the record just read ends on. A quoted field
// may span several lines.
func (s *Source) endLine(record []string) int {
	last := len(record) - 1
	line, _ := s.csv.FieldPos(last)
	return line + strings.Count(record[last], "\n")
}

func (s *Source) finish() {
	if err := s.Close(); err != nil {
		glog.Warningf("Error closing %s: %v", s.name, err)
	}
}
