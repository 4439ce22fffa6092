package csv2pcap

import (
	"fmt"
	"io"
	"time"

	"github.com/golang/glog"
	"github.com/google/gopacket"
	"github.com/google/gopacket/pcapgo"

	"github.com/timpalpant/go-csv2pcap/phydump"
)

// Encoder writes rows as pcap records.
//
// Records are written to the underlying writer as soon as they are
// encoded. If encoding stops on an error, the records before it remain
// in the output, which is still a readable capture.
type Encoder struct {
	w    *pcapgo.Writer
	phy  PHY
	opts Options

	buf   []byte
	stats Stats
}

func NewEncoder(w io.Writer, phy PHY, opts Options) *Encoder {
	return &Encoder{
		w:    pcapgo.NewWriter(w),
		phy:  phy,
		opts: opts,
	}
}

// WriteHeader writes the pcap global header. It must be called once,
// before Encode.
func (e *Encoder) WriteHeader() error {
	if err := e.opts.validate(e.phy); err != nil {
		return err
	}

	return e.w.WriteFileHeader(e.opts.Snaplen, e.phy.LinkType())
}

// Encode writes row as a record. It returns false without an error for
// rows that are skipped: empty transmissions and transmissions of other
// PHYs. Any error means the input is corrupt.
func (e *Encoder) Encode(row phydump.Row) (bool, error) {
	size, err := row.Size()
	if err != nil {
		return false, err
	}
	if size == 0 {
		e.stats.SkippedEmpty++
		if glog.V(3) {
			glog.Infof("%s:%d: skipping empty packet", row.Source, row.Line)
		}
		return false, nil
	}

	mod, err := row.Mod()
	if err != nil {
		return false, err
	}
	if mod != e.phy.Modulation() {
		e.stats.SkippedModulation++
		if glog.V(3) {
			glog.Infof("%s:%d: skipping modulation %d", row.Source, row.Line, mod)
		}
		return false, nil
	}

	freq, err := row.Freq()
	if err != nil {
		return false, err
	}
	channel, err := e.phy.Channel(freq)
	if err != nil {
		return false, fmt.Errorf("%s:%d: %w", row.Source, row.Line, err)
	}

	payload, err := row.Payload()
	if err != nil {
		return false, err
	}
	if len(payload) != size {
		return false, fmt.Errorf("%s:%d: %w: packet_size is %d, packet has %d bytes",
			row.Source, row.Line, ErrLengthMismatch, size, len(payload))
	}

	addr, err := row.Address()
	if err != nil {
		return false, err
	}

	origLen := size + e.phy.HeaderLen()
	inclLen := origLen
	if inclLen > int(e.opts.Snaplen) {
		inclLen = int(e.opts.Snaplen)
	}

	e.buf = e.phy.AppendHeader(e.buf[:0], addr)
	e.buf = append(e.buf, payload...)

	ci := gopacket.CaptureInfo{
		Timestamp:     time.UnixMicro(e.opts.Basetime + row.StartTime),
		CaptureLength: inclLen,
		Length:        origLen,
	}
	if err := e.w.WritePacket(ci, e.buf[:inclLen]); err != nil {
		return false, err
	}

	e.stats.Records++
	if glog.V(3) {
		glog.Infof("%s:%d: wrote %d/%d bytes at %d us, channel %d",
			row.Source, row.Line, inclLen, origLen, row.StartTime, channel)
	}

	return true, nil
}

// Stats returns the counts of rows encoded and skipped so far.
func (e *Encoder) Stats() Stats {
	return e.stats
}

// Convert writes a capture of all rows in sources to w, in start time
// order. The sources are closed when Convert returns.
//
// The global header is written before any source is read, so w holds at
// least a valid empty capture even if conversion fails.
func Convert(w io.Writer, sources []*phydump.Source, phy PHY, opts Options) (Stats, error) {
	m := NewMerger(sources)
	defer m.Close()

	enc := NewEncoder(w, phy, opts)
	stats := func() Stats {
		s := enc.Stats()
		s.TruncatedSources = m.Truncated()
		return s
	}

	if err := enc.WriteHeader(); err != nil {
		return stats(), err
	}

	for {
		row, _, err := m.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return stats(), err
		}

		if _, err := enc.Encode(row); err != nil {
			return stats(), err
		}
	}

	return stats(), m.Close()
}
