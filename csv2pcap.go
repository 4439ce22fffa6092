// Package csv2pcap converts radio PHY simulator dumps into pcap captures.
//
// Each dump is a CSV file of transmissions sorted by start time. Dumps
// from several devices are merged into a single time ordered capture,
// one record per transmission.
package csv2pcap

import (
	"errors"
	"fmt"

	"github.com/google/gopacket/layers"
)

// DefaultSnaplen fits the largest frame of the supported PHYs:
// preamble, access address, PDU and CRC.
const DefaultSnaplen = 512

// ErrLengthMismatch is returned when a row's packet does not hold the
// number of bytes its packet_size declares. It means the dump is
// corrupt, so conversion stops.
var ErrLengthMismatch = errors.New("packet length does not match packet_size")

// PHY describes how transmissions of one simulated PHY are framed.
type PHY interface {
	// LinkType written to the capture's global header.
	LinkType() layers.LinkType
	// Modulation code of the rows to convert. Rows with any other
	// code are skipped.
	Modulation() int
	// Channel returns the RF channel for a center frequency in MHz,
	// or an error if the frequency is not one the PHY can use.
	Channel(freq float64) (int, error)
	// HeaderLen is the number of bytes AppendHeader adds.
	HeaderLen() int
	// AppendHeader appends the link-layer header that precedes the
	// payload in each record.
	AppendHeader(dst []byte, addr uint64) []byte
}

// Options controls the output capture.
type Options struct {
	// Snaplen is the maximum number of bytes captured per record.
	// Longer frames are truncated.
	Snaplen uint32
	// Basetime in microseconds is added to every row's start time.
	// See Basetime.
	Basetime int64
}

// DefaultOptions returns the Options used by the command line tool
// when no flags are given.
func DefaultOptions() Options {
	return Options{Snaplen: DefaultSnaplen}
}

func (o Options) validate(phy PHY) error {
	if int64(o.Snaplen) < int64(phy.HeaderLen()) {
		return fmt.Errorf("snaplen %d is shorter than the %d byte frame header",
			o.Snaplen, phy.HeaderLen())
	}
	return nil
}

// Stats counts what happened to the rows of a conversion.
type Stats struct {
	Records           int
	SkippedEmpty      int
	SkippedModulation int
	TruncatedSources  int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d records written, %d empty and %d other-PHY rows skipped, %d truncated inputs",
		s.Records, s.SkippedEmpty, s.SkippedModulation, s.TruncatedSources)
}
