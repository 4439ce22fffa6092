// Package ieee802154 describes how IEEE 802.15.4 transmissions from a
// PHY dump are framed in a pcap capture.
package ieee802154

import (
	"errors"
	"fmt"

	"github.com/google/gopacket/layers"
)

const (
	// LinkType is DLT_IEEE802_15_4_NONASK_PHY: frames start with the
	// preamble and SFD, followed by the PHY header and PSDU.
	// See https://www.tcpdump.org/linktypes.html
	LinkType layers.LinkType = 215

	// Modulation is the simulator's code for the 2.4 GHz O-QPSK PHY.
	// Rows with any other modulation belong to other PHYs.
	Modulation = 256

	// PreambleLen is the number of (zero) preamble bytes.
	PreambleLen = 4
	// HeaderLen is the preamble plus the one byte SFD.
	HeaderLen = PreambleLen + 1
)

// ErrOutOfBand is returned for a center frequency outside every band.
var ErrOutOfBand = errors.New("center frequency outside supported bands")

// Band is a range of center frequencies in MHz, [Low, High).
type Band struct {
	Low  float64
	High float64
}

// Bands lists the accepted center frequencies. Depending on its version
// the simulator writes either the offset from 2400 MHz or the absolute
// frequency.
var Bands = []Band{
	{Low: 1.0, High: 81.0},
	{Low: 2401.0, High: 2481.0},
}

// Channel maps a center frequency to a 2 MHz wide RF channel index
// within its band.
func Channel(freq float64) (int, error) {
	for _, b := range Bands {
		if freq >= b.Low && freq < b.High {
			return int((freq - b.Low) / 2), nil
		}
	}

	return 0, fmt.Errorf("%v MHz: %w", freq, ErrOutOfBand)
}

// PHY frames 802.15.4 transmissions as DLT 215 records.
type PHY struct{}

func (p PHY) LinkType() layers.LinkType {
	return LinkType
}

func (p PHY) Modulation() int {
	return Modulation
}

func (p PHY) Channel(freq float64) (int, error) {
	return Channel(freq)
}

func (p PHY) HeaderLen() int {
	return HeaderLen
}

// AppendHeader appends the zero preamble and the SFD, which the dump
// carries in the low byte of the PHY address.
func (p PHY) AppendHeader(dst []byte, addr uint64) []byte {
	var preamble [PreambleLen]byte
	dst = append(dst, preamble[:]...)
	return append(dst, byte(addr))
}
