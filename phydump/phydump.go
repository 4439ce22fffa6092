// Package phydump reads the per-device CSV dumps written by a radio PHY
// simulator. Each dump holds one row per simulated transmission, sorted
// by start time.
package phydump

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Canonical column names.
const (
	FieldStartTime  = "start_time"
	FieldCenterFreq = "center_freq"
	FieldPhyAddress = "phy_address"
	FieldPacketSize = "packet_size"
	FieldPacket     = "packet"
	FieldModulation = "modulation"
)

// KeyAlternatives maps each canonical column name to the name older
// simulator versions used for it.
var KeyAlternatives = [][2]string{
	{FieldStartTime, "Tx_Start_Time"},
	{FieldCenterFreq, "CenterFreq"},
	{FieldPhyAddress, "PhyAddress"},
	{FieldPacketSize, "PacketSize"},
	{FieldPacket, "Packet"},
}

// NormalizeHeader renames legacy columns to their canonical names, in
// place. A legacy column is only renamed if the canonical one is absent.
func NormalizeHeader(header []string) []string {
	for _, alt := range KeyAlternatives {
		if indexOf(header, alt[0]) >= 0 {
			continue
		}
		if i := indexOf(header, alt[1]); i >= 0 {
			header[i] = alt[0]
		}
	}

	return header
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}

	return -1
}

var (
	// ErrTruncatedLine is returned by Source.Next when a line has fewer
	// fields than the header. The source is exhausted afterwards.
	ErrTruncatedLine = errors.New("input truncated mid line")
	// ErrMissingColumn is wrapped by a FieldError when the header has
	// no column for a requested field.
	ErrMissingColumn = errors.New("missing column")
)

// FieldError describes a field of a row that could not be decoded.
type FieldError struct {
	Source string
	Line   int
	Field  string
	Value  string
	Err    error
}

func (e *FieldError) Error() string {
	if errors.Is(e.Err, ErrMissingColumn) {
		return fmt.Sprintf("%s:%d: %v %q", e.Source, e.Line, e.Err, e.Field)
	}
	return fmt.Sprintf("%s:%d: invalid %s %q: %v",
		e.Source, e.Line, e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

type column int

const (
	colStartTime column = iota
	colCenterFreq
	colPhyAddress
	colPacketSize
	colPacket
	colModulation
	numColumns
)

var columnNames = [numColumns]string{
	FieldStartTime,
	FieldCenterFreq,
	FieldPhyAddress,
	FieldPacketSize,
	FieldPacket,
	FieldModulation,
}

// Row is a single simulated transmission.
//
// Only StartTime is decoded when the row is read. The other fields are
// kept as text and decoded by their accessors, so a row that is rejected
// early never fails on a field nobody looked at.
type Row struct {
	// Source is the name of the dump this row was read from.
	Source string
	// Line is the 1-based line number of the row within Source.
	Line int
	// StartTime of the transmission in microseconds of simulated time.
	StartTime int64

	CenterFreq string
	PhyAddress string
	PacketSize string
	Packet     string
	Modulation string

	missing [numColumns]bool
}

// Size returns the declared payload length in bytes.
func (r Row) Size() (int, error) {
	s, err := r.field(colPacketSize, r.PacketSize)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(s, 10, 31)
	if err != nil {
		return 0, r.fieldError(colPacketSize, s, err)
	}
	return int(n), nil
}

// Mod returns the modulation code.
func (r Row) Mod() (int, error) {
	s, err := r.field(colModulation, r.Modulation)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, r.fieldError(colModulation, s, err)
	}
	return n, nil
}

// Freq returns the center frequency in MHz.
func (r Row) Freq() (float64, error) {
	s, err := r.field(colCenterFreq, r.CenterFreq)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, r.fieldError(colCenterFreq, s, err)
	}
	return f, nil
}

// Address returns the PHY address, which the dump writes in hex with or
// without a 0x prefix.
func (r Row) Address() (uint64, error) {
	s, err := r.field(colPhyAddress, r.PhyAddress)
	if err != nil {
		return 0, err
	}
	digits := s
	if len(digits) > 2 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		digits = digits[2:]
	}
	n, err := strconv.ParseUint(digits, 16, 64)
	if err != nil {
		return 0, r.fieldError(colPhyAddress, s, err)
	}
	return n, nil
}

// Payload returns the hex-decoded packet bytes. The simulator separates
// bytes with spaces, which are ignored.
func (r Row) Payload() ([]byte, error) {
	s, err := r.field(colPacket, r.Packet)
	if err != nil {
		return nil, err
	}
	b, err := hex.DecodeString(strings.Join(strings.Fields(s), ""))
	if err != nil {
		return nil, r.fieldError(colPacket, s, err)
	}
	return b, nil
}

func (r Row) field(c column, value string) (string, error) {
	if r.missing[c] {
		return "", r.fieldError(c, "", ErrMissingColumn)
	}
	return strings.TrimSpace(value), nil
}

func (r Row) fieldError(c column, value string, err error) error {
	return &FieldError{
		Source: r.Source,
		Line:   r.Line,
		Field:  columnNames[c],
		Value:  value,
		Err:    err,
	}
}
