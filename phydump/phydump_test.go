package phydump

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRowAccessors(t *testing.T) {
	row := Row{
		Source:     "tx.csv",
		Line:       7,
		StartTime:  100,
		CenterFreq: "2402.000000",
		PhyAddress: "0x000000A7",
		PacketSize: " 3",
		Packet:     "01 0a FF",
		Modulation: "256",
	}

	size, err := row.Size()
	if err != nil || size != 3 {
		t.Fatalf("Size() = %v, %v", size, err)
	}
	mod, err := row.Mod()
	if err != nil || mod != 256 {
		t.Fatalf("Mod() = %v, %v", mod, err)
	}
	freq, err := row.Freq()
	if err != nil || freq != 2402.0 {
		t.Fatalf("Freq() = %v, %v", freq, err)
	}
	addr, err := row.Address()
	if err != nil || addr != 0xA7 {
		t.Fatalf("Address() = %#x, %v", addr, err)
	}
	payload, err := row.Payload()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{0x01, 0x0a, 0xff}, payload); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestRowAddressWithoutPrefix(t *testing.T) {
	row := Row{PhyAddress: "1a"}
	addr, err := row.Address()
	if err != nil || addr != 0x1a {
		t.Fatalf("Address() = %#x, %v", addr, err)
	}
}

func TestRowEmptyPayload(t *testing.T) {
	row := Row{Packet: ""}
	payload, err := row.Payload()
	if err != nil || len(payload) != 0 {
		t.Fatalf("Payload() = %v, %v", payload, err)
	}
}

func TestRowFieldErrors(t *testing.T) {
	testCases := []struct {
		name  string
		row   Row
		field string
		call  func(Row) error
	}{
		{
			name:  "negative size",
			row:   Row{PacketSize: "-1"},
			field: FieldPacketSize,
			call:  func(r Row) error { _, err := r.Size(); return err },
		},
		{
			name:  "non numeric modulation",
			row:   Row{Modulation: "BLE1M"},
			field: FieldModulation,
			call:  func(r Row) error { _, err := r.Mod(); return err },
		},
		{
			name:  "bad frequency",
			row:   Row{CenterFreq: "2.4GHz"},
			field: FieldCenterFreq,
			call:  func(r Row) error { _, err := r.Freq(); return err },
		},
		{
			name:  "bad address",
			row:   Row{PhyAddress: "0xZZ"},
			field: FieldPhyAddress,
			call:  func(r Row) error { _, err := r.Address(); return err },
		},
		{
			name:  "odd length packet",
			row:   Row{Packet: "AA B"},
			field: FieldPacket,
			call:  func(r Row) error { _, err := r.Payload(); return err },
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.row.Source = "tx.csv"
			tc.row.Line = 3

			err := tc.call(tc.row)
			var fieldErr *FieldError
			if !errors.As(err, &fieldErr) {
				t.Fatalf("expected FieldError, got: %v", err)
			}
			if fieldErr.Field != tc.field || fieldErr.Source != "tx.csv" || fieldErr.Line != 3 {
				t.Fatalf("unexpected error: %+v", fieldErr)
			}
		})
	}
}

func TestRowMissingColumn(t *testing.T) {
	row := Row{Source: "tx.csv", Line: 2}
	row.missing[colModulation] = true

	_, err := row.Mod()
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got: %v", err)
	}
	if err.Error() != `tx.csv:2: missing column "modulation"` {
		t.Fatalf("unexpected message: %v", err)
	}
}
