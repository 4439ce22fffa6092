package csv2pcap_test

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/google/gopacket/pcapgo"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/timpalpant/go-csv2pcap/phydump"
)

const dumpHeader = "start_time,end_time,center_freq,phy_address,modulation,power_level,packet_size,packet\n"

// tx formats a dump line for an 802.15.4 transmission of packet, a hex
// string, at start time ts.
func tx(ts int64, packet string) string {
	return txLine(ts, "2402.000000", 256, len(packet)/2, packet)
}

func txLine(ts int64, freq string, modulation, size int, packet string) string {
	return fmt.Sprintf("%d,%d,%s,0x0000001A,%d,0.000000,%d,%s\n",
		ts, ts+100, freq, modulation, size, packet)
}

type trackingReader struct {
	io.Reader
	closes int
}

func (r *trackingReader) Close() error {
	r.closes++
	return nil
}

func newSource(name string, lines ...string) (*phydump.Source, *trackingReader) {
	r := &trackingReader{Reader: strings.NewReader(dumpHeader + strings.Join(lines, ""))}
	s, err := phydump.NewSource(name, r)
	So(err, ShouldBeNil)
	return s, r
}

type record struct {
	usec    int64
	inclLen int
	origLen int
	data    []byte
}

func readCapture(b []byte) (*pcapgo.Reader, []record) {
	r, err := pcapgo.NewReader(bytes.NewReader(b))
	So(err, ShouldBeNil)

	var records []record
	for {
		data, ci, err := r.ReadPacketData()
		if err == io.EOF {
			break
		}
		So(err, ShouldBeNil)
		records = append(records, record{
			usec:    ci.Timestamp.UnixMicro(),
			inclLen: ci.CaptureLength,
			origLen: ci.Length,
			data:    data,
		})
	}

	return r, records
}
