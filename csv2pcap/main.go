// csv2pcap converts the Tx dumps of a radio PHY simulator into a pcap
// capture of IEEE 802.15.4 frames (DLT 215), readable by Wireshark.
//
// Usage:
//
//	csv2pcap -o OUTFILE [-er | -es | -en] [-snaplen N] INFILE...
//
// Rows from all input files are merged in start time order. By default
// timestamps are simulated time; -er anchors them at the earliest input
// modification time and -en at the current time.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang/glog"

	"github.com/timpalpant/go-csv2pcap"
	"github.com/timpalpant/go-csv2pcap/phydump"
	"github.com/timpalpant/go-csv2pcap/phydump/ieee802154"
)

type config struct {
	output  string
	inputs  []string
	snaplen uint

	epochReal bool
	epochSimu bool
	epochNow  bool
}

func (c *config) register(fs *flag.FlagSet) {
	const outputUsage = "write to this pcap file (required)"
	fs.StringVar(&c.output, "o", "", outputUsage)
	fs.StringVar(&c.output, "output", "", outputUsage)

	const realUsage = "timestamps start at the earliest input modification time"
	fs.BoolVar(&c.epochReal, "er", false, realUsage)
	fs.BoolVar(&c.epochReal, "epoch_real", false, realUsage)

	const simuUsage = "timestamps are simulated time (default)"
	fs.BoolVar(&c.epochSimu, "es", false, simuUsage)
	fs.BoolVar(&c.epochSimu, "epoch_simu", false, simuUsage)

	const nowUsage = "timestamps start at the current time"
	fs.BoolVar(&c.epochNow, "en", false, nowUsage)
	fs.BoolVar(&c.epochNow, "epoch_now", false, nowUsage)

	fs.UintVar(&c.snaplen, "snaplen", csv2pcap.DefaultSnaplen,
		"maximum bytes captured per frame")
}

// parseArgs parses flags and input files, which may be interleaved.
// Everything after a "--" is an input file.
func (c *config) parseArgs(fs *flag.FlagSet, args []string) error {
	for {
		if err := fs.Parse(args); err != nil {
			return err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			break
		}
		if n := len(args) - len(rest); n > 0 && args[n-1] == "--" {
			c.inputs = append(c.inputs, rest...)
			break
		}
		c.inputs = append(c.inputs, rest[0])
		args = rest[1:]
	}

	if c.output == "" {
		return errors.New("the -o/--output flag is required")
	}
	if len(c.inputs) == 0 {
		return errors.New("at least one input csv file is required")
	}
	if c.snaplen > 1<<32-1 {
		return fmt.Errorf("snaplen %d is too large", c.snaplen)
	}

	n := 0
	for _, set := range []bool{c.epochReal, c.epochSimu, c.epochNow} {
		if set {
			n++
		}
	}
	if n > 1 {
		return errors.New("-er, -es and -en are mutually exclusive")
	}

	return nil
}

func (c *config) epoch() csv2pcap.Epoch {
	switch {
	case c.epochReal:
		return csv2pcap.EpochReal
	case c.epochNow:
		return csv2pcap.EpochNow
	default:
		return csv2pcap.EpochSimulation
	}
}

func run(c *config, now time.Time) (csv2pcap.Stats, error) {
	sources, mtimes, err := csv2pcap.OpenFiles(c.inputs)
	if err != nil {
		return csv2pcap.Stats{}, err
	}

	basetime, err := csv2pcap.Basetime(c.epoch(), mtimes, now)
	if err != nil {
		closeAll(sources)
		return csv2pcap.Stats{}, err
	}

	output, err := os.Create(c.output)
	if err != nil {
		closeAll(sources)
		return csv2pcap.Stats{}, err
	}
	defer output.Close()

	opts := csv2pcap.Options{
		Snaplen:  uint32(c.snaplen),
		Basetime: basetime,
	}
	stats, err := csv2pcap.Convert(output, sources, ieee802154.PHY{}, opts)
	if err != nil {
		return stats, err
	}

	return stats, output.Close()
}

func closeAll(sources []*phydump.Source) {
	for _, s := range sources {
		s.Close()
	}
}

func main() {
	flag.Set("logtostderr", "true")

	var c config
	c.register(flag.CommandLine)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Usage: %s -o OUTFILE [flags] INFILE...\n", os.Args[0])
		flag.PrintDefaults()
	}
	if err := c.parseArgs(flag.CommandLine, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}
	defer glog.Flush()

	stats, err := run(&c, time.Now())
	if err != nil {
		glog.Exitf("Converting to %s failed: %v", c.output, err)
	}

	glog.Infof("Wrote %s: %v", c.output, stats)
}
