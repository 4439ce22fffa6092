package csv2pcap

import (
	"fmt"
	"time"
)

// Epoch selects what the start times of a dump are relative to.
type Epoch int

const (
	// EpochSimulation keeps timestamps in simulated time: the capture
	// starts at the Unix epoch.
	EpochSimulation Epoch = iota
	// EpochReal anchors simulated time zero at the earliest
	// modification time of the input files.
	EpochReal
	// EpochNow anchors simulated time zero at the current time.
	EpochNow
)

func (e Epoch) String() string {
	switch e {
	case EpochSimulation:
		return "simulation"
	case EpochReal:
		return "real"
	case EpochNow:
		return "now"
	default:
		return fmt.Sprintf("Epoch(%d)", int(e))
	}
}

// Basetime returns the offset in microseconds to add to start times
// for the given epoch. mtimes are the modification times of the input
// files, used by EpochReal.
func Basetime(epoch Epoch, mtimes []time.Time, now time.Time) (int64, error) {
	switch epoch {
	case EpochSimulation:
		return 0, nil
	case EpochReal:
		if len(mtimes) == 0 {
			return 0, fmt.Errorf("%v epoch needs at least one input file", epoch)
		}
		earliest := mtimes[0]
		for _, t := range mtimes[1:] {
			if t.Before(earliest) {
				earliest = t
			}
		}
		return earliest.UnixMicro(), nil
	case EpochNow:
		return now.UnixMicro(), nil
	default:
		return 0, fmt.Errorf("unknown epoch %v", epoch)
	}
}
