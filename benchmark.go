package main

import (
	"encoding/csv"
	"io"
	"runtime"
	"strconv"

	"github.com/cockroachdb/errors"
)

// BenchResult is one CSV row. Objects is the live heap object count, a proxy
// for GC pressure.
type BenchResult struct {
	Name      string
	Config    string
	Operation string
	LatencyNs int64
	MemMB     uint64
	Objects   uint64
	// AvgAccesses is the mean number of nodes visited per lookup, or zero
	// when the structure does not count them.
	AvgAccesses float64
}

type MemoryStats struct {
	AllocMB      uint64
	TotalAllocMB uint64
	HeapObjects  uint64
}

func GetDetailedMem() MemoryStats {
	var m runtime.MemStats
	// Force GC to ensure we measure actual live data, not garbage
	runtime.GC()
	runtime.ReadMemStats(&m)
	return MemoryStats{
		AllocMB:      m.Alloc / 1024 / 1024,
		TotalAllocMB: m.TotalAlloc / 1024 / 1024,
		HeapObjects:  m.HeapObjects,
	}
}

var csvHeader = []string{"Structure", "Config", "TestType", "LatencyNs", "MemMB", "HeapObjects", "AvgAccesses"}

// Recorder writes results as CSV and keeps them for chart rendering.
type Recorder struct {
	w       *csv.Writer
	results []BenchResult
}

func NewRecorder(w io.Writer) (*Recorder, error) {
	r := &Recorder{w: csv.NewWriter(w)}
	if err := r.w.Write(csvHeader); err != nil {
		return nil, errors.Wrap(err, "write csv header")
	}
	return r, nil
}

func (r *Recorder) Record(res BenchResult) error {
	r.results = append(r.results, res)
	err := r.w.Write([]string{
		res.Name,
		res.Config,
		res.Operation,
		strconv.FormatInt(res.LatencyNs, 10),
		strconv.FormatUint(res.MemMB, 10),
		strconv.FormatUint(res.Objects, 10),
		strconv.FormatFloat(res.AvgAccesses, 'f', 2, 64),
	})
	return errors.Wrap(err, "write csv row")
}

// Flush writes buffered rows to the underlying writer.
func (r *Recorder) Flush() error {
	r.w.Flush()
	return errors.Wrap(r.w.Error(), "flush csv")
}

func (r *Recorder) Results() []BenchResult { return r.results }
