// Command bptreemap benchmarks the in-memory B+Tree map against google/btree,
// Pebble and a sorted slice, or verifies the B+Tree structure in -mode=verify.
package main

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/btree-query-bench/bptreemap/index"
	"github.com/btree-query-bench/bptreemap/index/bplustree"
	"github.com/btree-query-bench/bptreemap/index/gbtree"
	"github.com/btree-query-bench/bptreemap/index/listindex"
	"github.com/btree-query-bench/bptreemap/index/lsm"
)

func main() {
	cfg, err := parseConfig(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := configureLogging(cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("run failed", "mode", cfg.Mode, "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return errors.Wrap(err, "create output directory")
	}
	if cfg.Mode == modeVerify {
		return verify(cfg, logger)
	}
	return bench(cfg, logger)
}

// structure is one entry of the benchmark matrix.
type structure struct {
	name   string
	config string
	open   func() (index.Index, error)
}

func matrix(cfg Config) []structure {
	var out []structure
	for _, order := range cfg.Orders {
		out = append(out, structure{"BPlusTree", strconv.Itoa(order), func() (index.Index, error) {
			return bplustree.NewBPlusTree(order), nil
		}})
	}
	for _, degree := range cfg.Degrees {
		out = append(out, structure{"B-Tree", strconv.Itoa(degree), func() (index.Index, error) {
			return gbtree.NewBTree(degree), nil
		}})
	}
	out = append(out, structure{"LSM-Tree", "pebble-mem", func() (index.Index, error) {
		return lsm.OpenInMemory()
	}})
	if cfg.Scale <= listIndexMaxScale {
		out = append(out, structure{"List", "sorted-slice", func() (index.Index, error) {
			return listindex.NewListIndex(), nil
		}})
	}
	return out
}

func bench(cfg Config, logger *slog.Logger) error {
	path := filepath.Join(cfg.OutDir, "results.csv")
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create results file")
	}
	defer f.Close()

	rec, err := NewRecorder(f)
	if err != nil {
		return err
	}
	for _, s := range matrix(cfg) {
		logger.Info("running suite", "structure", s.name, "config", s.config, "scale", cfg.Scale)
		if err := runSuite(rec, s, cfg); err != nil {
			return errors.Wrapf(err, "%s (%s)", s.name, s.config)
		}
	}
	if err := rec.Flush(); err != nil {
		return err
	}
	logger.Info("benchmark complete", "results", path)

	if cfg.Plot {
		if err := renderCharts(rec.Results(), cfg.OutDir); err != nil {
			return err
		}
		logger.Info("charts written", "dir", cfg.OutDir)
	}
	return nil
}

func runSuite(rec *Recorder, s structure, cfg Config) error {
	idx, err := s.open()
	if err != nil {
		return err
	}
	defer idx.Close()

	n := cfg.Scale
	rng := rand.New(rand.NewPCG(cfg.Seed, uint64(n)))
	record := func(op string, start time.Time, ops int, avg float64) error {
		elapsed := time.Since(start)
		mem := GetDetailedMem()
		return rec.Record(BenchResult{
			Name:        s.name,
			Config:      s.config,
			Operation:   op,
			LatencyNs:   elapsed.Nanoseconds() / int64(ops),
			MemMB:       mem.AllocMB,
			Objects:     mem.HeapObjects,
			AvgAccesses: avg,
		})
	}

	// 1. Pure Insert (Initial Load)
	start := time.Now()
	for k := range int64(n) {
		if err := idx.Insert(k, []byte("v")); err != nil {
			return errors.Wrap(err, "initial load")
		}
	}
	if err := record("Footprint_SteadyState", start, n, 0); err != nil {
		return err
	}

	// 2. Node accesses per lookup, B+Tree only.
	if bt, ok := idx.(*bplustree.BPlusTree); ok {
		start = time.Now()
		avg := averageAccesses(bt, n, rng)
		if err := record("Lookup_Accesses", start, n/2, avg); err != nil {
			return err
		}
	}

	// 3. Mixed workloads over twice the loaded key space so inserts land.
	for _, w := range []struct {
		op  string
		typ WorkloadType
		ops int
	}{
		{"Workload_OLTP", OLTP, n / 2},
		{"Workload_OLAP", OLAP, n / 2},
		{"Workload_Range", Reporting, 100},
	} {
		start = time.Now()
		st, err := ExecuteWorkload(idx, w.typ, w.ops, int64(2*n), rng)
		if err != nil {
			return err
		}
		slog.Debug("workload done", "structure", s.name, "workload", w.typ,
			"gets", st.Gets, "hits", st.Hits, "inserts", st.Inserts,
			"duplicates", st.Duplicates, "rows", st.Rows)
		if err := record(w.op, start, w.ops, 0); err != nil {
			return err
		}
	}
	return nil
}

// averageAccesses returns the mean number of nodes visited by n/2 random
// lookups of loaded keys.
func averageAccesses(bt *bplustree.BPlusTree, n int, rng *rand.Rand) float64 {
	m := bt.Map()
	lookups := max(n/2, 1)
	m.ResetAccesses()
	for range lookups {
		m.Get(rng.Int64N(int64(n)))
	}
	return float64(m.Accesses()) / float64(lookups)
}
