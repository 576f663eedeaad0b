package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/btree-query-bench/bptreemap/index/bptreemap"
)

// verifyReport summarizes a verify run.
type verifyReport struct {
	Keys        int
	Height      int
	RangeRows   int
	AvgAccesses float64
}

// verify grows a tree from the odd keys up to cfg.VerifyKeys (value i*i),
// checks its structure, probes every key in [0, VerifyKeys] and scans a range
// spanning several leaves. The tree is dumped to tree.txt and tree.dot.
func verify(cfg Config, logger *slog.Logger) error {
	m := bptreemap.New[int64, int64](
		bptreemap.WithOrder(cfg.VerifyOrder),
		bptreemap.WithLogger(logger),
	)
	rep, err := verifyMap(m, int64(cfg.VerifyKeys))
	if err != nil {
		return err
	}
	logger.Info("tree verified",
		"keys", rep.Keys, "height", rep.Height, "rangeRows", rep.RangeRows,
		"avgAccesses", rep.AvgAccesses)

	if err := writeFile(filepath.Join(cfg.OutDir, "tree.txt"), m.Fprint); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(cfg.OutDir, "tree.dot"), m.WriteDOT); err != nil {
		return err
	}
	logger.Info("tree dumped", "dir", cfg.OutDir)
	return nil
}

func verifyMap(m *bptreemap.Map[int64, int64], n int64) (verifyReport, error) {
	var rep verifyReport

	// 1. Stress testing for multi-level growth.
	for i := int64(1); i <= n; i += 2 {
		if err := m.Put(i, i*i); err != nil {
			return rep, errors.Wrapf(err, "insert %d", i)
		}
		rep.Keys++
	}
	if err := m.Check(); err != nil {
		return rep, errors.Wrap(err, "check after load")
	}
	rep.Height = m.Height()

	// 2. Point lookups: odd keys hold i*i, even keys are absent.
	m.ResetAccesses()
	for i := int64(0); i <= n; i++ {
		v, ok := m.Get(i)
		switch {
		case i%2 == 1 && (!ok || v != i*i):
			return rep, errors.Newf("lookup %d: got (%d, %t), want (%d, true)", i, v, ok, i*i)
		case i%2 == 0 && ok:
			return rep, errors.Newf("lookup %d: found absent key", i)
		}
	}
	rep.AvgAccesses = float64(m.Accesses()) / float64(n+1)

	// 3. Deep range scan across leaves.
	lo, hi := n/12, n-n/12
	var prev int64 = -1
	for k, v := range m.Range(lo, hi) {
		if k <= prev || k < lo || k >= hi || v != k*k {
			return rep, errors.Newf("range [%d, %d): unexpected entry %d=%d after %d", lo, hi, k, v, prev)
		}
		prev = k
		rep.RangeRows++
	}
	if want := oddsIn(lo, hi); rep.RangeRows != want {
		return rep, errors.Newf("range [%d, %d): got %d rows, want %d", lo, hi, rep.RangeRows, want)
	}
	return rep, nil
}

// oddsIn returns the number of odd integers in [lo, hi).
func oddsIn(lo, hi int64) int {
	if hi <= lo {
		return 0
	}
	return int(hi/2 - lo/2)
}

func writeFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create dump")
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}
