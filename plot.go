package main

import (
	"path/filepath"
	"slices"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const (
	chartWidth  = 10 * vg.Inch
	chartHeight = 5 * vg.Inch
	footprintOp = "Footprint_SteadyState"
)

// series groups the results of one structure/config pair.
type series struct {
	label string
	byOp  map[string]BenchResult
}

func groupResults(results []BenchResult) (ss []*series, ops []string) {
	idx := make(map[string]*series)
	for _, r := range results {
		label := r.Name + " " + r.Config
		s, ok := idx[label]
		if !ok {
			s = &series{label: label, byOp: make(map[string]BenchResult)}
			idx[label] = s
			ss = append(ss, s)
		}
		s.byOp[r.Operation] = r
		if !slices.Contains(ops, r.Operation) {
			ops = append(ops, r.Operation)
		}
	}
	return ss, ops
}

// renderCharts writes latency.png (ns/op per operation, one bar per
// structure) and memory.png (live heap after the initial load) into dir.
func renderCharts(results []BenchResult, dir string) error {
	if len(results) == 0 {
		return errors.New("no results to plot")
	}
	ss, ops := groupResults(results)

	latency := plot.New()
	latency.Title.Text = "Latency per operation"
	latency.Y.Label.Text = "ns/op"
	latency.Legend.Top = true
	if err := addGroupedBars(latency, ss, ops, func(r BenchResult) float64 {
		return float64(r.LatencyNs)
	}); err != nil {
		return err
	}
	latency.NominalX(ops...)
	if err := latency.Save(chartWidth, chartHeight, filepath.Join(dir, "latency.png")); err != nil {
		return errors.Wrap(err, "save latency chart")
	}

	memory := plot.New()
	memory.Title.Text = "Heap after initial load"
	memory.Y.Label.Text = "MB"
	values := make(plotter.Values, len(ss))
	labels := make([]string, len(ss))
	for i, s := range ss {
		values[i] = float64(s.byOp[footprintOp].MemMB)
		labels[i] = s.label
	}
	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return errors.Wrap(err, "memory bars")
	}
	bars.Color = plotutil.Color(0)
	memory.Add(bars)
	memory.NominalX(labels...)
	if err := memory.Save(chartWidth, chartHeight, filepath.Join(dir, "memory.png")); err != nil {
		return errors.Wrap(err, "save memory chart")
	}
	return nil
}

func addGroupedBars(p *plot.Plot, ss []*series, ops []string, value func(BenchResult) float64) error {
	w := vg.Points(8)
	for i, s := range ss {
		values := make(plotter.Values, len(ops))
		for j, op := range ops {
			if r, ok := s.byOp[op]; ok {
				values[j] = value(r)
			}
		}
		bars, err := plotter.NewBarChart(values, w)
		if err != nil {
			return errors.Wrapf(err, "bars for %s", s.label)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(i)
		bars.Offset = w * vg.Length(2*i-len(ss)+1) / 2
		p.Add(bars)
		p.Legend.Add(s.label, bars)
	}
	return nil
}
