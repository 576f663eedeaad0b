package main

import (
	"flag"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/btree-query-bench/bptreemap/index/bptreemap"
)

const (
	modeBench  = "bench"
	modeVerify = "verify"
)

// Config holds the command line settings of the harness.
type Config struct {
	Mode        string
	Scale       int
	Orders      []int
	Degrees     []int
	Seed        uint64
	OutDir      string
	Plot        bool
	VerifyKeys  int
	VerifyOrder int
	LogLevel    slog.Level
}

// listIndexMaxScale is the largest load the sorted-slice baseline runs at;
// its inserts are linear.
const listIndexMaxScale = 100_000

func parseConfig(args []string, stderr io.Writer) (Config, error) {
	fs := flag.NewFlagSet("bptreemap", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		cfg      Config
		orders   string
		degrees  string
		logLevel string
	)
	fs.StringVar(&cfg.Mode, "mode", modeBench, "bench or verify")
	fs.IntVar(&cfg.Scale, "scale", 1_000_000, "number of keys loaded per structure")
	fs.StringVar(&orders, "orders", "8,32,128", "comma separated B+Tree orders")
	fs.StringVar(&degrees, "degrees", "4,16,64", "comma separated google/btree degrees")
	fs.Uint64Var(&cfg.Seed, "seed", 1, "workload random seed")
	fs.StringVar(&cfg.OutDir, "out", "results", "directory for CSV, charts and tree dumps")
	fs.BoolVar(&cfg.Plot, "plot", true, "render latency and memory charts")
	fs.IntVar(&cfg.VerifyKeys, "verify-keys", 60, "verify mode inserts the odd keys up to this bound")
	fs.IntVar(&cfg.VerifyOrder, "verify-order", bptreemap.DefaultOrder, "B+Tree order used in verify mode")
	fs.StringVar(&logLevel, "log-level", os.Getenv("BPTREE_LOG_LEVEL"), "DEBUG, INFO, WARN or ERROR")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	var err error
	if cfg.Orders, err = parseInts(orders); err != nil {
		return Config{}, errors.Wrap(err, "-orders")
	}
	if cfg.Degrees, err = parseInts(degrees); err != nil {
		return Config{}, errors.Wrap(err, "-degrees")
	}
	if cfg.LogLevel, err = parseLevel(logLevel); err != nil {
		return Config{}, errors.Wrap(err, "-log-level")
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Mode {
	case modeBench, modeVerify:
	default:
		return errors.Newf("unknown mode %q", c.Mode)
	}
	if c.Scale < 2 {
		return errors.Newf("scale must be at least 2, got %d", c.Scale)
	}
	if c.VerifyKeys < 1 {
		return errors.Newf("verify-keys must be positive, got %d", c.VerifyKeys)
	}
	if c.VerifyOrder < bptreemap.MinOrder {
		return errors.Newf("verify-order must be at least %d, got %d", bptreemap.MinOrder, c.VerifyOrder)
	}
	if c.Mode == modeBench && len(c.Orders) == 0 && len(c.Degrees) == 0 {
		return errors.New("no orders or degrees to benchmark")
	}
	return nil
}

func parseInts(s string) ([]int, error) {
	var out []int
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %q", f)
		}
		if n < 1 {
			return nil, errors.Newf("%d is not positive", n)
		}
		out = append(out, n)
	}
	return out, nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(s) {
	case "", "INFO":
		return slog.LevelInfo, nil
	case "DEBUG":
		return slog.LevelDebug, nil
	case "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	}
	return 0, errors.Newf("unknown level %q", s)
}

var logLevel = new(slog.LevelVar)

// configureLogging installs a text handler on stderr as the default logger.
func configureLogging(level slog.Level) *slog.Logger {
	logLevel.Set(level)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return logger
}
