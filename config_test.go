package main

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigDefaults(t *testing.T) {
	t.Setenv("BPTREE_LOG_LEVEL", "")
	cfg, err := parseConfig(nil, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, modeBench, cfg.Mode)
	assert.Equal(t, 1_000_000, cfg.Scale)
	assert.Equal(t, []int{8, 32, 128}, cfg.Orders)
	assert.Equal(t, []int{4, 16, 64}, cfg.Degrees)
	assert.Equal(t, 5, cfg.VerifyOrder)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.True(t, cfg.Plot)
}

func TestParseConfigFlags(t *testing.T) {
	cfg, err := parseConfig([]string{
		"-mode", "verify", "-scale", "500", "-orders", "4, 16", "-degrees", "",
		"-verify-keys", "200", "-log-level", "debug", "-plot=false",
	}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, modeVerify, cfg.Mode)
	assert.Equal(t, 500, cfg.Scale)
	assert.Equal(t, []int{4, 16}, cfg.Orders)
	assert.Empty(t, cfg.Degrees)
	assert.Equal(t, 200, cfg.VerifyKeys)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.False(t, cfg.Plot)
}

func TestParseConfigLogLevelFromEnv(t *testing.T) {
	t.Setenv("BPTREE_LOG_LEVEL", "WARN")
	cfg, err := parseConfig(nil, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{"unknown mode", []string{"-mode", "fast"}, `unknown mode "fast"`},
		{"small scale", []string{"-scale", "1"}, "scale must be at least 2"},
		{"bad order", []string{"-orders", "8,x"}, `-orders: parse "x"`},
		{"negative degree", []string{"-degrees", "-3"}, "-degrees: -3 is not positive"},
		{"bad level", []string{"-log-level", "loud"}, `unknown level "loud"`},
		{"small verify order", []string{"-verify-order", "2"}, "verify-order must be at least 3"},
		{"empty matrix", []string{"-orders", "", "-degrees", ""}, "no orders or degrees"},
		{"unknown flag", []string{"-nope"}, "flag provided but not defined"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("BPTREE_LOG_LEVEL", "")
			_, err := parseConfig(tc.args, io.Discard)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}
