// Package controller provides the output adapters that present schemata results.
package controller

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	m "gooze.dev/pkg/schemata/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeList StartMode = iota
	ModeInject
	ModeView
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode StartMode
}

// WithListMode sets the UI to listing mode.
func WithListMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeList
	}
}

// WithInjectMode sets the UI to injection mode.
func WithInjectMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeInject
	}
}

// WithViewMode sets the UI to diff viewing mode.
func WithViewMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeView
	}
}

func newStartConfig(options []StartOption) StartConfig {
	var cfg StartConfig
	for _, opt := range options {
		opt(&cfg)
	}

	return cfg
}

// UI defines how workflow results are presented.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context)
	DisplayMutants(ctx context.Context, records []m.Record, err error) error
	DisplayProgress(ctx context.Context, done, total int, path m.Path)
	DisplayInjected(ctx context.Context, manifest m.Manifest)
	DisplayDiff(ctx context.Context, record m.Record, diff string)
}

// NewUI returns the TUI on terminals and SimpleUI otherwise.
func NewUI(cmd *cobra.Command, tty bool) UI {
	if tty {
		return NewTUI(cmd.OutOrStdout())
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether f is a character device.
func IsTTY(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}

	return info.Mode()&os.ModeCharDevice != 0
}

// fileStat is the number of mutants of one file.
type fileStat struct {
	path  string
	count int
}

func buildFileStats(records []m.Record) []fileStat {
	counts := make(map[m.Path]int)
	order := make([]m.Path, 0)

	for _, r := range records {
		if _, ok := counts[r.File]; !ok {
			order = append(order, r.File)
		}

		counts[r.File]++
	}

	stats := make([]fileStat, 0, len(order))
	for _, path := range order {
		stats = append(stats, fileStat{path: string(path), count: counts[path]})
	}

	return stats
}

func countByType(records []m.Record) map[m.MutationType]int {
	counts := make(map[m.MutationType]int)
	for _, r := range records {
		counts[r.Type]++
	}

	return counts
}
