package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/reqsmith/pkg/observability"
)

// runMetrics aggregates observability events for one command invocation
// and feeds the end-of-run summary. Runs are single-threaded, so no
// locking is needed.
type runMetrics struct {
	logger *log.Logger

	files       int
	extractErrs int
	conflicts   int
	cacheHits   int
	cacheMisses int
	commands    int
}

// newRunMetrics creates a collector that logs events at debug level.
func newRunMetrics(logger *log.Logger) *runMetrics {
	return &runMetrics{logger: logger}
}

// register installs the collector as the process-wide hook set and
// returns the function restoring the no-op defaults.
func (m *runMetrics) register() func() {
	observability.SetScanHooks(m)
	observability.SetCacheHooks(m)
	observability.SetExecHooks(m)
	return observability.Reset
}

// summary renders the collected counters as a single line.
func (m *runMetrics) summary() string {
	return fmt.Sprintf("%d files extracted (%d failed), %d cache hits, %d misses, %d conflicts, %d poetry calls",
		m.files, m.extractErrs, m.cacheHits, m.cacheMisses, m.conflicts, m.commands)
}

// ScanHooks

func (m *runMetrics) OnWalkComplete(_ context.Context, root string, fileCount int, duration time.Duration) {
	m.logger.Debug("walk complete", "root", root, "files", fileCount, "took", duration.Round(time.Millisecond))
}

func (m *runMetrics) OnFileExtracted(_ context.Context, path string, requirements int, err error) {
	m.files++
	if err != nil {
		m.extractErrs++
		m.logger.Debug("extraction failed", "path", path, "err", err)
		return
	}
	m.logger.Debug("file extracted", "path", path, "requirements", requirements)
}

func (m *runMetrics) OnConflictResolved(_ context.Context, pkg, decision string, interactive bool) {
	m.conflicts++
	m.logger.Debug("conflict resolved", "package", pkg, "decision", decision, "interactive", interactive)
}

// CacheHooks

func (m *runMetrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheHits++
	m.logger.Debug("cache hit", "type", keyType)
}

func (m *runMetrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheMisses++
	m.logger.Debug("cache miss", "type", keyType)
}

func (m *runMetrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.logger.Debug("cache set", "type", keyType, "bytes", size)
}

// ExecHooks

func (m *runMetrics) OnCommandStart(_ context.Context, name string, args []string) {
	m.logger.Debug("running command", "cmd", name+" "+strings.Join(args, " "))
}

func (m *runMetrics) OnCommandComplete(_ context.Context, name string, args []string, duration time.Duration, err error) {
	m.commands++
	m.logger.Debug("command complete",
		"cmd", name+" "+strings.Join(args, " "),
		"took", duration.Round(time.Millisecond),
		"err", err)
}
