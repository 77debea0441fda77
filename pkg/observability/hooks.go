// Package observability provides hooks for instrumenting pipeline runs.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific backends. Consumers register hooks at startup
// to receive events about scanning, cache operations, and external
// command invocations; the CLI uses this to collect warnings for the
// end-of-run summary.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetScanHooks(&myScanHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Scan().OnFileExtracted(ctx, path, count, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// ScanHooks receives events from the scan and extraction stages.
type ScanHooks interface {
	// OnWalkComplete records the end of a directory walk.
	OnWalkComplete(ctx context.Context, root string, fileCount int, duration time.Duration)

	// OnFileExtracted records one file's extraction outcome.
	OnFileExtracted(ctx context.Context, path string, requirements int, err error)

	// OnConflictResolved records a version conflict decision.
	OnConflictResolved(ctx context.Context, pkg, decision string, interactive bool)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// ExecHooks receives events from external command invocations.
type ExecHooks interface {
	// OnCommandStart records the launch of an external command.
	OnCommandStart(ctx context.Context, name string, args []string)

	// OnCommandComplete records the result of an external command.
	OnCommandComplete(ctx context.Context, name string, args []string, duration time.Duration, err error)
}

// NoopScanHooks is a no-op implementation of ScanHooks.
type NoopScanHooks struct{}

func (NoopScanHooks) OnWalkComplete(context.Context, string, int, time.Duration) {}
func (NoopScanHooks) OnFileExtracted(context.Context, string, int, error)        {}
func (NoopScanHooks) OnConflictResolved(context.Context, string, string, bool)   {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopExecHooks is a no-op implementation of ExecHooks.
type NoopExecHooks struct{}

func (NoopExecHooks) OnCommandStart(context.Context, string, []string)                          {}
func (NoopExecHooks) OnCommandComplete(context.Context, string, []string, time.Duration, error) {}

var (
	scanHooks  ScanHooks  = NoopScanHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	execHooks  ExecHooks  = NoopExecHooks{}
	hooksMu    sync.RWMutex
)

// SetScanHooks registers custom scan hooks.
// This should be called once at application startup before any runs.
func SetScanHooks(h ScanHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		scanHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any runs.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetExecHooks registers custom exec hooks.
// This should be called once at application startup before any runs.
func SetExecHooks(h ExecHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		execHooks = h
	}
}

// Scan returns the registered scan hooks.
func Scan() ScanHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return scanHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Exec returns the registered exec hooks.
func Exec() ExecHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return execHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	scanHooks = NoopScanHooks{}
	cacheHooks = NoopCacheHooks{}
	execHooks = NoopExecHooks{}
}
