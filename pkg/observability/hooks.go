// Package observability provides hooks for metrics and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register hooks
// at startup to receive events about editing, autosave and export.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// [Metrics] is the Prometheus implementation of every hook interface; the
// HTTP service registers it and exposes /metrics.
//
// # Usage
//
// Register hooks at application startup:
//
//	m := observability.NewMetrics(prometheus.DefaultRegisterer)
//	observability.SetEditorHooks(m)
//	observability.SetStorageHooks(m)
//	observability.SetExportHooks(m)
//
// Libraries call hooks to emit events:
//
//	observability.Editor().OnCommit("add", len(elements))
//	observability.Export().OnExportComplete(ctx, len(png), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Editor Hooks
// =============================================================================

// EditorHooks receives events from an editing session. The session runs on a
// single logical thread and has no request context, so these hooks take none.
type EditorHooks interface {
	// OnCommit records a history commit. op names the mutation.
	OnCommit(op string, elements int)

	// OnUndo records an undo request and whether it changed anything.
	OnUndo(applied bool)

	// OnImport records a project import attempt.
	OnImport(err error)
}

// =============================================================================
// Storage Hooks
// =============================================================================

// StorageHooks receives events from autosave and the storage backends.
type StorageHooks interface {
	// OnSave records an autosave write.
	OnSave(ctx context.Context, backend string, size int, duration time.Duration, err error)

	// OnLoad records a read of the autosave key.
	OnLoad(ctx context.Context, backend string, found bool, err error)
}

// =============================================================================
// Export Hooks
// =============================================================================

// ExportHooks receives events from the raster export bridge.
type ExportHooks interface {
	OnExportStart(ctx context.Context, pixelRatio float64)
	OnExportComplete(ctx context.Context, size int, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEditorHooks is a no-op implementation of EditorHooks.
type NoopEditorHooks struct{}

func (NoopEditorHooks) OnCommit(string, int) {}
func (NoopEditorHooks) OnUndo(bool)          {}
func (NoopEditorHooks) OnImport(error)       {}

// NoopStorageHooks is a no-op implementation of StorageHooks.
type NoopStorageHooks struct{}

func (NoopStorageHooks) OnSave(context.Context, string, int, time.Duration, error) {}
func (NoopStorageHooks) OnLoad(context.Context, string, bool, error)               {}

// NoopExportHooks is a no-op implementation of ExportHooks.
type NoopExportHooks struct{}

func (NoopExportHooks) OnExportStart(context.Context, float64)                         {}
func (NoopExportHooks) OnExportComplete(context.Context, int, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	editorHooks  EditorHooks  = NoopEditorHooks{}
	storageHooks StorageHooks = NoopStorageHooks{}
	exportHooks  ExportHooks  = NoopExportHooks{}
	hooksMu      sync.RWMutex
)

// SetEditorHooks registers custom editor hooks.
// This should be called once at application startup before any session is created.
func SetEditorHooks(h EditorHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		editorHooks = h
	}
}

// SetStorageHooks registers custom storage hooks.
// This should be called once at application startup before autosave starts.
func SetStorageHooks(h StorageHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storageHooks = h
	}
}

// SetExportHooks registers custom export hooks.
// This should be called once at application startup before any export.
func SetExportHooks(h ExportHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		exportHooks = h
	}
}

// Editor returns the registered editor hooks.
func Editor() EditorHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return editorHooks
}

// Storage returns the registered storage hooks.
func Storage() StorageHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storageHooks
}

// Export returns the registered export hooks.
func Export() ExportHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return exportHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	editorHooks = NoopEditorHooks{}
	storageHooks = NoopStorageHooks{}
	exportHooks = NoopExportHooks{}
}
