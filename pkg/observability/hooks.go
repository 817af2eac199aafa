// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about save passes, sink writes, and HTTP trigger requests.
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
//	    observability.SetSaveHooks(&mySaveHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Save().OnSaveStart(ctx, location)
//	// ... assemble and write ...
//	observability.Save().OnSaveComplete(ctx, location, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Save Hooks
// =============================================================================

// SaveHooks receives events from save passes.
type SaveHooks interface {
	// OnSaveStart is called before the scene is read.
	OnSaveStart(ctx context.Context, location string)

	// OnLevelAssembled is called once per level after its references were
	// rewritten.
	OnLevelAssembled(ctx context.Context, level string, vertices, dependents int)

	// OnSaveComplete is called when the pass ends, successfully or not.
	OnSaveComplete(ctx context.Context, location string, duration time.Duration, err error)

	// OnRequestSuperseded is called when a pending save request is replaced
	// by a newer one before a pass picked it up.
	OnRequestSuperseded(ctx context.Context, location string)
}

// =============================================================================
// Sink Hooks
// =============================================================================

// SinkHooks receives events from persistence sinks.
type SinkHooks interface {
	// OnWrite records a completed write attempt.
	OnWrite(ctx context.Context, scheme string, size int, duration time.Duration, err error)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP trigger server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records the response status.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopSaveHooks is a no-op implementation of SaveHooks.
type NoopSaveHooks struct{}

func (NoopSaveHooks) OnSaveStart(context.Context, string)                           {}
func (NoopSaveHooks) OnLevelAssembled(context.Context, string, int, int)            {}
func (NoopSaveHooks) OnSaveComplete(context.Context, string, time.Duration, error) {}
func (NoopSaveHooks) OnRequestSuperseded(context.Context, string)                   {}

// NoopSinkHooks is a no-op implementation of SinkHooks.
type NoopSinkHooks struct{}

func (NoopSinkHooks) OnWrite(context.Context, string, int, time.Duration, error) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                       {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	saveHooks SaveHooks = NoopSaveHooks{}
	sinkHooks SinkHooks = NoopSinkHooks{}
	httpHooks HTTPHooks = NoopHTTPHooks{}
	hooksMu   sync.RWMutex
)

// SetSaveHooks registers custom save hooks.
// This should be called once at application startup before any save pass.
func SetSaveHooks(h SaveHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		saveHooks = h
	}
}

// SetSinkHooks registers custom sink hooks.
func SetSinkHooks(h SinkHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		sinkHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Save returns the registered save hooks.
func Save() SaveHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return saveHooks
}

// Sink returns the registered sink hooks.
func Sink() SinkHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return sinkHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	saveHooks = NoopSaveHooks{}
	sinkHooks = NoopSinkHooks{}
	httpHooks = NoopHTTPHooks{}
}
