// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about rewrite passes, plugin hooks, and HTTP requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, never by libraries, so instrumented packages
// do not import any backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPassHooks(&myPassHooks{})
//	    observability.SetServerHooks(&myServerHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pass().OnPassStart(ctx, passID, len(plugins))
//	// ... run plugins ...
//	observability.Pass().OnPassComplete(ctx, passID, frames, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pass Hooks
// =============================================================================

// PassHooks receives events from rewrite passes.
type PassHooks interface {
	// Pass events
	OnPassStart(ctx context.Context, passID string, plugins int)
	OnPassComplete(ctx context.Context, passID string, frames int, duration time.Duration, err error)

	// Plugin hook events; hook is "init", "spec-ready", or "render-complete".
	OnPluginStart(ctx context.Context, plugin, hook string)
	OnPluginComplete(ctx context.Context, plugin, hook string, duration time.Duration, err error)
}

// =============================================================================
// Server Hooks
// =============================================================================

// ServerHooks receives events from the HTTP server.
type ServerHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records a completed response.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPassHooks is a no-op implementation of PassHooks.
type NoopPassHooks struct{}

func (NoopPassHooks) OnPassStart(context.Context, string, int)                          {}
func (NoopPassHooks) OnPassComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPassHooks) OnPluginStart(context.Context, string, string)                     {}
func (NoopPassHooks) OnPluginComplete(context.Context, string, string, time.Duration, error) {
}

// NoopServerHooks is a no-op implementation of ServerHooks.
type NoopServerHooks struct{}

func (NoopServerHooks) OnRequest(context.Context, string, string)                     {}
func (NoopServerHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	passHooks   PassHooks   = NoopPassHooks{}
	serverHooks ServerHooks = NoopServerHooks{}
	hooksMu     sync.RWMutex
)

// SetPassHooks registers custom pass hooks.
// This should be called once at application startup before any pass runs.
func SetPassHooks(h PassHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		passHooks = h
	}
}

// SetServerHooks registers custom server hooks.
func SetServerHooks(h ServerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		serverHooks = h
	}
}

// Pass returns the registered pass hooks.
func Pass() PassHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return passHooks
}

// Server returns the registered server hooks.
func Server() ServerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return serverHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	passHooks = NoopPassHooks{}
	serverHooks = NoopServerHooks{}
}
