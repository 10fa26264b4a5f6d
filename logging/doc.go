// Package logging provides a minimal logging interface and adapters for restock.
//
// The Logger interface defines the leveled methods (Debug, Info, Warn, Error)
// that the scanner, policies, executor, orchestrator and chain engine use to
// report skippable problems and notable outcomes. Arguments after the message
// are slog style key/value pairs. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - StructuredLogger with component / cycle context and transfer helpers
//   - LogrAdapter for hosts that already standardise on go-logr
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	orch := engine.New(policy, func(o *engine.Options) { o.Logger = logger })
//
// Components never depend on a logger's return value and there is no
// package level logger.
package logging
