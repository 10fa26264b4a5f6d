// Package container houses concrete implementations of the core.Container
// capability. The interface itself lives in core; keeping only
// implementations here prevents the engine packages from depending on a
// concrete transport.
//
// Network is an in-process simulation of the transport: a registry of named
// Chests that can be attached and detached, with moves resolved by target
// name. Safe wraps any Container so that a panicking transport surfaces as a
// core.ErrDisconnected error instead of crashing the caller.
package container
