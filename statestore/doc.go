// Package statestore houses implementations of core.StatusStore, the
// driver's "last known status" bookkeeping of machines.
//
// The engine never reads these stores; the runner writes the scanned machine
// states after every cycle so that dashboards and later runs can see them.
// InMemoryStore suits tests and demos. SQLStore persists to SQLite
// (modernc.org/sqlite) or PostgreSQL (pgx), chosen from the DSN.
package statestore
