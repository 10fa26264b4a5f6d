// Package core provides the foundational domain types and capability contracts
// used by restock. It defines the core abstractions for:
//
//   - Containers (slot based storage reachable through a fallible transport)
//   - Inventory snapshots (item identity -> total count and slot locations)
//   - Machine states and scheduling assignments
//   - Policies (pure functions from machine states + inventory to assignments)
//   - Static definitions (materials, machine types, recipes, stock targets, chains)
//   - The error taxonomy shared by every component
//
// The package intentionally keeps implementation concerns (transport, scanning,
// execution, orchestration) out of scope, exposing small interfaces so that
// simulated and real transports can be swapped without touching the engine.
package core
