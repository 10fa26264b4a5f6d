// Package engine implements the distribution cycle of restock.
//
// The Orchestrator ties the machine scanner, an inventory snapshot of the
// source container, a scheduling policy and the transfer executor into one
// cycle:
//
//	scan machines ─▶ snapshot source ─▶ policy.Schedule ─▶ execute each assignment
//
// # Cycle semantics
//
//   - When no machine is empty the cycle stops after the scan; the source is
//     not read and the policy is not consulted.
//   - A snapshot handed in through Request.Inventory replaces the source
//     scan, so a driver can reuse one scan across sub-systems in a tick.
//   - Assignments run strictly one after another. Each one re-verifies the
//     live source slot, because the scheduling-time snapshot may have drifted.
//   - A failed assignment never aborts the batch.
//
// # Callbacks
//
// The CallbackManager fires BeforeCycle, AfterTransfer, TransferFailed and
// AfterCycle. Callback errors are logged and otherwise ignored. The metrics
// package provides callbacks feeding Prometheus collectors.
//
// # Usage
//
//	p := policy.NewWeighted(materials, types, func(o *policy.Options) { o.Seed = 42 })
//	o := engine.New(p, func(o *engine.Options) {
//	    o.Presence = network
//	    o.Logger = logger
//	})
//
//	res, err := o.Run(ctx, engine.Request{
//	    Machines:   machines,
//	    Containers: network.Containers(),
//	    Source:     store,
//	})
package engine
