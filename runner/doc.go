// Package runner drives restock on a fixed interval.
//
// One tick is:
//   - the chain phase, when a chain engine and processing container are
//     configured, feeding the processing container from the source;
//   - one distribution cycle of the orchestrator, reusing the source view the
//     chain left behind instead of scanning again;
//   - persisting every machine state to the status store.
//
// The container set is re-read from the network every tick, so machines
// attached or detached between ticks are picked up without a restart.
package runner
