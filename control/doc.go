// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration snapshot, run counters, debug probes and the final run
// summary of stress-lb.
//
// Provides concurrent-safe state handling primitives including:
//   - Snapshot reads of the effective configuration
//   - Counters published by the orchestrator
//   - Debug hooks and probe registration
//   - JSON encoding of the run summary
package control
