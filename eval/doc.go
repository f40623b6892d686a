// Package eval matches reconstructed silicon-tracker clusters to the simulated
// truth records that produced them.
//
// # Reading Guide
//
// Start with these files:
//   - types.go: Cluster, DetectorHit, TruthHit and TruthParticle records
//   - context.go: EventSource, the named per-event stores, and the per-event context
//   - cluster_eval.go: ClusterEval, the association queries and energy scoring
//
// # Architecture
//
// ClusterEval is long-lived; everything tied to one event (store handles, the
// per-layer spatial index, the memo tables) hangs off an eventContext that is
// replaced wholesale by NextEvent. Queries never see state from a previous event.
//
// Hit-level truth resolution is delegated to a TruthResolver. The in-memory
// implementation lives in eval/event, which also loads events from YAML.
// Prometheus counters live in eval/promstats; decision traces in eval/trace.
//
// # Ordering
//
// Result sets iterate in identifier order, so "first encountered" tie-breaks in
// the max and best selections are reproducible across runs.
package eval
