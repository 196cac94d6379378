// Package coordinator drives a release end to end: it validates the
// requested services, plans deployment batches for the chosen strategy,
// executes the batches through the deployment executor, aggregates the
// per-service outcomes into an overall health judgment, rolls back on
// failure when requested and records the release in the registry.
//
// Batches execute strictly in sequence; services inside one batch execute
// concurrently with a bounded fan-out. A batch is always awaited in full
// before its outcome is decided (fail-complete), so no deployment task is
// ever left running unobserved across a batch boundary.
//
// Each CoordinateRelease call owns its concurrency scope and its release
// record; the Coordinator itself is stateless and safe for concurrent use
// across different releases.
package coordinator
