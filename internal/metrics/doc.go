// Package metrics aggregates per-worker timing inside a benchmark trial.
//
// A trial's elapsed time only says when the last worker finished. The
// [Collector] records when every worker finished, relative to the start of
// the trial, so the report can show how evenly the scheduler spread the
// workload:
//
//	collector := metrics.NewCollector()
//	for _, offset := range finishOffsets {
//		collector.RecordWorker(offset)
//	}
//	stats := collector.Stats()
//
// # Statistics
//
// [WorkerStats] carries min, mean, P50, P90, P99 and max completion offsets in
// milliseconds, plus the spread between the first and last worker. A wide
// spread under the Mutex strategy usually means lock handoff starved some
// workers; under NonAtomic it shows cache-line ping-pong.
//
// # Thread Safety
//
// RecordWorker may be called from multiple goroutines. The runner records
// offsets after the barrier, so the histogram lock never sits inside a
// measured section.
package metrics
