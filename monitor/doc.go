// Package monitor is a lightweight telemetry pipeline for generation
// requests: it records per-request latency into a bounded in-memory ring,
// computes rolling statistics (mean, 95th percentile, fixed histogram) on
// demand, and raises threshold-based alerts through an alert sink.
package monitor
