// Package telemetry provides OpenTelemetry integration for distributed
// tracing and metrics on top of the scheduler's refresh loop. It enables:
//   - Distributed tracing with one span per Refresh call and one child span
//     per submitted task
//   - Prometheus metrics for refresh and task execution statistics, plus
//     live admission-control gauges (used slots, alive workers)
//   - A TelemetryObserver that can be registered with observer.Manager to
//     drive both from the scheduler's event stream
package telemetry
