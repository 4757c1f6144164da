// Package metrics records snapshot and verification metrics.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics cost nothing when no registry is configured:
//
//	engine := verify.NewEngine(store, tables, verify.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// The daemon serves the registry through HTTPHandler on /metrics.
package metrics
