// Package metrics exposes service counters on GET /metrics in Prometheus
// text exposition format: HTTP requests by path/code, pipeline runs by
// outcome, records processed, and rate-limit denials.
//
// The families are built directly as client_model protos and rendered with
// expfmt, so any Prometheus-compatible scraper can consume the endpoint.
package metrics
