// Package telemetry wires history stores and their HTTP surface into
// Prometheus and OpenTelemetry.
//
// Metrics returns a history.Observer that counts operations and evictions:
//
//	m := telemetry.Metrics(telemetry.WithNamespace("myapp"))
//	h, _ := history.New("", history.WithObserver(m))
//
//	http.Handle("/metrics", promhttp.Handler())
//
// Tracing returns HTTP middleware that opens a span per request using the
// global OpenTelemetry tracer provider.
package telemetry
