// Package prometheus renders core metrics in Prometheus text exposition
// format without pulling in the Prometheus client library. Mount
// [Exporter.Handler] wherever the host application serves its metrics
// endpoint.
package prometheus
