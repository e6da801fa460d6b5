// Package metrics provides observability hooks for the task store.
//
// Components receive a Recorder and default to NoopRecorder, so metrics can
// be switched on without nil checks anywhere else:
//
//	reg := prom.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	unsubscribe := store.Subscribe(metrics.Listener(rec, time.Now))
//
// There is no HTTP endpoint. WriteTextfile dumps a registry in the Prometheus
// text format for a node_exporter textfile collector.
package metrics
