package main

import (
	"fieldnorm/internal/config"
	"fieldnorm/internal/logger"
	"fieldnorm/internal/metrics"
	"fieldnorm/internal/metrics/datadog"
	"fieldnorm/internal/metrics/prompush"
)

// setupMetrics installs the configured metrics backend and returns a func
// that flushes it. Metrics failures are logged and never fail the run.
func setupMetrics(job config.Job, log logger.Logger) func() {
	name := job.Job
	if name == "" {
		name = config.DefaultJobName
	}

	var (
		b   metrics.Backend
		err error
	)
	switch job.Metrics.Backend {
	case "pushgateway":
		if job.Metrics.PushgatewayURL == "" {
			return func() {}
		}
		b, err = prompush.NewBackend(name, job.Metrics.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       job.Metrics.DogStatsDAddr,
			Namespace:  job.Metrics.Namespace,
			GlobalTags: []string{"job:" + name},
		})
	default:
		return func() {}
	}
	if err != nil {
		log.Warn("metrics disabled", "backend", job.Metrics.Backend, "err", err)
		return func() {}
	}

	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("flush metrics", "backend", job.Metrics.Backend, "err", err)
		}
	}
}
