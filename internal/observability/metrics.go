// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package observability provides Prometheus metrics for client runs.
//
// A CLI run has no scrape endpoint, so the registry is flushed to a file in
// the node-exporter textfile collector format when the run ends.
package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/samber/oops"
)

// Metrics contains custom Prometheus metrics for the resto client.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	DownloadsTotal  *prometheus.CounterVec
	DownloadedBytes *prometheus.CounterVec
	TokenRenewals   *prometheus.CounterVec
	StagingWaits    prometheus.Counter
}

// NewMetrics creates and registers custom resto metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resto_requests_total",
				Help: "Total number of HTTP requests by action and status",
			},
			[]string{"action", "status"},
		),
		DownloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resto_downloads_total",
				Help: "Total number of download attempts by file kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		DownloadedBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resto_downloaded_bytes_total",
				Help: "Total number of bytes written to disk by file kind",
			},
			[]string{"kind"},
		),
		TokenRenewals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resto_token_renewals_total",
				Help: "Total number of token renewals by result",
			},
			[]string{"result"},
		),
		StagingWaits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "resto_staging_waits_total",
				Help: "Total number of waits for a product to come out of tape storage",
			},
		),
	}

	reg.MustRegister(m.RequestsTotal)
	reg.MustRegister(m.DownloadsTotal)
	reg.MustRegister(m.DownloadedBytes)
	reg.MustRegister(m.TokenRenewals)
	reg.MustRegister(m.StagingWaits)

	return m
}

// RecordRequest counts one HTTP exchange. A zero status means the request
// never got a response.
func (m *Metrics) RecordRequest(action string, status int) {
	if m == nil {
		return
	}
	label := "error"
	if status != 0 {
		label = strconv.Itoa(status)
	}
	m.RequestsTotal.WithLabelValues(action, label).Inc()
}

// RecordDownload counts one download attempt outcome.
func (m *Metrics) RecordDownload(kind, outcome string) {
	if m == nil {
		return
	}
	m.DownloadsTotal.WithLabelValues(kind, outcome).Inc()
}

// AddBytes adds n written bytes for kind.
func (m *Metrics) AddBytes(kind string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.DownloadedBytes.WithLabelValues(kind).Add(float64(n))
}

// RecordTokenRenewal counts one token renewal by result ("ok" or "denied").
func (m *Metrics) RecordTokenRenewal(result string) {
	if m == nil {
		return
	}
	m.TokenRenewals.WithLabelValues(result).Inc()
}

// RecordStagingWait counts one staging wait.
func (m *Metrics) RecordStagingWait() {
	if m == nil {
		return
	}
	m.StagingWaits.Inc()
}

// Recorder owns a private registry and the metrics registered on it.
type Recorder struct {
	registry *prometheus.Registry
	metrics  *Metrics
}

// NewRecorder creates a registry with build info and the resto metrics.
func NewRecorder() *Recorder {
	// Create a new registry to avoid polluting the global one
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewBuildInfoCollector())

	return &Recorder{
		registry: registry,
		metrics:  NewMetrics(registry),
	}
}

// Metrics returns the custom metrics for recording client events.
func (r *Recorder) Metrics() *Metrics {
	return r.metrics
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes the registry to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return oops.Code("METRICS_WRITE_FAILED").With("path", path).Wrap(err)
	}
	return nil
}
