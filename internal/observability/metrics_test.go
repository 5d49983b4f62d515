// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package observability

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordRequest("downloading product", 200)
	m.RecordRequest("downloading product", 200)
	m.RecordRequest("searching", 0)
	m.RecordDownload("product", "success")
	m.AddBytes("product", 1024)
	m.AddBytes("product", 0)
	m.RecordTokenRenewal("ok")
	m.RecordStagingWait()

	assert.InDelta(t, 2, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("downloading product", "200")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("searching", "error")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.DownloadsTotal.WithLabelValues("product", "success")), 0)
	assert.InDelta(t, 1024, testutil.ToFloat64(m.DownloadedBytes.WithLabelValues("product")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.TokenRenewals.WithLabelValues("ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.StagingWaits), 0)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordRequest("x", 200)
		m.RecordDownload("product", "success")
		m.AddBytes("product", 10)
		m.RecordTokenRenewal("ok")
		m.RecordStagingWait()
	})
}

func TestRecorder_WriteTextfile(t *testing.T) {
	rec := NewRecorder()
	rec.Metrics().RecordDownload("quicklook", "success")

	path := filepath.Join(t.TempDir(), "resto.prom")
	require.NoError(t, rec.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "# HELP resto_downloads_total")
	assert.Contains(t, out, `resto_downloads_total{kind="quicklook",outcome="success"} 1`)
}

func TestRecorder_WriteTextfileBadPath(t *testing.T) {
	rec := NewRecorder()

	err := rec.WriteTextfile(filepath.Join(t.TempDir(), "missing", "resto.prom"))
	require.Error(t, err)
}
