package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/grbflow/internal/metrics"
	"github.com/aretw0/grbflow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := metrics.New()

	r.JobCreated(&domain.JobNode{Template: "pygrb_page_tables", Section: "open_box", Outputs: make([]domain.Artifact, 2)})
	r.JobCreated(&domain.JobNode{Template: "pygrb_plot_chisq_veto", Section: "signal_consistency/chi_squared", Outputs: make([]domain.Artifact, 1)})
	r.DegradedMatch("bnslininj")
	r.SetPages(3)

	count, err := testutil.GatherAndCount(r.Registry(), "grbflow_jobs_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, r.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "grbflow_artifacts_total 3")
	assert.Contains(t, string(data), `grbflow_degraded_matches_total{set="bnslininj"} 1`)
	assert.Contains(t, string(data), "grbflow_report_pages 3")
}

func TestRecorder_Handler(t *testing.T) {
	r := metrics.New()
	r.SetPages(1)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "grbflow_report_pages 1")
}
