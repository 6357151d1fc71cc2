package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/grbflow/pkg/graph"
	"github.com/aretw0/grbflow/pkg/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReport struct {
	root  string
	pages []layout.Page
	wf    *graph.Workflow
}

func (f *fakeReport) Title() string             { return "GRB" }
func (f *fakeReport) Root() string              { return f.root }
func (f *fakeReport) Pages() []layout.Page      { return f.pages }
func (f *fakeReport) Workflow() *graph.Workflow { return f.wf }

func newReport(t *testing.T) *fakeReport {
	t.Helper()
	root := t.TempDir()
	for _, dir := range []string{"1._summary", "7._open_box"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "1._summary", "info.html"), []byte("info"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "7._open_box", "onsource.html"), []byte("secret"), 0o644))

	return &fakeReport{
		root: root,
		pages: []layout.Page{
			{Section: "summary", Title: "Summary", Groups: [][]string{{"info.html"}}},
			{Section: "signal_consistency/timeseries", Title: "Timeseries"},
			{Section: "open_box", Title: "Open Box", Groups: [][]string{{"onsource.html"}}},
		},
		wf: &graph.Workflow{
			Name: "GRB",
			Nodes: []graph.Node{
				{ID: "00001-pygrb_grb_info_table", Kind: graph.KindJob, Section: "summary"},
				{ID: "00002-pygrb_page_tables", Kind: graph.KindJob, Section: "open_box", Tags: []string{"onsource"}},
				{ID: graph.TerminalID, Kind: graph.KindTerminal},
			},
			Edges: []graph.Edge{
				{From: "00001-pygrb_grb_info_table", To: graph.TerminalID},
				{From: "00002-pygrb_page_tables", To: graph.TerminalID},
			},
		},
	}
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestPages_Blinded(t *testing.T) {
	h := NewHandler(newReport(t))

	rec := get(t, h, "/pages")
	require.Equal(t, http.StatusOK, rec.Code)

	var pages []layout.Page
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pages))
	require.Len(t, pages, 2)
	assert.Equal(t, "summary", pages[0].Section)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/pages/open_box").Code)
	assert.Equal(t, http.StatusForbidden, get(t, h, "/files/7._open_box/onsource.html").Code)
	assert.NotContains(t, get(t, h, "/").Body.String(), "Open Box")
}

func TestPages_Unblinded(t *testing.T) {
	h := NewHandler(newReport(t), WithUnblind(true))

	rec := get(t, h, "/pages/open_box")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "onsource.html")

	rec = get(t, h, "/files/7._open_box/onsource.html")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "secret", rec.Body.String())
}

func TestPage_NestedSection(t *testing.T) {
	h := NewHandler(newReport(t))

	rec := get(t, h, "/pages/signal_consistency/timeseries")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Timeseries")
}

func TestFilesAndWorkflow(t *testing.T) {
	h := NewHandler(newReport(t))

	rec := get(t, h, "/files/1._summary/info.html")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "info", rec.Body.String())

	rec = get(t, h, "/workflow")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"final-report"`)

	assert.Equal(t, http.StatusOK, get(t, h, "/healthz").Code)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/metrics").Code)
}

func TestMetricsMount(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("grbflow_report_pages 3\n"))
	})
	h := NewHandler(newReport(t), WithMetrics(metrics))

	rec := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "grbflow_report_pages")
}

func TestFiles_EncodedOpenBoxPathIsBlinded(t *testing.T) {
	h := NewHandler(newReport(t))

	for _, path := range []string{
		"/files/7._open_box/onsource.html",
		"/files/7._open%5Fbox/onsource.html",
		"/files/7.%5Fopen_box/onsource.html",
		"/files/1._summary/../7._open_box/onsource.html",
		"/files/1._summary/..%2F7._open_box/onsource.html",
	} {
		rec := get(t, h, path)
		assert.NotEqual(t, http.StatusOK, rec.Code, path)
		assert.NotContains(t, rec.Body.String(), "secret", path)
	}
}

func TestWorkflow_Blinded(t *testing.T) {
	decode := func(rec *httptest.ResponseRecorder) graph.Workflow {
		t.Helper()
		require.Equal(t, http.StatusOK, rec.Code)
		var wf graph.Workflow
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &wf))
		return wf
	}

	wf := decode(get(t, NewHandler(newReport(t)), "/workflow"))
	require.Len(t, wf.Nodes, 2)
	for _, n := range wf.Nodes {
		assert.NotEqual(t, "open_box", n.Section)
	}
	assert.Equal(t, []graph.Edge{{From: "00001-pygrb_grb_info_table", To: graph.TerminalID}}, wf.Edges)

	wf = decode(get(t, NewHandler(newReport(t), WithUnblind(true)), "/workflow"))
	assert.Len(t, wf.Nodes, 3)
	assert.Len(t, wf.Edges, 2)
}
