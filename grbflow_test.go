package grbflow_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/grbflow"
	"github.com/aretw0/grbflow/internal/logging"
	"github.com/aretw0/grbflow/internal/testutils"
	"github.com/aretw0/grbflow/pkg/domain"
	"github.com/aretw0/grbflow/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const analysisConfig = `
workflow:
  name: GRB170817A
  start-time: 1187008582
  end-time: 1187008882
  tuning-injection-set: bnslininj
  ifo-snr-stats: [coherent, null]
workflow-ifos:
  H1:
  L1:
  V1:
injections-bnslininj:
executables:
  pygrb_grb_info_table: /opt/bin/pygrb_grb_info_table
  pygrb_plot_snr_timeseries: /opt/bin/pygrb_plot_snr_timeseries
  pygrb_plot_coh_ifosnr: /opt/bin/pygrb_plot_coh_ifosnr
  pygrb_plot_chisq_veto: /opt/bin/pygrb_plot_chisq_veto
  pygrb_plot_null_stats: /opt/bin/pygrb_plot_null_stats
  pygrb_plot_stats_distribution: /opt/bin/pygrb_plot_stats_distribution
  pygrb_page_tables: /opt/bin/pygrb_page_tables
  pygrb_plot_injs_results: /opt/bin/pygrb_plot_injs_results
  pygrb_efficiency: /opt/bin/pygrb_efficiency
`

func setup(t *testing.T, doc string) (string, grbflow.Request) {
	t.Helper()
	cfg := testutils.WriteConfig(t, doc)
	return filepath.Join(filepath.Dir(cfg), "out"), grbflow.Request{
		ConfigPath:     cfg,
		TriggerFile:    "/data/H1L1V1-TRIGGERS.h5",
		InjectionFiles: []string{"/data/H1L1V1-INJ_BNSLININJ.h5"},
	}
}

func TestBuild(t *testing.T) {
	out, req := setup(t, analysisConfig)

	b := grbflow.New(grbflow.WithOutputDir(out), grbflow.WithWorkers(4))
	res, err := b.Build(context.Background(), req)
	require.NoError(t, err)

	require.NoError(t, res.Workflow.Validate())
	assert.NotEmpty(t, res.RunID)
	assert.False(t, res.Degraded)
	assert.Equal(t, filepath.Join(out, "workflow", "dax", "GRB170817A.json"), res.DAXPath)

	for _, p := range []string{
		res.DAXPath,
		res.Workspace.InputMapPath(),
		res.Workspace.OutputMapPath(),
		res.Workspace.BookPath(),
		res.Workspace.MetricsPath(),
		filepath.Join(res.Workspace.Configuration, "analysis.yaml"),
		res.Workspace.Planning,
	} {
		_, err := os.Stat(p)
		assert.NoError(t, err, p)
	}

	terminal, ok := res.Workflow.Node(graph.TerminalID)
	require.True(t, ok)
	assert.Equal(t, "results_page", terminal.Template)
	assert.Equal(t, filepath.Join(out, "H1L1V1-RESULTS_PAGE-1187008582-300.html"), terminal.Outputs[0].Path)
	assert.Len(t, res.Workflow.Predecessors(graph.TerminalID), len(res.Workflow.Nodes)-1)

	// Executables are carried into the export.
	for _, n := range res.Workflow.Jobs() {
		assert.True(t, strings.HasPrefix(n.Executable, "/opt/bin/"), n.ID)
	}

	metrics, err := os.ReadFile(res.Workspace.MetricsPath())
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `grbflow_jobs_total{section="open_box",template="pygrb_page_tables"} 1`)
}

func TestBuild_OpenReport(t *testing.T) {
	out, req := setup(t, analysisConfig)

	res, err := grbflow.New(grbflow.WithOutputDir(out), grbflow.WithFormat(graph.FormatYAML)).Build(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, ".yaml", filepath.Ext(res.DAXPath))

	report, err := grbflow.OpenReport(out)
	require.NoError(t, err)
	assert.Equal(t, "GRB170817A", report.Title())
	assert.Equal(t, res.Pages, report.Pages())
	assert.Len(t, report.JobNodes(), len(res.Workflow.Jobs()))
}

func TestBuild_RebuildReplacesExport(t *testing.T) {
	out, req := setup(t, analysisConfig)

	first, err := grbflow.New(grbflow.WithOutputDir(out)).Build(context.Background(), req)
	require.NoError(t, err)
	second, err := grbflow.New(grbflow.WithOutputDir(out), grbflow.WithFormat(graph.FormatYAML)).Build(context.Background(), req)
	require.NoError(t, err)

	_, err = os.Stat(first.DAXPath)
	assert.True(t, os.IsNotExist(err), "stale export removed")

	found, err := grbflow.FindWorkflow(out)
	require.NoError(t, err)
	assert.Equal(t, second.DAXPath, found)
}

func TestBuild_LogMarker(t *testing.T) {
	out, req := setup(t, analysisConfig)

	ws := grbflow.NewWorkspace(out)
	require.NoError(t, ws.Create())
	var buf bytes.Buffer

	res, err := grbflow.New(
		grbflow.WithOutputDir(out),
		grbflow.WithLogFile(ws.LogPath()),
		grbflow.WithLogger(logging.NewWriter(&buf, logging.Level(false))),
	).Build(context.Background(), req)
	require.NoError(t, err)

	assert.Contains(t, res.Workflow.Predecessors(graph.TerminalID), grbflow.LogMarker)
	assert.Contains(t, res.Workflow.Predecessors(graph.TerminalID), grbflow.ConfigMarker)
	assert.Contains(t, buf.String(), "Workflow written.")
	assert.Contains(t, buf.String(), "run="+res.RunID)
}

func TestBuild_DegradedTuning(t *testing.T) {
	out, req := setup(t, strings.Replace(analysisConfig, "tuning-injection-set: bnslininj", "tuning-injection-set: bbhinj", 1))

	res, err := grbflow.New(grbflow.WithOutputDir(out)).Build(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.Degraded)

	for _, n := range res.Workflow.Jobs() {
		if n.Section == "signal_consistency/chi_squared" {
			assert.Empty(t, n.InjectionFile)
		}
	}
}

func TestBuild_AmbiguousInjectionSet(t *testing.T) {
	out, req := setup(t, analysisConfig)
	req.InjectionFiles = append(req.InjectionFiles, "/data/H1L1V1-INJ_BNSLININJ_OLD.h5")

	// The tuning overlay degrades, but the injection set itself requires
	// exactly one match, so the build fails.
	_, err := grbflow.New(grbflow.WithOutputDir(out)).Build(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrAmbiguousMatch)

	_, statErr := os.Stat(filepath.Join(out, "workflow", "dax"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestBuild_MissingExecutable(t *testing.T) {
	out, req := setup(t, strings.Replace(analysisConfig, "  pygrb_efficiency: /opt/bin/pygrb_efficiency\n", "", 1))

	_, err := grbflow.New(grbflow.WithOutputDir(out)).Build(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrUnknownTemplate)

	_, statErr := os.Stat(filepath.Join(out, "workflow"))
	assert.True(t, os.IsNotExist(statErr))
}
