package workflow_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/grbflow/internal/analysis"
	"github.com/aretw0/grbflow/internal/config"
	"github.com/aretw0/grbflow/internal/testutils"
	"github.com/aretw0/grbflow/internal/workflow"
	"github.com/aretw0/grbflow/pkg/domain"
	"github.com/aretw0/grbflow/pkg/graph"
	"github.com/aretw0/grbflow/pkg/layout"
	"github.com/aretw0/grbflow/pkg/registry"
	"github.com/aretw0/grbflow/pkg/sections"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullConfig = `
workflow:
  start-time: 1000
  end-time: 1100
  tuning-injection-set: bnslininj
workflow-ifos:
  h1:
  l1:
injections-bnslininj:
injections-nsbhlininj:
`

var injectionFiles = []string{
	"/inj/H1L1-INJ_BNSLININJ-1000-100.h5",
	"/inj/H1L1-INJ_NSBHLININJ-1000-100.h5",
}

type env struct {
	base   string
	tree   *sections.Tree
	graph  *graph.Graph
	book   *layout.Book
	driver *workflow.Driver
	sets   []domain.InjectionSet
}

func newEnv(t *testing.T, doc string, opts ...workflow.Option) *env {
	t.Helper()

	store, err := config.Parse([]byte(doc))
	require.NoError(t, err)
	settings, err := config.LoadSettings(store)
	require.NoError(t, err)

	actx, err := analysis.New(store, settings, analysis.Inputs{
		TriggerFile:    "/trig/H1L1-TRIGGERS-1000-100.h5",
		InjectionFiles: injectionFiles,
	}, nil)
	require.NoError(t, err)
	sets, err := analysis.InjectionSets(store, injectionFiles)
	require.NoError(t, err)

	reg := testutils.DefaultRegistry(t)

	base := t.TempDir()
	tree := sections.New(base)
	require.NoError(t, workflow.DeclareSections(tree, sets))

	opts = append([]workflow.Option{workflow.WithInjectionSets(sets)}, opts...)
	return &env{
		base:   base,
		tree:   tree,
		graph:  graph.New("test"),
		book:   layout.NewBook(nil),
		driver: workflow.New(actx, settings, reg, opts...),
		sets:   sets,
	}
}

func (e *env) run(t *testing.T) {
	t.Helper()
	require.NoError(t, e.driver.Run(context.Background(), e.tree, e.graph, e.book))
}

func countBy(nodes []*domain.JobNode, template string) []*domain.JobNode {
	var out []*domain.JobNode
	for _, n := range nodes {
		if n.Template == template {
			out = append(out, n)
		}
	}
	return out
}

func TestRun_PerDetectorScenario(t *testing.T) {
	e := newEnv(t, `
workflow:
  start-time: 1000
  end-time: 1100
  ifo-snr-stats: coherent null
  timeseries: coherent
workflow-ifos:
  H1:
  L1:
`)
	e.run(t)
	nodes := e.graph.Nodes()

	coh := countBy(nodes, registry.CohIFOSNR)
	require.Len(t, coh, 4)
	for _, n := range coh {
		require.Len(t, n.Tags, 1)
		assert.Contains(t, []string{"coherent", "null"}, n.Tags[0])
		assert.Contains(t, []string{"H1", "L1"}, n.Detector)
		assert.Empty(t, n.InjectionFile)
		assert.True(t, strings.HasPrefix(filepath.Base(n.Primary().Path), n.Detector+"-"))
	}

	ts := countBy(nodes, registry.SNRTimeseries)
	require.Len(t, ts, 1)
	assert.Empty(t, ts[0].Detector)
	assert.Empty(t, ts[0].Tags)
	assert.Equal(t, "H1L1-PYGRB_PLOT_SNR_TIMESERIES-1000-100.png", filepath.Base(ts[0].Primary().Path))

	assert.Empty(t, countBy(nodes, registry.Efficiency), "no injection sets configured")
}

func TestRun_FullCounts(t *testing.T) {
	e := newEnv(t, fullConfig)
	e.run(t)
	nodes := e.graph.Nodes()

	expected := map[string]int{
		registry.InfoTable:         1,
		registry.SNRTimeseries:     10, // (coherent + 2 single + reweighted + null) x 2 overlays
		registry.CohIFOSNR:         4,
		registry.ChisqVeto:         12,
		registry.NullStats:         12,
		registry.StatsDistribution: 2,
		registry.PageTables:        4, // offsource, 2 injection tables, onsource
		registry.InjsResults:       8,
		registry.Efficiency:        2,
	}
	total := 0
	for template, n := range expected {
		assert.Len(t, countBy(nodes, template), n, template)
		total += n
	}
	assert.Len(t, nodes, total)
}

func TestRun_TagSetsUniquePerDirectory(t *testing.T) {
	e := newEnv(t, fullConfig)
	e.run(t)

	seen := make(map[string]string)
	paths := make(map[string]bool)
	for _, n := range e.graph.Nodes() {
		ifos := n.Detector
		if ifos == "" {
			ifos = "H1L1"
		}
		key := strings.Join([]string{n.Template, n.Directory, ifos, strings.Join(n.Tags, "_")}, "|")
		_, dup := seen[key]
		assert.False(t, dup, "duplicate identity %s", key)
		seen[key] = n.ID

		for _, out := range n.Outputs {
			assert.False(t, paths[out.Path], "duplicate output %s", out.Path)
			paths[out.Path] = true
		}
	}
}

func TestRun_OverlayTags(t *testing.T) {
	e := newEnv(t, fullConfig)
	e.run(t)

	var with, without int
	for _, n := range countBy(e.graph.Nodes(), registry.ChisqVeto) {
		if n.InjectionFile == "" {
			without++
			assert.NotContains(t, n.Tags, "BNSLININJ")
			continue
		}
		with++
		assert.Equal(t, injectionFiles[0], n.InjectionFile)
		assert.Equal(t, "BNSLININJ", n.Tags[len(n.Tags)-1])
	}
	assert.Equal(t, 6, with)
	assert.Equal(t, 6, without)

	for _, n := range countBy(e.graph.Nodes(), registry.StatsDistribution) {
		assert.Empty(t, n.InjectionFile)
	}
}

func TestRun_ParallelMatchesSequential(t *testing.T) {
	type row struct {
		ID, Template, Tags string
		Outputs           []string
	}
	snapshot := func(e *env) ([]row, []string) {
		var rows []row
		for _, n := range e.graph.Nodes() {
			r := row{ID: n.ID, Template: n.Template, Tags: strings.Join(n.Tags, ",")}
			for _, o := range n.Outputs {
				rel, err := filepath.Rel(e.base, o.Path)
				require.NoError(t, err)
				r.Outputs = append(r.Outputs, rel)
			}
			rows = append(rows, r)
		}
		var pages []string
		for _, p := range e.book.Pages() {
			pages = append(pages, p.Section+":"+strings.Join(p.Files(), ","))
		}
		return rows, pages
	}

	seq := newEnv(t, fullConfig, workflow.WithWorkers(1))
	seq.run(t)
	par := newEnv(t, fullConfig, workflow.WithWorkers(8))
	par.run(t)

	seqRows, seqPages := snapshot(seq)
	parRows, parPages := snapshot(par)
	assert.Equal(t, seqRows, parRows)
	assert.Equal(t, seqPages, parPages)
}

func TestRun_DataFlowEdges(t *testing.T) {
	e := newEnv(t, fullConfig)
	e.run(t)

	wf, err := e.graph.Finalize()
	require.NoError(t, err)
	require.NoError(t, wf.Validate())

	var offsource string
	for _, n := range wf.Jobs() {
		if n.Section == workflow.SectionLoudestOffsource {
			offsource = n.ID
		}
	}
	require.NotEmpty(t, offsource)

	succ := wf.Successors(offsource)
	var consumers int
	for _, id := range succ {
		n, ok := wf.Node(id)
		require.True(t, ok)
		if n.Kind == graph.KindJob {
			consumers++
			assert.Contains(t, []string{workflow.SectionExclusionDistances, workflow.SectionOpenBox}, n.Section)
		}
	}
	assert.Equal(t, 3, consumers)
}

func TestRun_Pages(t *testing.T) {
	e := newEnv(t, fullConfig)
	e.run(t)

	pages := e.book.Pages()
	require.NotEmpty(t, pages)
	assert.Equal(t, workflow.SectionSummary, pages[0].Section)
	assert.Equal(t, workflow.SectionOpenBox, pages[len(pages)-1].Section)

	for _, p := range pages {
		if p.Section != workflow.SectionIndividualIFOs {
			continue
		}
		require.Len(t, p.Groups, 2)
		assert.Len(t, p.Groups[0], 2)
		_, err := os.Stat(filepath.Join(p.Directory, layout.PageFile))
		assert.NoError(t, err)
	}
}

func TestRun_OpenBoxRestricted(t *testing.T) {
	e := newEnv(t, fullConfig)
	e.run(t)

	dir, ok := e.tree.Lookup(workflow.SectionOpenBox)
	require.True(t, ok)
	info, err := os.Stat(dir.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(workflow.OpenBoxMode), info.Mode().Perm())
}

func TestRun_UnmappedValueCreatesNothing(t *testing.T) {
	e := newEnv(t, `
workflow:
  start-time: 1000
  end-time: 1100
  null-snr-stats: null bogus
workflow-ifos:
  H1:
`)
	err := e.driver.Run(context.Background(), e.tree, e.graph, e.book)
	assert.ErrorIs(t, err, domain.ErrMissingMapping)

	entries, err := os.ReadDir(e.base)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Zero(t, e.graph.Len())
}

func TestRun_RepeatedDimensionValueCreatesNothing(t *testing.T) {
	for name, option := range map[string]string{
		"zoom": "zoom-variants: zoomin zoomin",
		"axes": "found-missed-axes: mchirp:distance mchirp:distance",
	} {
		t.Run(name, func(t *testing.T) {
			e := newEnv(t, `
workflow:
  start-time: 1000
  end-time: 1100
  `+option+`
workflow-ifos:
  H1:
  L1:
injections-bnslininj:
`)
			err := e.driver.Run(context.Background(), e.tree, e.graph, e.book)
			assert.ErrorIs(t, err, domain.ErrConfig)
			assert.ErrorContains(t, err, "twice")

			entries, err := os.ReadDir(e.base)
			require.NoError(t, err)
			assert.Empty(t, entries)
			assert.Zero(t, e.graph.Len())
		})
	}
}

type recordingObserver struct {
	ids []string
}

func (r *recordingObserver) JobCreated(n *domain.JobNode) {
	r.ids = append(r.ids, n.ID)
}

func TestRun_ObserverSeesCommittedJobs(t *testing.T) {
	obs := &recordingObserver{}
	e := newEnv(t, fullConfig, workflow.WithObserver(obs), workflow.WithWorkers(4))
	e.run(t)

	var want []string
	for _, n := range e.graph.Nodes() {
		want = append(want, n.ID)
	}
	require.NotEmpty(t, want)
	assert.Equal(t, want, obs.ids)
	assert.NotContains(t, obs.ids, "")
}

func TestRun_UnknownSectionCreatesNothing(t *testing.T) {
	e := newEnv(t, fullConfig)

	// A tree declared without the injection sets the driver iterates.
	tree := sections.New(e.base)
	require.NoError(t, workflow.DeclareSections(tree, nil))

	err := e.driver.Run(context.Background(), tree, e.graph, e.book)
	assert.ErrorIs(t, err, domain.ErrUnknownSection)

	entries, err := os.ReadDir(e.base)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_UnknownTemplate(t *testing.T) {
	store, err := config.Parse([]byte(fullConfig))
	require.NoError(t, err)
	settings, err := config.LoadSettings(store)
	require.NoError(t, err)
	actx, err := analysis.New(store, settings, analysis.Inputs{TriggerFile: "t.h5"}, nil)
	require.NoError(t, err)

	tree := sections.New(t.TempDir())
	require.NoError(t, workflow.DeclareSections(tree, nil))

	d := workflow.New(actx, settings, registry.NewRegistry())
	err = d.Run(context.Background(), tree, graph.New("test"), layout.NewBook(nil))
	assert.ErrorIs(t, err, domain.ErrUnknownTemplate)
}

func TestDeclareSections_Numbering(t *testing.T) {
	tree := sections.New("/out")
	require.NoError(t, workflow.DeclareSections(tree, []domain.InjectionSet{{Name: "bnslininj"}}))

	dir, ok := tree.Lookup(workflow.SectionChiSquared)
	require.True(t, ok)
	assert.Equal(t, filepath.Join("/out", "2._signal_consistency", "2.03_chi_squared"), dir.Path)

	dir, ok = tree.Lookup(workflow.InjectionSection("bnslininj"))
	require.True(t, ok)
	assert.Equal(t, filepath.Join("/out", "5._injections", "5.01_bnslininj"), dir.Path)
	assert.Equal(t, "BNSLININJ", dir.Title)
}
