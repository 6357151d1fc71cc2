package grbflow

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/grbflow/internal/analysis"
	"github.com/aretw0/grbflow/internal/config"
	"github.com/aretw0/grbflow/internal/metrics"
	"github.com/aretw0/grbflow/internal/workflow"
	"github.com/aretw0/grbflow/pkg/domain"
	"github.com/aretw0/grbflow/pkg/graph"
	"github.com/aretw0/grbflow/pkg/jobs"
	"github.com/aretw0/grbflow/pkg/layout"
	"github.com/aretw0/grbflow/pkg/registry"
	"github.com/aretw0/grbflow/pkg/sections"
	"github.com/google/uuid"
)

// Marker IDs wired into the terminal node.
const (
	ConfigMarker = "configuration"
	LogMarker    = "log"
)

// Request names the inputs of one build.
type Request struct {
	ConfigPath     string
	TriggerFile    string
	InjectionFiles []string
}

// Result describes a completed build.
type Result struct {
	RunID     string
	Workflow  *graph.Workflow
	Pages     []layout.Page
	Workspace Workspace
	DAXPath   string
	Degraded  bool
}

// Builder is the high-level entry point: it loads the configuration, runs the
// enumeration and exports the workflow.
type Builder struct {
	outputDir string
	workers   int
	format    graph.Format
	logFile   string
	templates []registry.Template
	recorder  *metrics.Recorder
	logger    *slog.Logger
}

// Option defines a functional option for configuring the Builder.
type Option func(*Builder)

// WithOutputDir sets the report root (default ".").
func WithOutputDir(dir string) Option {
	return func(b *Builder) {
		b.outputDir = dir
	}
}

// WithWorkers bounds the number of report stages built concurrently.
func WithWorkers(n int) Option {
	return func(b *Builder) {
		b.workers = n
	}
}

// WithFormat sets the export format of the workflow (default JSON).
func WithFormat(f graph.Format) Option {
	return func(b *Builder) {
		b.format = f
	}
}

// WithLogFile registers a log file written during the build as a completion
// marker of the final report.
func WithLogFile(path string) Option {
	return func(b *Builder) {
		b.logFile = path
	}
}

// WithTemplates replaces the known job templates.
func WithTemplates(t []registry.Template) Option {
	return func(b *Builder) {
		b.templates = t
	}
}

// WithMetrics records the build into r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(b *Builder) {
		b.recorder = r
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// New creates a builder.
func New(opts ...Option) *Builder {
	b := &Builder{
		outputDir: ".",
		workers:   1,
		format:    graph.FormatJSON,
		templates: registry.Defaults(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.recorder == nil {
		b.recorder = metrics.New()
	}
	return b
}

// Metrics returns the recorder of the builder.
func (b *Builder) Metrics() *metrics.Recorder {
	return b.recorder
}

// Build runs the whole construction. Nothing is exported unless the graph
// was completed.
func (b *Builder) Build(ctx context.Context, req Request) (*Result, error) {
	runID := uuid.NewString()
	logger := b.logger.With("run", runID)

	store, err := config.Load(req.ConfigPath)
	if err != nil {
		return nil, err
	}
	settings, err := config.LoadSettings(store)
	if err != nil {
		return nil, err
	}

	actx, err := analysis.New(store, settings, analysis.Inputs{
		TriggerFile:    req.TriggerFile,
		InjectionFiles: req.InjectionFiles,
	}, logger)
	if err != nil {
		return nil, err
	}
	degraded := settings.TuningInjectionSet != "" && actx.Tuning == nil
	if degraded {
		b.recorder.DegradedMatch(settings.TuningInjectionSet)
	}

	sets, err := analysis.InjectionSets(store, req.InjectionFiles)
	if err != nil {
		return nil, err
	}
	reg, err := registry.Load(store, b.templates)
	if err != nil {
		return nil, err
	}

	tree := sections.New(b.outputDir, sections.WithLogger(logger))
	if err := workflow.DeclareSections(tree, sets); err != nil {
		return nil, err
	}

	page := domain.Artifact{
		Path:      jobs.ArtifactPath(tree.Base(), actx.IFOString(), b.resultsDescription(), nil, actx.Segment, ".html"),
		Detectors: actx.Detectors,
		Segment:   actx.Segment,
	}
	g := graph.New(settings.Name, graph.WithTerminal(registry.ResultsPage, page))
	book := layout.NewBook(logger)

	logger.Info("Building workflow.", "name", settings.Name, "ifos", actx.IFOString(),
		"injection_sets", len(sets), "workers", b.workers)

	driver := workflow.New(actx, settings, reg,
		workflow.WithInjectionSets(sets),
		workflow.WithWorkers(b.workers),
		workflow.WithObserver(b.recorder),
		workflow.WithLogger(logger),
	)
	if err := driver.Run(ctx, tree, g, book); err != nil {
		return nil, err
	}

	ws := NewWorkspace(b.outputDir)
	if err := ws.Create(); err != nil {
		return nil, err
	}

	snapshot := filepath.Join(ws.Configuration, filepath.Base(req.ConfigPath))
	if err := store.Snapshot(snapshot); err != nil {
		return nil, err
	}
	markers := []graph.Marker{{ID: ConfigMarker, Artifacts: []domain.Artifact{{Path: snapshot}}}}
	if b.logFile != "" {
		markers = append(markers, graph.Marker{ID: LogMarker, Artifacts: []domain.Artifact{{Path: b.logFile}}})
	}

	wf, err := g.Finalize(markers...)
	if err != nil {
		return nil, err
	}
	if err := wf.Validate(); err != nil {
		return nil, err
	}

	res := &Result{
		RunID:     runID,
		Workflow:  wf,
		Pages:     book.Pages(),
		Workspace: ws,
		DAXPath:   ws.DAXPath(settings.Name, string(b.format)),
		Degraded:  degraded,
	}
	if err := b.export(res, book); err != nil {
		return nil, err
	}

	logger.Info("Workflow written.", "path", res.DAXPath, "jobs", len(wf.Jobs()), "pages", len(res.Pages))
	return res, nil
}

// resultsDescription names the final report file. The results page is never
// created through the registry, so it needs no executable binding.
func (b *Builder) resultsDescription() string {
	for _, t := range b.templates {
		if t.Name == registry.ResultsPage {
			return t.FileDescription()
		}
	}
	return strings.ToUpper(registry.ResultsPage)
}

func (b *Builder) export(res *Result, book *layout.Book) error {
	if err := res.Workspace.removeExports(res.DAXPath); err != nil {
		return err
	}
	if err := res.Workflow.WriteFile(res.DAXPath); err != nil {
		return err
	}
	if err := writeWith(res.Workspace.InputMapPath(), res.Workflow.WriteInputMap); err != nil {
		return err
	}
	if err := writeWith(res.Workspace.OutputMapPath(), res.Workflow.WriteOutputMap); err != nil {
		return err
	}
	if err := book.WriteFile(res.Workspace.BookPath()); err != nil {
		return err
	}

	b.recorder.SetPages(len(res.Pages))
	if err := b.recorder.WriteTextfile(res.Workspace.MetricsPath()); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

func writeWith(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
