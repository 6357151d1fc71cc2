// Package workflow enumerates the jobs of the post-processing report.
//
// The Driver walks a fixed sequence of stages. Each stage owns one or more
// report sections and iterates the cross product of its configured
// dimensions, creating exactly one job per structurally valid combination.
// Stages of the same phase are independent and may be built concurrently;
// their jobs are committed to the graph in stage order, so the result does
// not depend on the number of workers.
package workflow

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/grbflow/internal/config"
	"github.com/aretw0/grbflow/pkg/domain"
	"github.com/aretw0/grbflow/pkg/graph"
	"github.com/aretw0/grbflow/pkg/jobs"
	"github.com/aretw0/grbflow/pkg/layout"
	"github.com/aretw0/grbflow/pkg/registry"
	"github.com/aretw0/grbflow/pkg/sections"
	"golang.org/x/sync/errgroup"
)

// OpenBoxMode is applied to the open box section once it is populated.
const OpenBoxMode = 0o700

// Driver builds the job graph and the report layout.
type Driver struct {
	actx       *domain.AnalysisContext
	settings   config.Settings
	registry   *registry.Registry
	injections []domain.InjectionSet
	workers    int
	observer   jobs.Observer
	logger     *slog.Logger

	// offsource is the loudest off-source data file, produced in the first
	// phase and consumed by later ones.
	offsource domain.Artifact
}

// Option configures a Driver.
type Option func(*Driver)

// WithInjectionSets sets the resolved injection sets.
func WithInjectionSets(sets []domain.InjectionSet) Option {
	return func(d *Driver) {
		d.injections = sets
	}
}

// WithWorkers bounds the number of stages built concurrently.
func WithWorkers(n int) Option {
	return func(d *Driver) {
		d.workers = n
	}
}

// WithObserver is notified of every job once it is committed to the graph,
// in graph order.
func WithObserver(o jobs.Observer) Option {
	return func(d *Driver) {
		d.observer = o
	}
}

// WithLogger sets the driver logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		d.logger = logger
	}
}

// New creates a driver.
func New(actx *domain.AnalysisContext, settings config.Settings, reg *registry.Registry, opts ...Option) *Driver {
	d := &Driver{
		actx:     actx,
		settings: settings,
		registry: reg,
		workers:  1,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.workers < 1 {
		d.workers = 1
	}
	return d
}

// pendingPage is a section page waiting for its stage to be committed.
type pendingPage struct {
	dir       domain.Directory
	artifacts []domain.Artifact
}

// builder is the private state of one stage while it is built.
type builder struct {
	ctx     context.Context
	factory *jobs.Factory
	dirs    map[string]domain.Directory
	pages   []pendingPage
}

// create makes one job in section and records its artifacts for the page.
func (b *builder) create(section string, s jobs.Spec) ([]domain.Artifact, error) {
	if err := b.ctx.Err(); err != nil {
		return nil, err
	}
	s.Dir = b.dirs[section]
	_, outs, err := b.factory.Create(s)
	if err != nil {
		return nil, err
	}
	b.collect(s.Dir, outs)
	return outs, nil
}

func (b *builder) collect(dir domain.Directory, arts []domain.Artifact) {
	for i := range b.pages {
		if b.pages[i].dir.Section == dir.Section {
			b.pages[i].artifacts = append(b.pages[i].artifacts, arts...)
			return
		}
	}
	b.pages = append(b.pages, pendingPage{dir: dir, artifacts: arts})
}

// Run enumerates every stage into g and emits the section pages into book.
// Configuration errors are reported before any directory is created.
func (d *Driver) Run(ctx context.Context, tree *sections.Tree, g *graph.Graph, book *layout.Book) error {
	p, err := newPlan(d.settings, d.actx.Tuning)
	if err != nil {
		return err
	}

	stages := d.stages(p)
	var paths []string
	for _, st := range stages {
		paths = append(paths, st.sections...)
	}
	if err := tree.Check(paths...); err != nil {
		return err
	}

	factory := jobs.NewFactory(d.actx, d.registry, tree, g, jobs.WithLogger(d.logger))

	for _, phase := range phases(stages) {
		if err := d.runPhase(ctx, phase, tree, g, book, factory); err != nil {
			return err
		}
	}

	if err := tree.Restrict(SectionOpenBox, OpenBoxMode); err != nil {
		return err
	}

	d.logger.Info("Enumerated workflow.", "jobs", g.Len(), "pages", len(book.Pages()))
	return nil
}

func (d *Driver) runPhase(ctx context.Context, phase []stage, tree *sections.Tree, g *graph.Graph, book *layout.Book, factory *jobs.Factory) error {
	builders := make([]*builder, len(phase))
	batches := make([]*graph.Batch, len(phase))

	// Directories are resolved in stage order so creation is deterministic.
	for i, st := range phase {
		dirs := make(map[string]domain.Directory, len(st.sections))
		for _, path := range st.sections {
			dir, err := tree.Resolve(path)
			if err != nil {
				return err
			}
			dirs[path] = dir
		}
		batches[i] = graph.NewBatch()
		builders[i] = &builder{factory: factory.WithAppender(batches[i]), dirs: dirs}
	}

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(d.workers)
	for i, st := range phase {
		st := st
		b := builders[i]
		b.ctx = egctx
		eg.Go(func() error {
			if err := st.build(b); err != nil {
				return fmt.Errorf("stage %s: %w", st.name, err)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for i, st := range phase {
		if err := g.Commit(batches[i]); err != nil {
			return fmt.Errorf("stage %s: %w", st.name, err)
		}
		if d.observer != nil {
			for _, n := range batches[i].Nodes() {
				d.observer.JobCreated(n)
			}
		}
		for _, pg := range builders[i].pages {
			groups, err := layout.Group(pg.artifacts, d.settings.PageArity)
			if err != nil {
				return err
			}
			if _, err := book.Emit(pg.dir, groups); err != nil {
				return err
			}
		}
		d.logger.Debug("Committed stage.", "stage", st.name, "jobs", len(batches[i].Nodes()))
	}
	return nil
}
