package jobs

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/aretw0/grbflow/pkg/domain"
	"github.com/aretw0/grbflow/pkg/graph"
	"github.com/aretw0/grbflow/pkg/registry"
	"github.com/aretw0/grbflow/pkg/tags"
)

// Spec is the resolved input of one job.
type Spec struct {
	Template string
	Dir      domain.Directory

	// Detector is empty for network-wide jobs.
	Detector string

	// InjectionFile is empty when no injections are overlaid.
	InjectionFile string

	Tags   tags.TagSet
	Inputs []string

	// Expect is the number of outputs the caller relies on; zero accepts the
	// template's declared arity.
	Expect int
}

// DirectoryIndex reports whether a directory was resolved by the section tree.
type DirectoryIndex interface {
	IsResolved(d domain.Directory) bool
}

// Observer is notified after each job is appended. A job appended to a
// graph.Batch has no ID until the batch is committed.
type Observer interface {
	JobCreated(n *domain.JobNode)
}

type identities struct {
	mu   sync.Mutex
	seen map[string]string
}

// Factory creates job nodes and appends them to a graph.
type Factory struct {
	actx     *domain.AnalysisContext
	registry *registry.Registry
	dirs     DirectoryIndex
	appender graph.Appender
	ids      *identities
	observer Observer
	logger   *slog.Logger
}

// Option configures a Factory.
type Option func(*Factory)

// WithObserver registers an observer notified for every created job.
func WithObserver(o Observer) Option {
	return func(f *Factory) {
		f.observer = o
	}
}

// WithLogger sets the factory logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Factory) {
		f.logger = logger
	}
}

// NewFactory creates a factory appending to g.
func NewFactory(actx *domain.AnalysisContext, reg *registry.Registry, dirs DirectoryIndex, g graph.Appender, opts ...Option) *Factory {
	f := &Factory{
		actx:     actx,
		registry: reg,
		dirs:     dirs,
		appender: g,
		ids:      &identities{seen: make(map[string]string)},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// WithAppender returns a factory that appends to a instead. It shares the
// identity set with f, so collisions are still detected across appenders.
func (f *Factory) WithAppender(a graph.Appender) *Factory {
	clone := *f
	clone.appender = a
	return &clone
}

// Create builds one job node from s, appends it and returns its artifacts.
func (f *Factory) Create(s Spec) (*domain.JobNode, []domain.Artifact, error) {
	tmpl, err := f.registry.Lookup(s.Template)
	if err != nil {
		return nil, nil, err
	}
	if s.Expect != 0 && s.Expect != tmpl.Arity() {
		return nil, nil, fmt.Errorf("%w: %s declares %d outputs, caller expects %d",
			domain.ErrOutputArity, tmpl.Name, tmpl.Arity(), s.Expect)
	}
	if !f.dirs.IsResolved(s.Dir) {
		return nil, nil, fmt.Errorf("directory for section %q was not resolved by the section tree", s.Dir.Section)
	}
	if s.Detector != "" && !f.hasDetector(s.Detector) {
		return nil, nil, fmt.Errorf("%w: detector %s is not part of the analysis", domain.ErrConfig, s.Detector)
	}

	ifos, detectors := f.actx.IFOString(), append([]string(nil), f.actx.Detectors...)
	if s.Detector != "" {
		ifos, detectors = s.Detector, []string{s.Detector}
	}

	key := strings.Join([]string{tmpl.Name, s.Dir.Path, ifos, s.Tags.Key()}, "|")
	if err := f.claim(key, tmpl.Name); err != nil {
		return nil, nil, err
	}

	outputs := make([]domain.Artifact, 0, tmpl.Arity())
	for _, ext := range tmpl.Extensions {
		outputs = append(outputs, domain.Artifact{
			Path:      ArtifactPath(s.Dir, ifos, tmpl.FileDescription(), s.Tags, f.actx.Segment, ext),
			Detectors: detectors,
			Segment:   f.actx.Segment,
		})
	}

	node := &domain.JobNode{
		Template:      tmpl.Name,
		Executable:    tmpl.Executable,
		Section:       s.Dir.Section,
		Directory:     s.Dir.Path,
		Detector:      s.Detector,
		TriggerFile:   f.actx.TriggerFile,
		InjectionFile: s.InjectionFile,
		Tags:          s.Tags.Strings(),
		Inputs:        append([]string(nil), s.Inputs...),
		Outputs:       outputs,
	}

	node, err = f.appender.Append(node)
	if err != nil {
		return nil, nil, err
	}

	f.logger.Debug("Created job.", "template", tmpl.Name, "section", s.Dir.Section, "ifos", ifos, "tags", s.Tags.Key())
	if f.observer != nil {
		f.observer.JobCreated(node)
	}

	return node, append([]domain.Artifact(nil), outputs...), nil
}

// CreateOne creates a job whose template must declare exactly one output and
// returns that output.
func (f *Factory) CreateOne(s Spec) (*domain.JobNode, domain.Artifact, error) {
	s.Expect = 1
	node, outs, err := f.Create(s)
	if err != nil {
		return nil, domain.Artifact{}, err
	}
	return node, outs[0], nil
}

func (f *Factory) claim(key, template string) error {
	f.ids.mu.Lock()
	defer f.ids.mu.Unlock()

	if _, ok := f.ids.seen[key]; ok {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateOutput, strings.ReplaceAll(key, "|", " "))
	}
	f.ids.seen[key] = template
	return nil
}

func (f *Factory) hasDetector(d string) bool {
	for _, known := range f.actx.Detectors {
		if known == d {
			return true
		}
	}
	return false
}
