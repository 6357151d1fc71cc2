// Package http serves a built report for preview: section pages, the
// exported workflow and the artifact files. The open box section stays hidden
// unless the server is started unblinded.
package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/aretw0/grbflow/pkg/graph"
	"github.com/aretw0/grbflow/pkg/layout"
	"github.com/go-chi/chi/v5"
)

// OpenBoxSection is the section hidden from blinded previews.
const OpenBoxSection = "open_box"

// Report is the read-only view of a built report.
type Report interface {
	Title() string
	Root() string
	Pages() []layout.Page
	Workflow() *graph.Workflow
}

type server struct {
	report  Report
	unblind bool
	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the handler.
type Option func(*server)

// WithUnblind exposes the open box section.
func WithUnblind(unblind bool) Option {
	return func(s *server) {
		s.unblind = unblind
	}
}

// WithMetrics mounts h on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *server) {
		s.metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *server) {
		s.logger = logger
	}
}

// NewHandler creates the preview handler for a report.
func NewHandler(report Report, opts ...Option) http.Handler {
	s := &server{
		report: report,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/", s.index)
	r.Get("/pages", s.pages)
	r.Get("/pages/*", s.page)
	r.Get("/workflow", s.workflow)
	r.Get("/files/*", s.files)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	return r
}

func (s *server) visible() []layout.Page {
	var out []layout.Page
	for _, p := range s.report.Pages() {
		if !s.unblind && isOpenBox(p.Section) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (s *server) index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = io.WriteString(w, layout.Markdown(s.report.Title(), s.visible()))
}

func (s *server) pages(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.visible())
}

func (s *server) page(w http.ResponseWriter, r *http.Request) {
	section := strings.Trim(chi.URLParam(r, "*"), "/")
	for _, p := range s.visible() {
		if p.Section == section {
			s.writeJSON(w, p)
			return
		}
	}
	http.Error(w, "section not found", http.StatusNotFound)
}

func (s *server) workflow(w http.ResponseWriter, r *http.Request) {
	wf := s.report.Workflow()
	if wf == nil {
		http.Error(w, "workflow not available", http.StatusNotFound)
		return
	}
	if !s.unblind {
		wf = blinded(wf)
	}
	w.Header().Set("Content-Type", "application/json")
	if err := wf.Encode(w, graph.FormatJSON); err != nil {
		s.logger.Error("Workflow encode failed", "error", err)
	}
}

func (s *server) files(w http.ResponseWriter, r *http.Request) {
	// Checked against the decoded path the file server resolves.
	rel := path.Clean("/" + strings.TrimPrefix(r.URL.Path, "/files"))
	if !s.unblind {
		for _, segment := range strings.Split(rel, "/") {
			if isOpenBoxDir(segment) {
				s.logger.Warn("Blocked blinded file request", "path", rel)
				http.Error(w, "open box is blinded", http.StatusForbidden)
				return
			}
		}
	}
	http.StripPrefix("/files", http.FileServer(http.Dir(s.report.Root()))).ServeHTTP(w, r)
}

func (s *server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "error", err)
	}
}

// blinded returns a copy of wf without the open box jobs and their edges.
func blinded(wf *graph.Workflow) *graph.Workflow {
	out := &graph.Workflow{Name: wf.Name}
	hidden := make(map[string]bool)
	for _, n := range wf.Nodes {
		if isOpenBox(n.Section) {
			hidden[n.ID] = true
			continue
		}
		out.Nodes = append(out.Nodes, n)
	}
	for _, e := range wf.Edges {
		if hidden[e.From] || hidden[e.To] {
			continue
		}
		out.Edges = append(out.Edges, e)
	}
	return out
}

func isOpenBox(section string) bool {
	return section == OpenBoxSection || strings.HasPrefix(section, OpenBoxSection+"/")
}

// isOpenBoxDir matches numbered section directories such as "7._open_box".
func isOpenBoxDir(name string) bool {
	return name == OpenBoxSection || strings.HasSuffix(name, "_"+OpenBoxSection)
}
