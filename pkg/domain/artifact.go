package domain

import "path"

// Segment is a half-open [Start, End) window in GPS seconds.
type Segment struct {
	Start int64 `json:"start" yaml:"start"`
	End   int64 `json:"end" yaml:"end"`
}

// Duration returns the length of the segment in seconds.
func (s Segment) Duration() int64 {
	return s.End - s.Start
}

// Artifact is a typed reference to a file produced by a job.
type Artifact struct {
	Path      string   `json:"path" yaml:"path"`
	Detectors []string `json:"detectors" yaml:"detectors"`
	Segment   Segment  `json:"segment" yaml:"segment"`
}

// Name returns the base file name of the artifact.
func (a Artifact) Name() string {
	return path.Base(a.Path)
}

// Directory is a resolved report section.
type Directory struct {
	// Section is the logical slash-delimited section path (e.g. "signal_consistency/null_snrs").
	Section string `json:"section" yaml:"section"`
	// Path is the location on disk, including the numbering prefixes.
	Path string `json:"path" yaml:"path"`
	// Title is the human readable heading of the section.
	Title string `json:"title" yaml:"title"`
}
