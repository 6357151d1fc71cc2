package domain

import "strings"

// InjectionSet pairs a configured injection set name with its resolved file.
type InjectionSet struct {
	Name string `json:"name" yaml:"name"`
	File string `json:"file" yaml:"file"`
}

// Token returns the tag contributed by the injection set (its upper-cased name).
func (s InjectionSet) Token() string {
	return strings.ToUpper(s.Name)
}

// ConfigReader is the read-only view of the analysis configuration.
type ConfigReader interface {
	Get(section, key string) (string, error)
	Subsections(section string) []string
	HasSection(name string) bool
}

// AnalysisContext is the process-wide, read-only description of the analysis.
// It is created once at startup and never mutated afterwards.
type AnalysisContext struct {
	Detectors      []string
	TriggerFile    string
	InjectionFiles []string
	Segment        Segment

	// Tuning is the preferred injection set used for overlays, nil when absent.
	Tuning *InjectionSet

	Config ConfigReader
}

// IFOString returns the concatenated detector names, e.g. "H1L1".
func (c *AnalysisContext) IFOString() string {
	return strings.Join(c.Detectors, "")
}
