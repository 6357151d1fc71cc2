package domain

// JobNode is a single plotting job in the dependency graph.
// It is immutable once appended to the graph, which assigns its ID.
type JobNode struct {
	ID         string `json:"id" yaml:"id"`
	Template   string `json:"template" yaml:"template"`
	Executable string `json:"executable,omitempty" yaml:"executable,omitempty"`
	Section    string `json:"section" yaml:"section"`

	// Directory is the on-disk directory that receives the outputs.
	Directory string `json:"directory" yaml:"directory"`

	// Detector is empty for jobs that analyse the full network.
	Detector string `json:"detector,omitempty" yaml:"detector,omitempty"`

	TriggerFile   string `json:"trigger_file" yaml:"trigger_file"`
	InjectionFile string `json:"injection_file,omitempty" yaml:"injection_file,omitempty"`

	Tags    []string   `json:"tags" yaml:"tags"`
	Inputs  []string   `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs []Artifact `json:"outputs" yaml:"outputs"`
}

// Primary returns the first declared output.
func (j *JobNode) Primary() Artifact {
	return j.Outputs[0]
}
