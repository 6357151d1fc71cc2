package domain

import "errors"

// ErrConfig is the parent of every configuration failure.
var ErrConfig = errors.New("configuration error")

// ErrUnknownSection is returned when a section path was never declared.
var ErrUnknownSection = errors.New("unknown section")

// ErrUnknownTemplate is returned when a job template is not registered.
var ErrUnknownTemplate = errors.New("unknown job template")

// ErrOutputArity is returned when a template produces a different number of outputs than expected.
var ErrOutputArity = errors.New("unexpected output arity")

// ErrDuplicateOutput is returned when two jobs would write the same output file.
var ErrDuplicateOutput = errors.New("duplicate output identity")

// ErrMissingMapping is returned when a configured dimension value has no known section or description.
var ErrMissingMapping = errors.New("missing dimension mapping")

// ErrNoMatch is returned when no injection file matches an injection set.
var ErrNoMatch = errors.New("no matching injection file")

// ErrAmbiguousMatch is returned when several injection files match an injection set.
var ErrAmbiguousMatch = errors.New("ambiguous injection file match")

// ErrFinalized is returned when a finalized graph is modified or finalized again.
var ErrFinalized = errors.New("graph already finalized")

// ErrCycle is returned when an exported workflow is not acyclic.
var ErrCycle = errors.New("cycle detected")
