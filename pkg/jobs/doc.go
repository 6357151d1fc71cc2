// Package jobs creates job nodes from registered templates.
//
// The Factory is the only way nodes enter the dependency graph. For every call
// it validates the template and directory, derives the output artifact names,
// checks the declared output arity and rejects any job whose output identity
// (template, directory, detector prefix, tag set) was already handed out.
package jobs
