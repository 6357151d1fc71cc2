// Package registry holds the job templates the workflow may reference.
//
// Every template declares its output arity up front, so the job factory checks
// the number of outputs at creation time instead of each call site assuming it.
package registry
