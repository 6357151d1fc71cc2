/*
Package graph accumulates job nodes into the dependency graph handed to the
external batch scheduler.

A Graph is append-only: nodes receive their IDs in append order and may only
depend on artifacts produced by nodes appended before them, so the graph is
acyclic by construction. Finalize adds one terminal node that depends on every
job and on any explicitly supplied completion Markers, and returns the exported
Workflow.
*/
package graph
