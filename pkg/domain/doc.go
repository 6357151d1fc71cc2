/*
Package domain contains the core models shared by the workflow generator.

It defines the entities the job-graph builder passes between its components:
the immutable AnalysisContext, resolved section Directories, JobNodes and the
Artifacts they declare. The package is kept free of I/O so every other package
can depend on it.

# Key Entities

  - AnalysisContext: detectors, trigger file, injection files and analysis segment.
  - Directory: a resolved report section and its location on disk.
  - JobNode: one plotting job, identified by template, directory and tags.
  - Artifact: an output file declared by a job.
*/
package domain
