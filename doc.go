/*
Package grbflow builds the post-processing workflow of a gravitational-wave
burst (GRB) search.

Given a trigger file, a set of injection files and a configuration, it
enumerates every plotting and table job of the results report, gives each job
a collision-free output name, wires the jobs into a DAG for an external batch
scheduler and lays the expected artifacts out in a numbered section tree. No
job is executed.

# Usage

	b := grbflow.New(
		grbflow.WithOutputDir("./results"),
		grbflow.WithWorkers(4),
	)

	res, err := b.Build(ctx, grbflow.Request{
		ConfigPath:     "analysis.yaml",
		TriggerFile:    "H1L1-TRIGGERS.h5",
		InjectionFiles: []string{"H1L1-INJ_BNSLININJ.h5"},
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.DAXPath)

# Output

The report sections are created under the output directory, numbered in
report order ("1._summary", "2._signal_consistency/2.01_timeseries", ...),
each with a layout.yaml page description. The reserved workflow/ subtree holds
the exported DAG (dax/), the input and output maps, a configuration snapshot,
the build log, the report book and a metrics textfile.
*/
package grbflow
