/*
Package sections maps logical report section paths to numbered output
directories.

The hierarchy is declared once, up front, with Declare. Afterwards Resolve is the
only way to obtain a directory: it creates the directory lazily on first use and
rejects any path that was not declared, so a typo in a section name is a fatal
configuration error instead of a stray directory.

	tree := sections.New("out")
	_ = tree.Declare(
		sections.Spec{Name: "summary"},
		sections.Spec{Name: "signal_consistency", Children: []sections.Spec{{Name: "null_snrs"}}},
	)
	dir, err := tree.Resolve("signal_consistency/null_snrs") // out/2._signal_consistency/2.01_null_snrs
*/
package sections
