package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/grbflow/pkg/registry"
	"github.com/stretchr/testify/require"
)

// WriteConfig writes doc as analysis.yaml into a temporary directory and
// returns its absolute path. It fails the test immediately on error.
func WriteConfig(t *testing.T, doc string) string {
	t.Helper()

	absPath, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	path := filepath.Join(absPath, "analysis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644), "Failed to write config")
	return path
}

// DefaultRegistry returns a registry holding every default template, without
// requiring executables to be configured.
func DefaultRegistry(t *testing.T) *registry.Registry {
	t.Helper()

	reg := registry.NewRegistry()
	for _, tmpl := range registry.Defaults() {
		require.NoError(t, reg.Register(tmpl), "Failed to register %s", tmpl.Name)
	}
	return reg
}
