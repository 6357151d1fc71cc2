package sections_test

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/aretw0/grbflow/pkg/domain"
	"github.com/aretw0/grbflow/pkg/sections"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reportTree() []sections.Spec {
	return []sections.Spec{
		{Name: "summary"},
		{Name: "signal_consistency", Children: []sections.Spec{
			{Name: "timeseries"},
			{Name: "null_snrs", Title: "Null SNRs"},
		}},
		{Name: "open_box"},
	}
}

func TestDeclare_Numbering(t *testing.T) {
	base := t.TempDir()
	tree := sections.New(base)
	require.NoError(t, tree.Declare(reportTree()...))

	assert.Equal(t, []string{
		"summary",
		"signal_consistency",
		"signal_consistency/timeseries",
		"signal_consistency/null_snrs",
		"open_box",
	}, tree.Declared())

	dir, ok := tree.Lookup("signal_consistency/null_snrs")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(base, "2._signal_consistency", "2.02_null_snrs"), dir.Path)
	assert.Equal(t, "Null SNRs", dir.Title)

	dir, ok = tree.Lookup("open_box")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(base, "3._open_box"), dir.Path)
	assert.Equal(t, "Open Box", dir.Title)
}

func TestDeclare_Errors(t *testing.T) {
	t.Run("declared twice", func(t *testing.T) {
		tree := sections.New(t.TempDir())
		require.NoError(t, tree.Declare(sections.Spec{Name: "summary"}))
		assert.ErrorContains(t, tree.Declare(sections.Spec{Name: "other"}), "already declared")
	})

	t.Run("duplicate name", func(t *testing.T) {
		tree := sections.New(t.TempDir())
		err := tree.Declare(sections.Spec{Name: "summary"}, sections.Spec{Name: "summary"})
		assert.ErrorContains(t, err, "declared twice")
	})

	t.Run("invalid name", func(t *testing.T) {
		tree := sections.New(t.TempDir())
		assert.ErrorContains(t, tree.Declare(sections.Spec{Name: "a/b"}), "invalid section name")
	})
}

func TestResolve_CreatesLazily(t *testing.T) {
	base := t.TempDir()
	tree := sections.New(base)
	require.NoError(t, tree.Declare(reportTree()...))

	want, _ := tree.Lookup("signal_consistency/timeseries")
	_, err := os.Stat(want.Path)
	require.True(t, os.IsNotExist(err), "declaring must not create directories")

	dir, err := tree.Resolve("signal_consistency/timeseries")
	require.NoError(t, err)
	assert.Equal(t, want, dir)

	info, err := os.Stat(dir.Path)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestResolve_Idempotent(t *testing.T) {
	var calls atomic.Int32
	tree := sections.New(t.TempDir(), sections.WithMkdir(func(p string, m os.FileMode) error {
		calls.Add(1)
		return os.MkdirAll(p, m)
	}))
	require.NoError(t, tree.Declare(reportTree()...))

	first, err := tree.Resolve("summary")
	require.NoError(t, err)
	second, err := tree.Resolve("/summary/")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
	assert.Len(t, tree.Resolved(), 1)
}

func TestResolve_ConcurrentFirstAccess(t *testing.T) {
	var calls atomic.Int32
	tree := sections.New(t.TempDir(), sections.WithMkdir(func(p string, m os.FileMode) error {
		calls.Add(1)
		return os.MkdirAll(p, m)
	}))
	require.NoError(t, tree.Declare(reportTree()...))

	var wg sync.WaitGroup
	dirs := make([]domain.Directory, 32)
	for i := range dirs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d, err := tree.Resolve("signal_consistency/null_snrs")
			assert.NoError(t, err)
			dirs[i] = d
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, d := range dirs {
		assert.Equal(t, dirs[0], d)
	}
}

func TestResolve_UnknownSection(t *testing.T) {
	base := t.TempDir()
	tree := sections.New(base)
	require.NoError(t, tree.Declare(reportTree()...))

	_, err := tree.Resolve("signal_consistency/typo")
	require.ErrorIs(t, err, domain.ErrUnknownSection)

	assert.ErrorIs(t, tree.Check("summary", "nope"), domain.ErrUnknownSection)
	assert.NoError(t, tree.Check("summary", "signal_consistency/timeseries"))

	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	assert.Empty(t, entries, "a failed resolution must not create directories")
}

func TestRestrict(t *testing.T) {
	tree := sections.New(t.TempDir())
	require.NoError(t, tree.Declare(reportTree()...))

	assert.ErrorContains(t, tree.Restrict("open_box", 0o700), "has not been resolved")

	dir, err := tree.Resolve("open_box")
	require.NoError(t, err)
	require.NoError(t, tree.Restrict("open_box", 0o700))

	info, err := os.Stat(dir.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())

	assert.ErrorIs(t, tree.Restrict("closed_box", 0o700), domain.ErrUnknownSection)
}

func TestBase(t *testing.T) {
	tree := sections.New("out")
	assert.Equal(t, "out", tree.Base().Path)
}
