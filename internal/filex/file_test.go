package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDir_Relative(t *testing.T) {
	tmp := t.TempDir()
	// Equivalent of t.Chdir (Go 1.24+) for the Go 1.21 toolchain.
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmp))
	t.Cleanup(func() { _ = os.Chdir(oldWd) })

	got, err := EnsureDir("uploads/2024")
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(filepath.Join(tmp, "uploads", "2024"))
	require.NoError(t, err)
	gotResolved, err := filepath.EvalSymlinks(got)
	require.NoError(t, err)
	assert.Equal(t, want, gotResolved)

	fi, err := os.Stat(got)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
}

func TestEnsureDir_ExistingAbsolute(t *testing.T) {
	tmp := t.TempDir()

	got, err := EnsureDir(tmp)
	require.NoError(t, err)
	assert.Equal(t, tmp, got)
}

func TestEnsureDir_FileInTheWay(t *testing.T) {
	tmp := t.TempDir()
	blocker := filepath.Join(tmp, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	_, err := EnsureDir(filepath.Join(blocker, "sub"))
	require.Error(t, err)
}
