package merkle

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/axm-labs/shard/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectFilesSkipsManifestAndSigDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "manifest.json"), []byte("{}"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sig"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sig", "manifest.sig"), []byte("sig"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "content"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "content", "a.txt"), []byte("hello"), 0o644))

	files, err := SelectFiles(context.Background(), root, Limits{})
	require.NoError(t, err)

	_, hasManifest := files["manifest.json"]
	assert.False(t, hasManifest)
	_, hasSig := files["sig/manifest.sig"]
	assert.False(t, hasSig)
	assert.Equal(t, []byte("hello"), files["content/a.txt"])
}

func TestSelectFilesRejectsSymlinks(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "real.txt"), []byte("hi"), 0o644))
	require.NoError(t, os.Symlink(filepath.Join(root, "real.txt"), filepath.Join(root, "link.txt")))

	_, err := SelectFiles(context.Background(), root, Limits{})
	require.Error(t, err)
	finding, ok := err.(*errs.Finding)
	require.True(t, ok)
	assert.Equal(t, errs.CodeLayoutDirty, finding.Code)
}

func TestSelectFilesEnforcesMaxFileBytes(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "big.txt"), make([]byte, 100), 0o644))

	_, err := SelectFiles(context.Background(), root, Limits{MaxFileBytes: 10})
	require.Error(t, err)
}
