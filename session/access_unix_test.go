//go:build unix

package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDirectoryNotWritable(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses permission bits")
	}
	dir := filepath.Join(t.TempDir(), "readonly")
	require.NoError(t, os.Mkdir(dir, 0500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0755) })

	_, err := ResolveDirectory(dir)
	assert.ErrorIs(t, err, ErrDirectoryNotWritable)
	assert.NotErrorIs(t, err, ErrInvalidDirectory)
}
