package pathutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".bashrc"), ExpandTilde("~/.bashrc"))
	assert.Equal(t, "/etc/hosts", ExpandTilde("/etc/hosts"))
	assert.Equal(t, "relative/path", ExpandTilde("relative/path"))
	assert.Equal(t, "~elsewhere", ExpandTilde("~elsewhere"))
}

func TestCreateFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deeper", "file.conf")

	created, err := CreateFile(path)
	require.NoError(t, err)
	assert.True(t, created)
	assert.FileExists(t, path)

	// second call reports the file as existing
	created, err = CreateFile(path)
	require.NoError(t, err)
	assert.False(t, created)
}
