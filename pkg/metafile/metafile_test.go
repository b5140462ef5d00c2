package metafile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/dotsect/pkg/errors"
	"github.com/agentstation/dotsect/pkg/section"
)

func writeSidecar(t *testing.T, dir, parent, toml string) (parentPath, sidecarPath string) {
	t.Helper()
	parentPath = filepath.Join(dir, parent)
	sidecarPath = SidecarPath(parentPath)
	require.NoError(t, os.WriteFile(sidecarPath, []byte(toml), 0o644))
	return parentPath, sidecarPath
}

func TestSidecarPath(t *testing.T) {
	assert.Equal(t, "/etc/app.conf.imosid.toml", SidecarPath("/etc/app.conf"))
}

func TestLoad(t *testing.T) {
	content := "tracked content\n"
	_, sidecar := writeSidecar(t, t.TempDir(), "app.conf",
		"hash = \""+section.Digest(content)+"\"\n"+
			"parent = \"app.conf\"\n"+
			"target = \"~/.config/app.conf\"\n"+
			"permissions = 644\n"+
			"syntaxversion = 0\n")

	m, err := Load(sidecar, content)
	require.NoError(t, err)
	assert.Equal(t, "app.conf", m.Parent)
	assert.Equal(t, "~/.config/app.conf", m.Target)
	require.NotNil(t, m.Permissions)
	assert.Equal(t, 644, *m.Permissions)
	assert.False(t, m.Modified)
	assert.Equal(t, content, m.Content())
}

func TestLoadDetectsModification(t *testing.T) {
	_, sidecar := writeSidecar(t, t.TempDir(), "app.conf",
		"hash = \""+section.Digest("old content\n")+"\"\n"+
			"parent = \"app.conf\"\n")

	m, err := Load(sidecar, "new content\n")
	require.NoError(t, err)
	assert.True(t, m.Modified)
}

func TestLoadMandatoryKeys(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{name: "missing hash", toml: "parent = \"app.conf\"\n"},
		{name: "missing parent", toml: "hash = \"ABC\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, sidecar := writeSidecar(t, t.TempDir(), "app.conf", tt.toml)
			_, err := Load(sidecar, "content")
			require.Error(t, err)
			var parseErr *errors.ParseError
			assert.ErrorAs(t, err, &parseErr)
		})
	}
}

func TestCompile(t *testing.T) {
	_, sidecar := writeSidecar(t, t.TempDir(), "app.conf",
		"hash = \"STALE\"\n"+
			"parent = \"app.conf\"\n")

	m, err := Load(sidecar, "content\n")
	require.NoError(t, err)
	require.True(t, m.Modified)

	assert.Equal(t, section.Changed, m.Compile())
	assert.False(t, m.Modified)
	assert.Equal(t, section.Digest("content\n"), m.Hash)
	assert.Equal(t, section.Unchanged, m.Compile())
}

func TestForParentCreatesSidecar(t *testing.T) {
	dir := t.TempDir()
	parent := filepath.Join(dir, "app.conf")
	require.NoError(t, os.WriteFile(parent, []byte("fresh content\n"), 0o644))

	m, err := ForParent(parent)
	require.NoError(t, err)
	assert.Equal(t, "app.conf", m.Parent)
	assert.False(t, m.Modified)
	assert.FileExists(t, SidecarPath(parent))

	// second call loads the existing sidecar
	again, err := ForParent(parent)
	require.NoError(t, err)
	assert.Equal(t, m.Hash, again.Hash)
}

func TestSerializeRoundTrip(t *testing.T) {
	content := "tracked\n"
	m := Derive(filepath.Join(t.TempDir(), "app.conf"), content, "~/sections/app.conf", nil)

	out, err := m.Serialize()
	require.NoError(t, err)
	assert.Contains(t, out, "hash = ")
	assert.Contains(t, out, "parent = \"app.conf\"")
	assert.Contains(t, out, "source = \"~/sections/app.conf\"")

	require.NoError(t, m.WriteFile())
	loaded, err := Load(m.Path(), content)
	require.NoError(t, err)
	assert.Equal(t, m.Hash, loaded.Hash)
	assert.Equal(t, "~/sections/app.conf", loaded.Source)
	assert.False(t, loaded.Modified)
}

func TestPermissionMode(t *testing.T) {
	mode, err := PermissionMode(755)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), mode&os.ModePerm)

	mode, err = PermissionMode(644)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), mode&os.ModePerm)

	// digits outside octal range cannot be encoded
	_, err = PermissionMode(888)
	assert.Error(t, err)
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	parent := filepath.Join(dir, "app.conf")
	assert.False(t, Exists(parent))

	require.NoError(t, os.WriteFile(SidecarPath(parent), []byte("hash = \"A\"\nparent = \"app.conf\"\n"), 0o644))
	assert.True(t, Exists(parent))
}
