package document

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/dotsect/pkg/section"
)

// SHA-256 of "hello\n", upper hex.
const helloDigest = "5891B5B522D5DF086D0FF0B110FBD9D21BB4FC7163AF34D08286A2E846F6BE03"

func lines(text string) []string {
	return splitLines(text)
}

func TestFromLinesSingleSection(t *testing.T) {
	doc := FromLines("test", "#", lines(
		"#... s begin\n"+
			"#... s hash ABC\n"+
			"hello\n"+
			"#... s end\n"))

	require.Equal(t, 1, doc.CountNamed())
	s, ok := doc.Section("s")
	require.True(t, ok)
	assert.Equal(t, 1, s.StartLine())
	assert.Equal(t, 4, s.EndLine())
	assert.Equal(t, "hello\n", s.Content())
	assert.Equal(t, "ABC", s.TargetHash)
	assert.True(t, s.Modified())
	assert.True(t, doc.Modified())
	assert.True(t, doc.IsManaged())
}

func TestFromLinesOverlapDiscardsBoth(t *testing.T) {
	doc := FromLines("test", "#", lines(
		"#... a begin\n"+
			"#... a hash X\n"+
			"#... b begin\n"+
			"#... b hash Y\n"+
			"#... a end\n"+
			"#... b end\n"))

	assert.Equal(t, 0, doc.CountNamed())
	assert.False(t, doc.IsManaged())

	// the whole file collapses into a single anonymous section
	require.Len(t, doc.Sections, 1)
	assert.Equal(t, 1, doc.Sections[0].StartLine())
	assert.Equal(t, 6, doc.Sections[0].EndLine())
}

func TestFromLinesOverlapKeepsLaterSections(t *testing.T) {
	doc := FromLines("test", "#", lines(
		"#... a begin\n"+
			"#... a hash X\n"+
			"#... b begin\n"+
			"#... b hash Y\n"+
			"#... a end\n"+
			"#... b end\n"+
			"#... c begin\n"+
			"#... c hash "+helloDigest+"\n"+
			"hello\n"+
			"#... c end\n"))

	require.Equal(t, 1, doc.CountNamed())
	assert.True(t, doc.HasSection("c"))
}

func TestFromLinesPartitionInvariant(t *testing.T) {
	doc := FromLines("test", "#", lines(
		"leading\n"+
			"#... a begin\n"+
			"#... a hash X\n"+
			"alpha\n"+
			"#... a end\n"+
			"between\n"+
			"between too\n"+
			"#... b begin\n"+
			"#... b hash Y\n"+
			"beta\n"+
			"#... b end\n"+
			"trailing\n"))

	require.NotEmpty(t, doc.Sections)
	assert.Equal(t, 1, doc.Sections[0].StartLine())
	for i := 1; i < len(doc.Sections); i++ {
		assert.Equal(t, doc.Sections[i-1].EndLine()+1, doc.Sections[i].StartLine(),
			"sections must be contiguous")
	}
	assert.Equal(t, 12, doc.Sections[len(doc.Sections)-1].EndLine())
}

func TestFromLinesEmptyFile(t *testing.T) {
	doc := FromLines("test", "#", nil)
	require.Len(t, doc.Sections, 1)
	assert.Equal(t, 1, doc.Sections[0].StartLine())
	assert.False(t, doc.IsManaged())
}

func TestRoundTrip(t *testing.T) {
	original := "leading content\n" +
		"#... s begin\n" +
		"#... s hash " + helloDigest + "\n" +
		"hello\n" +
		"#... s end\n" +
		"trailing\n"

	doc := FromLines("test", "#", lines(original))
	assert.False(t, doc.Modified())
	assert.Equal(t, original, doc.Serialize())
}

func TestRoundTripWithPropertyMarkers(t *testing.T) {
	original := "#... all target ~/.bashrc\n" +
		"#... all permissions 000644\n" +
		"plain content\n"

	doc := FromLines("test", "#", lines(original))
	assert.Equal(t, "~/.bashrc", doc.TargetPath)
	require.NotNil(t, doc.Permissions)
	assert.Equal(t, 644, *doc.Permissions)
	assert.Equal(t, original, doc.Serialize())
}

func TestSerializeHashbang(t *testing.T) {
	original := "#!/bin/sh\n" +
		"#... all target ~/.local/bin/greet\n" +
		"echo hello\n"

	doc := FromLines("greet", "#", lines(original))
	assert.Equal(t, "~/.local/bin/greet", doc.TargetPath)

	hashbang, ok := doc.Hashbang()
	require.True(t, ok)
	assert.Equal(t, "#!/bin/sh", hashbang)

	// the target marker stays below the hashbang line
	assert.Equal(t, original, doc.Serialize())
}

func TestCompileIdempotence(t *testing.T) {
	doc := FromLines("test", "#", lines(
		"#... s begin\n"+
			"#... s hash STALE\n"+
			"hello\n"+
			"#... s end\n"))
	require.True(t, doc.Modified())

	assert.Equal(t, section.Changed, doc.Compile())
	assert.False(t, doc.Modified())

	// re-parse of the compiled serialization is clean
	reparsed := FromLines("test", "#", lines(doc.Serialize()))
	assert.False(t, reparsed.Modified())
	assert.Equal(t, section.Unchanged, reparsed.Compile())
	assert.Equal(t, doc.Serialize(), reparsed.Serialize())
}

func TestPermissionArgumentRoundTrip(t *testing.T) {
	// the raw argument is preserved, not re-rendered from the parsed value
	original := "#... all permissions 100755\n" +
		"content\n"

	doc := FromLines("test", "#", lines(original))
	require.NotNil(t, doc.Permissions)
	assert.Equal(t, 755, *doc.Permissions)
	assert.Equal(t, original, doc.Serialize())
}

func TestQuery(t *testing.T) {
	doc := FromLines("test", "#", lines(
		"#... a begin\n"+
			"#... a hash X\n"+
			"alpha\n"+
			"#... a end\n"+
			"#... b begin\n"+
			"#... b hash Y\n"+
			"beta\n"+
			"#... b end\n"))

	out := doc.Query([]string{"b"})
	assert.Contains(t, out, "beta\n")
	assert.NotContains(t, out, "alpha")

	assert.Equal(t, doc.Serialize(), doc.Query(nil))
}

func TestDeleteAndReplaceSection(t *testing.T) {
	doc := FromLines("test", "#", lines(
		"#... a begin\n"+
			"#... a hash X\n"+
			"alpha\n"+
			"#... a end\n"))

	replacement := section.New(1, 4, "a", "", helloDigest)
	replacement.AppendLine("hello")
	replacement.Finalize()
	require.True(t, doc.ReplaceSection(replacement))

	s, ok := doc.Section("a")
	require.True(t, ok)
	assert.Equal(t, "hello\n", s.Content())

	assert.True(t, doc.DeleteSection("a"))
	assert.False(t, doc.HasSection("a"))
	assert.False(t, doc.DeleteSection("a"))
}

func TestLoadDetectsMetafile(t *testing.T) {
	dir := t.TempDir()
	parent := filepath.Join(dir, "binaryish.dat")
	content := "opaque content\n"
	require.NoError(t, os.WriteFile(parent, []byte(content), 0o644))

	sidecar := parent + ".imosid.toml"
	toml := "hash = \"" + section.Digest(content) + "\"\n" +
		"parent = \"binaryish.dat\"\n" +
		"syntaxversion = 0\n"
	require.NoError(t, os.WriteFile(sidecar, []byte(toml), 0o644))

	doc, err := Load(parent)
	require.NoError(t, err)
	require.NotNil(t, doc.Meta)
	assert.Empty(t, doc.Sections)
	assert.False(t, doc.Modified())
	assert.True(t, doc.IsManaged())
	assert.Equal(t, content, doc.Serialize())
}

func TestLoadCommentFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.sh")
	content := "#... s begin\n" +
		"#... s hash " + helloDigest + "\n" +
		"hello\n" +
		"#... s end\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Nil(t, doc.Meta)
	assert.Equal(t, "#", doc.CommentPrefix)
	assert.Equal(t, 1, doc.CountNamed())
	assert.False(t, doc.Modified())
}

func TestWriteFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.ini")
	content := ";... s begin\n" +
		";... s hash STALE\n" +
		"key=value\n" +
		";... s end\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ";", doc.CommentPrefix)
	doc.Compile()
	require.NoError(t, doc.WriteFile())

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(written), "STALE"))

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.False(t, reloaded.Modified())
}
