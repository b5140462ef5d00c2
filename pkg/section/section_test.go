package section

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/dotsect/pkg/marker"
)

// SHA-256 of "hello\n", upper hex.
const helloDigest = "5891B5B522D5DF086D0FF0B110FBD9D21BB4FC7163AF34D08286A2E846F6BE03"

func TestDigest(t *testing.T) {
	assert.Equal(t, helloDigest, Digest("hello\n"))
	assert.NotEqual(t, Digest("a"), Digest("b"))
}

func TestNamedModified(t *testing.T) {
	n := New(1, 4, "vim", "", helloDigest)
	n.AppendLine("hello")
	n.Finalize()
	assert.False(t, n.Modified())

	n.AppendLine("local edit")
	n.Finalize()
	assert.True(t, n.Modified())
}

func TestNamedCompile(t *testing.T) {
	n := New(1, 4, "vim", "", "STALE")
	n.AppendLine("hello")
	n.Finalize()
	require.True(t, n.Modified())

	assert.Equal(t, Changed, n.Compile())
	assert.False(t, n.Modified())
	assert.Equal(t, helloDigest, n.TargetHash)

	// second compile is a no-op
	assert.Equal(t, Unchanged, n.Compile())
}

func TestNamedSerialize(t *testing.T) {
	n := New(1, 4, "vim", "", helloDigest)
	n.AppendLine("hello")
	n.Finalize()

	want := "#... vim begin\n" +
		"#... vim hash " + helloDigest + "\n" +
		"hello\n" +
		"#... vim end\n"
	assert.Equal(t, want, n.Serialize("#"))
}

func TestNamedSerializeUsesTargetHash(t *testing.T) {
	// an uncompiled edit keeps serializing with the accepted hash
	n := New(1, 4, "vim", "", "ACCEPTED")
	n.AppendLine("edited")
	n.Finalize()
	require.True(t, n.Modified())

	assert.Contains(t, n.Serialize("#"), "#... vim hash ACCEPTED\n")
	assert.NotContains(t, n.Serialize("#"), n.Hash)
}

func TestNamedSerializeWithSource(t *testing.T) {
	n := New(1, 5, "vim", "~/sections/vim", helloDigest)
	n.AppendLine("hello")
	n.Finalize()

	assert.Contains(t, n.Serialize("#"), "#... vim source ~/sections/vim\n")
}

func TestFromCommentMap(t *testing.T) {
	m := marker.NewMap()
	m.Push(marker.Marker{Line: 3, Section: "vim", Kind: marker.Begin})
	m.Push(marker.Marker{Line: 4, Section: "vim", Kind: marker.Hash, Argument: "ABC"})
	m.Push(marker.Marker{Line: 5, Section: "vim", Kind: marker.Source, Argument: "~/s/vim"})
	m.Push(marker.Marker{Line: 9, Section: "vim", Kind: marker.End})

	n, err := FromCommentMap("vim", m)
	require.NoError(t, err)
	assert.Equal(t, 3, n.StartLine())
	assert.Equal(t, 9, n.EndLine())
	assert.Equal(t, "ABC", n.TargetHash)
	assert.Equal(t, "~/s/vim", n.Source)
}

func TestFromCommentMapMissingMarkers(t *testing.T) {
	m := marker.NewMap()
	m.Push(marker.Marker{Line: 3, Section: "vim", Kind: marker.Begin})
	m.Push(marker.Marker{Line: 9, Section: "vim", Kind: marker.End})

	_, err := FromCommentMap("vim", m)
	assert.Error(t, err)
}

func TestAnonymous(t *testing.T) {
	a := NewAnonymous(1, 2)
	a.AppendLine("first")
	a.AppendLine("second")

	assert.Equal(t, Unchanged, a.Compile())
	assert.Equal(t, "first\nsecond\n", a.Serialize("#"))
}
