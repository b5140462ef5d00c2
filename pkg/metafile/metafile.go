// Package metafile implements the TOML sidecar that carries dotsect tracking
// metadata for file formats without comments. The sidecar lives next to its
// parent file as <parent>.imosid.toml and tracks the parent's whole content
// with a single hash instead of per-section markers.
package metafile

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/agentstation/dotsect/pkg/constants"
	"github.com/agentstation/dotsect/pkg/errors"
	"github.com/agentstation/dotsect/pkg/logging"
	"github.com/agentstation/dotsect/pkg/section"
)

// Version is the tool version stamped into newly written metafiles.
// Overridden at build time by the CLI.
var Version = "dev"

// document is the TOML wire form of a metafile.
type document struct {
	Hash          string `toml:"hash"`
	Parent        string `toml:"parent"`
	Target        string `toml:"target,omitempty"`
	Source        string `toml:"source,omitempty"`
	Permissions   *int   `toml:"permissions,omitempty"`
	SyntaxVersion int    `toml:"syntaxversion"`
	ToolVersion   string `toml:"imosidversion,omitempty"`
}

// MetaFile is a parsed sidecar plus the content of its parent file.
type MetaFile struct {
	// Hash is the accepted upper-hex SHA-256 digest of the parent content.
	Hash string
	// Parent is the file name of the tracked parent file.
	Parent string
	// Target optionally names the file the parent is applied to.
	Target string
	// Source optionally names the file the parent updates from.
	Source string
	// Permissions optionally carries the target permission value.
	Permissions *int
	// Modified reports whether the parent content diverged from Hash.
	// Maintained by Finalize and Compile.
	Modified bool

	syntaxVersion int
	toolVersion   string
	content       string
	path          string
}

// SidecarPath returns the metafile path for a parent file.
func SidecarPath(parentPath string) string {
	return parentPath + constants.MetafileSuffix
}

// Exists reports whether a parent file has a sidecar.
func Exists(parentPath string) bool {
	info, err := os.Stat(SidecarPath(parentPath))
	return err == nil && info.Mode().IsRegular()
}

// Load reads and validates the sidecar at path. content is the parent file's
// content, which the metafile tracks. The hash and parent keys are mandatory;
// a sidecar missing either fails construction.
func Load(path, content string) (*MetaFile, error) {
	var doc document
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, errors.WrapParse("toml", path, err)
	}
	if doc.Hash == "" {
		return nil, errors.NewParseError("toml", path, "missing mandatory key: hash", nil)
	}
	if doc.Parent == "" {
		return nil, errors.NewParseError("toml", path, "missing mandatory key: parent", nil)
	}

	m := &MetaFile{
		Hash:          doc.Hash,
		Parent:        doc.Parent,
		Target:        doc.Target,
		Source:        doc.Source,
		Permissions:   doc.Permissions,
		syntaxVersion: doc.SyntaxVersion,
		toolVersion:   doc.ToolVersion,
		content:       content,
		path:          path,
	}
	m.Finalize()
	return m, nil
}

// ForParent loads the metafile for parentPath, creating and writing a fresh
// one when none exists yet. Used by compile --metafile.
func ForParent(parentPath string) (*MetaFile, error) {
	raw, err := os.ReadFile(parentPath)
	if err != nil {
		return nil, errors.WrapIO("read", parentPath, err)
	}

	sidecar := SidecarPath(parentPath)
	if info, statErr := os.Stat(sidecar); statErr == nil && info.Mode().IsRegular() {
		return Load(sidecar, string(raw))
	}

	m := &MetaFile{
		Parent:        filepath.Base(parentPath),
		syntaxVersion: constants.MetafileSyntaxVersion,
		toolVersion:   Version,
		content:       string(raw),
		path:          sidecar,
	}
	m.Compile()
	if err := m.WriteFile(); err != nil {
		return nil, err
	}
	return m, nil
}

// Derive builds a fresh sidecar for a newly created parent file. The content
// is accepted as the baseline immediately; source records where the parent was
// transplanted from.
func Derive(parentPath, content, source string, permissions *int) *MetaFile {
	m := &MetaFile{
		Parent:        filepath.Base(parentPath),
		Source:        source,
		Permissions:   permissions,
		syntaxVersion: constants.MetafileSyntaxVersion,
		toolVersion:   Version,
		content:       content,
		path:          SidecarPath(parentPath),
	}
	m.Compile()
	return m
}

// Content returns the tracked parent content.
func (m *MetaFile) Content() string { return m.content }

// SetContent replaces the tracked parent content without touching the hash.
func (m *MetaFile) SetContent(content string) { m.content = content }

// Path returns the sidecar's own path.
func (m *MetaFile) Path() string { return m.path }

// ContentHash returns the live digest of the parent content.
func (m *MetaFile) ContentHash() string {
	return section.Digest(m.content)
}

// Finalize recomputes the modification state from the live content.
func (m *MetaFile) Finalize() {
	m.Modified = m.Hash != m.ContentHash()
}

// Compile accepts the current parent content as the new baseline and clears
// the modification state.
func (m *MetaFile) Compile() section.ChangeState {
	contentHash := m.ContentHash()
	m.Modified = false
	if m.Hash == contentHash {
		return section.Unchanged
	}
	m.Hash = contentHash
	return section.Changed
}

// Serialize renders the sidecar as TOML.
func (m *MetaFile) Serialize() (string, error) {
	doc := document{
		Hash:          m.Hash,
		Parent:        m.Parent,
		Target:        m.Target,
		Source:        m.Source,
		Permissions:   m.Permissions,
		SyntaxVersion: m.syntaxVersion,
		ToolVersion:   m.toolVersion,
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return "", errors.WrapParse("toml", m.path, err)
	}
	return buf.String(), nil
}

// WriteFile writes the sidecar to its path.
func (m *MetaFile) WriteFile() error {
	out, err := m.Serialize()
	if err != nil {
		return err
	}
	if err := os.WriteFile(m.path, []byte(out), constants.FilePermissions); err != nil {
		return errors.WrapIO("write", m.path, err)
	}
	return nil
}

// WritePermissions applies the stored permission value to the parent file.
// The stored value is combined with a fixed offset and interpreted as octal;
// the encoding is preserved bit-for-bit for compatibility.
func (m *MetaFile) WritePermissions() error {
	if m.Permissions == nil {
		logging.Debug().Str("metafile", m.path).Msg("no permissions to write")
		return nil
	}
	parent := filepath.Join(filepath.Dir(m.path), m.Parent)
	mode, err := PermissionMode(*m.Permissions)
	if err != nil {
		return err
	}
	if err := os.Chmod(parent, mode); err != nil {
		return errors.WrapIO("chmod", parent, err)
	}
	return nil
}

// PermissionMode converts a stored permission value into a file mode by adding
// the fixed offset and reading the result as octal.
func PermissionMode(permissions int) (os.FileMode, error) {
	mode, err := strconv.ParseUint(strconv.Itoa(permissions+constants.PermissionOffset), 8, 32)
	if err != nil {
		return 0, errors.NewValidationError("permissions", permissions, "not a valid permission value")
	}
	return os.FileMode(mode), nil
}
