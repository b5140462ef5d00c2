// Package section models the contiguous line ranges a dotsect document is
// partitioned into. A section is either Named (tracked, content-addressed via
// SHA-256) or Anonymous (untracked file content between named sections).
package section

import (
	"crypto/sha256"
	"fmt"

	"github.com/agentstation/dotsect/pkg/errors"
	"github.com/agentstation/dotsect/pkg/marker"
)

// ChangeState reports whether an operation altered tracked state.
type ChangeState int

const (
	// Unchanged means the operation was a no-op.
	Unchanged ChangeState = iota
	// Changed means tracked state was updated.
	Changed
)

// DidChange reports the state as a bool for accumulation across sections.
func (c ChangeState) DidChange() bool { return c == Changed }

// Hashable is implemented by values that track content via a hash baseline:
// Finalize recomputes the live hash, Compile accepts the current content as
// the new baseline.
type Hashable interface {
	Finalize()
	Compile() ChangeState
}

// Section is a contiguous line range of a document, either *Named or *Anonymous.
type Section interface {
	Hashable

	// StartLine and EndLine bound the section's range, 1-based and inclusive.
	StartLine() int
	EndLine() int

	// Content returns the section body (marker lines excluded), with every
	// line newline-terminated.
	Content() string

	// AppendLine accumulates a content line (without trailing newline).
	AppendLine(text string)

	// Serialize renders the section for writing, including marker comments
	// for named sections.
	Serialize(prefix string) string
}

// span carries the fields shared by both section variants.
type span struct {
	startline int
	endline   int
	content   string
}

func (s *span) StartLine() int { return s.startline }

func (s *span) EndLine() int { return s.endline }

func (s *span) Content() string { return s.content }

func (s *span) AppendLine(text string) { s.content += text + "\n" }

// Named is a tracked section delimited by begin/end markers.
type Named struct {
	span

	// Name identifies the section within its document.
	Name string
	// Source optionally points at the file this section updates from.
	Source string
	// Hash is the live upper-hex SHA-256 digest of the content, set by Finalize.
	Hash string
	// TargetHash is the last accepted digest; differing from Hash means the
	// section carries local modifications.
	TargetHash string
}

// New creates a named section spanning [start, end] with the given accepted hash.
func New(start, end int, name, source, targethash string) *Named {
	return &Named{
		span:       span{startline: start, endline: end},
		Name:       name,
		Source:     source,
		TargetHash: targethash,
	}
}

// FromCommentMap builds a named section from its validated markers. The map
// must contain Begin, End and Hash markers for the section; Source is optional.
func FromCommentMap(name string, m *marker.Map) (*Named, error) {
	begin, ok := m.Get(name, marker.Begin)
	if !ok {
		return nil, errors.NewValidationError("begin", name, "missing begin marker")
	}
	end, ok := m.Get(name, marker.End)
	if !ok {
		return nil, errors.NewValidationError("end", name, "missing end marker")
	}
	hash, ok := m.Get(name, marker.Hash)
	if !ok || hash.Argument == "" {
		return nil, errors.NewValidationError("hash", name, "missing hash marker")
	}

	source := ""
	if src, ok := m.Get(name, marker.Source); ok {
		source = src.Argument
	}

	return New(begin.Line, end.Line, name, source, hash.Argument), nil
}

// Modified reports whether the live content differs from the accepted baseline.
func (n *Named) Modified() bool {
	return n.Hash != n.TargetHash
}

// Finalize computes the section hash from its content.
func (n *Named) Finalize() {
	n.Hash = Digest(n.content)
}

// Compile accepts the current content as the new baseline. Returns Changed
// when the baseline moved.
func (n *Named) Compile() ChangeState {
	if n.TargetHash == n.Hash {
		return Unchanged
	}
	n.TargetHash = n.Hash
	return Changed
}

// Serialize renders the section with its marker comments. The hash marker
// carries the target hash, not the live hash, so an uncompiled local edit
// keeps serializing as modified until it is compiled.
func (n *Named) Serialize(prefix string) string {
	out := marker.Format(prefix, marker.Begin, n.Name, "")
	out += marker.Format(prefix, marker.Hash, n.Name, n.TargetHash)
	if n.Source != "" {
		out += marker.Format(prefix, marker.Source, n.Name, n.Source)
	}
	out += n.content
	out += marker.Format(prefix, marker.End, n.Name, "")
	return out
}

// Anonymous is an untracked stretch of file content between named sections.
type Anonymous struct {
	span
}

// NewAnonymous creates an untracked section spanning [start, end].
func NewAnonymous(start, end int) *Anonymous {
	return &Anonymous{span: span{startline: start, endline: end}}
}

// Finalize is a no-op; anonymous sections are never considered modified.
func (a *Anonymous) Finalize() {}

// Compile is a no-op for anonymous sections.
func (a *Anonymous) Compile() ChangeState { return Unchanged }

// Serialize renders the raw content without markers.
func (a *Anonymous) Serialize(string) string { return a.content }

// Digest returns the upper-hex SHA-256 digest of content.
func Digest(content string) string {
	return fmt.Sprintf("%X", sha256.Sum256([]byte(content)))
}
