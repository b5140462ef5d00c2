// Package document assembles raw file lines into an ordered, contiguous
// partition of sections, and serializes it back to text. A document is either
// comment-based (markers inside the file) or metafile-backed (a TOML sidecar
// tracks the whole content); the two are mutually exclusive.
package document

import (
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/agentstation/dotsect/internal/detect"
	"github.com/agentstation/dotsect/pkg/constants"
	"github.com/agentstation/dotsect/pkg/errors"
	"github.com/agentstation/dotsect/pkg/logging"
	"github.com/agentstation/dotsect/pkg/marker"
	"github.com/agentstation/dotsect/pkg/metafile"
	"github.com/agentstation/dotsect/pkg/section"
)

// Document is a parsed file: an ordered sequence of sections whose ranges
// partition the file's lines with no gaps and no overlaps, or a metafile-backed
// opaque content blob.
type Document struct {
	// Path is the file the document was read from.
	Path string
	// CommentPrefix is the comment syntax used for marker lines.
	CommentPrefix string
	// Sections partition the file. Empty for metafile-backed documents.
	Sections []section.Section
	// Markers is the log of recognized marker lines, in file order.
	Markers []marker.Marker
	// TargetPath is the file this document applies to, from the "all target" marker.
	TargetPath string
	// Permissions is the parsed target permission value, if declared.
	Permissions *int
	// Meta is the sidecar for metafile-backed documents. Mutually exclusive
	// with Sections.
	Meta *metafile.MetaFile

	// permissionsArg preserves the raw permission marker argument for serialization.
	permissionsArg string
}

// Option configures document loading.
type Option func(*loadOptions)

type loadOptions struct {
	commentPrefix string
}

// WithCommentPrefix overrides comment-prefix detection with an explicit prefix.
func WithCommentPrefix(prefix string) Option {
	return func(o *loadOptions) {
		o.commentPrefix = prefix
	}
}

// Load reads and assembles the document at path. When a sidecar metafile
// exists next to the file, the document is metafile-backed and the file
// content stays opaque; otherwise the file is partitioned into sections.
func Load(path string, opts ...Option) (*Document, error) {
	var options loadOptions
	for _, opt := range opts {
		opt(&options)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	content := string(raw)

	if metafile.Exists(path) {
		meta, err := metafile.Load(metafile.SidecarPath(path), content)
		if err != nil {
			return nil, err
		}
		return &Document{
			Path:        path,
			TargetPath:  meta.Target,
			Permissions: meta.Permissions,
			Meta:        meta,
		}, nil
	}

	lines := splitLines(content)
	prefix := options.commentPrefix
	if prefix == "" {
		firstLine := ""
		if len(lines) > 0 {
			firstLine = lines[0]
		}
		prefix = detect.CommentPrefix(path, firstLine)
	}

	return FromLines(path, prefix, lines), nil
}

// contentLine is a non-marker line tagged with its 1-based line number.
type contentLine struct {
	number int
	text   string
}

// FromLines assembles a comment-based document from raw lines.
//
// The assembly is: recognize markers, validate sections, resolve overlaps
// conservatively (both sections of an overlapping pair are discarded), fill
// the gaps between named sections with anonymous ones, then distribute
// content lines and finalize hashes.
func FromLines(path, prefix string, lines []string) *Document {
	parser := marker.NewParser(prefix)
	commentMap := marker.NewMap()
	var markers []marker.Marker
	var content []contentLine

	for i, line := range lines {
		number := i + 1
		if mk, ok := parser.Parse(line, number); ok {
			commentMap.Push(mk)
			markers = append(markers, mk)
			continue
		}
		content = append(content, contentLine{number: number, text: line})
	}

	commentMap.RemoveIncomplete()

	doc := &Document{
		Path:          path,
		CommentPrefix: prefix,
		Markers:       markers,
	}

	if target, ok := commentMap.Get(constants.AllSection, marker.Target); ok {
		doc.TargetPath = target.Argument
	}
	if perm, ok := commentMap.Get(constants.AllSection, marker.Permission); ok {
		doc.permissionsArg = perm.Argument
		doc.Permissions = parsePermissionArgument(perm.Argument)
	}

	var named []section.Section
	for _, name := range commentMap.Sections() {
		s, err := section.FromCommentMap(name, commentMap)
		if err != nil {
			logging.Warn().Str("section", name).Err(err).Msg("skipping section")
			continue
		}
		named = append(named, s)
	}

	// sort sections by line, retaining file order on ties
	sort.SliceStable(named, func(i, j int) bool {
		return named[i].StartLine() < named[j].StartLine()
	})

	named = dropOverlapping(named)

	doc.Sections = fillGaps(named, len(lines))

	for _, s := range doc.Sections {
		for _, c := range content {
			if c.number > s.EndLine() {
				break
			}
			if c.number < s.StartLine() {
				continue
			}
			s.AppendLine(c.text)
		}
		s.Finalize()
	}

	return doc
}

// dropOverlapping scans adjacent sorted pairs and discards both sections of
// any overlapping pair. Ambiguous layouts fall back to untracked content;
// no attempt is made to salvage the earlier section.
func dropOverlapping(sections []section.Section) []section.Section {
	var kept []section.Section
	for i := 0; i < len(sections); i++ {
		if i+1 < len(sections) && sections[i+1].StartLine() < sections[i].EndLine() {
			logging.Warn().
				Int("startline", sections[i].StartLine()).
				Int("endline", sections[i].EndLine()).
				Msg("overlapping sections discarded")
			i++ // skip past the pair
			continue
		}
		kept = append(kept, sections[i])
	}
	return kept
}

// fillGaps synthesizes anonymous sections so that the result partitions
// [1, lastLine] contiguously. With no named sections the whole file becomes
// one anonymous section.
func fillGaps(named []section.Section, lastLine int) []section.Section {
	if len(named) == 0 {
		if lastLine < 1 {
			lastLine = 1
		}
		return []section.Section{section.NewAnonymous(1, lastLine)}
	}

	var all []section.Section
	cursor := 1
	for _, s := range named {
		if cursor < s.StartLine() {
			all = append(all, section.NewAnonymous(cursor, s.StartLine()-1))
		}
		all = append(all, s)
		cursor = s.EndLine() + 1
	}
	if cursor <= lastLine {
		all = append(all, section.NewAnonymous(cursor, lastLine))
	}
	return all
}

// parsePermissionArgument strips the fixed-width prefix from a permission
// marker argument and parses the remainder as an integer. The encoding is
// preserved bit-for-bit for compatibility with existing consumers.
func parsePermissionArgument(arg string) *int {
	if len(arg) <= constants.PermissionArgumentPrefixLen {
		return nil
	}
	value, err := strconv.Atoi(arg[constants.PermissionArgumentPrefixLen:])
	if err != nil {
		return nil
	}
	return &value
}

// splitLines splits file content into lines, dropping the empty trailing
// element produced by a final newline.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// NamedSections returns the tracked sections in file order.
func (d *Document) NamedSections() []*section.Named {
	var named []*section.Named
	for _, s := range d.Sections {
		if n, ok := s.(*section.Named); ok {
			named = append(named, n)
		}
	}
	return named
}

// Section returns the named section with the given name.
func (d *Document) Section(name string) (*section.Named, bool) {
	for _, n := range d.NamedSections() {
		if n.Name == name {
			return n, true
		}
	}
	return nil, false
}

// HasSection reports whether a named section exists.
func (d *Document) HasSection(name string) bool {
	_, ok := d.Section(name)
	return ok
}

// CountNamed returns the number of tracked sections.
func (d *Document) CountNamed() int {
	return len(d.NamedSections())
}

// IsManaged reports whether the document carries tracking metadata, either a
// metafile or at least one named section.
func (d *Document) IsManaged() bool {
	if d.Meta != nil {
		return true
	}
	return d.CountNamed() > 0
}

// Modified reports whether any tracked content diverged from its accepted hash.
func (d *Document) Modified() bool {
	if d.Meta != nil {
		return d.Meta.Modified
	}
	for _, n := range d.NamedSections() {
		if n.Modified() {
			return true
		}
	}
	return false
}

// Compile accepts the current content as the new baseline: every named
// section's target hash moves to its live hash (metafile-backed documents
// accept the whole content hash). Returns Changed if any baseline moved.
func (d *Document) Compile() section.ChangeState {
	if d.Meta != nil {
		return d.Meta.Compile()
	}
	state := section.Unchanged
	for _, s := range d.Sections {
		if s.Compile() == section.Changed {
			state = section.Changed
		}
	}
	return state
}

// ReplaceSection swaps the named section with the same name as n for n.
// Returns false when no such section exists. Line ranges go stale after a
// replacement; serialization concatenates sections in order and does not
// depend on them.
func (d *Document) ReplaceSection(n *section.Named) bool {
	for i, s := range d.Sections {
		if existing, ok := s.(*section.Named); ok && existing.Name == n.Name {
			d.Sections[i] = n
			return true
		}
	}
	return false
}

// DeleteSection removes a named section from the partition. The freed range
// is not re-absorbed; callers serialize and re-parse for a fresh partition.
func (d *Document) DeleteSection(name string) bool {
	for i, s := range d.Sections {
		if n, ok := s.(*section.Named); ok && n.Name == name {
			d.Sections = append(d.Sections[:i], d.Sections[i+1:]...)
			return true
		}
	}
	return false
}
