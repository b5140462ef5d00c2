package document

import (
	"os"
	"regexp"
	"strings"

	"github.com/agentstation/dotsect/internal/pathutil"
	"github.com/agentstation/dotsect/pkg/constants"
	"github.com/agentstation/dotsect/pkg/errors"
	"github.com/agentstation/dotsect/pkg/logging"
	"github.com/agentstation/dotsect/pkg/marker"
	"github.com/agentstation/dotsect/pkg/metafile"
	"github.com/agentstation/dotsect/pkg/section"
)

var hashbangRe = regexp.MustCompile(`^#!/.*`)

// Serialize renders the document back to text. An untouched document
// serializes to its original content; named sections carry canonical marker
// comments with the accepted (target) hash.
//
// File-level property markers are emitted before the first section, except
// when the file starts with a hashbang line: then they are placed directly
// below it so the hashbang keeps its mandatory first-line position.
func (d *Document) Serialize() string {
	if d.Meta != nil {
		return d.Meta.Content()
	}

	properties := d.propertyMarkers()

	var out strings.Builder
	sections := d.Sections

	if properties != "" {
		if hashbang, rest, ok := d.splitHashbang(); ok {
			out.WriteString(hashbang + "\n")
			out.WriteString(properties)
			out.WriteString(rest)
			sections = sections[1:]
		} else {
			out.WriteString(properties)
		}
	}

	for _, s := range sections {
		out.WriteString(s.Serialize(d.CommentPrefix))
	}
	return out.String()
}

// propertyMarkers renders the file-level "all" markers.
func (d *Document) propertyMarkers() string {
	var out strings.Builder
	if d.TargetPath != "" {
		out.WriteString(marker.Format(d.CommentPrefix, marker.Target, constants.AllSection, d.TargetPath))
	}
	if d.permissionsArg != "" {
		out.WriteString(marker.Format(d.CommentPrefix, marker.Permission, constants.AllSection, d.permissionsArg))
	}
	return out.String()
}

// splitHashbang returns the hashbang line and the remainder of the first
// section's content when the document starts with an anonymous section whose
// first line is a hashbang.
func (d *Document) splitHashbang() (hashbang, rest string, ok bool) {
	if len(d.Sections) == 0 {
		return "", "", false
	}
	first, isAnon := d.Sections[0].(*section.Anonymous)
	if !isAnon {
		return "", "", false
	}
	content := first.Content()
	firstLine, remainder, _ := strings.Cut(content, "\n")
	if !hashbangRe.MatchString(firstLine) {
		return "", "", false
	}
	return firstLine, remainder, true
}

// Hashbang returns the document's hashbang line, if its first section is
// anonymous and starts with one.
func (d *Document) Hashbang() (string, bool) {
	hashbang, _, ok := d.splitHashbang()
	return hashbang, ok
}

// WriteFile writes the serialized document back to its path, recreating the
// file. Metafile-backed documents write the parent content and refresh the
// sidecar. Declared permissions are applied after writing.
func (d *Document) WriteFile() error {
	path := pathutil.ExpandTilde(d.Path)

	if err := os.WriteFile(path, []byte(d.Serialize()), constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	if d.Meta != nil {
		if err := d.Meta.WriteFile(); err != nil {
			return err
		}
	}

	if d.Permissions != nil {
		mode, err := metafile.PermissionMode(*d.Permissions)
		if err != nil {
			return err
		}
		logging.Debug().Str("file", path).Int("permissions", *d.Permissions).Msg("setting permissions")
		if err := os.Chmod(path, mode); err != nil {
			return errors.WrapIO("chmod", path, err)
		}
	}
	return nil
}

// Query renders the named sections in names, or the whole document when
// names is empty.
func (d *Document) Query(names []string) string {
	if d.Meta != nil {
		return d.Meta.Content()
	}
	if len(names) == 0 {
		return d.Serialize()
	}
	var out strings.Builder
	for _, name := range names {
		if s, ok := d.Section(name); ok {
			out.WriteString(s.Serialize(d.CommentPrefix))
		}
	}
	return out.String()
}
