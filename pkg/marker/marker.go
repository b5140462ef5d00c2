// Package marker implements the in-band comment grammar that dotsect uses to
// delimit and track sections inside text files.
//
// A marker line has the shape
//
//	<ws>*<prefix><ws>*...<ws><section><ws><keyword>[<ws><argument>]
//
// Lines that do not match the grammar are ordinary file content. Parsing never
// fails; a malformed marker is reported and the line falls through as content.
package marker

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/agentstation/dotsect/pkg/constants"
	"github.com/agentstation/dotsect/pkg/logging"
)

// Kind identifies what a marker declares about its section.
type Kind string

const (
	// Begin opens a named section.
	Begin Kind = "begin"
	// End closes a named section.
	End Kind = "end"
	// Hash carries the accepted content hash of a section.
	Hash Kind = "hash"
	// Source points a section at the file it is updated from.
	Source Kind = "source"
	// Target declares the file the whole document is applied to.
	// Only valid for the "all" section.
	Target Kind = "target"
	// Permission declares the permission bits of the target file.
	// Only valid for the "all" section.
	Permission Kind = "permissions"
)

// KindFromKeyword maps a marker keyword to its Kind. The grammar accepts
// synonyms for section boundaries (begin|start, end|stop).
func KindFromKeyword(keyword string) (Kind, bool) {
	switch keyword {
	case "begin", "start":
		return Begin, true
	case "end", "stop":
		return End, true
	case "hash":
		return Hash, true
	case "source":
		return Source, true
	case "permissions":
		return Permission, true
	case "target":
		return Target, true
	default:
		return "", false
	}
}

// Marker is a single parsed marker line.
type Marker struct {
	// Line is the 1-based line number the marker was found at.
	Line int
	// Section is the section name the marker belongs to ("all" for file-level markers).
	Section string
	// Kind is the marker type.
	Kind Kind
	// Argument is the optional trailing token (hash digest, path, permission bits).
	Argument string
}

// Format renders a canonical marker line, newline-terminated.
func Format(prefix string, kind Kind, section, argument string) string {
	if argument != "" {
		return fmt.Sprintf("%s%s %s %s %s\n", prefix, constants.MarkerSentinel, section, kind, argument)
	}
	return fmt.Sprintf("%s%s %s %s\n", prefix, constants.MarkerSentinel, section, kind)
}

// Parser recognizes marker lines for a fixed comment prefix.
type Parser struct {
	prefix string
	re     *regexp.Regexp
}

// NewParser compiles a marker matcher for the given comment prefix.
func NewParser(prefix string) *Parser {
	return &Parser{
		prefix: prefix,
		re:     regexp.MustCompile(`^ *` + regexp.QuoteMeta(prefix) + ` *\.\.\. *(.*)`),
	}
}

// Parse attempts to interpret line as a marker. The second return value is
// false when the line is ordinary content. Invalid markers are logged and
// reported as content; Parse never errors.
func (p *Parser) Parse(line string, lineNumber int) (Marker, bool) {
	if !strings.HasPrefix(strings.TrimLeft(line, " "), p.prefix) {
		return Marker{}, false
	}

	captures := p.re.FindStringSubmatch(line)
	if captures == nil {
		return Marker{}, false
	}

	tokens := strings.Fields(captures[1])
	// needs at least a section and a keyword
	if len(tokens) < 2 {
		return Marker{}, false
	}

	section := tokens[0]
	keyword := tokens[1]
	argument := ""
	if len(tokens) > 2 {
		argument = tokens[2]
	}

	kind, ok := KindFromKeyword(keyword)
	if !ok {
		logging.Warn().Int("line", lineNumber).Str("keyword", keyword).
			Msg("incomplete marker comment")
		return Marker{}, false
	}

	switch kind {
	case Hash:
		if argument == "" {
			logging.Warn().Int("line", lineNumber).Msg("missing hash value")
			return Marker{}, false
		}
	case Source:
		if argument == "" {
			logging.Warn().Int("line", lineNumber).Msg("missing source file argument")
			return Marker{}, false
		}
	case Permission:
		// permissions can only be set for the entire file
		if section != constants.AllSection {
			logging.Warn().Int("line", lineNumber).
				Msg("permissions can only apply to the whole file")
			return Marker{}, false
		}
		if argument == "" {
			logging.Warn().Int("line", lineNumber).Msg("missing permission value")
			return Marker{}, false
		}
		if _, err := strconv.Atoi(argument); err != nil {
			logging.Warn().Int("line", lineNumber).Str("argument", argument).
				Msg("permission value is not a number")
			return Marker{}, false
		}
	case Target:
		if section != constants.AllSection {
			logging.Warn().Int("line", lineNumber).
				Msg("target can only apply to the whole file")
			return Marker{}, false
		}
		if argument == "" {
			logging.Warn().Int("line", lineNumber).Msg("missing target value")
			return Marker{}, false
		}
	}

	return Marker{
		Line:     lineNumber,
		Section:  section,
		Kind:     kind,
		Argument: argument,
	}, true
}

// Parse is a convenience wrapper that compiles a one-shot parser.
func Parse(line, prefix string, lineNumber int) (Marker, bool) {
	return NewParser(prefix).Parse(line, lineNumber)
}
