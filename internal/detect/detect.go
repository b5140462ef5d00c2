// Package detect resolves the comment prefix to use for a file, based on its
// name, extension or hashbang line. The lookup tables are fixed process-wide
// data; callers that know better pass an explicit prefix instead.
package detect

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/agentstation/dotsect/pkg/constants"
)

// prefixByFileName maps well-known config file names to their comment prefix.
var prefixByFileName = map[string]string{
	"dunstrc":    "#",
	"jgmenurc":   "#",
	"zshrc":      "#",
	"bashrc":     "#",
	"Xresources": "!",
	"xsettingsd": "#",
	"vimrc":      `"`,
}

// prefixByExtension maps file extensions to their comment prefix.
var prefixByExtension = map[string]string{
	"py":         "#",
	"sh":         "#",
	"zsh":        "#",
	"bash":       "#",
	"fish":       "#",
	"c":          "//",
	"cpp":        "//",
	"rasi":       "//",
	"desktop":    "#",
	"conf":       "#",
	"vim":        `"`,
	"reg":        ";",
	"rc":         "#",
	"ini":        ";",
	"xresources": "!",
}

// prefixByInterpreter maps hashbang interpreters to their comment prefix.
var prefixByInterpreter = map[string]string{
	"python": "#",
	"sh":     "#",
	"bash":   "#",
	"zsh":    "#",
	"fish":   "#",
	"node":   "//",
}

var hashbangRe = regexp.MustCompile(`^#!/.*[/ ](.*)$`)

// CommentPrefix determines the comment prefix for a file from its name,
// extension, or hashbang first line, in that order. Falls back to "#".
func CommentPrefix(path, firstLine string) string {
	name := strings.TrimPrefix(filepath.Base(path), ".")
	if prefix, ok := prefixByFileName[name]; ok {
		return prefix
	}

	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if prefix, ok := prefixByExtension[ext]; ok {
		return prefix
	}

	if captures := hashbangRe.FindStringSubmatch(firstLine); captures != nil {
		if prefix, ok := prefixByInterpreter[captures[1]]; ok {
			return prefix
		}
	}

	return constants.DefaultCommentPrefix
}
