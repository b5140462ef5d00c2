// Package pathutil provides path expansion and file creation helpers shared
// by the document loader and the reconciliation engine.
package pathutil

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/agentstation/dotsect/pkg/constants"
	"github.com/agentstation/dotsect/pkg/errors"
)

// ExpandTilde replaces a leading "~/" with the user's home directory.
func ExpandTilde(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/"))
}

// CreateFile creates an empty file at path, making parent directories as
// needed. Returns false when the file already exists.
func CreateFile(path string) (bool, error) {
	expanded := ExpandTilde(path)

	if info, err := os.Stat(expanded); err == nil && info.Mode().IsRegular() {
		return false, nil
	}

	if dir := filepath.Dir(expanded); dir != "" {
		if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
			return false, errors.WrapIO("create", dir, err)
		}
	}

	f, err := os.Create(expanded)
	if err != nil {
		return false, errors.WrapIO("create", expanded, err)
	}
	if err := f.Close(); err != nil {
		return false, errors.WrapIO("close", expanded, err)
	}
	return true, nil
}
