// Package walker enumerates candidate files for bulk operations. It yields
// regular files under a root directory, skipping VCS internals and metafile
// sidecars, which are loaded through their parent file instead.
package walker

import (
	"strings"

	"github.com/karrick/godirwalk"

	"github.com/agentstation/dotsect/pkg/constants"
	"github.com/agentstation/dotsect/pkg/errors"
	"github.com/agentstation/dotsect/pkg/logging"
)

// Files walks root and returns the paths of candidate files in traversal
// order. Unreadable entries are logged and skipped.
func Files(root string) ([]string, error) {
	var paths []string

	err := godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				if de.Name() == constants.GitDirectory {
					return godirwalk.SkipThis
				}
				return nil
			}
			if !de.IsRegular() {
				return nil
			}
			if strings.HasSuffix(de.Name(), constants.MetafileSuffix) {
				return nil
			}
			paths = append(paths, path)
			return nil
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			logging.Warn().Str("path", path).Err(err).Msg("skipping unreadable entry")
			return godirwalk.SkipNode
		},
		Unsorted: false,
	})
	if err != nil {
		return nil, errors.WrapIO("walk", root, err)
	}
	return paths, nil
}
