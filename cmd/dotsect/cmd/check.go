package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/dotsect/internal/cmd/output"
	"github.com/agentstation/dotsect/internal/pathutil"
	"github.com/agentstation/dotsect/internal/walker"
	"github.com/agentstation/dotsect/pkg/document"
	"github.com/agentstation/dotsect/pkg/errors"
	"github.com/agentstation/dotsect/pkg/logging"
)

// checkRow is one finding of the check command.
type checkRow struct {
	File   string `json:"file"`
	Status string `json:"status"`
}

var checkCmd = &cobra.Command{
	Use:   "check <directory>",
	Short: "Report modified and unmanaged files under a directory",
	Long: `Check walks a directory and reports every file whose tracked content
diverged from its accepted baseline, plus files that carry no tracking
at all. Sidecar metafiles and VCS internals are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(_ *cobra.Command, args []string) error {
	root := pathutil.ExpandTilde(args[0])
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return errors.Wrapf(errors.ErrInvalidInput, "only directories can be checked: %s", args[0])
	}

	paths, err := walker.Files(root)
	if err != nil {
		return err
	}

	var rows []checkRow
	anyModified := false
	for _, path := range paths {
		doc, err := document.Load(path)
		if err != nil {
			logging.Debug().Str("file", path).Err(err).Msg("skipping unparseable file")
			continue
		}
		switch {
		case doc.Modified():
			rows = append(rows, checkRow{File: path, Status: "modified"})
			anyModified = true
		case !doc.IsManaged():
			rows = append(rows, checkRow{File: path, Status: "unmanaged"})
		}
	}

	format, err := output.ParseFormat(globalFlags.Output)
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		if err := output.NewFormatter(format).Format(os.Stdout, rows); err != nil {
			return err
		}
	}
	if !anyModified && (format == output.FormatTable || format == output.FormatWide) {
		fmt.Println("no modified files")
	}
	return nil
}
