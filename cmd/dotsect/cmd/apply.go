package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/dotsect/internal/pathutil"
	"github.com/agentstation/dotsect/internal/walker"
	"github.com/agentstation/dotsect/pkg/errors"
	"github.com/agentstation/dotsect/pkg/logging"
	"github.com/agentstation/dotsect/pkg/reconcile"
)

var applyCmd = &cobra.Command{
	Use:   "apply <file|directory>",
	Short: "Apply tracked files to their declared targets",
	Long: `Apply propagates a source file into the target it declares with an
"all target" marker (or metafile target key). A missing target file is
created from the source wholesale; an existing target only receives
sections that carry no local modifications on either side.

Given a directory, every file underneath that declares a target is
applied.`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)
}

func runApply(_ *cobra.Command, args []string) error {
	path := pathutil.ExpandTilde(args[0])
	info, err := os.Stat(path)
	if err != nil {
		return errors.WrapIO("open", args[0], err)
	}

	if !info.IsDir() {
		result, err := reconcile.Apply(path)
		if err != nil {
			return err
		}
		reportApply(result)
		return nil
	}

	paths, err := walker.Files(path)
	if err != nil {
		return err
	}
	doneSomething := false
	for _, candidate := range paths {
		result, err := reconcile.Apply(candidate)
		if err != nil {
			// files without a target declaration are normal in a tree walk
			if errors.Is(err, errors.ErrNoTarget) {
				logging.Debug().Str("file", candidate).Msg("no target declared")
			} else {
				logging.Warn().Str("file", candidate).Err(err).Msg("apply failed")
			}
			continue
		}
		if result.Changed {
			reportApply(result)
			doneSomething = true
		}
	}
	if !doneSomething {
		fmt.Println("nothing to do")
	}
	return nil
}

func reportApply(result *reconcile.Result) {
	switch {
	case result.Created:
		fmt.Printf("applied %s to create %s\n", result.Source, result.Target)
	case result.Changed:
		fmt.Printf("applied %s to %s\n", result.Source, result.Target)
	default:
		fmt.Printf("%s already up to date\n", result.Target)
	}
}
