package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/dotsect/pkg/document"
	"github.com/agentstation/dotsect/pkg/reconcile"
)

var (
	updateInput string
	updatePrint bool
)

var updateCmd = &cobra.Command{
	Use:   "update <target>",
	Short: "Pull fresh section content into a file from its sources",
	Long: `Update refreshes a target file from the sources its sections declare
with "source" markers (or the metafile source key). Each referenced
source is read once per invocation. With --input the whole input file
is applied to the target instead of the per-section sources.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().StringVarP(&updateInput, "input", "i", "",
		"apply this file to the target instead of per-section sources")
	updateCmd.Flags().BoolVarP(&updatePrint, "print", "p", false,
		"print the updated file instead of writing it")
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(_ *cobra.Command, args []string) error {
	target, err := document.Load(args[0])
	if err != nil {
		return err
	}

	changed := false
	if updateInput != "" {
		source, err := document.Load(updateInput)
		if err != nil {
			return err
		}
		_, state := reconcile.ApplyFile(source, target)
		changed = state.DidChange()
	} else {
		_, state := reconcile.Update(target, reconcile.NewCache())
		changed = state.DidChange()
	}

	if updatePrint {
		fmt.Print(target.Serialize())
		return nil
	}
	if changed {
		if err := target.WriteFile(); err != nil {
			return err
		}
		fmt.Println("updated file")
	} else {
		fmt.Println("no updates necessary")
	}
	return nil
}
