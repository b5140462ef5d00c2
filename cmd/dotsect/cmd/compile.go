package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/dotsect/pkg/document"
	"github.com/agentstation/dotsect/pkg/metafile"
)

var compileMetafile bool

var compileCmd = &cobra.Command{
	Use:   "compile <file>...",
	Short: "Accept the current content of tracked sections as the new baseline",
	Long: `Compile recomputes every tracked hash from the file's current content
and stores it as the accepted baseline. A compiled file reports all of
its sections as unmodified until it is edited again.

With --metafile a TOML sidecar is created (or refreshed) next to the
file instead of using in-file marker comments.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCompile,
}

func init() {
	compileCmd.Flags().BoolVarP(&compileMetafile, "metafile", "m", false,
		"track the file through a sidecar metafile instead of comments")
	rootCmd.AddCommand(compileCmd)
}

func runCompile(_ *cobra.Command, args []string) error {
	for _, path := range args {
		if compileMetafile {
			m, err := metafile.ForParent(path)
			if err != nil {
				return err
			}
			m.Compile()
			if err := m.WriteFile(); err != nil {
				return err
			}
			fmt.Printf("compiled metafile for %s\n", path)
			continue
		}

		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			fmt.Fprintf(os.Stderr, "file %s does not exist\n", path)
			continue
		}
		doc, err := document.Load(path)
		if err != nil {
			return err
		}
		if doc.Compile().DidChange() {
			if err := doc.WriteFile(); err != nil {
				return err
			}
			fmt.Printf("compiled %s\n", path)
		} else {
			fmt.Printf("%s already compiled\n", path)
		}
	}
	return nil
}
