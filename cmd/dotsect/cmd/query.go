package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/dotsect/pkg/document"
)

var querySections []string

var queryCmd = &cobra.Command{
	Use:   "query <file>",
	Short: "Print a file or individual sections of it",
	Long: `Query prints the serialized form of a tracked file. With --section the
output is limited to the named sections, marker comments included.
Metafile-backed files always print their whole content.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringArrayVarP(&querySections, "section", "s", nil,
		"section to print (repeatable)")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(_ *cobra.Command, args []string) error {
	doc, err := document.Load(args[0])
	if err != nil {
		return err
	}
	fmt.Print(doc.Query(querySections))
	return nil
}
