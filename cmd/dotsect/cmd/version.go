package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("dotsect %s\n", Version)
		fmt.Printf("  commit:   %s\n", Commit)
		fmt.Printf("  built:    %s\n", Date)
		fmt.Printf("  built by: %s\n", BuiltBy)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
