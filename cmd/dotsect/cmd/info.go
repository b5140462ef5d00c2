package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/dotsect/internal/cmd/output"
	"github.com/agentstation/dotsect/pkg/document"
)

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Show tracking information for a file",
	Long: `Info reports how a file is tracked: the detected comment syntax, every
named section with its line range and modification status, and the
file-level target and permission declarations. Metafile-backed files
report the sidecar hash and overall modification state instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(_ *cobra.Command, args []string) error {
	doc, err := document.Load(args[0])
	if err != nil {
		return err
	}
	info := doc.Info()

	format, err := output.ParseFormat(globalFlags.Output)
	if err != nil {
		return err
	}
	if format != output.FormatTable && format != output.FormatWide {
		return output.NewFormatter(format).Format(os.Stdout, info)
	}

	if info.Metafile {
		fmt.Printf("metafile hash: %s\n", info.Hash)
		if info.Modified {
			fmt.Println("modified")
		} else {
			fmt.Println("unmodified")
		}
	} else {
		fmt.Printf("comment syntax: %s\n", info.CommentPrefix)
		if len(info.Sections) > 0 {
			data := output.Data{Headers: []string{"Range", "Name", "Status", "Source"}}
			for _, s := range info.Sections {
				data.Rows = append(data.Rows, []string{s.Range, s.Name, s.Status, s.Source})
			}
			if err := output.NewFormatter(format).Format(os.Stdout, data); err != nil {
				return err
			}
		}
	}

	if info.Permissions != nil {
		fmt.Printf("target file permissions: %d\n", *info.Permissions)
	}
	if info.Target != "" {
		fmt.Printf("target: %s\n", info.Target)
	}
	return nil
}
