package cmd

import (
	"fmt"

	"github.com/entrepeneur4lyf/taskpad/internal/export"
	"github.com/spf13/cobra"
)

var (
	exportCopy bool
	// copyText is replaced in tests.
	copyText = export.Copy
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the assembled prompt",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := current
		src, err := s.exportSources()
		if err != nil {
			return err
		}

		text := export.Build(src, s.doc.Snapshot())
		if !exportCopy {
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		}
		if err := copyText(text); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "copied %d bytes\n", len(text))
		return nil
	},
}

func init() {
	exportCmd.Flags().BoolVarP(&exportCopy, "copy", "c", false, "Copy to the clipboard instead of printing")
	rootCmd.AddCommand(exportCmd)
}
