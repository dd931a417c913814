package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var contentCmd = &cobra.Command{
	Use:   "content [text|-]",
	Short: "Print or replace the task text",
	Long: `With no argument the task text is printed. "-" replaces it with standard
input; anything else replaces it with the arguments joined by spaces.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := current
		if len(args) == 0 {
			fmt.Fprint(cmd.OutOrStdout(), s.doc.Content())
			return nil
		}

		text := strings.Join(args, " ")
		if len(args) == 1 && args[0] == "-" {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			text = string(data)
		}

		s.doc.SetContent(text)
		return s.commit()
	},
}

func init() {
	rootCmd.AddCommand(contentCmd)
}
