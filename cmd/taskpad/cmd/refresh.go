package cmd

import (
	"fmt"

	"github.com/entrepeneur4lyf/taskpad/internal/ingest"
	"github.com/spf13/cobra"
)

var refreshDiff bool

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Re-read attached files from disk",
	Long: `Re-reads every attached file and replaces the stored copy when it changed.
Files that can no longer be read stay attached as they were.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := current
		all := s.doc.Files()
		paths := make([]string, len(all))
		for i, f := range all {
			paths[i] = f.Path
		}

		res, err := s.loader.Reload(cmd.Context(), paths)
		if err != nil {
			return err
		}
		changes := s.doc.RefreshFiles(res.Files)
		if err := s.commit(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, c := range changes {
			if refreshDiff {
				fmt.Fprint(out, ingest.Diff(c.New.Path, c.Old.Content, c.New.Content))
				continue
			}
			added, removed := ingest.DiffStat(c.Old.Content, c.New.Content)
			fmt.Fprintf(out, "updated %s (+%d -%d)\n", c.New.Path, added, removed)
		}
		for _, skip := range res.Skipped {
			fmt.Fprintf(out, "kept %s: %s\n", skip.Path, skip.Reason)
		}
		if !refreshDiff {
			fmt.Fprintf(out, "%d of %d files changed\n", len(changes), len(all))
		}
		return nil
	},
}

func init() {
	refreshCmd.Flags().BoolVar(&refreshDiff, "diff", false, "Print a unified diff of each change")
	rootCmd.AddCommand(refreshCmd)
}
