package cmd

import (
	"fmt"
	"strconv"

	"github.com/entrepeneur4lyf/taskpad/internal/format"
	"github.com/entrepeneur4lyf/taskpad/internal/tui/components/files"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <path|glob>...",
	Short: "Attach files, directories or doublestar patterns",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := current
		res, err := s.loader.Load(cmd.Context(), args)
		if err != nil {
			return err
		}

		added := s.doc.AddFiles(res.Files)
		if err := s.commit(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "added %d of %d files\n", added, len(res.Files))
		for _, skip := range res.Skipped {
			fmt.Fprintf(out, "skipped %s: %s\n", skip.Path, skip.Reason)
		}
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List attached files",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		all := current.doc.Files()
		out := cmd.OutOrStdout()
		for i, f := range all {
			fmt.Fprintf(out, "%3d  %s\n", i, files.Row(f))
		}
		fmt.Fprintf(out, "%d files, %s\n", len(all), format.Size(all.TotalSize()))
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <index>",
	Short: "Detach the file at index (see list)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("index must be a number: %q", args[0])
		}

		s := current
		removed, _, err := s.doc.DeleteFile(index)
		if err != nil {
			return err
		}
		if err := s.commit(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", removed.Path)
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Detach every file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := current
		n := len(s.doc.Files())
		s.doc.ClearFiles()
		if err := s.commit(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d files\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd, listCmd, rmCmd, clearCmd)
}
