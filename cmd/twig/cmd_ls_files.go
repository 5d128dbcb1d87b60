package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLsFilesCmd() *cobra.Command {
	var stage bool

	cmd := &cobra.Command{
		Use:   "ls-files",
		Short: "List staged files in index order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}
			entries, err := r.Index.Snapshot()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, e := range entries {
				if stage {
					fmt.Fprintf(out, "%s %s\n", e.Hash, e.Path)
				} else {
					fmt.Fprintln(out, e.Path)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&stage, "stage", "s", false, "show the staged blob hash of each file")
	return cmd
}
