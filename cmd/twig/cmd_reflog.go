package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newReflogCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "reflog",
		Short: "Show the history of HEAD updates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}
			entries, err := r.ReadReflog(limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, e := range entries {
				fmt.Fprintf(out, "%s HEAD@{%d}: %s\n", e.NewHash.Short(), i, e.Reason)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "max-count", "n", 20, "limit the number of entries shown")
	return cmd
}
