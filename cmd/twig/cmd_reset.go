package main

import (
	"github.com/spf13/cobra"
)

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset [paths...]",
		Short: "Reset index entries to their HEAD versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}
			paths, err := absPaths(args)
			if err != nil {
				return err
			}
			return r.Reset(paths)
		},
	}
}
