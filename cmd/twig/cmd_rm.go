package main

import (
	"github.com/spf13/cobra"
)

func newRmCmd() *cobra.Command {
	var cached bool

	cmd := &cobra.Command{
		Use:   "rm [--cached] <files...>",
		Short: "Unstage files and remove them from the working tree",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}
			paths, err := absPaths(args)
			if err != nil {
				return err
			}
			return r.Remove(paths, cached)
		},
	}
	cmd.Flags().BoolVar(&cached, "cached", false, "remove from index only, keep files on disk")
	return cmd
}
