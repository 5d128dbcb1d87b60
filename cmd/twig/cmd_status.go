package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/twig/pkg/repo"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show staged, unstaged and untracked files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}
			entries, err := r.Status()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "nothing to commit, working tree clean")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%c%c %s\n", statusCode(e.IndexStatus), statusCode(e.WorkStatus), e.Path)
			}
			return nil
		},
	}
}

// statusCode renders one side of a status entry in short format.
func statusCode(s repo.FileStatus) byte {
	switch s {
	case repo.StatusNew:
		return 'A'
	case repo.StatusModified, repo.StatusDirty:
		return 'M'
	case repo.StatusDeleted:
		return 'D'
	case repo.StatusUntracked:
		return '?'
	default:
		return ' '
	}
}
