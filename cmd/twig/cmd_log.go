package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/odvcencio/twig/pkg/repo"
)

func newLogCmd() *cobra.Command {
	var oneline bool
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show commit history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}
			head, err := r.Head()
			if err != nil {
				return err
			}
			if head == "" {
				return fmt.Errorf("no commits yet")
			}

			entries, err := r.Log(head, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, entry := range entries {
				c := entry.Commit
				if oneline {
					fmt.Fprintf(out, "%s %s\n", entry.Hash.Short(), repo.FirstLine(c.Message))
					continue
				}
				fmt.Fprintf(out, "commit %s\n", entry.Hash)
				fmt.Fprintf(out, "tree   %s\n", c.TreeHash)
				fmt.Fprintf(out, "Author: %s\n", c.Author)
				fmt.Fprintf(out, "Date:   %s\n", time.Unix(c.Timestamp, 0).Format("2006-01-02 15:04:05"))
				fmt.Fprintln(out)
				fmt.Fprintf(out, "    %s\n", c.Message)
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&oneline, "oneline", false, "show one line per commit")
	cmd.Flags().IntVarP(&limit, "max-count", "n", 20, "limit the number of commits shown")
	return cmd
}
