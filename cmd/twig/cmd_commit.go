package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newCommitCmd() *cobra.Command {
	var message string
	var author string

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Record the staged tree as a commit and move HEAD",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				return fmt.Errorf("commit message is required (-m)")
			}

			r, err := openRepo(cmd)
			if err != nil {
				return err
			}

			if author == "" && r.Config.User.Name == "" {
				author = os.Getenv("USER")
				if author == "" {
					author = "unknown"
				}
			}

			h, err := r.Commit(message, author)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", h.Short(), message)
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().StringVar(&author, "author", "", "override author (default: user.name, then $USER)")

	return cmd
}
