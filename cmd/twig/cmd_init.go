package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/odvcencio/twig/pkg/repo"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Create an empty twig repository or complete an existing one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			abs, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			existed := false
			if info, err := os.Stat(filepath.Join(abs, repo.DirName)); err == nil && info.IsDir() {
				existed = true
			}

			r, err := repo.Init(abs)
			if err != nil {
				return err
			}

			verb := "initialized empty"
			if existed {
				verb = "reinitialized existing"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s twig repository in %s\n", verb, r.TwigDir+string(filepath.Separator))
			return nil
		},
	}
}
