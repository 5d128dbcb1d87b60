package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/twig/pkg/object"
	"github.com/odvcencio/twig/pkg/tree"
)

func newLsTreeCmd() *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "ls-tree [-r] <tree-ish>",
		Short: "List the entries of a tree object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}
			h, err := resolveTreeish(r, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			return tree.Walk(r.Store, h, func(path string, e object.TreeEntry) error {
				if recursive && e.IsTree() {
					return nil
				}
				fmt.Fprintf(out, "%s %s\t%s\n", e.Kind, e.Hash, path)
				if e.IsTree() {
					return tree.SkipDir
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "recurse into subtrees and list only files")
	return cmd
}
