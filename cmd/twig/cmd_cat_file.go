package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/twig/pkg/object"
)

func newCatFileCmd() *cobra.Command {
	var showType, showSize, pretty bool

	cmd := &cobra.Command{
		Use:   "cat-file [-t | -s | -p] <hash | HEAD | tree-ish:path>",
		Short: "Print the content, type or size of a stored object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}
			h, err := resolveObject(r, args[0])
			if err != nil {
				return err
			}
			data, err := r.Store.Get(h)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case showType:
				fmt.Fprintln(out, objectType(data))
			case showSize:
				fmt.Fprintln(out, len(data))
			case pretty && objectType(data) == string(object.KindTree):
				entries, err := object.UnmarshalTree(data)
				if err != nil {
					return err
				}
				for _, e := range entries {
					fmt.Fprintf(out, "%s %s\t%s\n", e.Kind, e.Hash, e.Name)
				}
			default:
				_, err = out.Write(data)
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&showType, "type", "t", false, "print the object type")
	cmd.Flags().BoolVarP(&showSize, "size", "s", false, "print the object size in bytes")
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "pretty-print trees")
	cmd.MarkFlagsMutuallyExclusive("type", "size", "pretty")
	return cmd
}
