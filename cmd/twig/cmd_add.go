package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newAddCmd() *cobra.Command {
	var all, recursive bool

	cmd := &cobra.Command{
		Use:   "add [-A | -r] <paths...>",
		Short: "Stage files for the next tree",
		Args: func(cmd *cobra.Command, args []string) error {
			if all {
				if len(args) > 0 {
					return errors.New("--all takes no paths")
				}
				return nil
			}
			return cobra.MinimumNArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}

			if all {
				_, err = r.AddDir([]string{r.RootDir})
				return err
			}
			paths, err := absPaths(args)
			if err != nil {
				return err
			}
			if recursive {
				_, err = r.AddDir(paths)
				return err
			}
			_, err = r.Add(paths)
			return err
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "A", false, "stage every file in the working tree")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "stage every file below the given directories")
	cmd.MarkFlagsMutuallyExclusive("all", "recursive")
	return cmd
}

// absPaths resolves command-line paths against the working directory so the
// repository sees them independently of where the command was run.
func absPaths(args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for _, a := range args {
		abs, err := filepath.Abs(a)
		if err != nil {
			return nil, fmt.Errorf("resolve path %q: %w", a, err)
		}
		out = append(out, abs)
	}
	return out, nil
}
