package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Re-hash stored objects and check staged blobs are present",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}

			report, err := r.Verify()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, c := range report.Corrupt {
				fmt.Fprintf(out, "corrupt: %v\n", c)
			}
			for _, e := range report.Missing {
				fmt.Fprintf(out, "missing: blob %s for %s\n", e.Hash, e.Path)
			}
			if !report.OK() {
				return fmt.Errorf("verify: %d corrupt object(s), %d missing blob(s)", len(report.Corrupt), len(report.Missing))
			}

			fmt.Fprintf(
				out,
				"ok: verified %d object(s) (%d tree(s), %d blob(s)), %d index entr(ies)\n",
				report.Objects,
				report.Trees,
				report.Blobs,
				report.IndexEntries,
			)
			return nil
		},
	}
}
