package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is stamped at release build time via -ldflags; left as "dev"
// for local builds, the same placeholder convention cobra-based CLIs in
// the pack use.
var version = "dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the gotpl version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "gotpl "+version)
			return nil
		},
	}
}
