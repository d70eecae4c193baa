// Command boardreport analyses a board HTML export offline and writes the
// same workbook the web service serves, plus optional CSV files.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X main.Version=..."
var (
	Version   = "dev"
	BuildTime = ""
	Commit    = ""
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "boardreport",
		Short:         "Summarise a service board export into Scope, Lane, Label and Quoted Price reports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newAnalyzeCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "boardreport %s", Version)
			if Commit != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " (%s)", Commit)
			}
			if BuildTime != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " built %s", BuildTime)
			}
			fmt.Fprintln(cmd.OutOrStdout())
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
