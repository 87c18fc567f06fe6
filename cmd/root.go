// Package cmd is the fintrek command line: the API server and database chores.
package cmd

import (
	"github.com/spf13/cobra"
)

const version = "1.0.0"

func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "fintrek",
		Short:         "FinTrek financial-literacy backend",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCommand(), newMigrateCommand(), newSeedCommand())
	return root
}

// Execute runs the command line with os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}
