package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tmarback/BlakeBot-sub002/cmd/migrate"
	"github.com/tmarback/BlakeBot-sub002/cmd/store"
)

const (
	Version = "0.2.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "blakestore",
		Short: "typed persistent storage for chat bots",
		Long: fmt.Sprintf(`blakestore (v%s)

A typed key-value storage layer with pluggable backends,
per-view caching and translator-based value encoding.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of blakestore",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("blakestore v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(store.StoreCommands)
	RootCmd.AddCommand(migrate.MigrateCmd)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
