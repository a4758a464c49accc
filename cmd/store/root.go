package store

import (
	"github.com/spf13/cobra"

	"github.com/tmarback/BlakeBot-sub002/cmd/util"
	"github.com/tmarback/BlakeBot-sub002/lib/storage"
)

var (
	database *storage.Database

	// StoreCommands represents the store command group
	StoreCommands = &cobra.Command{
		Use:                "store",
		Short:              "Perform operations on the configured storage backend",
		PersistentPreRunE:  setupDatabase,
		PersistentPostRunE: teardownDatabase,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add common storage flags to the store command
	util.SetupStorageFlags(StoreCommands)

	// Add subcommands
	StoreCommands.AddCommand(setCmd)
	StoreCommands.AddCommand(addCmd)
	StoreCommands.AddCommand(getCmd)
	StoreCommands.AddCommand(delCmd)
	StoreCommands.AddCommand(hasCmd)
	StoreCommands.AddCommand(lenCmd)
	StoreCommands.AddCommand(keysCmd)
	StoreCommands.AddCommand(clearCmd)
	StoreCommands.AddCommand(infoCmd)
}

// setupDatabase opens the configured backend
func setupDatabase(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	var err error
	database, err = util.GetDatabase()
	return err
}

// teardownDatabase flushes and closes the backend
func teardownDatabase(_ *cobra.Command, _ []string) error {
	if database == nil {
		return nil
	}
	return database.Close()
}
