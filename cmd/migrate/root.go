package migrate

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tmarback/BlakeBot-sub002/cmd/util"
	"github.com/tmarback/BlakeBot-sub002/lib/storage"
	"github.com/tmarback/BlakeBot-sub002/lib/translate"
)

// MigrateCmd copies named maps between storage backends. The source is
// configured through the shared storage flags, the destination through the
// to-* flags.
var MigrateCmd = &cobra.Command{
	Use:   "migrate [map]...",
	Short: "Copies maps from one storage backend to another",
	Long: `Copies the named maps from the configured storage backend to a second
backend. The destination must be empty for the named maps; existing
entries are overwritten. Values are copied verbatim, so both backends
end up with identical contents regardless of value types.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMigrate,
}

func init() {
	cobra.OnInitialize(util.InitConfig)

	util.SetupStorageFlags(MigrateCmd)

	key := "to-engine"
	MigrateCmd.Flags().String(key, "", util.WrapString("The destination storage engine (memory, bolt, dynamo)"))

	key = "to-param"
	MigrateCmd.Flags().StringArray(key, nil, util.WrapString("A destination engine load parameter as key=value. May be repeated"))

	_ = MigrateCmd.MarkFlagRequired("to-engine")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	src, err := util.GetDatabase()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := util.OpenDatabase(
		viper.GetString("to-engine"),
		viper.GetStringSlice("to-param"),
		viper.GetInt("cache-size"),
	)
	if err != nil {
		return err
	}
	defer dst.Close()

	// bind each named map on the source so the copy covers it; the generic
	// value translator accepts whatever the map holds
	for _, name := range args {
		if _, err := storage.GetMap(src, name, translate.NewString(), translate.NewData()); err != nil {
			return fmt.Errorf("map %s: %w", name, err)
		}
	}

	if err := dst.CopyFrom(src); err != nil {
		return err
	}

	fmt.Printf("migrated %d map(s) from %s to %s\n", len(args), src.Type(), dst.Type())
	return nil
}
