package store

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tmarback/BlakeBot-sub002/lib/storage"
	"github.com/tmarback/BlakeBot-sub002/lib/translate"
)

// openMap binds the named map with plain string keys and values
func openMap(name string) (storage.Map[string, string], error) {
	return storage.GetMap(database, name, translate.NewString(), translate.NewString())
}

var (
	setCmd = &cobra.Command{
		Use:   "set [map] [key] [value]",
		Short: "Sets the value for a key",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := openMap(args[0])
			if err != nil {
				return err
			}
			prev, existed, err := m.Put(args[1], args[2])
			if err != nil {
				return err
			}
			if existed {
				fmt.Printf("set successfully, replaced %q\n", prev)
			} else {
				fmt.Println("set successfully")
			}
			return nil
		},
	}
	addCmd = &cobra.Command{
		Use:   "add [map] [key] [value]",
		Short: "Sets the value for a key only if the key is not already set",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := openMap(args[0])
			if err != nil {
				return err
			}
			added, err := m.Add(args[1], args[2])
			if err != nil {
				return err
			}
			if added {
				fmt.Println("add successfully")
			} else {
				fmt.Println("key already set, nothing added")
			}
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [map] [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := openMap(args[0])
			if err != nil {
				return err
			}
			value, found, err := m.Get(args[1])
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, found=%v, value=%s\n", args[1], found, value)
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [map] [key]",
		Short: "Deletes a key value pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := openMap(args[0])
			if err != nil {
				return err
			}
			_, existed, err := m.Remove(args[1])
			if err != nil {
				return err
			}
			if existed {
				fmt.Println("delete successfully")
			} else {
				fmt.Println("key not set, nothing deleted")
			}
			return nil
		},
	}
	hasCmd = &cobra.Command{
		Use:   "has [map] [key]",
		Short: "Checks if a key is set",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := openMap(args[0])
			if err != nil {
				return err
			}
			found, err := m.Has(args[1])
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, found=%v\n", args[1], found)
			return nil
		},
	}
	lenCmd = &cobra.Command{
		Use:   "len [map]",
		Short: "Counts the entries of a map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := openMap(args[0])
			if err != nil {
				return err
			}
			n, err := m.Len()
			if err != nil {
				return err
			}
			fmt.Printf("map=%s, entries=%d\n", args[0], n)
			return nil
		},
	}
	keysCmd = &cobra.Command{
		Use:   "keys [map]",
		Short: "Lists all entries of a map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := openMap(args[0])
			if err != nil {
				return err
			}
			return m.ForEach(func(key, value string) bool {
				fmt.Printf("%s=%s\n", key, value)
				return true
			})
		},
	}
	clearCmd = &cobra.Command{
		Use:   "clear [map]",
		Short: "Deletes all entries of a map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := openMap(args[0])
			if err != nil {
				return err
			}
			if err := m.Clear(); err != nil {
				return err
			}
			fmt.Println("clear successfully")
			return nil
		},
	}
	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Shows the configured engine and its load parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("engine: %s\n", database.Type())
			fmt.Printf("state: %s\n", database.State())

			params := database.LoadParams()
			if len(params) == 0 {
				fmt.Println("parameters: none")
				return nil
			}
			fmt.Println("parameters:")
			for _, p := range params {
				fmt.Printf("  %s: %s", p.Name, p.Description)
				if len(p.Choices) > 0 {
					fmt.Printf(" (choices: %v)", p.Choices)
				}
				if p.Default != "" {
					fmt.Printf(" (default: %s)", p.Default)
				}
				if p.Optional {
					fmt.Print(" (optional)")
				}
				fmt.Println()
			}
			return nil
		},
	}
)
