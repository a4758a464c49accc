package util

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tmarback/BlakeBot-sub002/lib/storage"
	"github.com/tmarback/BlakeBot-sub002/lib/storage/engines/bolt"
	"github.com/tmarback/BlakeBot-sub002/lib/storage/engines/dynamo"
	"github.com/tmarback/BlakeBot-sub002/lib/storage/engines/memory"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// InitConfig initializes configuration from environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("blake")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// SetupStorageFlags adds the common storage backend flags to a command
func SetupStorageFlags(cmd *cobra.Command) {
	key := "engine"
	cmd.PersistentFlags().String(key, "memory", WrapString("The storage engine to use (memory, bolt, dynamo)"))

	key = "param"
	cmd.PersistentFlags().StringArray(key, nil, WrapString("An engine load parameter as key=value. May be repeated; run 'store info' to list the parameters an engine accepts"))

	key = "cache-size"
	cmd.PersistentFlags().Int(key, storage.DefaultOptions().CacheSize, WrapString("Number of entries each view caches in memory"))
}

// NewEngine creates a storage engine by name
func NewEngine(name string) (storage.Engine, error) {
	switch storage.Implementation(name) {
	case storage.ImplMemory:
		return memory.NewEngine(), nil
	case storage.ImplBolt:
		return bolt.NewEngine(), nil
	case storage.ImplDynamo:
		return dynamo.NewEngine(), nil
	default:
		return nil, fmt.Errorf("invalid engine %s", name)
	}
}

// ParseParams parses a list of key=value pairs into load parameters
func ParseParams(pairs []string) (map[string]string, error) {
	params := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", pair)
		}
		params[k] = v
	}
	return params, nil
}

// OpenDatabase creates and loads a database over the named engine
func OpenDatabase(engineName string, pairs []string, cacheSize int) (*storage.Database, error) {
	engine, err := NewEngine(engineName)
	if err != nil {
		return nil, err
	}

	params, err := ParseParams(pairs)
	if err != nil {
		return nil, err
	}

	db := storage.New(engine, &storage.Options{CacheSize: cacheSize})
	if err := db.Load(params); err != nil {
		return nil, err
	}
	return db, nil
}

// GetDatabase opens the database described by the bound storage flags
func GetDatabase() (*storage.Database, error) {
	return OpenDatabase(
		viper.GetString("engine"),
		viper.GetStringSlice("param"),
		viper.GetInt("cache-size"),
	)
}
