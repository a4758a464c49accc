package memory

import (
	"testing"

	"github.com/tmarback/BlakeBot-sub002/lib/storage"
	storagetesting "github.com/tmarback/BlakeBot-sub002/lib/storage/testing"
)

func Test(t *testing.T) {
	storagetesting.RunDatabaseTests(t, "Memory", func(t *testing.T) (storage.Engine, map[string]string) {
		return NewEngine(), nil
	})
}
