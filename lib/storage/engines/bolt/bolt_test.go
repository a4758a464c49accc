package bolt

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/tmarback/BlakeBot-sub002/lib/storage"
	storagetesting "github.com/tmarback/BlakeBot-sub002/lib/storage/testing"
)

func Test(t *testing.T) {
	files := 0
	storagetesting.RunDatabaseTests(t, "Bolt", func(t *testing.T) (storage.Engine, map[string]string) {
		files++
		path := filepath.Join(t.TempDir(), fmt.Sprintf("store-%d.db", files))
		return NewEngine(), map[string]string{"path": path}
	})
}
