package migrations

import (
	"io/fs"
	"strings"
	"testing"
)

func TestEveryUpHasDown(t *testing.T) {
	ups, err := fs.Glob(FS, "*.up.sql")
	if err != nil {
		t.Fatalf("glob up migrations: %v", err)
	}
	if len(ups) == 0 {
		t.Fatalf("expected embedded migrations")
	}
	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		if _, err := fs.Stat(FS, down); err != nil {
			t.Fatalf("missing down migration for %s", up)
		}
	}
}
