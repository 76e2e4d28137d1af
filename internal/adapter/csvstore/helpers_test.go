package csvstore

import (
	"testing"

	entschema "entgo.io/ent/dialect/sql/schema"
	"github.com/eslsoft/vocabook/internal/infrastructure/database/schema"
)

func tableByName(t *testing.T, name string) *entschema.Table {
	t.Helper()
	tbl, ok := schema.Lookup(name)
	if !ok {
		t.Fatalf("unknown table %s", name)
	}
	return tbl
}
