package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@localhost:5432/db?sslmode=disable",
		MigrationURL("postgres://u:p@localhost:5432/db?sslmode=disable"))
	assert.Equal(t, "pgx5://localhost/db", MigrationURL("postgresql://localhost/db"))
	assert.Equal(t, "pgx5://localhost/db", MigrationURL("pgx5://localhost/db"))
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(migrationsFS, "migrations/*.up.sql")
	require.NoError(t, err)
	require.NotEmpty(t, ups)

	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		_, err := fs.Stat(migrationsFS, down)
		assert.NoError(t, err, "missing %s", down)
	}
}

func TestSchemaConstraints(t *testing.T) {
	raw, err := fs.ReadFile(migrationsFS, "migrations/000001_init_schema.up.sql")
	require.NoError(t, err)
	schema := string(raw)

	// one review per (title, author)
	assert.Contains(t, schema, "CONSTRAINT review_once UNIQUE (title_id, author_id)")
	assert.Contains(t, schema, "CHECK (score BETWEEN 1 AND 10)")

	// removing a category orphans titles instead of deleting them
	assert.Contains(t, schema, "category_id BIGINT REFERENCES categories (id) ON DELETE SET NULL")

	// title -> reviews -> comments cascade
	assert.Contains(t, schema, "title_id  BIGINT      NOT NULL REFERENCES titles (id) ON DELETE CASCADE")
	assert.Contains(t, schema, "review_id BIGINT      NOT NULL REFERENCES reviews (id) ON DELETE CASCADE")
}
