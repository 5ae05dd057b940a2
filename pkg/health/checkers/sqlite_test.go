package checkers

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storage "github.com/artem13815/resumebot/pkg/storage/sqlite"
)

func TestSQLiteChecker(t *testing.T) {
	db, err := storage.Open(context.Background(), "sqlite://"+filepath.Join(t.TempDir(), "h.db"))
	require.NoError(t, err)

	c := NewSQLiteChecker(db)
	assert.Equal(t, "sqlite", c.Name())
	assert.NoError(t, c.Check(context.Background()))

	require.NoError(t, db.Close())
	assert.Error(t, c.Check(context.Background()))
}
