package migrations_test

import (
	"io"
	"io/fs"
	"sync"
	"testing"

	"todolist/internal/migrations"
	"todolist/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestSource_Versions(t *testing.T) {
	src, err := migrations.Source()
	require.NoError(t, err)
	defer src.Close()

	var versions []uint
	v, err := src.First()
	for err == nil {
		versions = append(versions, v)
		v, err = src.Next(v)
	}
	require.ErrorIs(t, err, fs.ErrNotExist)
	assert.Equal(t, []uint{1}, versions)

	for _, version := range versions {
		down, _, err := src.ReadDown(version)
		require.NoError(t, err, "version %d has no down migration", version)
		_ = down.Close()
	}
}

// Схема в SQL должна покрывать все колонки моделей, иначе gorm упадёт на проде.
func TestInitSchema_CoversModels(t *testing.T) {
	src, err := migrations.Source()
	require.NoError(t, err)
	defer src.Close()

	r, _, err := src.ReadUp(1)
	require.NoError(t, err)
	raw, err := io.ReadAll(r)
	require.NoError(t, err)
	_ = r.Close()
	up := string(raw)

	cache := &sync.Map{}
	for _, m := range model.All() {
		s, err := schema.Parse(m, cache, schema.NamingStrategy{})
		require.NoError(t, err)

		assert.Contains(t, up, "CREATE TABLE IF NOT EXISTS "+s.Table+" (")
		for _, col := range s.DBNames {
			assert.Contains(t, up, "    "+col+" ", "column %s.%s missing", s.Table, col)
		}
	}
}
