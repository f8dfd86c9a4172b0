package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList(t *testing.T) {
	all, err := List()
	require.NoError(t, err)
	require.NotEmpty(t, all)

	first := all[0]
	assert.Equal(t, "000001", first.Version)
	assert.Equal(t, "000001_init.sql", first.Name)
	assert.Contains(t, first.Up, "CREATE TABLE IF NOT EXISTS recipes")
	assert.Contains(t, first.Down, "DROP TABLE IF EXISTS recipes")

	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Version, all[i].Version)
	}
}

func TestFind(t *testing.T) {
	m, ok, err := Find("000001")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "000001_init.sql", m.Name)

	_, ok, err = Find("999999")
	require.NoError(t, err)
	assert.False(t, ok)
}
