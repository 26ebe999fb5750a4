package repos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartRepoLifecycle(t *testing.T) {
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	defer db.Close()
	r := NewCartRepo(db)

	require.NoError(t, r.AddOrIncrement(1, 4))
	require.NoError(t, r.AddOrIncrement(1, 4))
	require.NoError(t, r.AddOrIncrement(1, 15))

	lines, err := r.Lines(1)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, "Nokia 105", lines[0].Title)

	// other account sees nothing and cannot touch the line
	_, err = r.Line(lines[0].ID, 2)
	assert.True(t, IsNotFound(err))
	_, err = r.Adjust(lines[0].ID, 2, 1)
	assert.True(t, IsNotFound(err))
	assert.True(t, IsNotFound(r.Remove(lines[0].ID, 2)))

	q, err := r.Adjust(lines[0].ID, 1, -1)
	require.NoError(t, err)
	assert.Equal(t, 1, q)
	q, err = r.Adjust(lines[0].ID, 1, -1)
	require.NoError(t, err)
	assert.Zero(t, q)

	n, err := r.Count(1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSeedIsIdempotent(t *testing.T) {
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, seedIfEmpty(db))
	require.NoError(t, seedUsers(db))

	var products, users int
	require.NoError(t, db.Get(&products, `SELECT COUNT(*) FROM products`))
	require.NoError(t, db.Get(&users, `SELECT COUNT(*) FROM users`))
	assert.Equal(t, 16, products)
	assert.Equal(t, 3, users)
}
