package repos

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

func TestSearchMatchesWildcardsLiterally(t *testing.T) {
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	defer db.Close()
	r := NewProductRepo(db)

	for _, title := range []string{"Promo a_b Cap", "Promo axb Cap", "Promo 50% Off", "Promo 50x Off"} {
		_, err := r.Create(domain.Product{Title: title, SellingPrice: 10, DiscountedPrice: 9, Category: domain.CategoryShoes})
		require.NoError(t, err)
	}

	titles := func(q string) []string {
		res, err := r.Search(q, 50)
		require.NoError(t, err)
		out := []string{}
		for _, p := range res {
			out = append(out, p.Title)
		}
		return out
	}

	assert.Equal(t, []string{"Promo a_b Cap"}, titles("a_b"))
	assert.Equal(t, []string{"Promo 50% Off"}, titles("50%"))
	assert.Len(t, titles("promo"), 4)
	assert.Empty(t, titles(`a\b`))
}

func TestSeedUserRejectsUnhashablePassword(t *testing.T) {
	_, err := newSeedUser("long", "long@storefront.test", "USER", strings.Repeat("x", 73))
	assert.Error(t, err)

	u, err := newSeedUser("carol", "carol@storefront.test", "USER", "Passw0rd!")
	require.NoError(t, err)
	assert.NotEmpty(t, u.Hash)
}
