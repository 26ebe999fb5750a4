package services_test

import (
	"fmt"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"storefront/internal/repos"
	"storefront/internal/services"
)

// Seeded accounts on a fresh database.
const (
	alice int64 = 1
	bob   int64 = 2
)

type fixture struct {
	db      *sqlx.DB
	catalog *services.CatalogService
	cart    *services.CartService
	orders  *services.OrderService
	addr    *services.AddressService
	auth    *services.AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	prods := repos.NewProductRepo(db)
	custs := repos.NewCustomerRepo(db)
	orderSvc := services.NewOrderService(repos.NewOrderRepo(db), custs, prods)
	n := 0
	orderSvc.NewTrackingID = func() string {
		n++
		return fmt.Sprintf("00000000-0000-0000-0000-%012d", n)
	}
	return &fixture{
		db:      db,
		catalog: services.NewCatalogService(repos.NewCategoryRepo(db), prods),
		cart:    services.NewCartService(repos.NewCartRepo(db), prods),
		orders:  orderSvc,
		addr:    services.NewAddressService(custs),
		auth:    &services.AuthService{Users: repos.NewUserRepo(db)},
	}
}

// productID returns the id of the seeded product with the given title.
func (f *fixture) productID(t *testing.T, title string) int64 {
	t.Helper()
	var id int64
	require.NoError(t, f.db.Get(&id, `SELECT id FROM products WHERE title = ?`, title))
	return id
}
