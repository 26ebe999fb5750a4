// Command storefront-seed fills the catalog with generated demo products.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/brianvoe/gofakeit/v6"

	"storefront/internal/config"
	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/repos"
)

// price ranges per category, in rupees
var priceRange = map[domain.Category][2]int{
	domain.CategoryMobile:     {5000, 150000},
	domain.CategoryLaptop:     {40000, 400000},
	domain.CategoryTopWear:    {400, 6000},
	domain.CategoryBottomWear: {700, 9000},
	domain.CategoryShoes:      {900, 25000},
}

// fakeProduct builds one product in cat.
func fakeProduct(f *gofakeit.Faker, cat domain.Category) domain.Product {
	r := priceRange[cat]
	selling := f.Number(r[0], r[1])
	off := f.Number(0, 40) // percent
	return domain.Product{
		Title:           f.ProductName(),
		SellingPrice:    float64(selling),
		DiscountedPrice: float64(selling - selling*off/100),
		Description:     f.ProductDescription(),
		Brand:           f.Company(),
		Category:        cat,
		Image:           fmt.Sprintf("productimg/%s-%d.jpg", cat.Slug(), f.Number(1, 9999)),
	}
}

func main() {
	perCategory := flag.Int("n", 10, "products to add per category")
	seed := flag.Int64("seed", 0, "random seed (0 = random)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	applog.Setup(cfg)

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	prods := repos.NewProductRepo(db)
	f := gofakeit.New(*seed)
	added := 0
	for _, cat := range domain.Categories {
		for i := 0; i < *perCategory; i++ {
			if _, err := prods.Create(fakeProduct(f, cat)); err != nil {
				log.Fatalf("insert %s product: %v", cat, err)
			}
			added++
		}
	}
	applog.System("seed.fake", map[string]any{"added": added, "per_category": *perCategory})
}
