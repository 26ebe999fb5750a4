package services

import (
	"strings"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

// PriceBand holds the fixed per-category thresholds for the "below" and
// "above" listing tokens. They are deliberately not symmetric.
type PriceBand struct {
	Below float64
	Above float64
}

var PriceBands = map[domain.Category]PriceBand{
	domain.CategoryMobile:     {Below: 10000, Above: 15000},
	domain.CategoryLaptop:     {Below: 50000, Above: 100000},
	domain.CategoryTopWear:    {Below: 500, Above: 1000},
	domain.CategoryBottomWear: {Below: 1000, Above: 2000},
	domain.CategoryShoes:      {Below: 1500, Above: 3000},
}

type CatalogService struct {
	Cats  *repos.CategoryRepo
	Prods *repos.ProductRepo
}

func NewCatalogService(cats *repos.CategoryRepo, prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Cats: cats, Prods: prods}
}

// Listing is one category page: the products plus what the filter resolved to.
type Listing struct {
	Category domain.Category
	Brands   []string
	Filter   string // resolved token: "", a brand, "below" or "above"
	Products []domain.Product
}

// ListCategory filters a category by an optional token. A brand of the
// category matches case-insensitively; "below"/"above" apply the category's
// price band; anything else falls back to the whole category.
func (s *CatalogService) ListCategory(cat domain.Category, token string) (Listing, error) {
	if !cat.Valid() {
		return Listing{}, ErrNotFound
	}
	brands, err := s.Cats.Brands(cat)
	if err != nil {
		return Listing{}, err
	}
	l := Listing{Category: cat, Brands: brands}
	f := repos.ProductFilter{Category: cat}

	token = strings.TrimSpace(token)
	band := PriceBands[cat]
	switch {
	case token == "":
	case strings.EqualFold(token, "below"):
		f.Below, l.Filter = band.Below, "below"
	case strings.EqualFold(token, "above"):
		f.Above, l.Filter = band.Above, "above"
	default:
		for _, b := range brands {
			if strings.EqualFold(b, token) {
				f.Brand, l.Filter = b, b
				break
			}
		}
	}

	l.Products, err = s.Prods.List(f)
	return l, err
}

// Home returns every category's products keyed by category.
func (s *CatalogService) Home() (map[domain.Category][]domain.Product, error) {
	all, err := s.Prods.List(repos.ProductFilter{})
	if err != nil {
		return nil, err
	}
	out := make(map[domain.Category][]domain.Product, len(domain.Categories))
	for _, p := range all {
		out[p.Category] = append(out[p.Category], p)
	}
	return out, nil
}

func (s *CatalogService) CategoryCounts() ([]repos.CategoryCount, error) {
	return s.Cats.Counts()
}

func (s *CatalogService) GetProduct(id int64) (domain.Product, error) {
	p, err := s.Prods.Get(id)
	if repos.IsNotFound(err) {
		return p, ErrNotFound
	}
	return p, err
}

func (s *CatalogService) Search(q string) ([]domain.Product, error) {
	return s.Prods.Search(q, 50)
}
