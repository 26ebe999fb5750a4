package repos

import (
	"storefront/internal/domain"

	"github.com/jmoiron/sqlx"
)

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

type CategoryCount struct {
	Category domain.Category `db:"category"`
	Products int             `db:"products"`
}

// Counts returns how many products each category holds.
func (r *CategoryRepo) Counts() ([]CategoryCount, error) {
	var out []CategoryCount
	err := r.db.Select(&out, `SELECT category, COUNT(*) AS products FROM products GROUP BY category ORDER BY category`)
	return out, err
}

// Brands lists the distinct brands present in a category, sorted case-insensitively.
func (r *CategoryRepo) Brands(cat domain.Category) ([]string, error) {
	var out []string
	err := r.db.Select(&out, `
	  SELECT DISTINCT brand FROM products
	  WHERE category = ? AND brand <> ''
	  ORDER BY brand COLLATE NOCASE
	`, cat)
	return out, err
}
