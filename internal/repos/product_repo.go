package repos

import (
	"strings"

	"storefront/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `id, title, selling_price, discounted_price, description, brand, category, product_image`

// ProductFilter narrows a category listing. Zero values mean "no constraint".
type ProductFilter struct {
	Category domain.Category
	Brand    string
	Below    float64 // discounted_price < Below
	Above    float64 // discounted_price > Above
}

func (r *ProductRepo) List(f ProductFilter) ([]domain.Product, error) {
	where := `1 = 1`
	args := []any{}
	if f.Category != "" {
		where += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.Brand != "" {
		where += ` AND LOWER(brand) = LOWER(?)`
		args = append(args, f.Brand)
	}
	if f.Below > 0 {
		where += ` AND discounted_price < ?`
		args = append(args, f.Below)
	}
	if f.Above > 0 {
		where += ` AND discounted_price > ?`
		args = append(args, f.Above)
	}

	out := []domain.Product{}
	err := r.db.Select(&out, `SELECT `+productCols+` FROM products WHERE `+where+` ORDER BY id`, args...)
	return out, err
}

func (r *ProductRepo) Get(id int64) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT `+productCols+` FROM products WHERE id = ?`, id)
	return p, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search is a case-insensitive substring match over title, brand and description.
// LIKE wildcards in q match literally.
func (r *ProductRepo) Search(q string, limit int) ([]domain.Product, error) {
	like := "%" + likeEscaper.Replace(q) + "%"
	out := []domain.Product{}
	err := r.db.Select(&out, `
	  SELECT `+productCols+`
	  FROM products
	  WHERE LOWER(title) LIKE LOWER(?) ESCAPE '\' OR LOWER(brand) LIKE LOWER(?) ESCAPE '\' OR LOWER(description) LIKE LOWER(?) ESCAPE '\'
	  ORDER BY id
	  LIMIT ?`, like, like, like, limit)
	return out, err
}

func (r *ProductRepo) Create(p domain.Product) (int64, error) {
	res, err := r.db.Exec(`
	  INSERT INTO products(title,selling_price,discounted_price,description,brand,category,product_image)
	  VALUES(?,?,?,?,?,?,?)
	`, p.Title, p.SellingPrice, p.DiscountedPrice, p.Description, p.Brand, p.Category, p.Image)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
