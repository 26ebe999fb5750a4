package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

// CartLineRow is a cart line joined with the product fields the cart page needs.
type CartLineRow struct {
	ID              int64   `db:"id"`
	ProductID       int64   `db:"product_id"`
	Title           string  `db:"title"`
	Image           string  `db:"product_image"`
	SellingPrice    float64 `db:"selling_price"`
	DiscountedPrice float64 `db:"discounted_price"`
	Quantity        int     `db:"quantity"`
}

// AddOrIncrement creates the (user, product) line at quantity 1 or bumps it by one.
func (r *CartRepo) AddOrIncrement(userID, productID int64) error {
	_, err := r.db.Exec(`
		INSERT INTO cart(user_id, product_id, quantity)
		VALUES(?, ?, 1)
		ON CONFLICT(user_id, product_id) DO UPDATE
		SET quantity = cart.quantity + 1
	`, userID, productID)
	return err
}

// Lines returns the user's cart lines in insertion order.
func (r *CartRepo) Lines(userID int64) ([]CartLineRow, error) {
	rows := []CartLineRow{}
	err := r.db.Select(&rows, `
	  SELECT c.id, c.product_id, p.title, p.product_image, p.selling_price, p.discounted_price, c.quantity
	  FROM cart c JOIN products p ON p.id = c.product_id
	  WHERE c.user_id = ?
	  ORDER BY c.id
	`, userID)
	return rows, err
}

// Line returns one line scoped to its owner; sql.ErrNoRows when absent or not owned.
func (r *CartRepo) Line(lineID, userID int64) (CartLineRow, error) {
	var row CartLineRow
	err := r.db.Get(&row, `
	  SELECT c.id, c.product_id, p.title, p.product_image, p.selling_price, p.discounted_price, c.quantity
	  FROM cart c JOIN products p ON p.id = c.product_id
	  WHERE c.id = ? AND c.user_id = ?
	`, lineID, userID)
	return row, err
}

func (r *CartRepo) Contains(userID, productID int64) (bool, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM cart WHERE user_id = ? AND product_id = ?`, userID, productID)
	return n > 0, err
}

func (r *CartRepo) Count(userID int64) (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM cart WHERE user_id = ?`, userID)
	return n, err
}

// Remove deletes an owned line; sql.ErrNoRows when nothing matched.
func (r *CartRepo) Remove(lineID, userID int64) error {
	res, err := r.db.Exec(`DELETE FROM cart WHERE id = ? AND user_id = ?`, lineID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Adjust moves an owned line's quantity by delta (+1 or -1). A result below 1
// deletes the line. It returns the new quantity, 0 when the line was deleted.
func (r *CartRepo) Adjust(lineID, userID int64, delta int) (int, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var qty int
	if err := tx.Get(&qty, `SELECT quantity FROM cart WHERE id = ? AND user_id = ?`, lineID, userID); err != nil {
		return 0, err
	}
	qty += delta
	if qty < 1 {
		if _, err := tx.Exec(`DELETE FROM cart WHERE id = ? AND user_id = ?`, lineID, userID); err != nil {
			return 0, err
		}
		return 0, tx.Commit()
	}
	if _, err := tx.Exec(`UPDATE cart SET quantity = ? WHERE id = ? AND user_id = ?`, qty, lineID, userID); err != nil {
		return 0, err
	}
	return qty, tx.Commit()
}

// IsNotFound reports whether err means "no such row for this owner".
func IsNotFound(err error) bool { return errors.Is(err, sql.ErrNoRows) }
