package repos

import (
	"storefront/internal/domain"

	"github.com/jmoiron/sqlx"
)

type CustomerRepo struct{ db *sqlx.DB }

func NewCustomerRepo(db *sqlx.DB) *CustomerRepo { return &CustomerRepo{db: db} }

func (r *CustomerRepo) Create(c domain.Customer) (int64, error) {
	return insertCustomer(r.db, c)
}

func insertCustomer(e sqlx.Execer, c domain.Customer) (int64, error) {
	res, err := e.Exec(`
	  INSERT INTO customers(user_id,name,locality,city,zipcode,state)
	  VALUES(?,?,?,?,?,?)
	`, c.UserID, c.Name, c.Locality, c.City, c.Zipcode, c.State)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *CustomerRepo) ListByUser(userID int64) ([]domain.Customer, error) {
	out := []domain.Customer{}
	err := r.db.Select(&out, `
	  SELECT id,user_id,name,locality,city,zipcode,state
	  FROM customers WHERE user_id=? ORDER BY id
	`, userID)
	return out, err
}

// GetOwned returns the address only when it belongs to userID; otherwise sql.ErrNoRows.
func (r *CustomerRepo) GetOwned(id, userID int64) (domain.Customer, error) {
	var c domain.Customer
	err := r.db.Get(&c, `
	  SELECT id,user_id,name,locality,city,zipcode,state
	  FROM customers WHERE id=? AND user_id=?
	`, id, userID)
	return c, err
}

// DeleteAll removes every address profile of every account and returns the row count.
func (r *CustomerRepo) DeleteAll() (int64, error) {
	res, err := r.db.Exec(`DELETE FROM customers`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
