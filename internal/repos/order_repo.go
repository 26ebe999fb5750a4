package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

var ErrCartEmpty = errors.New("cart is empty")

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// ---------- Listing rows (orders page, tracking, admin) ----------
type OrderRow struct {
	ID            int64                `db:"id"`
	UserID        int64                `db:"user_id"`
	Username      string               `db:"username"`
	CustomerID    int64                `db:"customer_id"`
	CustomerName  string               `db:"customer_name"`
	City          string               `db:"city"`
	ProductID     int64                `db:"product_id"`
	Title         string               `db:"title"`
	Image         string               `db:"product_image"`
	Price         float64              `db:"discounted_price"`
	Quantity      int                  `db:"quantity"`
	Amount        float64              `db:"amount"`
	OrderedDate   string               `db:"ordered_date"`
	Status        domain.OrderStatus   `db:"status"`
	PaymentMethod domain.PaymentMethod `db:"payment_method"`
	TrackingID    string               `db:"tracking_id"`
}

const orderRowSelect = `
	SELECT o.id, o.user_id, u.username, COALESCE(o.customer_id, 0) AS customer_id,
	       COALESCE(c.name, '') AS customer_name, COALESCE(c.city, '') AS city,
	       o.product_id, p.title, p.product_image, p.discounted_price, o.quantity,
	       (o.quantity * p.discounted_price) AS amount,
	       o.ordered_date, o.status, o.payment_method, o.tracking_id
	FROM orders o
	JOIN users u ON u.id = o.user_id
	JOIN products p ON p.id = o.product_id
	LEFT JOIN customers c ON c.id = o.customer_id`

const insertOrder = `
	INSERT INTO orders(user_id, customer_id, product_id, quantity, status, payment_method, tracking_id)
	VALUES(?, ?, ?, ?, ?, ?, ?)`

func execInsertOrder(e sqlx.Execer, o *domain.Order) error {
	res, err := e.Exec(insertOrder, o.UserID, o.CustomerID, o.ProductID, o.Quantity, o.Status, o.PaymentMethod, o.TrackingID)
	if err != nil {
		return err
	}
	o.ID, err = res.LastInsertId()
	return err
}

// Create inserts one order row and fills in its id.
func (r *OrderRepo) Create(o *domain.Order) error {
	return execInsertOrder(r.db, o)
}

// CreateWithAddress saves a new address profile and an order pointing at it in one transaction.
func (r *OrderRepo) CreateWithAddress(c domain.Customer, o *domain.Order) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	custID, err := insertCustomer(tx, c)
	if err != nil {
		return err
	}
	o.CustomerID = custID
	if err := execInsertOrder(tx, o); err != nil {
		return err
	}
	return tx.Commit()
}

// CreateFromCart turns every cart line of userID into an order row and empties
// the cart. Either every line becomes an order or nothing changes.
func (r *OrderRepo) CreateFromCart(userID, customerID int64, pm domain.PaymentMethod, status domain.OrderStatus, track func() string) ([]domain.Order, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var lines []domain.CartLine
	if err := tx.Select(&lines, `SELECT id, user_id, product_id, quantity FROM cart WHERE user_id = ? ORDER BY id`, userID); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrCartEmpty
	}

	orders := make([]domain.Order, 0, len(lines))
	for _, l := range lines {
		o := domain.Order{
			UserID:        userID,
			CustomerID:    customerID,
			ProductID:     l.ProductID,
			Quantity:      l.Quantity,
			Status:        status,
			PaymentMethod: pm,
			TrackingID:    track(),
		}
		if err := execInsertOrder(tx, &o); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	if _, err := tx.Exec(`DELETE FROM cart WHERE user_id = ?`, userID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepo) Get(id int64) (domain.Order, error) {
	var o domain.Order
	err := r.db.Get(&o, `
		SELECT id, user_id, COALESCE(customer_id, 0) AS customer_id, product_id, quantity,
		       ordered_date, status, payment_method, tracking_id
		FROM orders WHERE id = ?`, id)
	return o, err
}

func (r *OrderRepo) ListByUser(userID int64) ([]OrderRow, error) {
	out := []OrderRow{}
	err := r.db.Select(&out, orderRowSelect+`
		WHERE o.user_id = ?
		ORDER BY o.id DESC`, userID)
	return out, err
}

// ByTracking returns every order carrying the tracking id; an unknown id yields an empty slice.
func (r *OrderRepo) ByTracking(trackingID string) ([]OrderRow, error) {
	out := []OrderRow{}
	err := r.db.Select(&out, orderRowSelect+`
		WHERE o.tracking_id = ?
		ORDER BY o.id`, trackingID)
	return out, err
}

func (r *OrderRepo) ListLatest(limit int) ([]OrderRow, error) {
	if limit <= 0 {
		limit = 100
	}
	out := []OrderRow{}
	err := r.db.Select(&out, orderRowSelect+`
		ORDER BY o.id DESC
		LIMIT ?`, limit)
	return out, err
}

// UpdateStatus moves an order from one status to another. It returns
// sql.ErrNoRows when the order is no longer in status from.
func (r *OrderRepo) UpdateStatus(id int64, from, to domain.OrderStatus) error {
	q, args, err := sqlx.In(`UPDATE orders SET status = ? WHERE id = ? AND status IN (?)`, to, id, from.Stored())
	if err != nil {
		return err
	}
	res, err := r.db.Exec(r.db.Rebind(q), args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
