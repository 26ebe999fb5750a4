package repos

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	applog "storefront/internal/log"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One connection: ":memory:" databases are per-connection and sqlite
	// serializes writers anyway.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed the demo catalog if the products table is empty
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	// Ensure demo accounts exist (idempotent; safe to run every start)
	if err := seedUsers(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Accounts & Sessions
CREATE TABLE IF NOT EXISTS users(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  username TEXT NOT NULL,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'USER' CHECK (role IN ('USER','ADMIN')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username ON users(LOWER(username));
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email    ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  user_id INTEGER NULL REFERENCES users(id) ON DELETE CASCADE,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

-- Address profiles
CREATE TABLE IF NOT EXISTS customers(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  locality TEXT NOT NULL,
  city TEXT NOT NULL,
  zipcode INTEGER NOT NULL,
  state TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_customers_user ON customers(user_id);

-- Catalog
CREATE TABLE IF NOT EXISTS products(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  selling_price REAL NOT NULL CHECK (selling_price >= 0),
  discounted_price REAL NOT NULL CHECK (discounted_price >= 0),
  description TEXT NOT NULL DEFAULT '',
  brand TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL CHECK (category IN ('M','L','TW','BW','S')),
  product_image TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);
CREATE INDEX IF NOT EXISTS idx_products_brand    ON products(LOWER(brand));

-- Cart: one line per (account, product)
CREATE TABLE IF NOT EXISTS cart(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  quantity INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 1),
  UNIQUE(user_id, product_id)
);

-- Orders: one row per product line
CREATE TABLE IF NOT EXISTS orders(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  customer_id INTEGER NULL REFERENCES customers(id) ON DELETE SET NULL,
  product_id INTEGER NOT NULL REFERENCES products(id),
  quantity INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 1),
  ordered_date TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  status TEXT NOT NULL DEFAULT 'Pending'
    CHECK (status IN ('Pending','Accepted','Packed','On The Way','Delivered','Cancelled','Returned','Cancel')),
  payment_method TEXT NOT NULL DEFAULT 'COD',
  tracking_id TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_tracking ON orders(tracking_id);
CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	applog.System("seed.catalog", map[string]any{"reason": "empty products table"})

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO products(title,selling_price,discounted_price,description,brand,category,product_image) VALUES
	  ('Redmi Note 13',54999,49999,'6.67" AMOLED, 8GB/256GB','Redmi','M','productimg/redmi-note-13.jpg'),
	  ('Redmi A3',24999,22499,'Entry level, 4GB/64GB','Redmi','M','productimg/redmi-a3.jpg'),
	  ('Samsung Galaxy A05',29999,27999,'6.7" display, 4GB/128GB','Samsung','M','productimg/galaxy-a05.jpg'),
	  ('Nokia 105',6499,5999,'Feature phone, long battery life','Nokia','M','productimg/nokia-105.jpg'),
	  ('Dell Latitude 5420',145000,129999,'Core i5, 16GB RAM, 512GB SSD','Dell','L','productimg/latitude-5420.jpg'),
	  ('HP 250 G9',99999,94999,'Core i3, 8GB RAM, 256GB SSD','HP','L','productimg/hp-250-g9.jpg'),
	  ('Lenovo IdeaPad 1',48999,44999,'Celeron, 4GB RAM, 128GB eMMC','Lenovo','L','productimg/ideapad-1.jpg'),
	  ('Outfitters Polo',2499,1799,'Cotton pique polo shirt','Outfitters','TW','productimg/outfitters-polo.jpg'),
	  ('Levis Graphic Tee',3999,3499,'Crew neck graphic tee','Levis','TW','productimg/levis-tee.jpg'),
	  ('Breakout Basic Tee',899,699,'Everyday basic tee','Breakout','TW','productimg/breakout-tee.jpg'),
	  ('Levis 511 Slim Jeans',9999,8499,'Slim fit denim','Levis','BW','productimg/levis-511.jpg'),
	  ('Outfitters Joggers',2999,2199,'Fleece joggers','Outfitters','BW','productimg/outfitters-joggers.jpg'),
	  ('Breakout Shorts',1299,899,'Cotton shorts','Breakout','BW','productimg/breakout-shorts.jpg'),
	  ('Bata Power Runner',5999,4999,'Running shoes','Bata','S','productimg/bata-power.jpg'),
	  ('Servis Slides',1499,1199,'Casual slides','Servis','S','productimg/servis-slides.jpg'),
	  ('Nike Court Vision',18999,16999,'Low top sneakers','Nike','S','productimg/nike-court.jpg')`)

	return tx.Commit()
}

type seedUser struct {
	Username, Email, Role, Hash string
}

func newSeedUser(username, email, role, raw string) (seedUser, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return seedUser{}, fmt.Errorf("seed %s: %w", username, err)
	}
	return seedUser{Username: username, Email: email, Role: role, Hash: string(h)}, nil
}

// seedUsers ensures two USERs and one ADMIN exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	var users []seedUser
	for _, a := range [][4]string{
		{"alice", "alice@storefront.test", "USER", "Passw0rd!"},
		{"bob", "bob@storefront.test", "USER", "Passw0rd!"},
		{"admin", "admin@storefront.test", "ADMIN", "Passw0rd!"},
	} {
		u, err := newSeedUser(a[0], a[1], a[2], a[3])
		if err != nil {
			return err
		}
		users = append(users, u)
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(username,email,password_hash,role)
			SELECT ?,?,?,?
			WHERE NOT EXISTS (SELECT 1 FROM users WHERE LOWER(username)=LOWER(?) OR LOWER(email)=LOWER(?))
		`, x.Username, x.Email, x.Hash, x.Role, x.Username, x.Email); err != nil {
			return err
		}
	}

	return tx.Commit()
}
