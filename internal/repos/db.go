package repos

import (
	"log"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite has a single writer; funnel everything through one
	// connection so concurrent order transactions queue instead of
	// failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed baseline medicines if the DB is empty
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Medicines
CREATE TABLE IF NOT EXISTS medicines(
  id INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  expiry_date TEXT NOT NULL           -- YYYY-MM-DD
);
CREATE INDEX IF NOT EXISTS idx_medicines_name   ON medicines(LOWER(name));
CREATE INDEX IF NOT EXISTS idx_medicines_expiry ON medicines(expiry_date);

-- Orders (append-only; written only by the fulfillment transaction)
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  medicine_id INTEGER NOT NULL REFERENCES medicines(id),
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  status TEXT NOT NULL DEFAULT 'pending',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_orders_user       ON orders(user_id);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM medicines`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo medicines")

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO medicines(id,name,stock,expiry_date) VALUES
	  (1,'Aspirin',500,'2025-06-30'),
	  (2,'Amoxicillin',300,'2024-12-31'),
	  (3,'Lisinopril',400,'2025-03-15'),
	  (4,'Levothyroxine',250,'2026-01-31'),
	  (5,'Metformin',350,'2025-09-30'),
	  (6,'Amlodipine',200,'2024-11-30'),
	  (7,'Omeprazole',450,'2025-07-31'),
	  (8,'Albuterol',150,'2026-04-30'),
	  (9,'Gabapentin',300,'2025-05-31'),
	  (10,'Metoprolol',275,'2024-10-31')`)

	return tx.Commit()
}
