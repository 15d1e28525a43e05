package repos

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"pharmabot/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// Place runs the fulfillment unit: a guarded stock decrement plus the
// order insert, committed together or not at all. The "stock >= qty"
// guard makes concurrent placements against the same medicine serialize
// on the row instead of both observing stale stock.
func (r *OrderRepo) Place(o domain.Order) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin order tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`
		UPDATE medicines
		SET stock = stock - ?
		WHERE id = ? AND stock >= ?
	`, o.Quantity, o.MedicineID, o.Quantity)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrInsufficientStock
	}

	if _, err := tx.Exec(`
		INSERT INTO orders(id, user_id, medicine_id, quantity, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, o.ID, o.UserID, o.MedicineID, o.Quantity, o.Status, o.CreatedAt); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order tx: %w", err)
	}
	return nil
}

func (r *OrderRepo) ByID(id string) (domain.Order, error) {
	var o domain.Order
	err := r.db.Get(&o, `
		SELECT id, user_id, medicine_id, quantity, status, created_at
		FROM orders WHERE id = ?
	`, id)
	return o, err
}

// ListByUser returns a requester's orders, newest first.
func (r *OrderRepo) ListByUser(userID string) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.Select(&out, `
		SELECT id, user_id, medicine_id, quantity, status, created_at
		FROM orders
		WHERE user_id = ?
		ORDER BY datetime(created_at) DESC
	`, userID)
	return out, err
}
