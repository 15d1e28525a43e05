package domain

import "time"

// DateLayout is how expiry dates are stored in SQLite (date only, no time).
const DateLayout = "2006-01-02"

type Medicine struct {
	ID         int64  `db:"id"`
	Name       string `db:"name"`
	Stock      int64  `db:"stock"`
	ExpiryDate string `db:"expiry_date"` // DateLayout
}

// Expiry parses the stored expiry date. A malformed date yields the zero time.
func (m Medicine) Expiry() time.Time {
	t, err := time.Parse(DateLayout, m.ExpiryDate)
	if err != nil {
		return time.Time{}
	}
	return t
}

// DaysUntilExpiry returns whole days between today and the expiry date.
// Negative when the medicine is already expired.
func (m Medicine) DaysUntilExpiry(today time.Time) int {
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(m.Expiry().Sub(day).Hours() / 24)
}

const OrderStatusPending = "pending"

type Order struct {
	ID         string `db:"id"`
	UserID     string `db:"user_id"`
	MedicineID int64  `db:"medicine_id"`
	Quantity   int64  `db:"quantity"`
	Status     string `db:"status"`
	CreatedAt  string `db:"created_at"`
}

// OrderConfirmation is what the requesting user gets back after a
// successful placement.
type OrderConfirmation struct {
	OrderID      string
	MedicineName string
	Quantity     int64
}

// NotificationReport summarizes one expiry fan-out cycle.
type NotificationReport struct {
	Attempted int
	Succeeded int
	Failed    int
	FailedIDs []int64
}
