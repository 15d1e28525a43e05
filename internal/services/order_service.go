package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pharmabot/internal/domain"
	applog "pharmabot/internal/log"
	"pharmabot/internal/repos"
)

// MedicineSelector identifies the target medicine. An explicit ID wins;
// otherwise Name is matched as a case-insensitive substring, first match.
// The substring mode mirrors the bot's simplified order flow.
type MedicineSelector struct {
	ID   int64
	Name string
}

type OrderService struct {
	Meds   *repos.MedicineRepo
	Orders *repos.OrderRepo
}

func NewOrderService(meds *repos.MedicineRepo, orders *repos.OrderRepo) *OrderService {
	return &OrderService{Meds: meds, Orders: orders}
}

// PlaceOrder validates availability and atomically decrements stock
// while appending the order record. On domain.ErrInsufficientStock or
// domain.ErrMedicineNotFound nothing is mutated; any other error is an
// infrastructure failure and likewise leaves both tables unchanged.
func (s *OrderService) PlaceOrder(userID string, sel MedicineSelector, qty int64) (domain.OrderConfirmation, error) {
	if qty <= 0 {
		return domain.OrderConfirmation{}, domain.ErrInvalidQuantity
	}

	med, err := s.resolve(sel)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.OrderConfirmation{}, domain.ErrMedicineNotFound
	}
	if err != nil {
		return domain.OrderConfirmation{}, fmt.Errorf("lookup medicine: %w", err)
	}

	o := domain.Order{
		ID:         uuid.NewString(),
		UserID:     userID,
		MedicineID: med.ID,
		Quantity:   qty,
		Status:     domain.OrderStatusPending,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.Orders.Place(o); err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			return domain.OrderConfirmation{}, domain.ErrInsufficientStock
		}
		return domain.OrderConfirmation{}, fmt.Errorf("place order: %w", err)
	}

	applog.Info("order.placed", map[string]any{
		"order_id": o.ID, "user_id": userID, "medicine_id": med.ID, "qty": qty,
	})
	return domain.OrderConfirmation{OrderID: o.ID, MedicineName: med.Name, Quantity: qty}, nil
}

func (s *OrderService) resolve(sel MedicineSelector) (domain.Medicine, error) {
	if sel.ID > 0 {
		return s.Meds.ByID(sel.ID)
	}
	if sel.Name == "" {
		return domain.Medicine{}, sql.ErrNoRows
	}
	return s.Meds.FirstMatch(sel.Name)
}
