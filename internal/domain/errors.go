package domain

import "errors"

// Business-rule failures. Anything else coming out of the fulfillment
// path is an infrastructure problem and reaches the user as a generic
// failure message.
var (
	ErrMedicineNotFound  = errors.New("medicine not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
)
