package domain

import (
	"fmt"
	"time"

	apperrors "tablepos/internal/errors"
)

// transitions lists every allowed move. Statuses missing as keys are terminal.
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusOpen: {OrderStatusPaid, OrderStatusVoid},
}

func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func ValidateTransition(from, to OrderStatus) error {
	if !CanTransition(from, to) {
		return apperrors.NewInvalidTransitionError(string(from), string(to))
	}
	return nil
}

// SettledConflict builds the error reported when a guarded update finds the
// order already out of the open state.
func SettledConflict(orderNumber int64, current OrderStatus) error {
	return apperrors.NewConflictError(fmt.Sprintf("order %d is already %s", orderNumber, current))
}

// StatusChange describes a guarded move out of the open status.
type StatusChange struct {
	To            OrderStatus
	PaymentMethod *PaymentMethod
	Operator      string
	At            time.Time
}
