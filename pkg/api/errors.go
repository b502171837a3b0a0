package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/homecook/pkg/table"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("not signed in")
	ErrForbidden       = errors.New("not allowed")
	ErrInvalidInput    = errors.New("invalid input")
	ErrPaymentDeclined = errors.New("payment declined")
)

// BackendError is a data API failure. The backend reports failures as text
// only, so Message is all there is to go on.
//
// OrphanedOrderID is set when DeleteOrder removed an order's items but then
// failed to remove the order itself. The two deletes are not atomic and the
// order is left present without items until someone reconciles it.
type BackendError struct {
	Op              string
	Table           string
	Message         string
	OrphanedOrderID string
}

func (e *BackendError) Error() string {
	msg := e.Message
	if e.Table != "" {
		msg = fmt.Sprintf("%s %s: %s", e.Op, e.Table, e.Message)
	}
	if e.OrphanedOrderID != "" {
		msg += fmt.Sprintf(" (order %s left without items)", e.OrphanedOrderID)
	}
	return msg
}

// IsInconsistent reports whether err leaves an order without its items.
func IsInconsistent(err error) bool {
	var be *BackendError
	return errors.As(err, &be) && be.OrphanedOrderID != ""
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// backendError converts a data API failure. A cancelled request reports the
// context error instead, so callers can tell an abandoned request apart from
// a failing backend.
func backendError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var te *table.Error
	if errors.As(err, &te) {
		return &BackendError{Op: te.Op, Table: te.Table, Message: te.Message}
	}
	return &BackendError{Message: err.Error()}
}

func orphaned(orderID string, err error) error {
	be := &BackendError{Op: "delete", Table: "orders", Message: err.Error(), OrphanedOrderID: orderID}
	var te *table.Error
	if errors.As(err, &te) {
		be.Message = te.Message
	}
	return be
}
