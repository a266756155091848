package statemachine

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"
)

var (
	// ErrInvalidTransition is returned when no event links the current state to the requested one
	ErrInvalidTransition = errors.New("transición de estado inválida")
	// ErrInvalidAmount is returned for abonos that are zero or negative
	ErrInvalidAmount = errors.New("el monto del abono debe ser mayor a cero")
	// ErrOverpayment is returned when an abono would exceed montoTotal
	ErrOverpayment = errors.New("el abono excede el saldo pendiente del pago")
)

// fire runs event on f. Self-transitions are accepted.
func fire(ctx context.Context, f *fsm.FSM, event string) error {
	if err := f.Event(ctx, event); err != nil {
		var noTransition fsm.NoTransitionError
		if errors.As(err, &noTransition) && noTransition.Err == nil {
			return nil
		}
		return fmt.Errorf("%w: %s desde %s", ErrInvalidTransition, event, f.Current())
	}
	return nil
}
