package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/sjperalta/arrendando-api/internal/repository"
	"github.com/sjperalta/arrendando-api/internal/statemachine"
)

// Common service errors
var (
	ErrNotFound            = errors.New("registro no encontrado")
	ErrInvalidPassword     = errors.New("contraseña inválida")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrInvalidState        = statemachine.ErrInvalidTransition
	ErrDuplicate           = repository.ErrDuplicate
	ErrValidation          = errors.New("datos inválidos")
	ErrInvalidDateRange    = errors.New("la fecha de inicio debe ser anterior a la fecha de fin")
	ErrContractLocked      = errors.New("no se puede eliminar un contrato activo o próximo a vencer")
	ErrInvalidRecoveryCode = errors.New("código de recuperación inválido o expirado")
)

// validationError wraps msg so errors.Is(err, ErrValidation) holds while
// Error() keeps the user-facing text.
type validationError struct {
	msg string
	err error
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Is(target error) bool { return target == ErrValidation }

func (e *validationError) Unwrap() error { return e.err }

// Invalid builds a validation error with a Spanish message
func Invalid(format string, args ...interface{}) error {
	return &validationError{msg: fmt.Sprintf(format, args...)}
}

// translate maps repository and state machine errors onto service errors
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, statemachine.ErrInvalidAmount), errors.Is(err, statemachine.ErrOverpayment):
		return &validationError{msg: err.Error(), err: err}
	}
	return err
}
