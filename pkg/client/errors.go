package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrInvalidDateRange is returned before any request when a contract's
// fechaInicio is not before its fechaFin.
var ErrInvalidDateRange = errors.New("la fecha de inicio debe ser anterior a la fecha de fin")

// ErrNotActivatable is returned by SetActive on resources without an active flag
var ErrNotActivatable = errors.New("el recurso no admite activación")

// Kind categorizes a failed request
type Kind int

const (
	// KindNetwork means no response was received
	KindNetwork Kind = iota + 1
	// KindValidation is a 4xx answer
	KindValidation
	// KindServer is a 5xx answer
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	}
	return "unknown"
}

// APIError is returned for every failed request
type APIError struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Kind == KindNetwork {
		return fmt.Sprintf("arrendando: network error: %v", e.Err)
	}
	return fmt.Sprintf("arrendando: %d %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// UserMessage is the Spanish notification shown for the failure
func (e *APIError) UserMessage() string {
	switch e.Kind {
	case KindNetwork:
		return "No se pudo conectar con el servidor. Verifica tu conexión e inténtalo de nuevo."
	case KindServer:
		return "Ocurrió un error en el servidor. Inténtalo más tarde."
	}
	if e.StatusCode == http.StatusUnauthorized {
		return "Tu sesión ha expirado. Inicia sesión nuevamente."
	}
	if e.Message != "" {
		return e.Message
	}
	return "La solicitud no es válida."
}

// IsNotFound reports whether err is a 404 answer
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// responseError builds the APIError of a status >= 400 answer. The server
// writes {"error": msg}; some endpoints answer {"message": msg}.
func responseError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Kind: KindValidation}
	if status >= http.StatusInternalServerError {
		apiErr.Kind = KindServer
	}

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Message = payload.Error
		if apiErr.Message == "" {
			apiErr.Message = payload.Message
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.ToLower(http.StatusText(status))
	}
	return apiErr
}
