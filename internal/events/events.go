// Package events publishes payment and contract lifecycle events.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Routing keys
const (
	PagoAbonado    = "pago.abonado"
	PagoPagado     = "pago.pagado"
	PagoVencido    = "pago.vencido"
	ContratoCreado = "contrato.creado"
	ContratoEstado = "contrato.estado"
)

// Event is the JSON body of every published message
type Event struct {
	Tipo       string                 `json:"tipo"`
	EntidadID  uuid.UUID              `json:"entidadId"`
	Estado     string                 `json:"estado"`
	OcurridoEn time.Time              `json:"ocurridoEn"`
	Datos      map[string]interface{} `json:"datos,omitempty"`
}

// New stamps an event with the current time
func New(tipo string, entidadID uuid.UUID, estado string, datos map[string]interface{}) Event {
	return Event{
		Tipo:       tipo,
		EntidadID:  entidadID,
		Estado:     estado,
		OcurridoEn: time.Now().UTC(),
		Datos:      datos,
	}
}

// ToJSON converts the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher sends events to a broker
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Noop drops every event. Used when AMQP_URL is not set.
type Noop struct{}

func (Noop) Publish(ctx context.Context, event Event) error { return nil }

func (Noop) Close() error { return nil }
