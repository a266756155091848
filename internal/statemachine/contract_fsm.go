package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"

	"github.com/sjperalta/arrendando-api/internal/models"
)

// Contract events
const (
	EventActivar             = "activar"
	EventMarcarProximoVencer = "marcar_proximo_vencer"
	EventVencerContrato      = "vencer"
	EventFinalizar           = "finalizar"
	EventRenovar             = "renovar"
)

// ContractEvents is the contract transition table
var ContractEvents = fsm.Events{
	// draft → active
	{Name: EventActivar, Src: []string{models.ContractEstadoBorrador}, Dst: models.ContractEstadoActivo},

	// active → expiring soon
	{Name: EventMarcarProximoVencer, Src: []string{models.ContractEstadoActivo}, Dst: models.ContractEstadoProximoVencer},

	// active/expiring → expired
	{Name: EventVencerContrato, Src: []string{models.ContractEstadoActivo, models.ContractEstadoProximoVencer}, Dst: models.ContractEstadoVencido},

	// active/expiring/expired → finished
	{Name: EventFinalizar, Src: []string{models.ContractEstadoActivo, models.ContractEstadoProximoVencer, models.ContractEstadoVencido}, Dst: models.ContractEstadoFinalizado},

	// expiring/expired → active (renewal)
	{Name: EventRenovar, Src: []string{models.ContractEstadoProximoVencer, models.ContractEstadoVencido}, Dst: models.ContractEstadoActivo},
}

// ContractFSM wraps a contract with its state machine
type ContractFSM struct {
	contract *models.Contract
	fsm      *fsm.FSM
}

// NewContractFSM creates a new contract state machine
func NewContractFSM(contract *models.Contract) *ContractFSM {
	return &ContractFSM{
		contract: contract,
		fsm:      fsm.NewFSM(contract.Estado, ContractEvents, fsm.Callbacks{}),
	}
}

func (c *ContractFSM) event(ctx context.Context, name string) error {
	if err := fire(ctx, c.fsm, name); err != nil {
		return err
	}
	c.contract.Estado = c.fsm.Current()
	return nil
}

// EventFor returns the event that moves from src to dst
func EventFor(src, dst string) (string, bool) {
	for _, e := range ContractEvents {
		if e.Dst != dst {
			continue
		}
		for _, s := range e.Src {
			if s == src {
				return e.Name, true
			}
		}
	}
	return "", false
}

// TransitionTo moves the contract to target through whichever event links
// the two states. Asking for the current state is a no-op.
func (c *ContractFSM) TransitionTo(ctx context.Context, target string) error {
	if target == c.contract.Estado {
		return nil
	}
	name, ok := EventFor(c.contract.Estado, target)
	if !ok {
		return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, c.contract.Estado, target)
	}
	return c.event(ctx, name)
}

// Activar transitions a draft to ACTIVO
func (c *ContractFSM) Activar(ctx context.Context) error {
	return c.event(ctx, EventActivar)
}

// MarcarProximoVencer flags an active contract as expiring soon
func (c *ContractFSM) MarcarProximoVencer(ctx context.Context) error {
	return c.event(ctx, EventMarcarProximoVencer)
}

// Vencer marks the contract expired
func (c *ContractFSM) Vencer(ctx context.Context) error {
	return c.event(ctx, EventVencerContrato)
}

// Finalizar closes the contract
func (c *ContractFSM) Finalizar(ctx context.Context) error {
	return c.event(ctx, EventFinalizar)
}

// Renovar reactivates an expiring or expired contract
func (c *ContractFSM) Renovar(ctx context.Context) error {
	return c.event(ctx, EventRenovar)
}

// Current returns the current state
func (c *ContractFSM) Current() string {
	return c.fsm.Current()
}

// Can checks if a transition is possible
func (c *ContractFSM) Can(event string) bool {
	return c.fsm.Can(event)
}
