package statemachine

import (
	"context"

	"github.com/looplab/fsm"
	"github.com/shopspring/decimal"

	"github.com/sjperalta/arrendando-api/internal/models"
	"github.com/sjperalta/arrendando-api/pkg/finance"
)

// Payment events
const (
	EventAbonarParcial      = "abonar_parcial"
	EventCompletar          = "completar"
	EventVencerPago         = "vencer"
	EventReprogramar        = "reprogramar"
	EventReprogramarParcial = "reprogramar_parcial"
)

// PaymentEvents is the payment transition table
var PaymentEvents = fsm.Events{
	// pending/partial → partial
	{Name: EventAbonarParcial, Src: []string{models.PaymentEstadoPendiente, models.PaymentEstadoParcial}, Dst: models.PaymentEstadoParcial},

	// pending/partial/overdue → paid
	{Name: EventCompletar, Src: []string{models.PaymentEstadoPendiente, models.PaymentEstadoParcial, models.PaymentEstadoVencido}, Dst: models.PaymentEstadoPagado},

	// pending/partial → overdue
	{Name: EventVencerPago, Src: []string{models.PaymentEstadoPendiente, models.PaymentEstadoParcial}, Dst: models.PaymentEstadoVencido},

	// overdue → pending/partial when the due date moves forward
	{Name: EventReprogramar, Src: []string{models.PaymentEstadoVencido}, Dst: models.PaymentEstadoPendiente},
	{Name: EventReprogramarParcial, Src: []string{models.PaymentEstadoVencido}, Dst: models.PaymentEstadoParcial},
}

// PaymentFSM wraps a payment with its state machine
type PaymentFSM struct {
	payment *models.Payment
	fsm     *fsm.FSM
}

// NewPaymentFSM creates a new payment state machine
func NewPaymentFSM(payment *models.Payment) *PaymentFSM {
	return &PaymentFSM{
		payment: payment,
		fsm:     fsm.NewFSM(payment.Estado, PaymentEvents, fsm.Callbacks{}),
	}
}

func (p *PaymentFSM) event(ctx context.Context, name string) error {
	if err := fire(ctx, p.fsm, name); err != nil {
		return err
	}
	p.payment.Estado = p.fsm.Current()
	return nil
}

// Abonar records a partial or final payment of monto made on fecha.
// Reaching montoTotal completes the payment. An overdue payment that is
// still short stays VENCIDO.
func (p *PaymentFSM) Abonar(ctx context.Context, monto decimal.Decimal, fecha finance.Date) error {
	if p.payment.Estado == models.PaymentEstadoPagado {
		return fire(ctx, p.fsm, EventAbonarParcial)
	}
	if !monto.IsPositive() {
		return ErrInvalidAmount
	}

	abonado := p.payment.MontoAbonado.Add(monto)
	if abonado.GreaterThan(p.payment.MontoTotal) {
		return ErrOverpayment
	}

	if abonado.Equal(p.payment.MontoTotal) {
		if err := p.event(ctx, EventCompletar); err != nil {
			return err
		}
		p.payment.MontoAbonado = abonado
		p.payment.FechaPagoReal = &fecha
		return nil
	}

	if p.payment.Estado != models.PaymentEstadoVencido {
		if err := p.event(ctx, EventAbonarParcial); err != nil {
			return err
		}
	}
	p.payment.MontoAbonado = abonado
	return nil
}

// Completar marks the payment paid on fecha
func (p *PaymentFSM) Completar(ctx context.Context, fecha finance.Date) error {
	if err := p.event(ctx, EventCompletar); err != nil {
		return err
	}
	p.payment.FechaPagoReal = &fecha
	return nil
}

// Vencer marks an unpaid payment overdue
func (p *PaymentFSM) Vencer(ctx context.Context) error {
	return p.event(ctx, EventVencerPago)
}

// Reprogramar moves the due date. An overdue payment whose new date is
// today or later returns to PENDIENTE, or PARCIAL when it has abonos.
func (p *PaymentFSM) Reprogramar(ctx context.Context, fecha, today finance.Date) error {
	if p.payment.Estado == models.PaymentEstadoPagado {
		return fire(ctx, p.fsm, EventReprogramar)
	}
	p.payment.FechaPagoEsperada = fecha
	if p.payment.Estado != models.PaymentEstadoVencido || fecha.Before(today) {
		return nil
	}
	if p.payment.MontoAbonado.IsPositive() {
		return p.event(ctx, EventReprogramarParcial)
	}
	return p.event(ctx, EventReprogramar)
}

// Current returns the current state
func (p *PaymentFSM) Current() string {
	return p.fsm.Current()
}

// Can checks if a transition is possible
func (p *PaymentFSM) Can(event string) bool {
	return p.fsm.Can(event)
}
