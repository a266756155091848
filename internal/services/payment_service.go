package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sjperalta/arrendando-api/internal/events"
	"github.com/sjperalta/arrendando-api/internal/models"
	"github.com/sjperalta/arrendando-api/internal/repository"
	"github.com/sjperalta/arrendando-api/internal/statemachine"
	"github.com/sjperalta/arrendando-api/pkg/finance"
	"github.com/sjperalta/arrendando-api/pkg/logger"
)

// CreatePaymentInput is the body of POST /pagos
type CreatePaymentInput struct {
	ContratoID        uuid.UUID        `json:"contratoId" binding:"required"`
	MontoTotal        decimal.Decimal  `json:"montoTotal"`
	MontoAbonado      *decimal.Decimal `json:"montoAbonado"`
	FechaPagoEsperada finance.Date     `json:"fechaPagoEsperada"`
}

// UpdatePaymentInput is the body of PATCH /pagos/:id
type UpdatePaymentInput struct {
	FechaPagoEsperada *finance.Date    `json:"fechaPagoEsperada"`
	MontoTotal        *decimal.Decimal `json:"montoTotal"`
}

// AbonoInput is the body of PATCH /pagos/:id/abono
type AbonoInput struct {
	Monto     decimal.Decimal `json:"monto"`
	FechaPago *finance.Date   `json:"fechaPago"`
}

type PaymentService struct {
	repo         repository.PaymentRepository
	contractRepo repository.ContractRepository
	auditSvc     *AuditService
	lifecycle    *lifecycle
	now          func() time.Time
}

func NewPaymentService(
	repo repository.PaymentRepository,
	contractRepo repository.ContractRepository,
	auditSvc *AuditService,
	lc *lifecycle,
) *PaymentService {
	return &PaymentService{
		repo:         repo,
		contractRepo: contractRepo,
		auditSvc:     auditSvc,
		lifecycle:    lc,
		now:          time.Now,
	}
}

func (s *PaymentService) today() finance.Date {
	return finance.NewDate(s.now())
}

func (s *PaymentService) List(ctx context.Context, filter repository.PaymentFilter) ([]models.Payment, error) {
	if filter.Estado != "" && !models.IsValidPaymentEstado(filter.Estado) {
		return nil, Invalid("estado de pago inválido: %s", filter.Estado)
	}
	if filter.FechaDesde != nil && filter.FechaHasta != nil && filter.FechaDesde.After(*filter.FechaHasta) {
		return nil, ErrInvalidDateRange
	}
	return s.repo.List(ctx, filter)
}

// Stats aggregates the payments matching filter
func (s *PaymentService) Stats(ctx context.Context, filter repository.PaymentFilter) (finance.Stats, error) {
	payments, err := s.List(ctx, filter)
	if err != nil {
		return finance.Stats{}, err
	}
	return finance.ComputeStats(models.FinancePayments(payments)), nil
}

func (s *PaymentService) Get(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return payment, nil
}

func (s *PaymentService) FindByContract(ctx context.Context, contractID uuid.UUID) ([]models.Payment, error) {
	if _, err := s.contractRepo.FindByID(ctx, contractID); err != nil {
		return nil, translate(err)
	}
	return s.repo.FindByContract(ctx, contractID)
}

// Create stores a PENDIENTE payment. An initial montoAbonado is applied as an abono.
func (s *PaymentService) Create(ctx context.Context, actor Actor, input CreatePaymentInput) (*models.Payment, error) {
	if !input.MontoTotal.IsPositive() {
		return nil, Invalid("el monto total debe ser mayor a cero")
	}
	if input.FechaPagoEsperada.IsZero() {
		return nil, Invalid("la fecha de pago esperada es obligatoria")
	}
	if _, err := s.contractRepo.FindByID(ctx, input.ContratoID); err != nil {
		if errors.Is(translate(err), ErrNotFound) {
			return nil, Invalid("el contrato no existe")
		}
		return nil, err
	}

	payment := &models.Payment{
		MontoTotal:        input.MontoTotal.Round(2),
		MontoAbonado:      decimal.Zero,
		Estado:            models.PaymentEstadoPendiente,
		FechaPagoEsperada: input.FechaPagoEsperada,
		ContratoID:        input.ContratoID,
	}
	if input.MontoAbonado != nil && !input.MontoAbonado.IsZero() {
		if err := statemachine.NewPaymentFSM(payment).Abonar(ctx, input.MontoAbonado.Round(2), s.today()); err != nil {
			return nil, translate(err)
		}
	}

	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, translate(err)
	}
	s.auditSvc.Record(ctx, actor, models.AuditActionCreate, models.AuditEntityPayment, payment.ID,
		"Pago creado por %s con vencimiento %s", payment.MontoTotal.StringFixed(2), payment.FechaPagoEsperada)
	s.lifecycle.changed(ctx)
	return s.Get(ctx, payment.ID)
}

// Update changes the due date or total of a payment that is not PAGADO.
// Moving an overdue payment to today or later reschedules it.
func (s *PaymentService) Update(ctx context.Context, actor Actor, id uuid.UUID, input UpdatePaymentInput) (*models.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	if payment.Estado == models.PaymentEstadoPagado {
		return nil, fmt.Errorf("%w: no se puede modificar un pago completado", ErrInvalidState)
	}

	from := payment.Estado
	f := statemachine.NewPaymentFSM(payment)

	if input.MontoTotal != nil {
		total := input.MontoTotal.Round(2)
		if !total.IsPositive() {
			return nil, Invalid("el monto total debe ser mayor a cero")
		}
		if total.LessThan(payment.MontoAbonado) {
			return nil, Invalid("el monto total no puede ser menor al monto abonado (%s)", payment.MontoAbonado.StringFixed(2))
		}
		payment.MontoTotal = total
	}

	if input.FechaPagoEsperada != nil {
		if input.FechaPagoEsperada.IsZero() {
			return nil, Invalid("la fecha de pago esperada es obligatoria")
		}
		if err := f.Reprogramar(ctx, *input.FechaPagoEsperada, s.today()); err != nil {
			return nil, err
		}
	}

	// A total lowered to what was already paid settles the payment
	if payment.MontoAbonado.IsPositive() && payment.MontoAbonado.Equal(payment.MontoTotal) {
		if err := f.Completar(ctx, s.today()); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, translate(err)
	}

	s.auditSvc.Record(ctx, actor, models.AuditActionUpdate, models.AuditEntityPayment, payment.ID,
		"Pago actualizado: total %s, vencimiento %s", payment.MontoTotal.StringFixed(2), payment.FechaPagoEsperada)
	if from != payment.Estado {
		s.transitioned(ctx, actor, payment, from)
	}
	s.lifecycle.changed(ctx)
	return payment, nil
}

// Abonar records an abono. Reaching montoTotal completes the payment.
func (s *PaymentService) Abonar(ctx context.Context, actor Actor, id uuid.UUID, input AbonoInput) (*models.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}

	fecha := s.today()
	if input.FechaPago != nil && !input.FechaPago.IsZero() {
		fecha = *input.FechaPago
	}

	from := payment.Estado
	monto := input.Monto.Round(2)
	if err := statemachine.NewPaymentFSM(payment).Abonar(ctx, monto, fecha); err != nil {
		return nil, translate(err)
	}

	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, translate(err)
	}

	s.auditSvc.Record(ctx, actor, models.AuditActionAbono, models.AuditEntityPayment, payment.ID,
		"Abono de %s, abonado %s de %s", monto.StringFixed(2), payment.MontoAbonado.StringFixed(2), payment.MontoTotal.StringFixed(2))

	if from != payment.Estado {
		s.transitioned(ctx, actor, payment, from)
	} else {
		s.lifecycle.publish(events.New(events.PagoAbonado, payment.ID, payment.Estado, abonoData(payment, monto)))
	}
	s.lifecycle.changed(ctx)
	return payment, nil
}

func (s *PaymentService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return translate(err)
	}
	s.auditSvc.Record(ctx, actor, models.AuditActionDelete, models.AuditEntityPayment, id, "Pago eliminado")
	s.lifecycle.changed(ctx)
	return nil
}

// MarkOverdue moves unpaid payments past their due date to VENCIDO and
// returns how many changed.
func (s *PaymentService) MarkOverdue(ctx context.Context) (int, error) {
	payments, err := s.repo.FindOverdueCandidates(ctx, s.today())
	if err != nil {
		return 0, fmt.Errorf("buscar pagos vencidos: %w", err)
	}

	changed := 0
	for i := range payments {
		payment := &payments[i]
		from := payment.Estado
		if err := statemachine.NewPaymentFSM(payment).Vencer(ctx); err != nil {
			logger.Error("[Job] Failed to mark payment overdue", "payment_id", payment.ID, "error", err)
			continue
		}
		if err := s.repo.Update(ctx, payment); err != nil {
			logger.Error("[Job] Failed to save overdue payment", "payment_id", payment.ID, "error", err)
			continue
		}
		s.transitioned(ctx, SystemActor, payment, from)
		changed++
	}

	if changed > 0 {
		s.lifecycle.changed(ctx)
	}
	return changed, nil
}

// transitioned audits, notifies and publishes an estado change
func (s *PaymentService) transitioned(ctx context.Context, actor Actor, payment *models.Payment, from string) {
	s.auditSvc.Record(ctx, actor, models.AuditActionTransition, models.AuditEntityPayment, payment.ID,
		"Estado %s → %s", from, payment.Estado)

	switch payment.Estado {
	case models.PaymentEstadoPagado:
		s.lifecycle.publish(events.New(events.PagoPagado, payment.ID, payment.Estado, abonoData(payment, decimal.Zero)))
		s.lifecycle.notifyAdmins("Pago completado",
			fmt.Sprintf("Se completó el pago de %s con vencimiento %s", payment.MontoTotal.StringFixed(2), payment.FechaPagoEsperada),
			models.NotificationTipoPagoCompletado)
	case models.PaymentEstadoVencido:
		s.lifecycle.publish(events.New(events.PagoVencido, payment.ID, payment.Estado, abonoData(payment, decimal.Zero)))
		s.lifecycle.notifyAdmins("Pago vencido",
			fmt.Sprintf("El pago%s tiene saldo %s y vencía el %s", tenantSuffix(payment), payment.Saldo().StringFixed(2), payment.FechaPagoEsperada),
			models.NotificationTipoPagoVencido)
	case models.PaymentEstadoParcial:
		s.lifecycle.publish(events.New(events.PagoAbonado, payment.ID, payment.Estado, abonoData(payment, decimal.Zero)))
	}
}

func abonoData(payment *models.Payment, monto decimal.Decimal) map[string]interface{} {
	data := map[string]interface{}{
		"contratoId":        payment.ContratoID,
		"montoTotal":        payment.MontoTotal.StringFixed(2),
		"montoAbonado":      payment.MontoAbonado.StringFixed(2),
		"fechaPagoEsperada": payment.FechaPagoEsperada.String(),
	}
	if monto.IsPositive() {
		data["monto"] = monto.StringFixed(2)
	}
	return data
}

func tenantSuffix(payment *models.Payment) string {
	if payment.Contrato == nil || payment.Contrato.Inquilino == nil {
		return ""
	}
	return " de " + payment.Contrato.Inquilino.FullName()
}
