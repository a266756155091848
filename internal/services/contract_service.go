package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sjperalta/arrendando-api/internal/events"
	"github.com/sjperalta/arrendando-api/internal/models"
	"github.com/sjperalta/arrendando-api/internal/repository"
	"github.com/sjperalta/arrendando-api/internal/statemachine"
	"github.com/sjperalta/arrendando-api/pkg/finance"
	"github.com/sjperalta/arrendando-api/pkg/logger"
)

type ContractService struct {
	repo            repository.ContractRepository
	tenantRepo      repository.TenantRepository
	propertyRepo    repository.PropertyRepository
	paymentRepo     repository.PaymentRepository
	emailSvc        *EmailService
	auditSvc        *AuditService
	lifecycle       *lifecycle
	paymentSchedule *PaymentScheduleService
	warningDays     int
	now             func() time.Time
}

func NewContractService(
	repo repository.ContractRepository,
	tenantRepo repository.TenantRepository,
	propertyRepo repository.PropertyRepository,
	paymentRepo repository.PaymentRepository,
	emailSvc *EmailService,
	auditSvc *AuditService,
	lc *lifecycle,
	warningDays int,
) *ContractService {
	return &ContractService{
		repo:            repo,
		tenantRepo:      tenantRepo,
		propertyRepo:    propertyRepo,
		paymentRepo:     paymentRepo,
		emailSvc:        emailSvc,
		auditSvc:        auditSvc,
		lifecycle:       lc,
		paymentSchedule: NewPaymentScheduleService(),
		warningDays:     warningDays,
		now:             time.Now,
	}
}

func (s *ContractService) List(ctx context.Context, query *repository.ListQuery) ([]models.Contract, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *ContractService) Get(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	contract, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return contract, nil
}

// FindActive lists ACTIVO contracts by nearest end date
func (s *ContractService) FindActive(ctx context.Context) ([]models.Contract, error) {
	return s.repo.FindActive(ctx)
}

// FindExpiring lists running contracts ending within days
func (s *ContractService) FindExpiring(ctx context.Context, days int) ([]models.Contract, error) {
	if days < 0 {
		return nil, Invalid("el número de días debe ser positivo")
	}
	return s.repo.FindExpiringWithin(ctx, finance.NewDate(s.now()), days)
}

// ValidateDates rejects ranges where fechaInicio is not before fechaFin
func ValidateDates(inicio, fin finance.Date) error {
	if inicio.IsZero() || fin.IsZero() {
		return Invalid("las fechas de inicio y fin son obligatorias")
	}
	if !inicio.Before(fin) {
		return ErrInvalidDateRange
	}
	return nil
}

func (s *ContractService) validate(ctx context.Context, contract *models.Contract) error {
	if err := ValidateDates(contract.FechaInicio, contract.FechaFin); err != nil {
		return err
	}
	if contract.CanonMensual.IsNegative() {
		return Invalid("el canon mensual no puede ser negativo")
	}
	if _, err := s.tenantRepo.FindByID(ctx, contract.InquilinoID); err != nil {
		if errors.Is(translate(err), ErrNotFound) {
			return Invalid("el inquilino no existe")
		}
		return err
	}
	return nil
}

// property loads the contract's property, failing validation when missing
func (s *ContractService) property(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	property, err := s.propertyRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(translate(err), ErrNotFound) {
			return nil, Invalid("el inmueble no existe")
		}
		return nil, err
	}
	return property, nil
}

// Create stores a BORRADOR or ACTIVO contract. An ACTIVO contract occupies its property.
func (s *ContractService) Create(ctx context.Context, actor Actor, contract *models.Contract) error {
	if contract.Estado == "" {
		contract.Estado = models.ContractEstadoBorrador
	}
	if contract.Estado != models.ContractEstadoBorrador && contract.Estado != models.ContractEstadoActivo {
		return Invalid("un contrato nuevo debe iniciar en %s o %s", models.ContractEstadoBorrador, models.ContractEstadoActivo)
	}
	if err := s.validate(ctx, contract); err != nil {
		return err
	}
	property, err := s.property(ctx, contract.InmuebleID)
	if err != nil {
		return err
	}
	if contract.IsCurrent() && !property.Disponible {
		return Invalid("el inmueble no está disponible")
	}

	if err := s.repo.CreateWithAvailability(ctx, contract); err != nil {
		return translate(err)
	}

	s.auditSvc.Record(ctx, actor, models.AuditActionCreate, models.AuditEntityContract, contract.ID,
		"Contrato creado para el inmueble %s (%s - %s), canon %s, estado %s",
		property.Direccion, contract.FechaInicio, contract.FechaFin, contract.CanonMensual.StringFixed(2), contract.Estado)
	s.lifecycle.publish(events.New(events.ContratoCreado, contract.ID, contract.Estado, map[string]interface{}{
		"inquilinoId":  contract.InquilinoID,
		"inmuebleId":   contract.InmuebleID,
		"canonMensual": contract.CanonMensual.StringFixed(2),
	}))
	s.lifecycle.changed(ctx)

	return s.reload(ctx, contract)
}

// Update saves edited fields. A changed estado is applied through the
// contract state machine.
func (s *ContractService) Update(ctx context.Context, actor Actor, contract *models.Contract) error {
	current, err := s.repo.FindByID(ctx, contract.ID)
	if err != nil {
		return translate(err)
	}

	target := contract.Estado
	if !models.IsValidContractEstado(target) {
		return Invalid("estado de contrato inválido: %s", target)
	}
	if contract.InmuebleID != current.InmuebleID && current.Estado != models.ContractEstadoBorrador {
		return Invalid("solo se puede cambiar el inmueble de un contrato en borrador")
	}
	if err := s.validate(ctx, contract); err != nil {
		return err
	}
	property, err := s.property(ctx, contract.InmuebleID)
	if err != nil {
		return err
	}

	contract.Estado = current.Estado
	if err := statemachine.NewContractFSM(contract).TransitionTo(ctx, target); err != nil {
		return err
	}
	if current.Estado == models.ContractEstadoBorrador && contract.IsCurrent() && !property.Disponible {
		return Invalid("el inmueble no está disponible")
	}

	if err := s.repo.UpdateWithAvailability(ctx, contract, availabilityAfter(current.Estado, contract.Estado)); err != nil {
		return translate(err)
	}

	s.auditSvc.Record(ctx, actor, models.AuditActionUpdate, models.AuditEntityContract, contract.ID, "Contrato actualizado")
	if current.Estado != contract.Estado {
		s.transitioned(ctx, actor, contract, current.Estado)
	}
	s.lifecycle.changed(ctx)

	return s.reload(ctx, contract)
}

// availabilityAfter returns the disponible flag a transition sets on the property, if any
func availabilityAfter(from, to string) *bool {
	wasCurrent := from == models.ContractEstadoActivo || from == models.ContractEstadoProximoVencer
	isCurrent := to == models.ContractEstadoActivo || to == models.ContractEstadoProximoVencer
	switch {
	case !wasCurrent && isCurrent:
		v := false
		return &v
	case to == models.ContractEstadoFinalizado && from != to:
		v := true
		return &v
	}
	return nil
}

// Delete removes a contract that is not running, together with its payments
func (s *ContractService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	contract, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return translate(err)
	}
	if !contract.MayDelete() {
		return ErrContractLocked
	}
	if err := s.repo.DeleteWithPayments(ctx, contract); err != nil {
		return translate(err)
	}
	s.auditSvc.Record(ctx, actor, models.AuditActionDelete, models.AuditEntityContract, id,
		"Contrato eliminado (estado %s) con sus pagos", contract.Estado)
	s.lifecycle.changed(ctx)
	return nil
}

// GeneratePayments creates the monthly payments the contract is still missing
func (s *ContractService) GeneratePayments(ctx context.Context, actor Actor, id uuid.UUID) ([]models.Payment, error) {
	contract, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	if contract.Estado == models.ContractEstadoFinalizado {
		return nil, Invalid("no se pueden generar pagos para un contrato finalizado")
	}
	if !contract.HasValidDates() {
		return nil, ErrInvalidDateRange
	}

	existing, err := s.paymentRepo.FindByContract(ctx, contract.ID)
	if err != nil {
		return nil, err
	}

	payments := s.paymentSchedule.GenerateSchedule(contract, existing)
	if len(payments) == 0 {
		return []models.Payment{}, nil
	}
	if err := s.paymentRepo.CreateBatch(ctx, payments); err != nil {
		return nil, fmt.Errorf("crear calendario de pagos: %w", err)
	}

	s.auditSvc.Record(ctx, actor, models.AuditActionCreate, models.AuditEntityPayment, contract.ID,
		"%d pagos generados para el contrato", len(payments))
	s.lifecycle.changed(ctx)
	return payments, nil
}

// CountByEstado returns the number of contracts per estado
func (s *ContractService) CountByEstado(ctx context.Context) (map[string]int64, error) {
	return s.repo.CountByEstado(ctx)
}

// UpdateStates flags contracts close to their end as PROXIMO_VENCER and
// ended ones as VENCIDO. It returns how many contracts changed.
func (s *ContractService) UpdateStates(ctx context.Context) (int, error) {
	today := finance.NewDate(s.now())
	changed := 0

	toWarn, err := s.repo.FindToWarn(ctx, today, s.warningDays)
	if err != nil {
		return 0, fmt.Errorf("buscar contratos por vencer: %w", err)
	}
	for i := range toWarn {
		contract := &toWarn[i]
		if err := s.advance(ctx, contract, statemachine.EventMarcarProximoVencer); err != nil {
			logger.Error("[Job] Failed to flag expiring contract", "contract_id", contract.ID, "error", err)
			continue
		}
		changed++
		if s.emailSvc != nil && contract.Inquilino != nil {
			c := *contract
			s.lifecycle.async(func(ctx context.Context) error {
				return s.emailSvc.SendContractExpiring(ctx, &c, c.DaysUntilEnd(s.now()))
			})
		}
	}

	ended, err := s.repo.FindEnded(ctx, today)
	if err != nil {
		return changed, fmt.Errorf("buscar contratos vencidos: %w", err)
	}
	for i := range ended {
		if err := s.advance(ctx, &ended[i], statemachine.EventVencerContrato); err != nil {
			logger.Error("[Job] Failed to expire contract", "contract_id", ended[i].ID, "error", err)
			continue
		}
		changed++
	}

	if changed > 0 {
		s.lifecycle.changed(ctx)
	}
	return changed, nil
}

func (s *ContractService) advance(ctx context.Context, contract *models.Contract, event string) error {
	from := contract.Estado
	f := statemachine.NewContractFSM(contract)
	var err error
	switch event {
	case statemachine.EventMarcarProximoVencer:
		err = f.MarcarProximoVencer(ctx)
	default:
		err = f.Vencer(ctx)
	}
	if err != nil {
		return err
	}
	if err := s.repo.Update(ctx, contract); err != nil {
		return err
	}
	s.transitioned(ctx, SystemActor, contract, from)
	return nil
}

// transitioned audits, notifies and publishes an estado change
func (s *ContractService) transitioned(ctx context.Context, actor Actor, contract *models.Contract, from string) {
	s.auditSvc.Record(ctx, actor, models.AuditActionTransition, models.AuditEntityContract, contract.ID,
		"Estado %s → %s", from, contract.Estado)

	s.lifecycle.publish(events.New(events.ContratoEstado, contract.ID, contract.Estado, map[string]interface{}{
		"estadoAnterior": from,
		"fechaFin":       contract.FechaFin.String(),
	}))

	var title, tipo string
	switch contract.Estado {
	case models.ContractEstadoProximoVencer:
		title, tipo = "Contrato próximo a vencer", models.NotificationTipoContratoPorVencer
	case models.ContractEstadoVencido:
		title, tipo = "Contrato vencido", models.NotificationTipoContratoVencido
	case models.ContractEstadoFinalizado:
		title, tipo = "Contrato finalizado", models.NotificationTipoContratoFinalizado
	default:
		return
	}
	message := fmt.Sprintf("El contrato %s pasó de %s a %s (fecha fin %s)", contract.ID, from, contract.Estado, contract.FechaFin)
	if contract.Inmueble != nil {
		message = fmt.Sprintf("El contrato del inmueble %s pasó de %s a %s (fecha fin %s)",
			contract.Inmueble.Direccion, from, contract.Estado, contract.FechaFin)
	}
	s.lifecycle.notifyAdmins(title, message, tipo)
}

// reload refreshes contract with its associations after a write
func (s *ContractService) reload(ctx context.Context, contract *models.Contract) error {
	fresh, err := s.repo.FindByID(ctx, contract.ID)
	if err != nil {
		return translate(err)
	}
	*contract = *fresh
	return nil
}
