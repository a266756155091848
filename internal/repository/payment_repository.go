package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sjperalta/arrendando-api/internal/models"
	"github.com/sjperalta/arrendando-api/pkg/finance"
)

// PaymentFilter narrows GET /pagos
type PaymentFilter struct {
	Estado     string
	ContratoID *uuid.UUID
	FechaDesde *finance.Date
	FechaHasta *finance.Date
}

// PaymentRepository defines the interface for payment data access
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	FindByContract(ctx context.Context, contractID uuid.UUID) ([]models.Payment, error)
	List(ctx context.Context, filter PaymentFilter) ([]models.Payment, error)
	FindDueBetween(ctx context.Context, from, to finance.Date) ([]models.Payment, error)
	FindOverdueCandidates(ctx context.Context, today finance.Date) ([]models.Payment, error)
	Create(ctx context.Context, payment *models.Payment) error
	CreateBatch(ctx context.Context, payments []models.Payment) error
	Update(ctx context.Context, payment *models.Payment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Preload("Contrato.Inquilino").
		Preload("Contrato.Inmueble").
		First(&payment, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByContract(ctx context.Context, contractID uuid.UUID) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("contrato_id = ?", contractID).
		Order("fecha_pago_esperada ASC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) List(ctx context.Context, filter PaymentFilter) ([]models.Payment, error) {
	var payments []models.Payment

	db := r.db.WithContext(ctx).Model(&models.Payment{})

	if filter.Estado != "" {
		db = db.Where("payments.estado = ?", filter.Estado)
	}
	if filter.ContratoID != nil {
		db = db.Where("payments.contrato_id = ?", *filter.ContratoID)
	}
	if filter.FechaDesde != nil {
		db = db.Where("payments.fecha_pago_esperada >= ?", *filter.FechaDesde)
	}
	if filter.FechaHasta != nil {
		db = db.Where("payments.fecha_pago_esperada <= ?", *filter.FechaHasta)
	}

	err := db.
		Preload("Contrato.Inquilino").
		Preload("Contrato.Inmueble").
		Order("payments.fecha_pago_esperada ASC").
		Find(&payments).Error
	return payments, err
}

// FindDueBetween returns payments with from <= fechaPagoEsperada <= to, inclusive
func (r *paymentRepository) FindDueBetween(ctx context.Context, from, to finance.Date) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("fecha_pago_esperada >= ? AND fecha_pago_esperada <= ?", from, to).
		Order("fecha_pago_esperada ASC").
		Find(&payments).Error
	return payments, err
}

// FindOverdueCandidates returns unpaid payments whose due date is before today
func (r *paymentRepository) FindOverdueCandidates(ctx context.Context, today finance.Date) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("estado IN ? AND fecha_pago_esperada < ?",
			[]string{models.PaymentEstadoPendiente, models.PaymentEstadoParcial}, today).
		Preload("Contrato.Inquilino").
		Order("fecha_pago_esperada ASC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Omit("Contrato").Create(payment).Error
}

func (r *paymentRepository) CreateBatch(ctx context.Context, payments []models.Payment) error {
	if len(payments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("Contrato").CreateInBatches(payments, 100).Error
}

func (r *paymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Omit("Contrato").Save(payment).Error
}

func (r *paymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Payment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
