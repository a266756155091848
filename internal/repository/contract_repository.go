package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sjperalta/arrendando-api/internal/models"
	"github.com/sjperalta/arrendando-api/pkg/finance"
)

// ContractRepository defines the interface for contract data access
type ContractRepository interface {
	CrudRepository[models.Contract]
	FindActive(ctx context.Context) ([]models.Contract, error)
	FindExpiringWithin(ctx context.Context, today finance.Date, days int) ([]models.Contract, error)
	FindToWarn(ctx context.Context, today finance.Date, days int) ([]models.Contract, error)
	FindEnded(ctx context.Context, today finance.Date) ([]models.Contract, error)
	CountByEstado(ctx context.Context) (map[string]int64, error)
	// CreateWithAvailability inserts the contract and marks its property occupied when it starts ACTIVO
	CreateWithAvailability(ctx context.Context, contract *models.Contract) error
	// UpdateWithAvailability saves the contract and sets the property disponible flag in one transaction
	UpdateWithAvailability(ctx context.Context, contract *models.Contract, disponible *bool) error
	// DeleteWithPayments removes the contract, its payments and frees the property
	DeleteWithPayments(ctx context.Context, contract *models.Contract) error
}

type contractRepository struct {
	CrudRepository[models.Contract]
	db *gorm.DB
}

// ContractOptions are the list options of /contratos
var ContractOptions = CrudOptions{
	FilterColumns: map[string]string{
		"estado":      "contracts.estado",
		"inquilinoId": "contracts.inquilino_id",
		"inmuebleId":  "contracts.inmueble_id",
	},
	SortableColumns: []string{"fecha_inicio", "fecha_fin", "canon_mensual", "estado", "created_at"},
	Table:           "contracts",
	DefaultOrder:    "contracts.created_at DESC",
	Preloads:        []string{"Inquilino", "Inmueble"},
	Scope: func(db *gorm.DB, q *ListQuery) *gorm.DB {
		name := strings.TrimSpace(q.Filters["inquilinoNombre"])
		if name == "" {
			return db
		}
		search := "%" + name + "%"
		return db.Joins("JOIN tenants ON tenants.id = contracts.inquilino_id").
			Where("(tenants.nombres ILIKE ? OR tenants.apellidos ILIKE ? OR CONCAT(tenants.nombres, ' ', tenants.apellidos) ILIKE ?)",
				search, search, search)
	},
}

// NewContractRepository creates a new contract repository
func NewContractRepository(db *gorm.DB) ContractRepository {
	return &contractRepository{
		CrudRepository: NewCrudRepository[models.Contract](db, ContractOptions),
		db:             db,
	}
}

func (r *contractRepository) withDetails(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Inquilino").Preload("Inmueble")
}

func (r *contractRepository) FindActive(ctx context.Context) ([]models.Contract, error) {
	var contracts []models.Contract
	err := r.withDetails(ctx).
		Where("estado = ?", models.ContractEstadoActivo).
		Order("fecha_fin ASC").
		Find(&contracts).Error
	return contracts, err
}

// FindExpiringWithin returns running contracts ending between today and today+days
func (r *contractRepository) FindExpiringWithin(ctx context.Context, today finance.Date, days int) ([]models.Contract, error) {
	var contracts []models.Contract
	limit := finance.NewDate(today.AddDate(0, 0, days))
	err := r.withDetails(ctx).
		Where("estado IN ?", []string{models.ContractEstadoActivo, models.ContractEstadoProximoVencer}).
		Where("fecha_fin >= ? AND fecha_fin <= ?", today, limit).
		Order("fecha_fin ASC").
		Find(&contracts).Error
	return contracts, err
}

// FindToWarn returns ACTIVO contracts that should become PROXIMO_VENCER
func (r *contractRepository) FindToWarn(ctx context.Context, today finance.Date, days int) ([]models.Contract, error) {
	var contracts []models.Contract
	limit := finance.NewDate(today.AddDate(0, 0, days))
	err := r.withDetails(ctx).
		Where("estado = ?", models.ContractEstadoActivo).
		Where("fecha_fin >= ? AND fecha_fin <= ?", today, limit).
		Find(&contracts).Error
	return contracts, err
}

// FindEnded returns running contracts whose fechaFin already passed
func (r *contractRepository) FindEnded(ctx context.Context, today finance.Date) ([]models.Contract, error) {
	var contracts []models.Contract
	err := r.withDetails(ctx).
		Where("estado IN ?", []string{models.ContractEstadoActivo, models.ContractEstadoProximoVencer}).
		Where("fecha_fin < ?", today).
		Find(&contracts).Error
	return contracts, err
}

func (r *contractRepository) CountByEstado(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.WithContext(ctx).
		Model(&models.Contract{}).
		Select("estado, count(*) as count").
		Group("estado").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var estado string
		var count int64
		if err := rows.Scan(&estado, &count); err != nil {
			return nil, err
		}
		counts[estado] = count
	}
	return counts, rows.Err()
}

func (r *contractRepository) CreateWithAvailability(ctx context.Context, contract *models.Contract) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Inquilino", "Inmueble").Create(contract).Error; err != nil {
			return err
		}
		if contract.IsCurrent() {
			return setAvailability(tx, contract.InmuebleID, false)
		}
		return nil
	})
}

func (r *contractRepository) UpdateWithAvailability(ctx context.Context, contract *models.Contract, disponible *bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Inquilino", "Inmueble").Save(contract).Error; err != nil {
			return err
		}
		switch {
		case disponible == nil:
			return nil
		case *disponible:
			return releaseProperty(tx, contract.InmuebleID)
		default:
			return setAvailability(tx, contract.InmuebleID, false)
		}
	})
}

func (r *contractRepository) DeleteWithPayments(ctx context.Context, contract *models.Contract) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contrato_id = ?", contract.ID).Delete(&models.Payment{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Contract{}, "id = ?", contract.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return releaseProperty(tx, contract.InmuebleID)
	})
}

// releaseProperty marks the property available unless another running contract still holds it
func releaseProperty(tx *gorm.DB, propertyID uuid.UUID) error {
	var running int64
	err := tx.Model(&models.Contract{}).
		Where("inmueble_id = ? AND estado IN ?", propertyID,
			[]string{models.ContractEstadoActivo, models.ContractEstadoProximoVencer}).
		Count(&running).Error
	if err != nil {
		return err
	}
	if running > 0 {
		return nil
	}
	return setAvailability(tx, propertyID, true)
}
