package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sjperalta/arrendando-api/internal/models"
)

// PropertyRepository defines the interface for property data access
type PropertyRepository interface {
	CrudRepository[models.Property]
	ListByAddress(ctx context.Context, direccion string, query *ListQuery) ([]models.Property, int64, error)
}

type propertyRepository struct {
	CrudRepository[models.Property]
	db *gorm.DB
}

// PropertyOptions are the list options of /properties
var PropertyOptions = CrudOptions{
	SearchColumns:   []string{"direccion", "descripcion"},
	BoolFilters:     map[string]string{"disponible": "disponible"},
	ActiveColumn:    "disponible",
	SortableColumns: []string{"direccion", "disponible", "created_at", "updated_at"},
	DefaultOrder:    "created_at DESC",
	UniqueMessages: map[string]string{
		"properties_direccion_key": "Ya existe un inmueble con esta dirección",
	},
}

// NewPropertyRepository creates a new property repository
func NewPropertyRepository(db *gorm.DB) PropertyRepository {
	return &propertyRepository{
		CrudRepository: NewCrudRepository[models.Property](db, PropertyOptions),
		db:             db,
	}
}

func (r *propertyRepository) ListByAddress(ctx context.Context, direccion string, query *ListQuery) ([]models.Property, int64, error) {
	var properties []models.Property
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Property{}).
		Where("direccion ILIKE ?", "%"+direccion+"%")

	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if query.PerPage > 0 {
		db = db.Offset((max(query.Page, 1) - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Order("direccion ASC").Find(&properties).Error
	return properties, total, err
}

// setAvailability flips disponible inside a contract transaction
func setAvailability(tx *gorm.DB, propertyID uuid.UUID, disponible bool) error {
	return tx.Model(&models.Property{}).
		Where("id = ?", propertyID).
		Update("disponible", disponible).Error
}
