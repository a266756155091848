package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sjperalta/arrendando-api/internal/models"
)

// TenantRepository defines the interface for tenant data access
type TenantRepository interface {
	CrudRepository[models.Tenant]
	FindByCedula(ctx context.Context, cedula string) (*models.Tenant, error)
	FindByCorreo(ctx context.Context, correo string) (*models.Tenant, error)
}

type tenantRepository struct {
	CrudRepository[models.Tenant]
	db *gorm.DB
}

// TenantOptions are the list options of /tenants
var TenantOptions = CrudOptions{
	SearchColumns: []string{"nombres", "apellidos", "cedula", "correo", "telefono"},
	FilterColumns: map[string]string{"ciudad": "ciudad"},
	BoolFilters:   map[string]string{"isActive": "is_active"},
	ActiveColumn:  "is_active",
	SortableColumns: []string{
		"nombres", "apellidos", "cedula", "ciudad", "created_at", "updated_at",
	},
	DefaultOrder: "created_at DESC",
	UniqueMessages: map[string]string{
		"tenants_cedula_key": "Ya existe un inquilino con esta cédula",
		"tenants_correo_key": "Ya existe un inquilino con este correo electrónico",
	},
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *gorm.DB) TenantRepository {
	return &tenantRepository{
		CrudRepository: NewCrudRepository[models.Tenant](db, TenantOptions),
		db:             db,
	}
}

func (r *tenantRepository) FindByCedula(ctx context.Context, cedula string) (*models.Tenant, error) {
	return r.FindOneBy(ctx, "cedula", cedula)
}

func (r *tenantRepository) FindByCorreo(ctx context.Context, correo string) (*models.Tenant, error) {
	var tenant models.Tenant
	err := r.db.WithContext(ctx).
		Where("LOWER(correo) = LOWER(?)", correo).
		First(&tenant).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}
