package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/sjperalta/arrendando-api/internal/models"
	"github.com/sjperalta/arrendando-api/internal/repository"
)

// ErrInUse is returned when a record is still referenced by contracts
var ErrInUse = repository.ErrInUse

// ResourceService is the generic CRUD flow shared by tenants, properties
// and users: repository access, error translation and auditing.
type ResourceService[T any, P models.EntityPtr[T]] struct {
	repo      repository.CrudRepository[T]
	audit     *AuditService
	entity    string
	lifecycle *lifecycle

	// validate runs before Create and Update when set
	validate func(ctx context.Context, entity P) error
}

// NewResourceService creates a generic service for entity
func NewResourceService[T any, P models.EntityPtr[T]](repo repository.CrudRepository[T], audit *AuditService, entity string) *ResourceService[T, P] {
	return &ResourceService[T, P]{repo: repo, audit: audit, entity: entity}
}

func (s *ResourceService[T, P]) List(ctx context.Context, query *repository.ListQuery) ([]T, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *ResourceService[T, P]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	entity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return entity, nil
}

func (s *ResourceService[T, P]) Create(ctx context.Context, actor Actor, entity *T) error {
	if s.validate != nil {
		if err := s.validate(ctx, P(entity)); err != nil {
			return err
		}
	}
	if err := s.repo.Create(ctx, entity); err != nil {
		return translate(err)
	}
	s.audit.Record(ctx, actor, models.AuditActionCreate, s.entity, P(entity).GetID(), "%s creado", s.entity)
	s.lifecycle.countsChanged(ctx)
	return nil
}

func (s *ResourceService[T, P]) Update(ctx context.Context, actor Actor, entity *T) error {
	if s.validate != nil {
		if err := s.validate(ctx, P(entity)); err != nil {
			return err
		}
	}
	if err := s.repo.Update(ctx, entity); err != nil {
		return translate(err)
	}
	s.audit.Record(ctx, actor, models.AuditActionUpdate, s.entity, P(entity).GetID(), "%s actualizado", s.entity)
	s.lifecycle.countsChanged(ctx)
	return nil
}

func (s *ResourceService[T, P]) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return translate(err)
	}
	s.audit.Record(ctx, actor, models.AuditActionDelete, s.entity, id, "%s eliminado", s.entity)
	s.lifecycle.countsChanged(ctx)
	return nil
}

// SetActive toggles the entity's active column and returns the stored row
func (s *ResourceService[T, P]) SetActive(ctx context.Context, actor Actor, id uuid.UUID, active bool) (*T, error) {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return nil, translate(err)
	}
	s.audit.Record(ctx, actor, models.AuditActionUpdate, s.entity, id, "%s activo=%t", s.entity, active)
	s.lifecycle.countsChanged(ctx)
	return s.Get(ctx, id)
}

// TenantService manages tenants
type TenantService struct {
	*ResourceService[models.Tenant, *models.Tenant]
	repo repository.TenantRepository
}

func NewTenantService(repo repository.TenantRepository, audit *AuditService) *TenantService {
	return &TenantService{
		ResourceService: NewResourceService[models.Tenant, *models.Tenant](repo, audit, models.AuditEntityTenant),
		repo:            repo,
	}
}

func (s *TenantService) FindByCedula(ctx context.Context, cedula string) (*models.Tenant, error) {
	tenant, err := s.repo.FindByCedula(ctx, cedula)
	return tenant, translate(err)
}

func (s *TenantService) FindByCorreo(ctx context.Context, correo string) (*models.Tenant, error) {
	tenant, err := s.repo.FindByCorreo(ctx, correo)
	return tenant, translate(err)
}

// PropertyService manages properties
type PropertyService struct {
	*ResourceService[models.Property, *models.Property]
	repo repository.PropertyRepository
}

func NewPropertyService(repo repository.PropertyRepository, audit *AuditService) *PropertyService {
	return &PropertyService{
		ResourceService: NewResourceService[models.Property, *models.Property](repo, audit, models.AuditEntityProperty),
		repo:            repo,
	}
}

func (s *PropertyService) ListByAddress(ctx context.Context, direccion string, query *repository.ListQuery) ([]models.Property, int64, error) {
	return s.repo.ListByAddress(ctx, direccion, query)
}
