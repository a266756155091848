package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sjperalta/arrendando-api/internal/models"
	"github.com/sjperalta/arrendando-api/pkg/logger"
)

// Actor identifies who triggered a mutation. The zero value is the system
// (background jobs).
type Actor struct {
	UserID    *uuid.UUID
	IP        string
	UserAgent string
}

// SystemActor is used by scheduled jobs
var SystemActor = Actor{UserAgent: "scheduler"}

type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// Log records an audit entry
func (s *AuditService) Log(ctx context.Context, actor Actor, action, entity string, entityID uuid.UUID, details string) error {
	if s == nil || s.db == nil {
		return nil
	}
	logEntry := &models.AuditLog{
		UserID:    actor.UserID,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Details:   details,
		IPAddress: actor.IP,
		UserAgent: actor.UserAgent,
	}
	return s.db.WithContext(ctx).Create(logEntry).Error
}

// Record logs an audit entry, reporting failures without returning them
func (s *AuditService) Record(ctx context.Context, actor Actor, action, entity string, entityID uuid.UUID, format string, args ...interface{}) {
	if err := s.Log(ctx, actor, action, entity, entityID, fmt.Sprintf(format, args...)); err != nil {
		logger.Error("[Audit] Failed to record entry", "action", action, "entity", entity, "entity_id", entityID, "error", err)
	}
}

// AuditFilter narrows GET /audits
type AuditFilter struct {
	Entity   string
	EntityID *uuid.UUID
	UserID   *uuid.UUID
	Action   string
}

// List retrieves audit logs with filters
func (s *AuditService) List(ctx context.Context, filter AuditFilter, limit, offset int) ([]models.AuditLog, int64, error) {
	var logs []models.AuditLog
	var total int64

	db := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if filter.Entity != "" {
		db = db.Where("entity = ?", filter.Entity)
	}
	if filter.EntityID != nil {
		db = db.Where("entity_id = ?", *filter.EntityID)
	}
	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}
	if filter.Action != "" {
		db = db.Where("action = ?", filter.Action)
	}

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	result := db.Order("created_at desc").Limit(limit).Offset(offset).Find(&logs)
	return logs, total, result.Error
}
