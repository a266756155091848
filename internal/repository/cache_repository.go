package repository

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sjperalta/arrendando-api/internal/models"
)

// ReportCacheRepository stores cached report payloads in PostgreSQL
type ReportCacheRepository interface {
	Get(ctx context.Context, key string) (*models.ReportCache, error)
	Set(ctx context.Context, key string, data interface{}, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
	CleanExpired(ctx context.Context) (int64, error)
}

type reportCacheRepository struct {
	db *gorm.DB
}

// NewReportCacheRepository creates a new report cache repository
func NewReportCacheRepository(db *gorm.DB) ReportCacheRepository {
	return &reportCacheRepository{db: db}
}

func (r *reportCacheRepository) Get(ctx context.Context, key string) (*models.ReportCache, error) {
	var cache models.ReportCache
	err := r.db.WithContext(ctx).
		Where("cache_key = ? AND expires_at > ?", key, time.Now()).
		First(&cache).Error
	if err != nil {
		return nil, err
	}
	return &cache, nil
}

func (r *reportCacheRepository) Set(ctx context.Context, key string, data interface{}, ttl time.Duration) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	cache := models.ReportCache{
		CacheKey:  key,
		Data:      jsonData,
		ExpiresAt: time.Now().Add(ttl),
	}

	// Upsert on the unique cache key
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cache_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "expires_at", "updated_at"}),
	}).Create(&cache).Error
}

func (r *reportCacheRepository) DeletePrefix(ctx context.Context, prefix string) error {
	return r.db.WithContext(ctx).
		Where("cache_key LIKE ?", prefix+"%").
		Delete(&models.ReportCache{}).Error
}

func (r *reportCacheRepository) CleanExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at <= ?", time.Now()).
		Delete(&models.ReportCache{})
	return result.RowsAffected, result.Error
}
