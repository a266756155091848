package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/sjperalta/arrendando-api/internal/repository"
)

// DBStore keeps entries in the report_cache table
type DBStore struct {
	repo repository.ReportCacheRepository
}

func NewDBStore(repo repository.ReportCacheRepository) *DBStore {
	return &DBStore{repo: repo}
}

func (s *DBStore) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	row, err := s.repo.Get(ctx, key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(row.Data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (s *DBStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return s.repo.Set(ctx, key, value, ttl)
}

func (s *DBStore) InvalidatePrefix(ctx context.Context, prefix string) error {
	return s.repo.DeletePrefix(ctx, prefix)
}

func (s *DBStore) CleanExpired(ctx context.Context) (int64, error) {
	return s.repo.CleanExpired(ctx)
}

func (s *DBStore) Backend() string { return "postgres" }
