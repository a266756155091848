package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sjperalta/arrendando-api/internal/models"
	"github.com/sjperalta/arrendando-api/internal/repository"
)

type mockReportCacheRepository struct {
	repository.ReportCacheRepository
	rows map[string]*models.ReportCache
}

func (m *mockReportCacheRepository) Get(ctx context.Context, key string) (*models.ReportCache, error) {
	row, ok := m.rows[key]
	if !ok || row.ExpiresAt.Before(time.Now()) {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (m *mockReportCacheRepository) Set(ctx context.Context, key string, data interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	m.rows[key] = &models.ReportCache{CacheKey: key, Data: raw, ExpiresAt: time.Now().Add(ttl)}
	return nil
}

func (m *mockReportCacheRepository) DeletePrefix(ctx context.Context, prefix string) error {
	for k := range m.rows {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(m.rows, k)
		}
	}
	return nil
}

func TestKey(t *testing.T) {
	assert.Equal(t, "reports:annual:2024", Key("annual", "2024"))
	assert.Equal(t, "reports:", Key())
}

func TestDBStore_RoundTripAndInvalidate(t *testing.T) {
	ctx := context.Background()
	repo := &mockReportCacheRepository{rows: map[string]*models.ReportCache{}}
	store := NewDBStore(repo)

	var got map[string]int
	hit, err := store.Get(ctx, Key("annual", "2024"), &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, store.Set(ctx, Key("annual", "2024"), map[string]int{"total": 3}, time.Minute))
	require.NoError(t, store.Set(ctx, "other:key", map[string]int{"total": 1}, time.Minute))

	hit, err = store.Get(ctx, Key("annual", "2024"), &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 3, got["total"])

	require.NoError(t, store.InvalidatePrefix(ctx, ReportsPrefix))
	hit, err = store.Get(ctx, Key("annual", "2024"), &got)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Contains(t, repo.rows, "other:key")
	assert.Equal(t, "postgres", store.Backend())
}

type failingRepo struct {
	repository.ReportCacheRepository
}

func (failingRepo) Get(ctx context.Context, key string) (*models.ReportCache, error) {
	return nil, errors.New("connection reset")
}

func TestDBStore_GetPropagatesErrors(t *testing.T) {
	var dest map[string]int
	hit, err := NewDBStore(failingRepo{}).Get(context.Background(), "reports:x", &dest)
	assert.False(t, hit)
	assert.EqualError(t, err, "connection reset")
}

func TestConnectRedis_EmptyAddrDisablesRedis(t *testing.T) {
	assert.Nil(t, ConnectRedis(context.Background(), "", "", 0))
}
