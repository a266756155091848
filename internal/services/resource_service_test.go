package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjperalta/arrendando-api/internal/models"
)

func TestResourceService_MutationsDropDashboardCounters(t *testing.T) {
	ctx := context.Background()
	repo := &mockTenantRepo{}
	store := newMemStore()
	service := NewTenantService(repo, nil)
	service.lifecycle = &lifecycle{cache: store}

	seed := func() {
		require.NoError(t, store.Set(ctx, dashboardKey, models.DashboardStats{TotalInquilinos: 1}, 0))
		require.NoError(t, store.Set(ctx, "reports:annual:2025", 1, 0))
	}

	tenant := &models.Tenant{Cedula: "0102030405"}
	mutations := []struct {
		name string
		run  func() error
	}{
		{"create", func() error { return service.Create(ctx, Actor{}, tenant) }},
		{"update", func() error { return service.Update(ctx, Actor{}, tenant) }},
		{"set active", func() error {
			_, err := service.SetActive(ctx, Actor{}, tenant.ID, false)
			return err
		}},
		{"delete", func() error { return service.Delete(ctx, Actor{}, tenant.ID) }},
	}

	for _, m := range mutations {
		t.Run(m.name, func(t *testing.T) {
			seed()
			require.NoError(t, m.run())
			assert.NotContains(t, store.data, dashboardKey)
			assert.Contains(t, store.data, "reports:annual:2025", "income reports do not depend on tenants")
		})
	}
	assert.Len(t, repo.created, 1)
	assert.Equal(t, []uuid.UUID{tenant.ID}, repo.deleted)
}

func TestResourceService_NoCacheConfigured(t *testing.T) {
	service := NewTenantService(&mockTenantRepo{}, nil)
	assert.NoError(t, service.Create(context.Background(), Actor{}, &models.Tenant{Cedula: "1"}))
}
