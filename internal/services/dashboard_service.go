package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sjperalta/arrendando-api/internal/cache"
	"github.com/sjperalta/arrendando-api/internal/models"
	"github.com/sjperalta/arrendando-api/internal/repository"
	"github.com/sjperalta/arrendando-api/pkg/finance"
)

// dashboardKey caches the counters; any tenant, property, user or contract change drops it
var dashboardKey = cache.Key("dashboard")

// DashboardService computes the dashboard counters
type DashboardService struct {
	repos *repository.Repositories
	cache cache.Store
	ttl   time.Duration
}

func NewDashboardService(repos *repository.Repositories, store cache.Store, ttl time.Duration) *DashboardService {
	return &DashboardService{repos: repos, cache: store, ttl: ttl}
}

// Stats runs every count concurrently
func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	return cached(ctx, s.cache, dashboardKey, s.ttl, func() (*models.DashboardStats, error) {
		return s.compute(ctx)
	})
}

func (s *DashboardService) compute(ctx context.Context) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	var byEstado map[string]int64

	g, ctx := errgroup.WithContext(ctx)
	count := func(dst *int64, fn func(context.Context, map[string]any) (int64, error), where map[string]any) {
		g.Go(func() error {
			n, err := fn(ctx, where)
			*dst = n
			return err
		})
	}

	count(&stats.TotalUsuarios, s.repos.User.Count, nil)
	count(&stats.UsuariosActivos, s.repos.User.Count, map[string]any{"is_active": true})
	count(&stats.TotalInquilinos, s.repos.Tenant.Count, nil)
	count(&stats.InquilinosActivos, s.repos.Tenant.Count, map[string]any{"is_active": true})
	count(&stats.TotalInmuebles, s.repos.Property.Count, nil)
	count(&stats.InmueblesDisponibles, s.repos.Property.Count, map[string]any{"disponible": true})
	g.Go(func() error {
		var err error
		byEstado, err = s.repos.Contract.CountByEstado(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, n := range byEstado {
		stats.TotalContratos += n
	}
	stats.ContratosActivos = byEstado[models.ContractEstadoActivo]
	stats.ContratosProximosVencer = byEstado[models.ContractEstadoProximoVencer]
	stats.ContratosVencidos = byEstado[models.ContractEstadoVencido]

	stats.InmueblesOcupados = stats.TotalInmuebles - stats.InmueblesDisponibles
	stats.TasaOcupacion = finance.CountPercentage(int(stats.InmueblesOcupados), int(stats.TotalInmuebles))
	return &stats, nil
}
