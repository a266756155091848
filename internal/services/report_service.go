package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sjperalta/arrendando-api/internal/cache"
	"github.com/sjperalta/arrendando-api/internal/models"
	"github.com/sjperalta/arrendando-api/internal/repository"
	"github.com/sjperalta/arrendando-api/pkg/finance"
	"github.com/sjperalta/arrendando-api/pkg/logger"
)

// ReportService builds the income reports. Annual and comparison reports
// are served from the cache while fresh.
type ReportService struct {
	paymentRepo repository.PaymentRepository
	cache       cache.Store
	ttl         time.Duration
	now         func() time.Time
}

func NewReportService(paymentRepo repository.PaymentRepository, store cache.Store, ttl time.Duration) *ReportService {
	return &ReportService{
		paymentRepo: paymentRepo,
		cache:       store,
		ttl:         ttl,
		now:         time.Now,
	}
}

// MinReportYear and MaxReportYear bound the years PostgreSQL dates can hold
const (
	MinReportYear = 1
	MaxReportYear = 9999
)

func validYear(year int) error {
	if year < MinReportYear || year > MaxReportYear {
		return Invalid("año inválido: %d", year)
	}
	return nil
}

// Monthly returns the income of one calendar month
func (s *ReportService) Monthly(ctx context.Context, year int, month time.Month) (*finance.MonthlyIncome, error) {
	if err := validYear(year); err != nil {
		return nil, err
	}
	if month < time.January || month > time.December {
		return nil, Invalid("mes inválido: %d", month)
	}
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	payments, err := s.paymentRepo.FindDueBetween(ctx, finance.NewDate(from), finance.NewDate(to))
	if err != nil {
		return nil, fmt.Errorf("cargar pagos del mes: %w", err)
	}
	report := finance.MonthlyReport(models.FinancePayments(payments), year, month)
	return &report, nil
}

// Annual returns the twelve monthly reports of year plus their totals
func (s *ReportService) Annual(ctx context.Context, year int) (*finance.AnnualIncome, error) {
	if err := validYear(year); err != nil {
		return nil, err
	}
	return cached(ctx, s.cache, cache.Key("annual", strconv.Itoa(year)), s.ttl, func() (*finance.AnnualIncome, error) {
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

		payments, err := s.paymentRepo.FindDueBetween(ctx, finance.NewDate(from), finance.NewDate(to))
		if err != nil {
			return nil, fmt.Errorf("cargar pagos del año: %w", err)
		}
		report := finance.AnnualReport(models.FinancePayments(payments), year)
		return &report, nil
	})
}

// Comparison summarizes expected versus collected income between two dates, inclusive
func (s *ReportService) Comparison(ctx context.Context, from, to finance.Date) (*finance.Comparison, error) {
	if from.After(to) {
		return nil, ErrInvalidDateRange
	}
	if err := validYear(from.Year()); err != nil {
		return nil, err
	}
	if err := validYear(to.Year()); err != nil {
		return nil, err
	}
	key := cache.Key("comparison", from.String(), to.String())
	return cached(ctx, s.cache, key, s.ttl, func() (*finance.Comparison, error) {
		payments, err := s.paymentRepo.FindDueBetween(ctx, from, to)
		if err != nil {
			return nil, fmt.Errorf("cargar pagos del periodo: %w", err)
		}
		report := finance.ComparisonReport(models.FinancePayments(payments), from.Time, to.Time)
		return &report, nil
	})
}

// DefaultComparisonRange is January 1st of the current year through today
func (s *ReportService) DefaultComparisonRange() (finance.Date, finance.Date) {
	today := finance.NewDate(s.now())
	return finance.NewDate(time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)), today
}

// cached returns the value under key, computing and storing it on a miss.
// Cache failures fall back to load.
func cached[T any](ctx context.Context, store cache.Store, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	if store == nil {
		return load()
	}

	var hit T
	ok, err := store.Get(ctx, key, &hit)
	if err != nil {
		logger.Warn("[Cache] Read failed", "key", key, "backend", store.Backend(), "error", err)
	} else if ok {
		return hit, nil
	}

	value, err := load()
	if err != nil {
		return value, err
	}
	if err := store.Set(ctx, key, value, ttl); err != nil {
		logger.Warn("[Cache] Write failed", "key", key, "backend", store.Backend(), "error", err)
	}
	return value, nil
}
