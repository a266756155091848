package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sjperalta/arrendando-api/internal/cache"
	"github.com/sjperalta/arrendando-api/internal/jobs"
	"github.com/sjperalta/arrendando-api/pkg/logger"
)

// Scheduled job names
const (
	JobOverduePayments = "overdue_payments"
	JobContractStates  = "contract_states"
	JobCacheCleanup    = "report_cache_cleanup"
)

type JobService struct {
	worker    *jobs.Worker
	payments  *PaymentService
	contracts *ContractService
	cache     cache.Store
}

func NewJobService(worker *jobs.Worker, payments *PaymentService, contracts *ContractService, store cache.Store) *JobService {
	return &JobService{
		worker:    worker,
		payments:  payments,
		contracts: contracts,
		cache:     store,
	}
}

// Start registers the recurring lifecycle jobs
func (s *JobService) Start() {
	s.worker.ScheduleEveryImmediate(JobOverduePayments, time.Hour, s.MarkOverduePayments)
	s.worker.ScheduleEveryImmediate(JobContractStates, 6*time.Hour, s.UpdateContractStates)
	s.worker.ScheduleEvery(JobCacheCleanup, time.Hour, s.CleanReportCache)
}

func (s *JobService) lookup(name string) (jobs.Job, error) {
	switch name {
	case JobOverduePayments:
		return s.MarkOverduePayments, nil
	case JobContractStates:
		return s.UpdateContractStates, nil
	case JobCacheCleanup:
		return s.CleanReportCache, nil
	}
	return nil, fmt.Errorf("%w: trabajo desconocido %q", ErrNotFound, name)
}

// Run executes a scheduled job now, recording it like a tick
func (s *JobService) Run(name string) error {
	job, err := s.lookup(name)
	if err != nil {
		return err
	}
	return s.worker.RunNamed(name, job)
}

// Enqueue queues a scheduled job on the worker pool and returns at once.
// Its outcome shows up in GetStatus like any other run.
func (s *JobService) Enqueue(name string) error {
	job, err := s.lookup(name)
	if err != nil {
		return err
	}
	s.worker.Enqueue(func(ctx context.Context) error {
		return s.worker.RunNamed(name, job)
	})
	return nil
}

// MarkOverduePayments moves unpaid payments past due to VENCIDO
func (s *JobService) MarkOverduePayments(ctx context.Context) error {
	n, err := s.payments.MarkOverdue(ctx)
	if err != nil {
		return err
	}
	logger.Info("[Job] Overdue payments marked", "count", n)
	return nil
}

// UpdateContractStates flags expiring and ended contracts
func (s *JobService) UpdateContractStates(ctx context.Context) error {
	n, err := s.contracts.UpdateStates(ctx)
	if err != nil {
		return err
	}
	logger.Info("[Job] Contract states updated", "count", n)
	return nil
}

// CleanReportCache removes expired cached reports
func (s *JobService) CleanReportCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	n, err := s.cache.CleanExpired(ctx)
	if err != nil {
		return err
	}
	logger.Info("[Job] Report cache cleaned", "backend", s.cache.Backend(), "removed", n)
	return nil
}

func (s *JobService) GetStatus() map[string]interface{} {
	stats := s.worker.GetStats()
	scheduled := s.worker.Scheduled()
	sort.Slice(scheduled, func(i, j int) bool { return scheduled[i].Name < scheduled[j].Name })

	status := map[string]interface{}{
		"active_jobs":    stats.ActiveJobs,
		"completed_jobs": stats.CompletedJobs,
		"failed_jobs":    stats.FailedJobs,
		"queue_length":   stats.QueueLength,
		"max_concurrent": stats.MaxConcurrent,
		"scheduled":      scheduled,
	}
	if s.cache != nil {
		status["cache_backend"] = s.cache.Backend()
	}
	return status
}
