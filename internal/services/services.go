package services

import (
	"gorm.io/gorm"

	"github.com/sjperalta/arrendando-api/internal/cache"
	"github.com/sjperalta/arrendando-api/internal/config"
	"github.com/sjperalta/arrendando-api/internal/events"
	"github.com/sjperalta/arrendando-api/internal/jobs"
	"github.com/sjperalta/arrendando-api/internal/repository"
)

// Services holds all service instances
type Services struct {
	Auth         *AuthService
	User         *UserService
	Tenant       *TenantService
	Property     *PropertyService
	Contract     *ContractService
	Payment      *PaymentService
	Notification *NotificationService
	Report       *ReportService
	Dashboard    *DashboardService
	Audit        *AuditService
	Email        *EmailService
	Export       *ExportService
	Job          *JobService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, store cache.Store, publisher events.Publisher, cfg *config.Config, db *gorm.DB) *Services {
	notificationSvc := NewNotificationService(repos.Notification, repos.User)
	emailSvc := NewEmailService(cfg)
	auditSvc := NewAuditService(db)

	lc := &lifecycle{
		cache:  store,
		events: publisher,
		notify: notificationSvc,
		worker: worker,
	}

	userSvc := NewUserService(repos.User, worker, emailSvc, notificationSvc, auditSvc)
	userSvc.lifecycle = lc
	tenantSvc := NewTenantService(repos.Tenant, auditSvc)
	tenantSvc.lifecycle = lc
	propertySvc := NewPropertyService(repos.Property, auditSvc)
	propertySvc.lifecycle = lc
	contractSvc := NewContractService(repos.Contract, repos.Tenant, repos.Property, repos.Payment, emailSvc, auditSvc, lc, cfg.ContractExpiryWarningDays)
	paymentSvc := NewPaymentService(repos.Payment, repos.Contract, auditSvc, lc)

	return &Services{
		Auth:         NewAuthService(repos.User, repos.RefreshToken, userSvc, auditSvc, cfg),
		User:         userSvc,
		Tenant:       tenantSvc,
		Property:     propertySvc,
		Contract:     contractSvc,
		Payment:      paymentSvc,
		Notification: notificationSvc,
		Report:       NewReportService(repos.Payment, store, cfg.ReportCacheTTL),
		Dashboard:    NewDashboardService(repos, store, cfg.ReportCacheTTL),
		Audit:        auditSvc,
		Email:        emailSvc,
		Export:       NewExportService(),
		Job:          NewJobService(worker, paymentSvc, contractSvc, store),
	}
}
