package handlers

import (
	"github.com/sjperalta/arrendando-api/internal/services"
)

// Handlers holds all handler instances
type Handlers struct {
	Health       *HealthHandler
	Auth         *AuthHandler
	User         *UserHandler
	Tenant       *TenantHandler
	Property     *PropertyHandler
	Contract     *ContractHandler
	Payment      *PaymentHandler
	Report       *ReportHandler
	Dashboard    *DashboardHandler
	Contact      *ContactHandler
	Notification *NotificationHandler
	Audit        *AuditHandler
	Job          *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(),
		Auth:         NewAuthHandler(svcs.Auth, svcs.User),
		User:         NewUserHandler(svcs.User),
		Tenant:       NewTenantHandler(svcs.Tenant),
		Property:     NewPropertyHandler(svcs.Property),
		Contract:     NewContractHandler(svcs.Contract),
		Payment:      NewPaymentHandler(svcs.Payment),
		Report:       NewReportHandler(svcs.Report, svcs.Export),
		Dashboard:    NewDashboardHandler(svcs.Dashboard),
		Contact:      NewContactHandler(svcs.Email),
		Notification: NewNotificationHandler(svcs.Notification),
		Audit:        NewAuditHandler(svcs.Audit),
		Job:          NewJobHandler(svcs.Job),
	}
}
