package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	User         UserRepository
	Tenant       TenantRepository
	Property     PropertyRepository
	Contract     ContractRepository
	Payment      PaymentRepository
	Notification NotificationRepository
	RefreshToken RefreshTokenRepository
	ReportCache  ReportCacheRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Tenant:       NewTenantRepository(db),
		Property:     NewPropertyRepository(db),
		Contract:     NewContractRepository(db),
		Payment:      NewPaymentRepository(db),
		Notification: NewNotificationRepository(db),
		RefreshToken: NewRefreshTokenRepository(db),
		ReportCache:  NewReportCacheRepository(db),
	}
}
