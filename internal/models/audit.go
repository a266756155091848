package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog represents a system audit entry
type AuditLog struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"userId"` // nil for background jobs
	Action    string     `gorm:"size:50;not null;index" json:"action"`
	Entity    string     `gorm:"size:50;not null;index" json:"entity"`
	EntityID  uuid.UUID  `gorm:"type:uuid;index" json:"entityId"`
	Details   string     `gorm:"type:text" json:"details"`
	IPAddress string     `gorm:"size:45" json:"ipAddress"`
	UserAgent string     `gorm:"size:255" json:"userAgent"`
	CreatedAt time.Time  `gorm:"index" json:"createdAt"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}

// Audit actions
const (
	AuditActionCreate     = "CREATE"
	AuditActionUpdate     = "UPDATE"
	AuditActionDelete     = "DELETE"
	AuditActionLogin      = "LOGIN"
	AuditActionTransition = "TRANSITION"
	AuditActionAbono      = "ABONO"
)

// Audit entities
const (
	AuditEntityTenant   = "Tenant"
	AuditEntityProperty = "Property"
	AuditEntityContract = "Contract"
	AuditEntityPayment  = "Payment"
	AuditEntityUser     = "User"
)
