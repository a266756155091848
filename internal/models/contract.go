package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sjperalta/arrendando-api/pkg/finance"
)

// Contract is a lease binding a tenant to a property for a date range
type Contract struct {
	Base
	FechaInicio  finance.Date    `gorm:"not null" json:"fechaInicio"`
	FechaFin     finance.Date    `gorm:"not null;index" json:"fechaFin"`
	CanonMensual decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"canonMensual"`
	Estado       string          `gorm:"size:20;not null;default:BORRADOR;index" json:"estado"`
	InquilinoID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"inquilinoId"`
	InmuebleID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"inmuebleId"`

	// Associations
	Inquilino *Tenant   `gorm:"foreignKey:InquilinoID" json:"inquilino,omitempty"`
	Inmueble  *Property `gorm:"foreignKey:InmuebleID" json:"inmueble,omitempty"`
}

// TableName specifies the table name for Contract
func (Contract) TableName() string {
	return "contracts"
}

// Contract estado constants
const (
	ContractEstadoBorrador      = "BORRADOR"
	ContractEstadoActivo        = "ACTIVO"
	ContractEstadoProximoVencer = "PROXIMO_VENCER"
	ContractEstadoVencido       = "VENCIDO"
	ContractEstadoFinalizado    = "FINALIZADO"
)

// ApplyDefaults starts new contracts as drafts
func (c *Contract) ApplyDefaults() {
	c.Estado = ContractEstadoBorrador
}

// IsCurrent reports whether the contract occupies its property
func (c *Contract) IsCurrent() bool {
	return c.Estado == ContractEstadoActivo || c.Estado == ContractEstadoProximoVencer
}

// MayDelete is false while the lease is running
func (c *Contract) MayDelete() bool {
	return !c.IsCurrent()
}

// HasValidDates reports fechaInicio < fechaFin
func (c *Contract) HasValidDates() bool {
	return !c.FechaInicio.IsZero() && !c.FechaFin.IsZero() && c.FechaInicio.Before(c.FechaFin)
}

// DaysUntilEnd counts whole days from now to fechaFin (negative once ended)
func (c *Contract) DaysUntilEnd(now time.Time) int {
	today := finance.NewDate(now)
	return int(c.FechaFin.Sub(today.Time).Hours() / 24)
}

// IsValidContractEstado reports whether s names a contract estado
func IsValidContractEstado(s string) bool {
	switch s {
	case ContractEstadoBorrador, ContractEstadoActivo, ContractEstadoProximoVencer,
		ContractEstadoVencido, ContractEstadoFinalizado:
		return true
	}
	return false
}
