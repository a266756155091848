package models

import (
	"encoding/json"
	"time"
)

// ReportCache is a cached report payload, the database fallback of the report cache
type ReportCache struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	CacheKey  string          `gorm:"size:200;not null;uniqueIndex" json:"cacheKey"`
	Data      json.RawMessage `gorm:"type:jsonb;not null" json:"data"`
	ExpiresAt time.Time       `gorm:"not null;index" json:"expiresAt"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// TableName specifies the table name for ReportCache
func (ReportCache) TableName() string {
	return "report_cache"
}

// DashboardStats is the summary served by GET /dashboard/stats
type DashboardStats struct {
	TotalUsuarios           int64   `json:"totalUsuarios"`
	UsuariosActivos         int64   `json:"usuariosActivos"`
	TotalInquilinos         int64   `json:"totalInquilinos"`
	InquilinosActivos       int64   `json:"inquilinosActivos"`
	TotalInmuebles          int64   `json:"totalInmuebles"`
	InmueblesDisponibles    int64   `json:"inmueblesDisponibles"`
	InmueblesOcupados       int64   `json:"inmueblesOcupados"`
	TotalContratos          int64   `json:"totalContratos"`
	ContratosActivos        int64   `json:"contratosActivos"`
	ContratosProximosVencer int64   `json:"contratosProximosVencer"`
	ContratosVencidos       int64   `json:"contratosVencidos"`
	TasaOcupacion           float64 `json:"tasaOcupacion"`
}
