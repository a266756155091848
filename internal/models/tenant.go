package models

// Tenant is a person renting a property
type Tenant struct {
	Base
	Cedula             string  `gorm:"size:20;not null;uniqueIndex:tenants_cedula_key" json:"cedula" binding:"required,max=20"`
	Nombres            string  `gorm:"size:100;not null;index" json:"nombres" binding:"required,max=100"`
	Apellidos          string  `gorm:"size:100;not null;index" json:"apellidos" binding:"required,max=100"`
	Telefono           string  `gorm:"size:20;not null" json:"telefono" binding:"required,max=20"`
	Correo             string  `gorm:"size:150;not null;uniqueIndex:tenants_correo_key" json:"correo" binding:"required,email"`
	Direccion          *string `gorm:"size:255" json:"direccion"`
	Ciudad             *string `gorm:"size:100;index" json:"ciudad"`
	ContactoEmergencia *string `gorm:"size:255" json:"contactoEmergencia"`
	IsActive           bool    `gorm:"not null;index" json:"isActive"`
}

// TableName specifies the table name for Tenant
func (Tenant) TableName() string {
	return "tenants"
}

// ApplyDefaults activates tenants unless the request says otherwise
func (t *Tenant) ApplyDefaults() {
	t.IsActive = true
}

// FullName joins nombres and apellidos
func (t *Tenant) FullName() string {
	return t.Nombres + " " + t.Apellidos
}
