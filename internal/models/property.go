package models

// Property is a rentable unit identified by its address
type Property struct {
	Base
	Direccion          string  `gorm:"size:255;not null;uniqueIndex:properties_direccion_key" json:"direccion" binding:"required,max=255"`
	CodigoServicioAgua *string `gorm:"size:50" json:"codigoServicioAgua"`
	CodigoServicioGas  *string `gorm:"size:50" json:"codigoServicioGas"`
	CodigoServicioLuz  *string `gorm:"size:50" json:"codigoServicioLuz"`
	Disponible         bool    `gorm:"not null;index" json:"disponible"`
	Descripcion        *string `gorm:"type:text" json:"descripcion"`
}

// TableName specifies the table name for Property
func (Property) TableName() string {
	return "properties"
}

// ApplyDefaults makes new properties available for rent
func (p *Property) ApplyDefaults() {
	p.Disponible = true
}
