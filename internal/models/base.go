package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the identity and timestamps shared by every stored entity
type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a random UUID when the caller did not set one
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// EntityBase exposes the embedded Base to generic code
func (b *Base) EntityBase() *Base {
	return b
}

// GetID returns the entity identifier
func (b *Base) GetID() uuid.UUID {
	return b.ID
}

// Entity is implemented by every pointer to a model embedding Base
type Entity interface {
	EntityBase() *Base
	GetID() uuid.UUID
}

// Defaulter is implemented by models whose zero value differs from the
// value a create request should start from (for example isActive=true).
type Defaulter interface {
	ApplyDefaults()
}

// EntityPtr constrains generic code to pointers of models embedding Base
type EntityPtr[T any] interface {
	*T
	Entity
}
