package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is a catalog item of the water plant (ice bags, water jugs, etc.).
// Nombre is unique across live records; uniqueness is checked
// case-insensitively at the service layer before insert.
type Producto struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string          `gorm:"index;not null"`
	Categoria string          `gorm:"not null"` // open set: Hielito, Hielo, Agua, Zuko, Garrafon...
	Precio    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	// Stock must never go negative; every mutation goes through the
	// reconciliation or adjustment paths, which enforce the invariant.
	Stock     int  `gorm:"not null;default:0"`
	Activo    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides GORM's default pluralization for the Spanish name.
func (Producto) TableName() string { return "productos" }
