package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale states.
const (
	EstadoPagada    = "Pagada"
	EstadoPendiente = "Pendiente"
	EstadoCancelada = "Cancelada"
)

// Venta is a point-of-sale transaction. Total always equals the sum of its
// item subtotals (rounded to 2 decimals); there is no independent mutation
// path for Total.
type Venta struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	// Fecha is the local business day the sale belongs to (YYYY-MM-DD).
	Fecha         string          `gorm:"type:varchar(10);index;not null"`
	Estado        string          `gorm:"type:varchar(20);not null;default:'Pagada'"`
	Total         decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	MontoRecibido decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Cambio        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	UsuarioID     *uuid.UUID      `gorm:"type:uuid;index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Items []VentaItem `gorm:"foreignKey:VentaID;constraint:OnDelete:CASCADE"`
}

func (Venta) TableName() string { return "ventas" }

// VentaItem is one line of a sale. Nombre and Precio are denormalized at
// sale time so the history survives later catalog edits.
type VentaItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Nombre     string          `gorm:"not null"`
	Cantidad   int             `gorm:"not null"`
	Precio     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Subtotal   decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (VentaItem) TableName() string { return "venta_items" }
