package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// VentaFilter is bound from the query string of GET /v1/ventas.
type VentaFilter struct {
	Fecha  string `form:"fecha"`  // YYYY-MM-DD; empty = all days
	Estado string `form:"estado"` // Pagada | Pendiente | Cancelada | all
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemVentaRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1"`
}

// GuardarVentaRequest registers a new sale or, on PUT /v1/ventas/:id,
// replaces an existing sale's item list, status and monetary fields.
type GuardarVentaRequest struct {
	Fecha         string             `json:"fecha"          validate:"omitempty,datetime=2006-01-02"`
	Estado        string             `json:"estado"         validate:"required,oneof=Pagada Pendiente Cancelada"`
	Items         []ItemVentaRequest `json:"items"          validate:"required,dive"`
	MontoRecibido decimal.Decimal    `json:"monto_recibido" validate:"min=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVentaResponse struct {
	ProductoID string          `json:"producto_id"`
	Nombre     string          `json:"nombre"`
	Cantidad   int             `json:"cantidad"`
	Precio     decimal.Decimal `json:"precio"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

type VentaResponse struct {
	ID            string              `json:"id"`
	Fecha         string              `json:"fecha"`
	Estado        string              `json:"estado"`
	Items         []ItemVentaResponse `json:"items"`
	Total         decimal.Decimal     `json:"total"`
	MontoRecibido decimal.Decimal     `json:"monto_recibido"`
	Cambio        decimal.Decimal     `json:"cambio"`
	CreatedAt     string              `json:"created_at"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
