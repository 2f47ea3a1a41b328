package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	Nombre    string          `json:"nombre"    validate:"required,min=2,max=120"`
	Categoria string          `json:"categoria" validate:"required"`
	Precio    decimal.Decimal `json:"precio"    validate:"min=0"`
	Stock     int             `json:"stock"     validate:"min=0"`
}

type ActualizarProductoRequest struct {
	Nombre    *string          `json:"nombre"    validate:"omitempty,min=2,max=120"`
	Categoria *string          `json:"categoria"`
	Precio    *decimal.Decimal `json:"precio"`
	// Stock edits from the inventory screen go through here; the service
	// records an ajuste_manual movement and runs the low-stock check.
	Stock *int `json:"stock" validate:"omitempty,min=0"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductoFilter struct {
	Nombre    string `form:"nombre"`
	Categoria string `form:"categoria"`
	Activo    string `form:"activo"` // "", "false", "all"
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID        string          `json:"id"`
	Nombre    string          `json:"nombre"`
	Categoria string          `json:"categoria"`
	Precio    decimal.Decimal `json:"precio"`
	Stock     int             `json:"stock"`
	Activo    bool            `json:"activo"`
}

type ProductoListResponse struct {
	Data  []ProductoResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
