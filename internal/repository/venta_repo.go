package repository

import (
	"context"

	"github.com/FranexMT/GestorPlantaAgua/internal/dto"
	"github.com/FranexMT/GestorPlantaAgua/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VentaRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error)
	// ListTodas returns the full history with items preloaded, oldest first.
	// Used by the spreadsheet export.
	ListTodas(ctx context.Context) ([]model.Venta, error)

	// Mutations run inside the service's transaction — callers pass the tx.
	CreateTx(tx *gorm.DB, v *model.Venta) error
	SaveTx(tx *gorm.DB, v *model.Venta) error
	DeleteItemsTx(tx *gorm.DB, ventaID uuid.UUID) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error

	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).Preload("Items").First(&v, id).Error
	return &v, err
}

func (r *ventaRepo) List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error) {
	var ventas []model.Venta
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Venta{})

	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.Fecha != "" {
		q = q.Where("fecha = ?", filter.Fecha)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Items").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&ventas).Error

	return ventas, total, err
}

func (r *ventaRepo) ListTodas(ctx context.Context) ([]model.Venta, error) {
	var ventas []model.Venta
	err := r.db.WithContext(ctx).Preload("Items").
		Order("fecha ASC, created_at ASC").
		Find(&ventas).Error
	return ventas, err
}

func (r *ventaRepo) CreateTx(tx *gorm.DB, v *model.Venta) error {
	return tx.Create(v).Error
}

func (r *ventaRepo) SaveTx(tx *gorm.DB, v *model.Venta) error {
	return tx.Save(v).Error
}

func (r *ventaRepo) DeleteItemsTx(tx *gorm.DB, ventaID uuid.UUID) error {
	return tx.Where("venta_id = ?", ventaID).Delete(&model.VentaItem{}).Error
}

func (r *ventaRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Where("venta_id = ?", id).Delete(&model.VentaItem{}).Error; err != nil {
		return err
	}
	return tx.Delete(&model.Venta{}, id).Error
}
