package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/FranexMT/GestorPlantaAgua/internal/dto"
	"github.com/FranexMT/GestorPlantaAgua/internal/infra"
	"github.com/FranexMT/GestorPlantaAgua/internal/model"
	"github.com/FranexMT/GestorPlantaAgua/internal/report"
	"github.com/FranexMT/GestorPlantaAgua/internal/repository"
	"github.com/FranexMT/GestorPlantaAgua/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VentaService interface {
	RegistrarVenta(ctx context.Context, usuarioID *uuid.UUID, req dto.GuardarVentaRequest) (*dto.VentaResponse, error)
	ActualizarVenta(ctx context.Context, id uuid.UUID, req dto.GuardarVentaRequest) (*dto.VentaResponse, error)
	EliminarVenta(ctx context.Context, id uuid.UUID) error
	ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
	ListVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)
	GenerarTicket(ctx context.Context, id uuid.UUID) (string, error)
	ExportarHistorialExcel(ctx context.Context, w io.Writer) error
}

type ventaService struct {
	repo         repository.VentaRepository
	productoRepo repository.ProductoRepository
	movRepo      repository.MovimientoStockRepository
	dispatcher   *worker.Dispatcher
	umbralStock  int
	pdfPath      string
}

func NewVentaService(
	repo repository.VentaRepository,
	productoRepo repository.ProductoRepository,
	movRepo repository.MovimientoStockRepository,
	dispatcher *worker.Dispatcher,
	umbralStock int,
	pdfPath string,
) VentaService {
	return &ventaService{
		repo:         repo,
		productoRepo: productoRepo,
		movRepo:      movRepo,
		dispatcher:   dispatcher,
		umbralStock:  umbralStock,
		pdfPath:      pdfPath,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// calcularCambiosStock computes the net stock delta per product when a sale's
// item list changes. The items of the original sale are returned to stock
// (positive delta) and the new items are taken from it (negative delta), so a
// product kept at the same quantity nets zero and an edit behaves exactly like
// deleting the sale and creating it again. For a new sale pass originales nil;
// for a deletion pass nuevos nil.
func calcularCambiosStock(originales []model.VentaItem, nuevos []model.VentaItem) map[uuid.UUID]int {
	cambios := make(map[uuid.UUID]int)
	for _, item := range originales {
		cambios[item.ProductoID] += item.Cantidad
	}
	for _, item := range nuevos {
		cambios[item.ProductoID] -= item.Cantidad
	}
	return cambios
}

// resolverItems validates product references and builds the item rows, pricing
// each line with the product's current price and denormalizing its name.
func (s *ventaService) resolverItems(ctx context.Context, items []dto.ItemVentaRequest) ([]model.VentaItem, decimal.Decimal, error) {
	if len(items) == 0 {
		return nil, decimal.Zero, ErrVentaVacia
	}

	resolved := make([]model.VentaItem, 0, len(items))
	total := decimal.Zero
	for _, item := range items {
		pid, err := uuid.Parse(item.ProductoID)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("producto_id inválido: %w", err)
		}
		p, err := s.productoRepo.FindByID(ctx, pid)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("%w: %s", ErrProductoNoEncontrado, item.ProductoID)
		}
		if !p.Activo {
			return nil, decimal.Zero, fmt.Errorf("%w: %s", ErrProductoInactivo, p.Nombre)
		}
		subtotal := p.Precio.Mul(decimal.NewFromInt(int64(item.Cantidad))).Round(2)
		total = total.Add(subtotal)
		resolved = append(resolved, model.VentaItem{
			ProductoID: pid,
			Nombre:     p.Nombre,
			Cantidad:   item.Cantidad,
			Precio:     p.Precio,
			Subtotal:   subtotal,
		})
	}
	return resolved, total.Round(2), nil
}

// aplicarCambiosStock applies the computed deltas inside the transaction,
// recording one movimiento per product. It fails the whole transaction when
// any product would end with negative stock, and returns the products that
// crossed below the low-stock threshold so the caller can notify after commit.
func (s *ventaService) aplicarCambiosStock(
	tx *gorm.DB,
	cambios map[uuid.UUID]int,
	tipo, motivo string,
	referencia *uuid.UUID,
) ([]model.Producto, error) {
	var bajoUmbral []model.Producto

	for pid, delta := range cambios {
		if delta == 0 {
			continue
		}
		p, err := s.productoRepo.FindByIDTx(tx, pid)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrProductoNoEncontrado, pid)
		}
		nuevoStock := p.Stock + delta
		if nuevoStock < 0 {
			return nil, fmt.Errorf("%w: %s (stock %d, se necesitan %d)",
				ErrStockNegativo, p.Nombre, p.Stock, -delta)
		}
		if err := s.productoRepo.UpdateStockTx(tx, pid, delta); err != nil {
			return nil, err
		}
		mov := &model.MovimientoStock{
			ProductoID:    pid,
			Tipo:          tipo,
			Cantidad:      delta,
			StockAnterior: p.Stock,
			StockNuevo:    nuevoStock,
			Motivo:        motivo,
			ReferenciaID:  referencia,
		}
		if err := s.movRepo.CreateTx(tx, mov); err != nil {
			return nil, err
		}
		if p.Stock >= s.umbralStock && nuevoStock < s.umbralStock {
			p.Stock = nuevoStock
			bajoUmbral = append(bajoUmbral, *p)
		}
	}
	return bajoUmbral, nil
}

// notificarStockBajo enqueues one low-stock alert per product that crossed
// the threshold. Best effort: a full queue never fails the sale.
func (s *ventaService) notificarStockBajo(ctx context.Context, productos []model.Producto) {
	if s.dispatcher == nil {
		return
	}
	for _, p := range productos {
		if err := s.dispatcher.EnqueueStockBajo(ctx, p.ID, p.Nombre, p.Stock, s.umbralStock); err != nil {
			log.Warn().Err(err).Str("producto", p.Nombre).Msg("no se pudo encolar alerta de stock bajo")
		}
	}
}

// validarPago checks payment sufficiency for paid sales and computes the change.
func validarPago(estado string, total, montoRecibido decimal.Decimal) (decimal.Decimal, error) {
	if estado != model.EstadoPagada {
		return decimal.Zero, nil
	}
	if montoRecibido.LessThan(total) {
		return decimal.Zero, ErrPagoInsuficiente
	}
	return montoRecibido.Sub(total), nil
}

// ── RegistrarVenta ───────────────────────────────────────────────────────────
// Single ACID transaction:
//   1. Resolve products, price each line, compute the total
//   2. Validate payment covers the total when the sale is Pagada
//   3. BEGIN TX: discount stock per item (fail on any negative result),
//      record movimientos, insert venta + items
//   4. COMMIT
//   5. (async) enqueue low-stock alerts for products that crossed the threshold

func (s *ventaService) RegistrarVenta(ctx context.Context, usuarioID *uuid.UUID, req dto.GuardarVentaRequest) (*dto.VentaResponse, error) {
	resolved, total, err := s.resolverItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	cambio, err := validarPago(req.Estado, total, req.MontoRecibido)
	if err != nil {
		return nil, err
	}

	fecha := req.Fecha
	if fecha == "" {
		fecha = time.Now().Format("2006-01-02")
	}

	venta := model.Venta{
		Fecha:         fecha,
		Estado:        req.Estado,
		Total:         total,
		MontoRecibido: req.MontoRecibido,
		Cambio:        cambio,
		UsuarioID:     usuarioID,
		Items:         resolved,
	}

	var bajoUmbral []model.Producto
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, &venta); err != nil {
			return err
		}
		cambios := calcularCambiosStock(nil, venta.Items)
		bajoUmbral, err = s.aplicarCambiosStock(tx, cambios, "venta",
			fmt.Sprintf("Venta %s", venta.ID), &venta.ID)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	s.notificarStockBajo(ctx, bajoUmbral)
	return ventaToResponse(&venta), nil
}

// ── ActualizarVenta ──────────────────────────────────────────────────────────
// Replaces the sale's item list, status and payment. Stock is reconciled with
// net deltas: edit is equivalent to deleting the original sale and registering
// the new one, but no product takes two stock writes.

func (s *ventaService) ActualizarVenta(ctx context.Context, id uuid.UUID, req dto.GuardarVentaRequest) (*dto.VentaResponse, error) {
	original, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrVentaNoEncontrada
	}

	resolved, total, err := s.resolverItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	cambioMonto, err := validarPago(req.Estado, total, req.MontoRecibido)
	if err != nil {
		return nil, err
	}

	fecha := req.Fecha
	if fecha == "" {
		fecha = original.Fecha
	}

	var bajoUmbral []model.Producto
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		cambios := calcularCambiosStock(original.Items, resolved)
		bajoUmbral, err = s.aplicarCambiosStock(tx, cambios, "edicion_venta",
			fmt.Sprintf("Edición venta %s", original.ID), &original.ID)
		if err != nil {
			return err
		}

		if err := s.repo.DeleteItemsTx(tx, original.ID); err != nil {
			return err
		}
		original.Fecha = fecha
		original.Estado = req.Estado
		original.Total = total
		original.MontoRecibido = req.MontoRecibido
		original.Cambio = cambioMonto
		original.Items = resolved
		for i := range original.Items {
			original.Items[i].VentaID = original.ID
		}
		return s.repo.SaveTx(tx, original)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.notificarStockBajo(ctx, bajoUmbral)
	return ventaToResponse(original), nil
}

// ── EliminarVenta ────────────────────────────────────────────────────────────
// Physically removes the sale and returns every item's quantity to stock.

func (s *ventaService) EliminarVenta(ctx context.Context, id uuid.UUID) error {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrVentaNoEncontrada
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		cambios := calcularCambiosStock(venta.Items, nil)
		if _, err := s.aplicarCambiosStock(tx, cambios, "reversion_venta",
			fmt.Sprintf("Eliminación venta %s", venta.ID), &venta.ID); err != nil {
			return err
		}
		return s.repo.DeleteTx(tx, venta.ID)
	})
}

// ── Queries ──────────────────────────────────────────────────────────────────

func (s *ventaService) ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrVentaNoEncontrada
	}
	return ventaToResponse(venta), nil
}

func (s *ventaService) ListVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	ventas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.VentaResponse, 0, len(ventas))
	for _, v := range ventas {
		items = append(items, *ventaToResponse(&v))
	}
	return &dto.VentaListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// GenerarTicket writes the sale's PDF receipt and returns its path.
func (s *ventaService) GenerarTicket(ctx context.Context, id uuid.UUID) (string, error) {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", ErrVentaNoEncontrada
	}
	return infra.GenerateTicketPDF(venta, s.pdfPath)
}

// ExportarHistorialExcel streams the full sales history workbook to w.
func (s *ventaService) ExportarHistorialExcel(ctx context.Context, w io.Writer) error {
	ventas, err := s.repo.ListTodas(ctx)
	if err != nil {
		return err
	}
	return report.ExcelHistorial(ventas, w)
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	items := make([]dto.ItemVentaResponse, 0, len(v.Items))
	for _, item := range v.Items {
		items = append(items, dto.ItemVentaResponse{
			ProductoID: item.ProductoID.String(),
			Nombre:     item.Nombre,
			Cantidad:   item.Cantidad,
			Precio:     item.Precio,
			Subtotal:   item.Subtotal,
		})
	}
	return &dto.VentaResponse{
		ID:            v.ID.String(),
		Fecha:         v.Fecha,
		Estado:        v.Estado,
		Items:         items,
		Total:         v.Total,
		MontoRecibido: v.MontoRecibido,
		Cambio:        v.Cambio,
		CreatedAt:     v.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
