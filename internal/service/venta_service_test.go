package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/FranexMT/GestorPlantaAgua/internal/dto"
	"github.com/FranexMT/GestorPlantaAgua/internal/model"
	"github.com/FranexMT/GestorPlantaAgua/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubProductoRepo is an in-memory ProductoRepository for testing.
type stubProductoRepo struct {
	productos map[uuid.UUID]*model.Producto
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{productos: make(map[uuid.UUID]*model.Producto)}
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductoRepo) FindByNombre(_ context.Context, nombre string) (*model.Producto, error) {
	for _, p := range r.productos {
		if p.Activo && strings.EqualFold(p.Nombre, nombre) {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductoRepo) List(_ context.Context, _ dto.ProductoFilter) ([]model.Producto, int64, error) {
	out := make([]model.Producto, 0, len(r.productos))
	for _, p := range r.productos {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductoRepo) ListActivos(_ context.Context) ([]model.Producto, error) {
	var out []model.Producto
	for _, p := range r.productos {
		if p.Activo {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if p, ok := r.productos[id]; ok {
		p.Activo = false
	}
	return nil
}

func (r *stubProductoRepo) Reactivar(_ context.Context, id uuid.UUID) error {
	if p, ok := r.productos[id]; ok {
		p.Activo = true
	}
	return nil
}

func (r *stubProductoRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubProductoRepo) UpdateStockTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Stock += delta
	return nil
}

func (r *stubProductoRepo) DB() *gorm.DB { return nil }

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

// stubVentaRepo is an in-memory VentaRepository for testing.
type stubVentaRepo struct {
	ventas map[uuid.UUID]*model.Venta
}

func newStubVentaRepo() *stubVentaRepo {
	return &stubVentaRepo{ventas: make(map[uuid.UUID]*model.Venta)}
}

func (r *stubVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	v, ok := r.ventas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *stubVentaRepo) List(_ context.Context, _ dto.VentaFilter) ([]model.Venta, int64, error) {
	out := make([]model.Venta, 0, len(r.ventas))
	for _, v := range r.ventas {
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

func (r *stubVentaRepo) ListTodas(_ context.Context) ([]model.Venta, error) {
	out := make([]model.Venta, 0, len(r.ventas))
	for _, v := range r.ventas {
		out = append(out, *v)
	}
	return out, nil
}

func (r *stubVentaRepo) CreateTx(_ *gorm.DB, v *model.Venta) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	for i := range v.Items {
		v.Items[i].VentaID = v.ID
	}
	r.ventas[v.ID] = v
	return nil
}

func (r *stubVentaRepo) SaveTx(_ *gorm.DB, v *model.Venta) error {
	r.ventas[v.ID] = v
	return nil
}

func (r *stubVentaRepo) DeleteItemsTx(_ *gorm.DB, _ uuid.UUID) error { return nil }

func (r *stubVentaRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.ventas, id)
	return nil
}

func (r *stubVentaRepo) DB() *gorm.DB { return nil }

var _ repository.VentaRepository = (*stubVentaRepo)(nil)

// stubMovRepo captures stock movements for assertion.
type stubMovRepo struct {
	movimientos []model.MovimientoStock
}

func (r *stubMovRepo) CreateTx(_ *gorm.DB, m *model.MovimientoStock) error {
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubMovRepo) Create(_ context.Context, m *model.MovimientoStock) error {
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubMovRepo) ListByProducto(_ context.Context, _ uuid.UUID, _ int) ([]model.MovimientoStock, error) {
	return r.movimientos, nil
}

var _ repository.MovimientoStockRepository = (*stubMovRepo)(nil)

// ── Helpers ───────────────────────────────────────────────────────────────────

func buildVentaSvc() (VentaService, *stubVentaRepo, *stubProductoRepo, *stubMovRepo) {
	productoRepo := newStubProductoRepo()
	ventaRepo := newStubVentaRepo()
	movRepo := &stubMovRepo{}
	svc := NewVentaService(ventaRepo, productoRepo, movRepo, nil, 6, "/tmp")
	return svc, ventaRepo, productoRepo, movRepo
}

func seedProducto(repo *stubProductoRepo, nombre string, precio float64, stock int) *model.Producto {
	p := &model.Producto{
		ID:        uuid.New(),
		Nombre:    nombre,
		Categoria: "Agua",
		Precio:    decimal.NewFromFloat(precio),
		Stock:     stock,
		Activo:    true,
	}
	repo.productos[p.ID] = p
	return p
}

// ── calcularCambiosStock ──────────────────────────────────────────────────────

func TestCalcularCambiosStock(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	t.Run("venta nueva descuenta cada item", func(t *testing.T) {
		cambios := calcularCambiosStock(nil, []model.VentaItem{
			{ProductoID: a, Cantidad: 3},
			{ProductoID: b, Cantidad: 1},
		})
		assert.Equal(t, -3, cambios[a])
		assert.Equal(t, -1, cambios[b])
	})

	t.Run("eliminacion devuelve cada item", func(t *testing.T) {
		cambios := calcularCambiosStock([]model.VentaItem{{ProductoID: a, Cantidad: 3}}, nil)
		assert.Equal(t, 3, cambios[a])
	})

	t.Run("edicion calcula el delta neto", func(t *testing.T) {
		cambios := calcularCambiosStock(
			[]model.VentaItem{{ProductoID: a, Cantidad: 3}},
			[]model.VentaItem{{ProductoID: a, Cantidad: 5}},
		)
		assert.Equal(t, -2, cambios[a])
	})

	t.Run("misma cantidad es delta cero", func(t *testing.T) {
		cambios := calcularCambiosStock(
			[]model.VentaItem{{ProductoID: a, Cantidad: 3}},
			[]model.VentaItem{{ProductoID: a, Cantidad: 3}},
		)
		assert.Equal(t, 0, cambios[a])
	})

	t.Run("producto quitado se devuelve y agregado se descuenta", func(t *testing.T) {
		cambios := calcularCambiosStock(
			[]model.VentaItem{{ProductoID: a, Cantidad: 2}},
			[]model.VentaItem{{ProductoID: b, Cantidad: 4}},
		)
		assert.Equal(t, 2, cambios[a])
		assert.Equal(t, -4, cambios[b])
	})
}

// ── RegistrarVenta ────────────────────────────────────────────────────────────

func TestRegistrarVenta_DescuentaStock(t *testing.T) {
	svc, ventaRepo, productoRepo, movRepo := buildVentaSvc()
	p := seedProducto(productoRepo, "Garrafon 20L", 35, 10)

	resp, err := svc.RegistrarVenta(context.Background(), nil, dto.GuardarVentaRequest{
		Estado:        model.EstadoPagada,
		Items:         []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 3}},
		MontoRecibido: decimal.NewFromFloat(150),
	})
	require.NoError(t, err)

	assert.Equal(t, 7, productoRepo.productos[p.ID].Stock)
	assert.Equal(t, "105", resp.Total.String())
	assert.Equal(t, "45", resp.Cambio.String())

	stored, err := ventaRepo.FindByID(context.Background(), uuid.MustParse(resp.ID))
	require.NoError(t, err)
	assert.Len(t, stored.Items, 1)
	assert.Equal(t, "Garrafon 20L", stored.Items[0].Nombre)

	require.Len(t, movRepo.movimientos, 1)
	mov := movRepo.movimientos[0]
	assert.Equal(t, "venta", mov.Tipo)
	assert.Equal(t, -3, mov.Cantidad)
	assert.Equal(t, 10, mov.StockAnterior)
	assert.Equal(t, 7, mov.StockNuevo)
}

func TestRegistrarVenta_RechazaStockNegativo(t *testing.T) {
	svc, _, productoRepo, _ := buildVentaSvc()
	p := seedProducto(productoRepo, "Bolsa de hielo 5kg", 25, 2)

	_, err := svc.RegistrarVenta(context.Background(), nil, dto.GuardarVentaRequest{
		Estado:        model.EstadoPagada,
		Items:         []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 5}},
		MontoRecibido: decimal.NewFromFloat(500),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStockNegativo))
	// Stock never goes negative
	assert.Equal(t, 2, productoRepo.productos[p.ID].Stock)
}

func TestRegistrarVenta_PagoInsuficiente(t *testing.T) {
	svc, _, productoRepo, _ := buildVentaSvc()
	p := seedProducto(productoRepo, "Garrafon 20L", 35, 10)

	_, err := svc.RegistrarVenta(context.Background(), nil, dto.GuardarVentaRequest{
		Estado:        model.EstadoPagada,
		Items:         []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 3}},
		MontoRecibido: decimal.NewFromFloat(100), // total 105
	})
	assert.True(t, errors.Is(err, ErrPagoInsuficiente))
	assert.Equal(t, 10, productoRepo.productos[p.ID].Stock)
}

func TestRegistrarVenta_PendienteSinPago(t *testing.T) {
	svc, _, productoRepo, _ := buildVentaSvc()
	p := seedProducto(productoRepo, "Botellon 10L", 20, 8)

	// A Pendiente sale does not require the payment to cover the total
	resp, err := svc.RegistrarVenta(context.Background(), nil, dto.GuardarVentaRequest{
		Estado: model.EstadoPendiente,
		Items:  []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, "0", resp.Cambio.String())
	assert.Equal(t, 6, productoRepo.productos[p.ID].Stock)
}

func TestRegistrarVenta_SinItems(t *testing.T) {
	svc, _, _, _ := buildVentaSvc()
	_, err := svc.RegistrarVenta(context.Background(), nil, dto.GuardarVentaRequest{
		Estado: model.EstadoPagada,
	})
	assert.True(t, errors.Is(err, ErrVentaVacia))
}

func TestRegistrarVenta_ProductoInactivo(t *testing.T) {
	svc, _, productoRepo, _ := buildVentaSvc()
	p := seedProducto(productoRepo, "Garrafon 20L", 35, 10)
	p.Activo = false

	_, err := svc.RegistrarVenta(context.Background(), nil, dto.GuardarVentaRequest{
		Estado:        model.EstadoPagada,
		Items:         []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
		MontoRecibido: decimal.NewFromFloat(35),
	})
	assert.True(t, errors.Is(err, ErrProductoInactivo))
}

// ── ActualizarVenta ───────────────────────────────────────────────────────────

func TestActualizarVenta_DeltaNeto(t *testing.T) {
	svc, _, productoRepo, movRepo := buildVentaSvc()
	p := seedProducto(productoRepo, "Garrafon 20L", 35, 10)

	resp, err := svc.RegistrarVenta(context.Background(), nil, dto.GuardarVentaRequest{
		Estado:        model.EstadoPagada,
		Items:         []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 3}},
		MontoRecibido: decimal.NewFromFloat(200),
	})
	require.NoError(t, err)
	require.Equal(t, 7, productoRepo.productos[p.ID].Stock)

	// 3 → 5 units: net delta is -2
	updated, err := svc.ActualizarVenta(context.Background(), uuid.MustParse(resp.ID), dto.GuardarVentaRequest{
		Estado:        model.EstadoPagada,
		Items:         []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 5}},
		MontoRecibido: decimal.NewFromFloat(200),
	})
	require.NoError(t, err)
	assert.Equal(t, 5, productoRepo.productos[p.ID].Stock)
	assert.Equal(t, "175", updated.Total.String())

	ultimo := movRepo.movimientos[len(movRepo.movimientos)-1]
	assert.Equal(t, "edicion_venta", ultimo.Tipo)
	assert.Equal(t, -2, ultimo.Cantidad)
}

func TestActualizarVenta_RechazaStockNegativo(t *testing.T) {
	svc, _, productoRepo, _ := buildVentaSvc()
	p := seedProducto(productoRepo, "Garrafon 20L", 35, 10)

	resp, err := svc.RegistrarVenta(context.Background(), nil, dto.GuardarVentaRequest{
		Estado:        model.EstadoPagada,
		Items:         []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 3}},
		MontoRecibido: decimal.NewFromFloat(200),
	})
	require.NoError(t, err)
	require.Equal(t, 7, productoRepo.productos[p.ID].Stock)

	// 3 → 12 units needs 9 more but only 7 remain: the whole edit fails
	_, err = svc.ActualizarVenta(context.Background(), uuid.MustParse(resp.ID), dto.GuardarVentaRequest{
		Estado:        model.EstadoPagada,
		Items:         []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 12}},
		MontoRecibido: decimal.NewFromFloat(500),
	})
	assert.True(t, errors.Is(err, ErrStockNegativo))
	assert.Equal(t, 7, productoRepo.productos[p.ID].Stock)
}

func TestActualizarVenta_MismaCantidadNoMueveStock(t *testing.T) {
	svc, _, productoRepo, movRepo := buildVentaSvc()
	p := seedProducto(productoRepo, "Garrafon 20L", 35, 10)

	resp, err := svc.RegistrarVenta(context.Background(), nil, dto.GuardarVentaRequest{
		Estado:        model.EstadoPagada,
		Items:         []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 3}},
		MontoRecibido: decimal.NewFromFloat(200),
	})
	require.NoError(t, err)
	movsAntes := len(movRepo.movimientos)

	// Only the estado changes; stock must not move
	_, err = svc.ActualizarVenta(context.Background(), uuid.MustParse(resp.ID), dto.GuardarVentaRequest{
		Estado:        model.EstadoPendiente,
		Items:         []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 3}},
		MontoRecibido: decimal.Zero,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, productoRepo.productos[p.ID].Stock)
	assert.Len(t, movRepo.movimientos, movsAntes)
}

// ── EliminarVenta ─────────────────────────────────────────────────────────────

func TestEliminarVenta_RestauraStock(t *testing.T) {
	svc, ventaRepo, productoRepo, movRepo := buildVentaSvc()
	p := seedProducto(productoRepo, "Garrafon 20L", 35, 10)

	resp, err := svc.RegistrarVenta(context.Background(), nil, dto.GuardarVentaRequest{
		Estado:        model.EstadoPagada,
		Items:         []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 3}},
		MontoRecibido: decimal.NewFromFloat(200),
	})
	require.NoError(t, err)
	require.Equal(t, 7, productoRepo.productos[p.ID].Stock)

	err = svc.EliminarVenta(context.Background(), uuid.MustParse(resp.ID))
	require.NoError(t, err)

	assert.Equal(t, 10, productoRepo.productos[p.ID].Stock)
	_, err = ventaRepo.FindByID(context.Background(), uuid.MustParse(resp.ID))
	assert.Error(t, err)

	ultimo := movRepo.movimientos[len(movRepo.movimientos)-1]
	assert.Equal(t, "reversion_venta", ultimo.Tipo)
	assert.Equal(t, 3, ultimo.Cantidad)
}

func TestEliminarVenta_NoEncontrada(t *testing.T) {
	svc, _, _, _ := buildVentaSvc()
	err := svc.EliminarVenta(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, ErrVentaNoEncontrada))
}
