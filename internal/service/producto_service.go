package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/FranexMT/GestorPlantaAgua/internal/dto"
	"github.com/FranexMT/GestorPlantaAgua/internal/model"
	"github.com/FranexMT/GestorPlantaAgua/internal/repository"
	"github.com/FranexMT/GestorPlantaAgua/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
	Reactivar(ctx context.Context, id uuid.UUID) error
}

type productoService struct {
	repo        repository.ProductoRepository
	movRepo     repository.MovimientoStockRepository
	dispatcher  *worker.Dispatcher
	umbralStock int
}

func NewProductoService(
	repo repository.ProductoRepository,
	movRepo repository.MovimientoStockRepository,
	dispatcher *worker.Dispatcher,
	umbralStock int,
) ProductoService {
	return &productoService{
		repo:        repo,
		movRepo:     movRepo,
		dispatcher:  dispatcher,
		umbralStock: umbralStock,
	}
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	nombre := strings.TrimSpace(req.Nombre)

	// El nombre es único sin distinguir mayúsculas dentro del catálogo vivo:
	// "Agua 20L" == "agua 20l", pero un producto dado de baja libera su nombre.
	existing, err := s.repo.FindByNombre(ctx, nombre)
	if err == nil && existing != nil {
		return nil, ErrProductoDuplicado
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	p := &model.Producto{
		Nombre:    nombre,
		Categoria: req.Categoria,
		Precio:    req.Precio,
		Stock:     req.Stock,
		Activo:    true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return productoToResponse(p), nil
}

func (s *productoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrProductoNoEncontrado
	}
	return productoToResponse(p), nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductoResponse, 0, len(productos))
	for _, p := range productos {
		data = append(data, *productoToResponse(&p))
	}
	return &dto.ProductoListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// Actualizar modifica los campos presentes del producto. Un cambio de stock
// desde la pantalla de inventario queda registrado como ajuste_manual y
// dispara la alerta cuando el stock cae por debajo del umbral.
func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrProductoNoEncontrado
	}

	if req.Nombre != nil {
		nuevoNombre := strings.TrimSpace(*req.Nombre)
		if !strings.EqualFold(nuevoNombre, p.Nombre) {
			if existing, err := s.repo.FindByNombre(ctx, nuevoNombre); err == nil && existing != nil && existing.ID != p.ID {
				return nil, ErrProductoDuplicado
			}
		}
		p.Nombre = nuevoNombre
	}
	if req.Categoria != nil {
		p.Categoria = *req.Categoria
	}
	if req.Precio != nil {
		p.Precio = *req.Precio
	}

	stockAnterior := p.Stock
	stockCambio := false
	if req.Stock != nil && *req.Stock != p.Stock {
		p.Stock = *req.Stock
		stockCambio = true
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	if stockCambio {
		mov := &model.MovimientoStock{
			ProductoID:    p.ID,
			Tipo:          "ajuste_manual",
			Cantidad:      p.Stock - stockAnterior,
			StockAnterior: stockAnterior,
			StockNuevo:    p.Stock,
			Motivo:        fmt.Sprintf("Ajuste manual de inventario: %s", p.Nombre),
		}
		if err := s.movRepo.Create(ctx, mov); err != nil {
			log.Warn().Err(err).Str("producto", p.Nombre).Msg("no se pudo registrar el movimiento de ajuste")
		}
		if p.Stock < s.umbralStock && s.dispatcher != nil {
			if err := s.dispatcher.EnqueueStockBajo(ctx, p.ID, p.Nombre, p.Stock, s.umbralStock); err != nil {
				log.Warn().Err(err).Str("producto", p.Nombre).Msg("no se pudo encolar alerta de stock bajo")
			}
		}
	}

	return productoToResponse(p), nil
}

func (s *productoService) Desactivar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return ErrProductoNoEncontrado
	}
	return s.repo.SoftDelete(ctx, id)
}

func (s *productoService) Reactivar(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrProductoNoEncontrado
	}
	// Dar de baja un producto libera su nombre, así que otro producto vivo
	// pudo haberlo tomado mientras tanto. Reactivar no puede romper la
	// unicidad del catálogo vivo.
	if existing, err := s.repo.FindByNombre(ctx, p.Nombre); err == nil && existing != nil && existing.ID != p.ID {
		return ErrProductoDuplicado
	}
	return s.repo.Reactivar(ctx, id)
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	return &dto.ProductoResponse{
		ID:        p.ID.String(),
		Nombre:    p.Nombre,
		Categoria: p.Categoria,
		Precio:    p.Precio,
		Stock:     p.Stock,
		Activo:    p.Activo,
	}
}
