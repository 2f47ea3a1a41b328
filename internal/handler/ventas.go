package handler

import (
	"errors"
	"net/http"

	"github.com/FranexMT/GestorPlantaAgua/internal/apierror"
	"github.com/FranexMT/GestorPlantaAgua/internal/dto"
	"github.com/FranexMT/GestorPlantaAgua/internal/middleware"
	"github.com/FranexMT/GestorPlantaAgua/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VentasHandler struct{ svc service.VentaService }

func NewVentasHandler(svc service.VentaService) *VentasHandler {
	return &VentasHandler{svc: svc}
}

func (h *VentasHandler) Registrar(c *gin.Context) {
	var req dto.GuardarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}

	var usuarioID *uuid.UUID
	if claims := middleware.GetClaims(c); claims != nil {
		if uid, err := uuid.Parse(claims.UserID); err == nil {
			usuarioID = &uid
		}
	}

	resp, err := h.svc.RegistrarVenta(c.Request.Context(), usuarioID, req)
	if err != nil {
		writeVentaError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *VentasHandler) Actualizar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.GuardarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarVenta(c.Request.Context(), id, req)
	if err != nil {
		writeVentaError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *VentasHandler) Eliminar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	if err := h.svc.EliminarVenta(c.Request.Context(), id); err != nil {
		writeVentaError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *VentasHandler) ObtenerPorID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.ObtenerVenta(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Venta no encontrada"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *VentasHandler) Listar(c *gin.Context) {
	var filter dto.VentaFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.ListVentas(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar ventas"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Ticket generates the sale's PDF receipt and serves it inline.
func (h *VentasHandler) Ticket(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	path, err := h.svc.GenerarTicket(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrVentaNoEncontrada) {
			c.JSON(http.StatusNotFound, apierror.New(err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("Error generando el ticket"))
		return
	}
	c.Header("Content-Type", "application/pdf")
	c.File(path)
}

func writeVentaError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrVentaNoEncontrada):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, service.ErrStockNegativo):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.Is(err, service.ErrVentaVacia),
		errors.Is(err, service.ErrPagoInsuficiente),
		errors.Is(err, service.ErrProductoNoEncontrado),
		errors.Is(err, service.ErrProductoInactivo):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, apierror.New("Error procesando la venta"))
	}
}
