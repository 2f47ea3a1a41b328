package handler

import (
	"fmt"
	"time"

	"github.com/FranexMT/GestorPlantaAgua/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportesHandler struct{ svc service.VentaService }

func NewReportesHandler(svc service.VentaService) *ReportesHandler {
	return &ReportesHandler{svc: svc}
}

// ExportarVentas streams the sales history workbook as an .xlsx download.
func (h *ReportesHandler) ExportarVentas(c *gin.Context) {
	fileName := fmt.Sprintf("historial_ventas_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, fileName))

	if err := h.svc.ExportarHistorialExcel(c.Request.Context(), c.Writer); err != nil {
		// Headers may be out already; the error middleware logs it and writes
		// the safe 500 when the response is still open.
		c.Error(err)
	}
}
