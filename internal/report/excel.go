// Package report builds the sales history spreadsheet. One workbook with the
// raw history plus summary sheets rolled up by day, ISO week, month and year.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/FranexMT/GestorPlantaAgua/internal/model"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	sheetVentas  = "Ventas"
	sheetResumen = "Resumen"
	sheetDiario  = "Diario"
	sheetSemanal = "Semanal"
	sheetMensual = "Mensual"
	sheetAnual   = "Anual"
)

// ExcelHistorial writes the workbook for the given sales to w.
func ExcelHistorial(ventas []model.Venta, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := buildVentasSheet(f, ventas, headerStyle, boldStyle); err != nil {
		return err
	}
	if err := buildResumenSheet(f, ventas, headerStyle); err != nil {
		return err
	}
	for _, agg := range []struct {
		sheet string
		key   func(model.Venta) string
	}{
		{sheetDiario, claveDiaria},
		{sheetSemanal, claveSemanal},
		{sheetMensual, claveMensual},
		{sheetAnual, claveAnual},
	} {
		if err := buildRollupSheet(f, agg.sheet, ventas, agg.key, headerStyle); err != nil {
			return err
		}
	}

	// Drop the default sheet and land on Ventas
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	idx, err := f.GetSheetIndex(sheetVentas)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)

	return f.Write(w)
}

func buildVentasSheet(f *excelize.File, ventas []model.Venta, headerStyle, boldStyle int) error {
	if _, err := f.NewSheet(sheetVentas); err != nil {
		return err
	}

	headers := []string{"ID", "Fecha", "Estado", "Productos", "Total", "Monto Recibido", "Cambio"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetVentas, cell, h)
	}
	f.SetCellStyle(sheetVentas, "A1", "G1", headerStyle)
	f.SetColWidth(sheetVentas, "A", "A", 38)
	f.SetColWidth(sheetVentas, "D", "D", 44)
	f.SetColWidth(sheetVentas, "B", "C", 12)
	f.SetColWidth(sheetVentas, "E", "G", 15)

	totalGeneral := decimal.Zero
	for i, v := range ventas {
		row := i + 2
		f.SetCellValue(sheetVentas, fmt.Sprintf("A%d", row), v.ID.String())
		f.SetCellValue(sheetVentas, fmt.Sprintf("B%d", row), v.Fecha)
		f.SetCellValue(sheetVentas, fmt.Sprintf("C%d", row), v.Estado)
		f.SetCellValue(sheetVentas, fmt.Sprintf("D%d", row), describirItems(v.Items))
		f.SetCellValue(sheetVentas, fmt.Sprintf("E%d", row), v.Total.InexactFloat64())
		f.SetCellValue(sheetVentas, fmt.Sprintf("F%d", row), v.MontoRecibido.InexactFloat64())
		f.SetCellValue(sheetVentas, fmt.Sprintf("G%d", row), v.Cambio.InexactFloat64())
		totalGeneral = totalGeneral.Add(v.Total)
	}

	totalRow := len(ventas) + 2
	f.SetCellValue(sheetVentas, fmt.Sprintf("D%d", totalRow), "TOTAL")
	f.SetCellValue(sheetVentas, fmt.Sprintf("E%d", totalRow), totalGeneral.InexactFloat64())
	f.SetCellStyle(sheetVentas, fmt.Sprintf("D%d", totalRow), fmt.Sprintf("E%d", totalRow), boldStyle)
	return nil
}

func buildResumenSheet(f *excelize.File, ventas []model.Venta, headerStyle int) error {
	if _, err := f.NewSheet(sheetResumen); err != nil {
		return err
	}
	f.SetColWidth(sheetResumen, "A", "A", 30)
	f.SetColWidth(sheetResumen, "B", "C", 18)

	type acumProducto struct {
		unidades int
		ingresos decimal.Decimal
	}
	ingresos := decimal.Zero
	porEstado := map[string]int{}
	porProducto := map[string]*acumProducto{}
	for _, v := range ventas {
		ingresos = ingresos.Add(v.Total)
		porEstado[v.Estado]++
		for _, item := range v.Items {
			acc, ok := porProducto[item.Nombre]
			if !ok {
				acc = &acumProducto{ingresos: decimal.Zero}
				porProducto[item.Nombre] = acc
			}
			acc.unidades += item.Cantidad
			acc.ingresos = acc.ingresos.Add(item.Subtotal)
		}
	}

	promedio := decimal.Zero
	if len(ventas) > 0 {
		promedio = ingresos.Div(decimal.NewFromInt(int64(len(ventas))))
	}

	f.SetCellValue(sheetResumen, "A1", "Resumen general")
	f.SetCellStyle(sheetResumen, "A1", "B1", headerStyle)
	f.SetCellValue(sheetResumen, "A2", "Cantidad de ventas")
	f.SetCellValue(sheetResumen, "B2", len(ventas))
	f.SetCellValue(sheetResumen, "A3", "Ingresos totales")
	f.SetCellValue(sheetResumen, "B3", ingresos.InexactFloat64())
	f.SetCellValue(sheetResumen, "A4", "Ticket promedio")
	f.SetCellValue(sheetResumen, "B4", promedio.Round(2).InexactFloat64())

	f.SetCellValue(sheetResumen, "A6", "Ventas por estado")
	f.SetCellStyle(sheetResumen, "A6", "B6", headerStyle)
	row := 7
	for _, estado := range []string{model.EstadoPagada, model.EstadoPendiente, model.EstadoCancelada} {
		f.SetCellValue(sheetResumen, fmt.Sprintf("A%d", row), estado)
		f.SetCellValue(sheetResumen, fmt.Sprintf("B%d", row), porEstado[estado])
		row++
	}

	row++
	f.SetCellValue(sheetResumen, fmt.Sprintf("A%d", row), "Top productos")
	f.SetCellStyle(sheetResumen, fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row), headerStyle)
	row++
	f.SetCellValue(sheetResumen, fmt.Sprintf("A%d", row), "Producto")
	f.SetCellValue(sheetResumen, fmt.Sprintf("B%d", row), "Unidades")
	f.SetCellValue(sheetResumen, fmt.Sprintf("C%d", row), "Ingresos")
	row++

	type prodResumen struct {
		nombre string
		acc    *acumProducto
	}
	top := make([]prodResumen, 0, len(porProducto))
	for nombre, acc := range porProducto {
		top = append(top, prodResumen{nombre, acc})
	}
	// Ranked by revenue, name as tiebreaker
	sort.Slice(top, func(i, j int) bool {
		if !top[i].acc.ingresos.Equal(top[j].acc.ingresos) {
			return top[i].acc.ingresos.GreaterThan(top[j].acc.ingresos)
		}
		return top[i].nombre < top[j].nombre
	})
	if len(top) > 10 {
		top = top[:10]
	}
	for _, p := range top {
		f.SetCellValue(sheetResumen, fmt.Sprintf("A%d", row), p.nombre)
		f.SetCellValue(sheetResumen, fmt.Sprintf("B%d", row), p.acc.unidades)
		f.SetCellValue(sheetResumen, fmt.Sprintf("C%d", row), p.acc.ingresos.InexactFloat64())
		row++
	}
	return nil
}

// buildRollupSheet groups sales by the given period key: count and revenue.
func buildRollupSheet(f *excelize.File, sheet string, ventas []model.Venta, key func(model.Venta) string, headerStyle int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	f.SetColWidth(sheet, "A", "C", 16)

	f.SetCellValue(sheet, "A1", "Periodo")
	f.SetCellValue(sheet, "B1", "Ventas")
	f.SetCellValue(sheet, "C1", "Ingresos")
	f.SetCellStyle(sheet, "A1", "C1", headerStyle)

	type acumulado struct {
		ventas   int
		ingresos decimal.Decimal
	}
	grupos := map[string]*acumulado{}
	for _, v := range ventas {
		k := key(v)
		g, ok := grupos[k]
		if !ok {
			g = &acumulado{ingresos: decimal.Zero}
			grupos[k] = g
		}
		g.ventas++
		g.ingresos = g.ingresos.Add(v.Total)
	}

	claves := make([]string, 0, len(grupos))
	for k := range grupos {
		claves = append(claves, k)
	}
	sort.Strings(claves)

	for i, k := range claves {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), k)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), grupos[k].ventas)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), grupos[k].ingresos.InexactFloat64())
	}
	return nil
}

func describirItems(items []model.VentaItem) string {
	partes := make([]string, 0, len(items))
	for _, item := range items {
		partes = append(partes, fmt.Sprintf("%s x%d", item.Nombre, item.Cantidad))
	}
	return strings.Join(partes, ", ")
}

func fechaDe(v model.Venta) time.Time {
	t, err := time.Parse("2006-01-02", v.Fecha)
	if err != nil {
		return v.CreatedAt
	}
	return t
}

func claveDiaria(v model.Venta) string { return fechaDe(v).Format("2006-01-02") }

func claveSemanal(v model.Venta) string {
	year, week := fechaDe(v).ISOWeek()
	return fmt.Sprintf("%d-S%02d", year, week)
}

func claveMensual(v model.Venta) string { return fechaDe(v).Format("2006-01") }

func claveAnual(v model.Venta) string { return fechaDe(v).Format("2006") }
