// Package xlsx exporta reportes de inventario a hojas de cálculo con excelize.
package xlsx

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/sublirex/inventario-api/internal/application/dto"
	"github.com/sublirex/inventario-api/internal/application/reports"
)

var _ reports.StockSheetGenerator = (*StockSheetGenerator)(nil)

// SheetName nombre de la hoja del reporte de stock.
const SheetName = "Stock"

// StockSheetGenerator arma el .xlsx del stock global.
type StockSheetGenerator struct{}

// NewStockSheetGenerator construye el generador.
func NewStockSheetGenerator() *StockSheetGenerator { return &StockSheetGenerator{} }

// GenerateStockSheet escribe una fila por producto: id, nombre y stock total.
// La fila 1 lleva la fecha de generación y la 3 los encabezados.
func (g *StockSheetGenerator) GenerateStockSheet(
	_ context.Context,
	rows []dto.ProductStockResponse,
	generatedAt time.Time,
) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("xlsx: renombrar hoja: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx: estilo: %w", err)
	}

	if err := f.SetCellValue(SheetName, "A1", "Stock global al "+generatedAt.Format("2006-01-02 15:04")); err != nil {
		return nil, fmt.Errorf("xlsx: título: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A3", &[]interface{}{"Producto ID", "Producto", "Stock total"}); err != nil {
		return nil, fmt.Errorf("xlsx: encabezados: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A3", "C3", bold); err != nil {
		return nil, fmt.Errorf("xlsx: estilo encabezados: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+4)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(SheetName, cell, &[]interface{}{
			r.ProductID,
			r.ProductName,
			r.Quantity.InexactFloat64(),
		}); err != nil {
			return nil, fmt.Errorf("xlsx: fila %d: %w", i+4, err)
		}
	}
	if err := f.SetColWidth(SheetName, "A", "A", 38); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(SheetName, "B", "B", 40); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: escribir: %w", err)
	}
	return buf.Bytes(), nil
}
