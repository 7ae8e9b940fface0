package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sublirex/inventario-api/internal/application/dto"
	"github.com/sublirex/inventario-api/internal/application/inventory"
	"github.com/sublirex/inventario-api/internal/application/reports"
	"github.com/sublirex/inventario-api/internal/domain"
	"github.com/sublirex/inventario-api/internal/domain/repository"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// StockHandler consultas de stock, kardex y ajustes manuales.
type StockHandler struct {
	reports *reports.Service
	adjust  *inventory.AdjustmentUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(reportsSvc *reports.Service, adjust *inventory.AdjustmentUseCase) *StockHandler {
	return &StockHandler{reports: reportsSvc, adjust: adjust}
}

// GlobalStock godoc
// @Summary      Stock global por producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ProductStockResponse
// @Router       /api/stock [get]
func (h *StockHandler) GlobalStock(c *fiber.Ctx) error {
	out, err := h.reports.GlobalStock(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Export godoc
// @Summary      Exportar stock global a Excel
// @Tags         stock
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}  binary
// @Router       /api/stock/export [get]
func (h *StockHandler) Export(c *fiber.Ctx) error {
	out, err := h.reports.ExportGlobalStockXLSX(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="stock.xlsx"`)
	return c.Send(out)
}

// ProductStock godoc
// @Summary      Stock de un producto por bodega
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {array}  dto.WarehouseStockResponse
// @Router       /api/stock/products/{id} [get]
func (h *StockHandler) ProductStock(c *fiber.Ctx) error {
	out, err := h.reports.ProductStock(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Kardex godoc
// @Summary      Kardex de movimientos
// @Description  from/to aceptan 2006-01-02 o RFC3339; to en formato fecha incluye el día completo.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  false  "Producto"
// @Param        warehouse_id  query  string  false  "Bodega"
// @Param        from          query  string  false  "Desde"
// @Param        to            query  string  false  "Hasta"
// @Param        limit         query  int     false  "Límite"  default(100)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {array}  dto.KardexEntryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/kardex [get]
func (h *StockHandler) Kardex(c *fiber.Ctx) error {
	from, err := parseQueryTime(c.Query("from"), false)
	if err != nil {
		return respondError(c, domain.NewValidationError("from", "datetime"))
	}
	to, err := parseQueryTime(c.Query("to"), true)
	if err != nil {
		return respondError(c, domain.NewValidationError("to", "datetime"))
	}
	out, err := h.reports.Kardex(c.UserContext(), repository.KardexFilter{
		ProductID:   strings.TrimSpace(c.Query("product_id")),
		WarehouseID: strings.TrimSpace(c.Query("warehouse_id")),
		From:        from,
		To:          to,
		Limit:       c.QueryInt("limit", 0),
		Offset:      c.QueryInt("offset", 0),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Adjust godoc
// @Summary      Ajuste de inventario (conteo físico)
// @Description  Fija el stock a la cantidad indicada y registra la diferencia en el kardex con motivo AJUSTE.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "Ajuste"
// @Success      200   {object}  inventory.AdjustResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/adjustments [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.adjust.Adjust(c.UserContext(), inventory.AdjustInput{
		ProductID:   strings.TrimSpace(in.ProductID),
		WarehouseID: strings.TrimSpace(in.WarehouseID),
		UserID:      GetUserID(c),
		Quantity:    in.Quantity,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// parseQueryTime acepta fecha (2006-01-02) o RFC3339. Con endOfDay, una fecha sin hora cubre el día completo.
func parseQueryTime(raw string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
