package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sublirex/inventario-api/internal/application/dto"
	"github.com/sublirex/inventario-api/internal/application/purchasing"
	"github.com/sublirex/inventario-api/internal/application/reports"
	"github.com/sublirex/inventario-api/internal/domain/repository"
)

// PurchaseHandler compras: listado, ficha, alta, edición y PDF.
type PurchaseHandler struct {
	svc     *purchasing.Service
	reports *reports.Service
}

// NewPurchaseHandler construye el handler.
func NewPurchaseHandler(svc *purchasing.Service, reportsSvc *reports.Service) *PurchaseHandler {
	return &PurchaseHandler{svc: svc, reports: reportsSvc}
}

// List godoc
// @Summary      Listar compras
// @Description  Filtra por mes/año de fecha_compra. Orden: fecha_compra descendente.
// @Tags         purchases
// @Security     Bearer
// @Produce      json
// @Param        month   query  int  false  "Mes (1-12)"
// @Param        year    query  int  false  "Año"
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.PurchaseListResponse
// @Router       /api/purchases [get]
func (h *PurchaseHandler) List(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	month := c.QueryInt("month", 0)
	if month < 0 || month > 12 {
		month = 0
	}
	out, err := h.svc.List(c.UserContext(), repository.PurchaseFilter{
		Month:  month,
		Year:   c.QueryInt("year", 0),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Registrar compra
// @Description  Persiste cabecera y líneas y suma el stock en la bodega en una sola transacción.
// @Tags         purchases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PurchaseRequest  true  "Compra"
// @Success      201   {object}  dto.PurchaseCreatedResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/purchases [post]
func (h *PurchaseHandler) Create(c *fiber.Ctx) error {
	var in dto.PurchaseRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	id, err := h.svc.CreateFromRequest(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.PurchaseCreatedResponse{ID: id})
}

// GetByID godoc
// @Summary      Ficha de compra
// @Tags         purchases
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la compra"
// @Success      200  {object}  dto.PurchaseDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchases/{id} [get]
func (h *PurchaseHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.svc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		return notFound(c, "compra no encontrada")
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Editar compra
// @Description  Revierte el stock anterior y aplica las líneas nuevas. Compra inexistente: no hace nada.
// @Tags         purchases
// @Security     Bearer
// @Accept       json
// @Param        id    path  string               true  "ID de la compra"
// @Param        body  body  dto.PurchaseRequest  true  "Compra"
// @Success      204
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/purchases/{id} [put]
func (h *PurchaseHandler) Update(c *fiber.Ctx) error {
	var in dto.PurchaseRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := h.svc.UpdateFromRequest(c.UserContext(), c.Params("id"), GetUserID(c), in); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PDF godoc
// @Summary      PDF de la compra
// @Tags         purchases
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la compra"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchases/{id}/pdf [get]
func (h *PurchaseHandler) PDF(c *fiber.Ctx) error {
	id := c.Params("id")
	out, err := h.reports.PurchasePDF(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="compra-`+id+`.pdf"`)
	return c.Send(out)
}
