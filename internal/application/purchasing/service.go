package purchasing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/sublirex/inventario-api/internal/application/inventory"
	"github.com/sublirex/inventario-api/internal/application/validation"
	"github.com/sublirex/inventario-api/internal/domain"
	dominv "github.com/sublirex/inventario-api/internal/domain/inventory"
	"github.com/sublirex/inventario-api/internal/domain/entity"
	"github.com/sublirex/inventario-api/internal/domain/repository"
)

// Header datos de cabecera de una compra. En una edición todos los campos sobrescriben los anteriores.
type Header struct {
	SupplierID  string    `json:"proveedor_id" validate:"required"`
	WarehouseID string    `json:"bodega_id" validate:"required"`
	PurchasedAt time.Time `json:"fecha_compra"`
	Note        *string   `json:"notas" validate:"omitempty,max=1000"`
}

// ItemInput línea cruda enviada por el usuario. Líneas sin producto no se persisten.
type ItemInput struct {
	ProductID string          `json:"producto_id"`
	Quantity  decimal.Decimal `json:"cantidad"`
	UnitPrice decimal.Decimal `json:"precio_unitario"`
}

// Service motor de compras de productos: cabecera, líneas y efecto en stock/kardex
// en una sola transacción.
type Service struct {
	txRunner     PurchaseTxRunner
	ledger       StockLedger
	purchaseRepo repository.PurchaseRepository
	log          zerolog.Logger
	now          func() time.Time
}

// NewService construye el motor de compras. purchaseRepo se usa solo para lecturas fuera de tx.
func NewService(
	txRunner PurchaseTxRunner,
	ledger StockLedger,
	purchaseRepo repository.PurchaseRepository,
	log zerolog.Logger,
) *Service {
	return &Service{
		txRunner:     txRunner,
		ledger:       ledger,
		purchaseRepo: purchaseRepo,
		log:          log,
		now:          time.Now,
	}
}

// Total suma cantidad * precio de todas las líneas crudas, incluidas las que no traen producto.
func Total(items []ItemInput) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Quantity.Mul(it.UnitPrice))
	}
	return total
}

// Create registra la compra, sus líneas y la entrada a stock con su kardex. Devuelve el id de la compra.
func (s *Service) Create(ctx context.Context, h Header, items []ItemInput, userID string) (string, error) {
	if err := validateInput(h, items, userID); err != nil {
		return "", err
	}
	now := s.now()
	if h.PurchasedAt.IsZero() {
		h.PurchasedAt = now
	}
	purchase := &entity.Purchase{
		ID:          uuid.New().String(),
		SupplierID:  h.SupplierID,
		WarehouseID: h.WarehouseID,
		PurchasedAt: h.PurchasedAt,
		Total:       Total(items),
		Note:        h.Note,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.txRunner.RunPurchase(ctx, func(
		purchaseRepo repository.PurchaseRepository,
		stockRepo repository.StockRepository,
		movRepo repository.StockMovementRepository,
	) error {
		if err := purchaseRepo.Create(ctx, purchase); err != nil {
			return err
		}
		if err := insertItems(ctx, purchaseRepo, purchase.ID, items); err != nil {
			return err
		}
		return s.ledger.ApplyMovements(ctx, stockRepo, movRepo, inventory.Batch{
			Source:    purchaseSource(purchase.ID),
			Placement: inventory.Placement{WarehouseID: h.WarehouseID, Lines: inputLines(items)},
			Sign:      inventory.Inbound,
			UserID:    userID,
		})
	})
	if err != nil {
		s.log.Error().Err(err).
			Str("purchase_id", purchase.ID).
			Str("user_id", userID).
			Msg("crear compra: transacción revertida")
		return "", &domain.TransactionError{Op: "crear compra", Err: err}
	}
	s.log.Info().
		Str("purchase_id", purchase.ID).
		Str("warehouse_id", purchase.WarehouseID).
		Str("total", purchase.Total.String()).
		Msg("compra registrada")
	return purchase.ID, nil
}

// Update reemplaza cabecera y líneas de la compra y reconcilia stock y kardex:
// revierte las líneas anteriores en la bodega anterior, borra sus movimientos y aplica las nuevas.
// Si la compra no existe (o el id no es un UUID) no hace nada y no retorna error.
func (s *Service) Update(ctx context.Context, purchaseID string, h Header, items []ItemInput, userID string) error {
	if purchaseID == "" {
		return domain.NewValidationError("id", "required")
	}
	if err := validateInput(h, items, userID); err != nil {
		return err
	}
	if !validID(purchaseID) {
		s.log.Debug().Str("purchase_id", purchaseID).Msg("actualizar compra: id inválido, nada que actualizar")
		return nil
	}
	now := s.now()
	if h.PurchasedAt.IsZero() {
		h.PurchasedAt = now
	}

	found := true
	err := s.txRunner.RunPurchase(ctx, func(
		purchaseRepo repository.PurchaseRepository,
		stockRepo repository.StockRepository,
		movRepo repository.StockMovementRepository,
	) error {
		// Bloquea la cabecera: dos ediciones concurrentes de la misma compra se serializan aquí.
		purchase, err := purchaseRepo.GetForUpdate(ctx, purchaseID)
		if err != nil {
			return err
		}
		if purchase == nil {
			found = false
			return nil
		}
		oldItems, err := purchaseRepo.ListItems(ctx, purchaseID)
		if err != nil {
			return err
		}
		previous := inventory.Placement{WarehouseID: purchase.WarehouseID, Lines: itemLines(oldItems)}

		purchase.SupplierID = h.SupplierID
		purchase.WarehouseID = h.WarehouseID
		purchase.PurchasedAt = h.PurchasedAt
		purchase.Total = Total(items)
		purchase.Note = h.Note
		purchase.UpdatedBy = &userID
		purchase.UpdatedAt = now
		if err := purchaseRepo.Update(ctx, purchase); err != nil {
			return err
		}
		if err := purchaseRepo.DeleteItems(ctx, purchaseID); err != nil {
			return err
		}
		if err := insertItems(ctx, purchaseRepo, purchaseID, items); err != nil {
			return err
		}

		next := inventory.Placement{WarehouseID: h.WarehouseID, Lines: inputLines(items)}
		return s.ledger.ReplaceDocument(ctx, stockRepo, movRepo, purchaseSource(purchaseID), userID, previous, next)
	})
	if err != nil {
		s.log.Error().Err(err).
			Str("purchase_id", purchaseID).
			Str("user_id", userID).
			Msg("actualizar compra: transacción revertida")
		return &domain.TransactionError{Op: "actualizar compra", Err: err}
	}
	if !found {
		s.log.Debug().Str("purchase_id", purchaseID).Msg("actualizar compra: no existe, nada que actualizar")
		return nil
	}
	s.log.Info().Str("purchase_id", purchaseID).Str("user_id", userID).Msg("compra actualizada")
	return nil
}

func validateInput(h Header, items []ItemInput, userID string) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}
	if err := validation.Struct(h); err != nil {
		return err
	}
	verr := &domain.ValidationError{Fields: map[string]string{}}
	for i, it := range items {
		switch {
		case it.Quantity.IsNegative():
			verr.Fields[fmt.Sprintf("items[%d].cantidad", i)] = "gte=0"
		case !dominv.FitsScale(it.Quantity):
			verr.Fields[fmt.Sprintf("items[%d].cantidad", i)] = scaleRule
		}
		switch {
		case it.UnitPrice.IsNegative():
			verr.Fields[fmt.Sprintf("items[%d].precio_unitario", i)] = "gte=0"
		case !dominv.FitsScale(it.UnitPrice):
			verr.Fields[fmt.Sprintf("items[%d].precio_unitario", i)] = scaleRule
		}
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

// scaleRule regla reportada cuando un valor trae más decimales de los que guarda la base.
var scaleRule = fmt.Sprintf("max_scale=%d", dominv.MaxScale)

// validID los ids de compra son UUID; cualquier otro valor no puede existir en la base.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func insertItems(ctx context.Context, repo repository.PurchaseRepository, purchaseID string, items []ItemInput) error {
	for _, it := range items {
		if it.ProductID == "" {
			continue
		}
		if err := repo.CreateItem(ctx, &entity.PurchaseItem{
			ID:         uuid.New().String(),
			PurchaseID: purchaseID,
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
		}); err != nil {
			return err
		}
	}
	return nil
}

func purchaseSource(purchaseID string) inventory.Source {
	return inventory.Source{Reason: entity.ReasonCompra, Type: entity.SourceCompras, ID: purchaseID}
}

func inputLines(items []ItemInput) []dominv.Line {
	lines := make([]dominv.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, dominv.Line{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return lines
}

func itemLines(items []*entity.PurchaseItem) []dominv.Line {
	lines := make([]dominv.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, dominv.Line{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return lines
}
