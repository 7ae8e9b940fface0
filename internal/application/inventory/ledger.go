package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sublirex/inventario-api/internal/domain"
	dominv "github.com/sublirex/inventario-api/internal/domain/inventory"
	"github.com/sublirex/inventario-api/internal/domain/entity"
	"github.com/sublirex/inventario-api/internal/domain/repository"
)

// Sign indica si un lote suma (+1) o resta (-1) stock.
type Sign int

const (
	Inbound  Sign = 1
	Outbound Sign = -1
)

// Source identifica el documento que origina los movimientos (motivo, tipo y id).
type Source struct {
	Reason string
	Type   string
	ID     string
}

// Placement son las líneas de un documento ubicadas en una bodega.
type Placement struct {
	WarehouseID string
	Lines       []dominv.Line
}

// Batch es una aplicación de movimientos sobre una bodega.
type Batch struct {
	Source Source
	Placement
	Sign   Sign
	UserID string
}

// Ledger mantiene stock agregado y kardex consistentes.
// No abre transacciones: siempre opera con repositorios atados a la tx del caller.
type Ledger struct {
	now func() time.Time
}

// NewLedger construye el ledger.
func NewLedger() *Ledger {
	return &Ledger{now: time.Now}
}

// ApplyMovements agrupa las líneas por producto y, por cada producto con cantidad distinta de cero,
// suma delta = signo * cantidad al stock y registra un movimiento en el kardex.
// El primer error aborta; el caller debe revertir la transacción.
func (l *Ledger) ApplyMovements(
	ctx context.Context,
	stockRepo repository.StockRepository,
	movRepo repository.StockMovementRepository,
	b Batch,
) error {
	if b.Sign != Inbound && b.Sign != Outbound {
		return domain.ErrInvalidInput
	}
	if b.WarehouseID == "" || b.Source.ID == "" {
		return domain.ErrInvalidInput
	}
	now := l.now()
	for _, line := range dominv.GroupByProduct(b.Lines) {
		delta := line.Quantity
		if b.Sign == Outbound {
			delta = delta.Neg()
		}
		if err := stockRepo.ApplyDelta(ctx, line.ProductID, b.WarehouseID, delta); err != nil {
			return err
		}
		direction := entity.DirectionEntrada
		if !delta.IsPositive() {
			direction = entity.DirectionSalida
		}
		mov := &entity.StockMovement{
			ID:          uuid.New().String(),
			ProductID:   line.ProductID,
			WarehouseID: b.WarehouseID,
			Direction:   direction,
			Quantity:    delta.Abs(),
			Reason:      b.Source.Reason,
			SourceType:  b.Source.Type,
			SourceID:    b.Source.ID,
			UserID:      b.UserID,
			CreatedAt:   now,
		}
		if err := movRepo.Create(ctx, mov); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceDocument reemplaza el efecto de un documento ya aplicado:
// revierte las líneas anteriores en su bodega, elimina los movimientos etiquetados con el documento
// y aplica las líneas nuevas. Las tres fases van siempre juntas y en este orden; borrar movimientos
// sin revertir el stock desincronizaría el agregado del kardex.
func (l *Ledger) ReplaceDocument(
	ctx context.Context,
	stockRepo repository.StockRepository,
	movRepo repository.StockMovementRepository,
	src Source,
	userID string,
	previous, next Placement,
) error {
	if len(previous.Lines) > 0 {
		if err := l.ApplyMovements(ctx, stockRepo, movRepo, Batch{
			Source: src, Placement: previous, Sign: Outbound, UserID: userID,
		}); err != nil {
			return err
		}
	}
	if _, err := movRepo.DeleteBySource(ctx, src.Reason, src.Type, src.ID); err != nil {
		return err
	}
	return l.ApplyMovements(ctx, stockRepo, movRepo, Batch{
		Source: src, Placement: next, Sign: Inbound, UserID: userID,
	})
}
