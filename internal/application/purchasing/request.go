package purchasing

import (
	"context"
	"strings"
	"time"

	"github.com/sublirex/inventario-api/internal/application/dto"
	"github.com/sublirex/inventario-api/internal/domain"
)

// Formatos aceptados para fecha_compra: RFC3339 y el de input datetime-local.
var purchaseDateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"}

// CreateFromRequest adapta el request HTTP al caso de uso Create.
func (s *Service) CreateFromRequest(ctx context.Context, userID string, in dto.PurchaseRequest) (string, error) {
	h, items, err := fromRequest(in)
	if err != nil {
		return "", err
	}
	return s.Create(ctx, h, items, userID)
}

// UpdateFromRequest adapta el request HTTP al caso de uso Update.
func (s *Service) UpdateFromRequest(ctx context.Context, purchaseID, userID string, in dto.PurchaseRequest) error {
	h, items, err := fromRequest(in)
	if err != nil {
		return err
	}
	return s.Update(ctx, purchaseID, h, items, userID)
}

func fromRequest(in dto.PurchaseRequest) (Header, []ItemInput, error) {
	h := Header{
		SupplierID:  strings.TrimSpace(in.SupplierID),
		WarehouseID: strings.TrimSpace(in.WarehouseID),
		Note:        in.Note,
	}
	if h.Note != nil && strings.TrimSpace(*h.Note) == "" {
		h.Note = nil
	}
	if raw := strings.TrimSpace(in.PurchasedAt); raw != "" {
		t, ok := parsePurchaseDate(raw)
		if !ok {
			return Header{}, nil, domain.NewValidationError("fecha_compra", "datetime")
		}
		h.PurchasedAt = t
	}
	items := make([]ItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, ItemInput{
			ProductID: strings.TrimSpace(it.ProductID),
			Quantity:  it.Quantity.Decimal,
			UnitPrice: it.UnitPrice.Decimal,
		})
	}
	return h, items, nil
}

func parsePurchaseDate(raw string) (time.Time, bool) {
	for _, layout := range purchaseDateLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
