package inventory

import "github.com/shopspring/decimal"

// Line es una cantidad de un producto dentro de un documento (compra, ajuste).
type Line struct {
	ProductID string
	Quantity  decimal.Decimal
}

// GroupByProduct suma las cantidades por producto (servicio de dominio).
// Se omiten líneas sin producto o con cantidad cero; también se omiten productos
// cuya suma resulta cero. El orden del resultado es el de primera aparición.
func GroupByProduct(lines []Line) []Line {
	totals := make(map[string]decimal.Decimal, len(lines))
	order := make([]string, 0, len(lines))
	for _, l := range lines {
		if l.ProductID == "" || l.Quantity.IsZero() {
			continue
		}
		if _, seen := totals[l.ProductID]; !seen {
			order = append(order, l.ProductID)
		}
		totals[l.ProductID] = totals[l.ProductID].Add(l.Quantity)
	}
	out := make([]Line, 0, len(order))
	for _, pid := range order {
		if totals[pid].IsZero() {
			continue
		}
		out = append(out, Line{ProductID: pid, Quantity: totals[pid]})
	}
	return out
}

// MaxScale decimales que admite NUMERIC(18,4) en cantidades y precios.
const MaxScale = 4

// FitsScale indica si d se guarda sin redondeo con MaxScale decimales.
func FitsScale(d decimal.Decimal) bool {
	return d.Equal(d.Round(MaxScale))
}
