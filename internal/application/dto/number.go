package dto

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Number decimal de formulario: acepta número JSON o string numérica.
// "", null o campo ausente valen cero (filas en blanco del formulario de compra).
type Number struct {
	decimal.Decimal
}

// NewNumber envuelve un decimal.
func NewNumber(d decimal.Decimal) Number {
	return Number{Decimal: d}
}

func (n *Number) UnmarshalJSON(b []byte) error {
	raw := bytes.TrimSpace(b)
	if bytes.Equal(raw, []byte("null")) {
		n.Decimal = decimal.Zero
		return nil
	}
	s := string(raw)
	if strings.HasPrefix(s, `"`) {
		unq, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("número inválido %s: %w", s, err)
		}
		s = strings.TrimSpace(unq)
	}
	if s == "" {
		n.Decimal = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("número inválido %q: %w", s, err)
	}
	n.Decimal = d
	return nil
}
