package engine

import (
	"bytes"
	"strings"

	"github.com/shopspring/decimal"
)

// Dec is a JSON-tolerant arbitrary-precision decimal. The engine serializes
// numeric fields inconsistently (numbers, quoted strings, scientific
// notation, occasionally garbage), and a malformed amount in one field must
// not poison the sibling fields of the same payload. UnmarshalJSON therefore
// never returns an error: anything unparseable decodes as absent, and absent
// values are pruned by the handlers instead of overwriting entity state.
type Dec struct {
	Val   decimal.Decimal
	Valid bool
}

// NewDec wraps a concrete decimal as a present value.
func NewDec(d decimal.Decimal) Dec {
	return Dec{Val: d, Valid: true}
}

// DecFromString parses s leniently; malformed input yields an absent Dec.
func DecFromString(s string) Dec {
	s = strings.TrimSpace(s)
	if s == "" {
		return Dec{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Dec{}
	}
	return Dec{Val: d, Valid: true}
}

// UnmarshalJSON implements json.Unmarshaler. It accepts JSON numbers, quoted
// numeric strings and null; everything else decodes as absent.
func (d *Dec) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*d = Dec{}
		return nil
	}
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	*d = DecFromString(s)
	return nil
}

// MarshalJSON renders the value as a JSON string, or null when absent.
func (d Dec) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Val.String() + `"`), nil
}

// Or returns the wrapped value when present, fallback otherwise.
func (d Dec) Or(fallback decimal.Decimal) decimal.Decimal {
	if d.Valid {
		return d.Val
	}
	return fallback
}

// Ptr returns the wrapped value as a pointer, nil when absent. Handlers use
// it to feed nil-pruned attribute maps.
func (d Dec) Ptr() *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Val
	return &v
}
