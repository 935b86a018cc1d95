package clob

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

type Decimal struct {
	decimal.Decimal
}

func (d *Decimal) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		d.Decimal = decimal.Zero
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		val, err := decimal.NewFromString(s)
		if err != nil {
			return err
		}
		d.Decimal = val
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		d.Decimal = decimal.NewFromFloat(f)
		return nil
	}
	return fmt.Errorf("invalid decimal: %s", string(b))
}

// parsePrice reads the quote body. The endpoint answers with either a "price"
// or a "mid" field depending on deployment; both are equivalent here.
func parsePrice(body []byte) (decimal.Decimal, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return decimal.Zero, err
	}
	priceRaw := firstRaw(raw, "price", "mid")
	if len(priceRaw) == 0 {
		return decimal.Zero, fmt.Errorf("price not found in response")
	}
	var d Decimal
	if err := json.Unmarshal(priceRaw, &d); err != nil {
		return decimal.Zero, err
	}
	return d.Decimal, nil
}

func firstRaw(m map[string]json.RawMessage, keys ...string) json.RawMessage {
	for _, key := range keys {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return nil
}
