package productsapi

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// ExternalProduct is the payload served by the products API.
type ExternalProduct struct {
	ID          int64               `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Image       string              `json:"image"`
	Price       decimal.Decimal     `json:"price"`
	Rating      decimal.NullDecimal `json:"-"`
}

// UnmarshalJSON accepts rating either as a plain number or as {"rate": n, "count": n}.
func (p *ExternalProduct) UnmarshalJSON(data []byte) error {
	type plain ExternalProduct
	aux := struct {
		*plain
		Rating json.RawMessage `json:"rating"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	rating, err := decodeRating(aux.Rating)
	if err != nil {
		return err
	}
	p.Rating = rating
	return nil
}

func decodeRating(raw json.RawMessage) (decimal.NullDecimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.NullDecimal{}, nil
	}
	if raw[0] == '{' {
		var obj struct {
			Rate *decimal.Decimal `json:"rate"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return decimal.NullDecimal{}, fmt.Errorf("decode rating: %w", err)
		}
		if obj.Rate == nil {
			return decimal.NullDecimal{}, nil
		}
		return decimal.NewNullDecimal(*obj.Rate), nil
	}
	var d decimal.Decimal
	if err := json.Unmarshal(raw, &d); err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("decode rating: %w", err)
	}
	return decimal.NewNullDecimal(d), nil
}
