package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type AssetType string

const (
	TypeCrypto   AssetType = "crypto"
	TypeCurrency AssetType = "currency"
	TypeStock    AssetType = "stock"
	TypeOther    AssetType = "other"
)

// ErrUnsupportedType marks asset types that exist in the schema but have no
// valuation rule. Today that is only "stock".
var ErrUnsupportedType = errors.New("asset type has no valuation rule")

func (t AssetType) Valid() bool {
	switch t {
	case TypeCrypto, TypeCurrency, TypeStock, TypeOther:
		return true
	}
	return false
}

// Priced reports whether the type takes its unit price from an external
// market source.
func (t AssetType) Priced() bool {
	return t == TypeCrypto || t == TypeCurrency
}

type Asset struct {
	ID          string          `db:"id" json:"id"`
	OwnerID     string          `db:"owner_id" json:"owner_id"`
	Name        string          `db:"name" json:"name"`
	Type        AssetType       `db:"type" json:"type"`
	Symbol      string          `db:"symbol" json:"symbol"`
	Quantity    decimal.Decimal `db:"quantity" json:"quantity"`
	ManualValue decimal.Decimal `db:"manual_value" json:"manual_value"`
	MarketValue decimal.Decimal `db:"market_value" json:"market_value"`
	LastUpdated time.Time       `db:"last_updated" json:"last_updated"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// TotalValue is the one computed fact the rest of the system depends on:
// manual_value for "other" assets, market_value * quantity for everything
// with an external price.
func (a Asset) TotalValue() decimal.Decimal {
	if a.Type == TypeOther {
		return a.ManualValue
	}
	return a.MarketValue.Mul(a.Quantity)
}

// Validate rejects bad user input before any network call or write.
func (a *Asset) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return errors.New("name is required")
	}
	if !a.Type.Valid() {
		return fmt.Errorf("unknown asset type %q", a.Type)
	}
	if a.Type == TypeStock {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, a.Type)
	}
	if a.Type.Priced() && strings.TrimSpace(a.Symbol) == "" {
		return fmt.Errorf("symbol is required for %s assets", a.Type)
	}
	if a.Quantity.IsNegative() {
		return errors.New("quantity must not be negative")
	}
	return nil
}
