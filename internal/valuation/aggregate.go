package valuation

import (
	"assetfolio/internal/models"

	"github.com/shopspring/decimal"
)

// Summary is a portfolio rolled up for presentation.
type Summary struct {
	Total  decimal.Decimal
	ByType map[models.AssetType]decimal.Decimal
}

// Aggregate sums total value across assets and groups it by type. Pure: no
// lookups, no side effects, order of the input does not matter. Types not
// present in the input are not present in ByType.
func Aggregate(assets []models.Asset) Summary {
	s := Summary{
		Total:  decimal.Zero,
		ByType: make(map[models.AssetType]decimal.Decimal),
	}
	for _, a := range assets {
		value := a.TotalValue()
		s.Total = s.Total.Add(value)
		s.ByType[a.Type] = s.ByType[a.Type].Add(value)
	}
	return s
}
