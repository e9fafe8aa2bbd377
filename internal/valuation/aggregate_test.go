package valuation

import (
	"testing"

	"assetfolio/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func priced(typ models.AssetType, price, qty int64) models.Asset {
	return models.Asset{Type: typ, MarketValue: decimal.NewFromInt(price), Quantity: decimal.NewFromInt(qty)}
}

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(nil)
	assert.True(t, s.Total.IsZero())
	assert.Empty(t, s.ByType)
	assert.NotNil(t, s.ByType)
}

func TestAggregateGrouping(t *testing.T) {
	assets := []models.Asset{
		priced(models.TypeCrypto, 100, 1),
		priced(models.TypeCrypto, 50, 1),
		{Type: models.TypeOther, ManualValue: decimal.NewFromInt(30)},
	}
	s := Aggregate(assets)

	assert.True(t, s.Total.Equal(decimal.NewFromInt(180)), "got %s", s.Total)
	assert.Len(t, s.ByType, 2)
	assert.True(t, s.ByType[models.TypeCrypto].Equal(decimal.NewFromInt(150)))
	assert.True(t, s.ByType[models.TypeOther].Equal(decimal.NewFromInt(30)))
	_, present := s.ByType[models.TypeCurrency]
	assert.False(t, present, "absent types must be absent, not zero")
}

func TestAggregateAdditive(t *testing.T) {
	a := []models.Asset{priced(models.TypeCrypto, 200, 3), priced(models.TypeCurrency, 1, 500)}
	b := []models.Asset{{Type: models.TypeOther, ManualValue: decimal.NewFromInt(75)}}

	combined := Aggregate(append(append([]models.Asset{}, a...), b...))
	assert.True(t, combined.Total.Equal(Aggregate(a).Total.Add(Aggregate(b).Total)))
}

func TestAggregateOrderInvariant(t *testing.T) {
	a := priced(models.TypeCrypto, 10, 2)
	b := priced(models.TypeCurrency, 3, 7)
	c := models.Asset{Type: models.TypeOther, ManualValue: decimal.NewFromInt(9)}

	s1 := Aggregate([]models.Asset{a, b, c})
	s2 := Aggregate([]models.Asset{c, a, b})

	assert.True(t, s1.Total.Equal(s2.Total))
	for typ, v := range s1.ByType {
		assert.True(t, v.Equal(s2.ByType[typ]))
	}
}

func TestAggregateZeroPricePositions(t *testing.T) {
	// An unreachable provider leaves priced assets at market value zero; they
	// still show up in the grouping.
	assets := []models.Asset{priced(models.TypeCrypto, 0, 4)}
	s := Aggregate(assets)

	assert.True(t, s.Total.IsZero())
	v, present := s.ByType[models.TypeCrypto]
	assert.True(t, present)
	assert.True(t, v.IsZero())
}
