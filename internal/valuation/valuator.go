package valuation

import (
	"context"
	"fmt"
	"time"

	"assetfolio/internal/marketdata"
	"assetfolio/internal/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Valuator is the single place asset types are dispatched to a price source.
type Valuator struct {
	source marketdata.Source
	log    *logrus.Logger
}

func NewValuator(src marketdata.Source, log *logrus.Logger) *Valuator {
	return &Valuator{source: src, log: log}
}

// Valuate refreshes the asset's market value in place. A failed or missing
// quote degrades to a zero market value rather than an error; the caller of a
// refresh only ever sees fetch trouble as a zeroed valuation. "other" assets
// are left untouched, "stock" has no rule and is rejected outright.
func (v *Valuator) Valuate(ctx context.Context, a *models.Asset) error {
	switch {
	case a.Type == models.TypeOther:
		return nil
	case a.Type.Priced():
		price, err := v.source.UnitPrice(ctx, a.Type, a.Symbol)
		if err != nil {
			v.log.Warnf("price fetch failed for %s %q: %v", a.Type, a.Symbol, err)
			price = decimal.Zero
		}
		a.MarketValue = price
		a.LastUpdated = time.Now().UTC()
		return nil
	default:
		return fmt.Errorf("%w: %s", models.ErrUnsupportedType, a.Type)
	}
}
