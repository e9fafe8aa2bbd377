package refresh

import (
	"context"
	"sync"
	"time"

	"assetfolio/internal/models"
	"assetfolio/internal/valuation"

	"github.com/sirupsen/logrus"
)

// Store is the slice of persistence the refresher needs.
type Store interface {
	FindAllByOwner(ctx context.Context, ownerID string) ([]models.Asset, error)
	Save(ctx context.Context, a *models.Asset) error
	Owners(ctx context.Context) ([]string, error)
}

// Outcome is one asset's result within a batch: the asset as it now stands
// and the error that stopped it, if any.
type Outcome struct {
	Asset models.Asset
	Err   error
}

type Refresher struct {
	store    Store
	valuator *valuation.Valuator
	log      *logrus.Logger
}

func NewRefresher(store Store, v *valuation.Valuator, log *logrus.Logger) *Refresher {
	return &Refresher{store: store, valuator: v, log: log}
}

// RefreshAll re-prices and persists every asset the owner holds. Price calls
// fan out, one goroutine per asset; each goroutine owns exactly one asset and
// one slot in the outcome slice. A failure affects only its own asset — the
// batch always runs to completion and reports all of them. Outcome order
// carries no meaning.
func (r *Refresher) RefreshAll(ctx context.Context, ownerID string) ([]Outcome, error) {
	assets, err := r.store.FindAllByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, len(assets))
	var wg sync.WaitGroup
	for i := range assets {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a := assets[i]
			if err := r.valuator.Valuate(ctx, &a); err != nil {
				r.log.Warnf("valuate %s (%s) failed: %v", a.ID, a.Type, err)
				outcomes[i] = Outcome{Asset: a, Err: err}
				return
			}
			if err := r.store.Save(ctx, &a); err != nil {
				r.log.Errorf("save refreshed asset %s failed: %v", a.ID, err)
				outcomes[i] = Outcome{Asset: a, Err: err}
				return
			}
			outcomes[i] = Outcome{Asset: a}
		}(i)
	}
	wg.Wait()
	return outcomes, nil
}

// Start runs periodic refreshes for every known owner until ctx is done.
func (r *Refresher) Start(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				r.log.Info("market refresher stopping")
				return
			case <-ticker.C:
				owners, err := r.store.Owners(ctx)
				if err != nil {
					r.log.Warnf("failed to list owners: %v", err)
					continue
				}
				for _, owner := range owners {
					if _, err := r.RefreshAll(ctx, owner); err != nil {
						r.log.Warnf("scheduled refresh for %s failed: %v", owner, err)
					}
				}
			}
		}
	}()
}
