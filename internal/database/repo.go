package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"assetfolio/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

var (
	ErrNotFound     = errors.New("asset not found")
	ErrUnknownOwner = errors.New("owner does not exist")
)

type Repo struct {
	db  *sqlx.DB
	log *logrus.Logger
}

func New(db *sqlx.DB, log *logrus.Logger) *Repo {
	return &Repo{db: db, log: log}
}

const assetColumns = `id, owner_id, name, type, symbol, quantity, manual_value, market_value, last_updated, created_at`

// Create inserts the asset and fills in its DB-assigned id and created_at.
func (r *Repo) Create(ctx context.Context, a *models.Asset) error {
	if a.LastUpdated.IsZero() {
		a.LastUpdated = time.Now().UTC()
	}
	q := `INSERT INTO assets (id, owner_id, name, type, symbol, quantity, manual_value, market_value, last_updated, created_at)
	      VALUES (gen_random_uuid(), $1, $2, $3, $4, $5::numeric, $6::numeric, $7::numeric, $8, now())
	      RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, q,
		a.OwnerID, a.Name, a.Type, a.Symbol,
		a.Quantity.String(), a.ManualValue.StringFixed(4), a.MarketValue.StringFixed(4),
		a.LastUpdated,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return fmt.Errorf("%w: %s", ErrUnknownOwner, a.OwnerID)
		}
		return err
	}
	return nil
}

func (r *Repo) FindAllByOwner(ctx context.Context, ownerID string) ([]models.Asset, error) {
	rows, err := r.db.QueryxContext(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE owner_id = $1`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []models.Asset{}
	for rows.Next() {
		var a models.Asset
		if err := rows.StructScan(&a); err != nil {
			r.log.Warnf("scan asset failed: %v", err)
			continue
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

func (r *Repo) FindOneByOwnerAndID(ctx context.Context, ownerID, id string) (models.Asset, error) {
	var a models.Asset
	err := r.db.GetContext(ctx, &a,
		`SELECT `+assetColumns+` FROM assets WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Asset{}, ErrNotFound
	}
	return a, err
}

// Save writes the asset's full mutable state in a single statement, so a
// stored row is always either the old state or the new one.
func (r *Repo) Save(ctx context.Context, a *models.Asset) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE assets
		 SET name = $1, type = $2, symbol = $3, quantity = $4::numeric,
		     manual_value = $5::numeric, market_value = $6::numeric, last_updated = $7
		 WHERE owner_id = $8 AND id = $9`,
		a.Name, a.Type, a.Symbol, a.Quantity.String(),
		a.ManualValue.StringFixed(4), a.MarketValue.StringFixed(4), a.LastUpdated,
		a.OwnerID, a.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM assets WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Owners lists every user currently holding at least one asset, for the
// scheduled refresh sweep.
func (r *Repo) Owners(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT DISTINCT owner_id FROM assets`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			r.log.Warnf("scan owner failed: %v", err)
			continue
		}
		res = append(res, id)
	}
	return res, rows.Err()
}

func (r *Repo) EnsureUserExists(ctx context.Context, userID, name string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`, userID, name)
	return err
}
