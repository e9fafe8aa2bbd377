package database

import (
	"context"
	"os"
	"testing"
	"time"

	"assetfolio/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func setupDB(t *testing.T) *sqlx.DB {
	url := os.Getenv("POSTGRES_URL")
	if url == "" {
		t.Skip("POSTGRES_URL is not set; skipping integration tests")
	}
	db, err := sqlx.Open("postgres", url)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	b, err := os.ReadFile("../../migrations/0001_init.up.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if _, err := db.Exec(string(b)); err != nil {
		t.Logf("exec migration: %v", err)
	}
	return db
}

func TestAssetRoundTrip(t *testing.T) {
	db := setupDB(t)
	logger := logrus.New()
	r := New(db, logger)

	userID := "repo-test-user"
	if err := r.EnsureUserExists(context.Background(), userID, "Repo Test User"); err != nil {
		t.Fatalf("ensure user failed: %v", err)
	}
	if _, err := db.Exec(`DELETE FROM assets WHERE owner_id = $1`, userID); err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}

	a := models.Asset{
		OwnerID:     userID,
		Name:        "Bitcoin",
		Type:        models.TypeCrypto,
		Symbol:      "bitcoin",
		Quantity:    decimal.RequireFromString("0.5"),
		MarketValue: decimal.NewFromInt(40000),
		LastUpdated: time.Now().UTC(),
	}
	if err := r.Create(context.Background(), &a); err != nil {
		t.Fatalf("create asset failed: %v", err)
	}
	if a.ID == "" {
		t.Fatalf("expected db-assigned id")
	}

	got, err := r.FindOneByOwnerAndID(context.Background(), userID, a.ID)
	if err != nil {
		t.Fatalf("find one failed: %v", err)
	}
	if !got.MarketValue.Equal(a.MarketValue) || !got.Quantity.Equal(a.Quantity) {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	got.MarketValue = decimal.NewFromInt(41000)
	got.LastUpdated = time.Now().UTC()
	if err := r.Save(context.Background(), &got); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	all, err := r.FindAllByOwner(context.Background(), userID)
	if err != nil {
		t.Fatalf("find all failed: %v", err)
	}
	if len(all) != 1 || !all[0].MarketValue.Equal(decimal.NewFromInt(41000)) {
		t.Fatalf("expected one updated asset, got %+v", all)
	}

	if err := r.Delete(context.Background(), userID, a.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := r.FindOneByOwnerAndID(context.Background(), userID, a.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestOwnershipIsScoped(t *testing.T) {
	db := setupDB(t)
	logger := logrus.New()
	r := New(db, logger)

	owner := "repo-owner-a"
	intruder := "repo-owner-b"
	for _, u := range []string{owner, intruder} {
		if err := r.EnsureUserExists(context.Background(), u, ""); err != nil {
			t.Fatalf("ensure user failed: %v", err)
		}
	}

	a := models.Asset{OwnerID: owner, Name: "Euros", Type: models.TypeCurrency, Symbol: "EUR", Quantity: decimal.NewFromInt(100)}
	if err := r.Create(context.Background(), &a); err != nil {
		t.Fatalf("create asset failed: %v", err)
	}
	defer db.Exec(`DELETE FROM assets WHERE id = $1`, a.ID)

	if _, err := r.FindOneByOwnerAndID(context.Background(), intruder, a.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for foreign owner, got %v", err)
	}
	if err := r.Delete(context.Background(), intruder, a.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound deleting foreign asset, got %v", err)
	}
}

func TestCreateUnknownOwner(t *testing.T) {
	db := setupDB(t)
	r := New(db, logrus.New())

	a := models.Asset{OwnerID: "no-such-user-xyz", Name: "Ghost", Type: models.TypeOther}
	err := r.Create(context.Background(), &a)
	if err == nil {
		t.Fatalf("expected foreign key error")
	}
}
