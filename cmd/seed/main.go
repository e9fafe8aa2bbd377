package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// Seeds a demo user with one asset of each supported kind so the API has
// something to show right after first boot.
func main() {
	godotenv.Load()
	dbURL := os.Getenv("POSTGRES_URL")
	if dbURL == "" {
		log.Fatal("POSTGRES_URL is required")
	}

	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	userID := "demo-user"

	if _, err := db.ExecContext(ctx, `INSERT INTO users (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`, userID, "Demo User"); err != nil {
		log.Fatalf("could not insert user: %v", err)
	}

	assets := []struct {
		name, typ, symbol, quantity, manual string
	}{
		{"Bitcoin", "crypto", "bitcoin", "0.25", "0"},
		{"Ethereum", "crypto", "ethereum", "3", "0"},
		{"Euro cash", "currency", "EUR", "1500", "0"},
		{"Vintage watch", "other", "", "1", "2400"},
	}

	for _, a := range assets {
		_, err := db.ExecContext(ctx, `
			INSERT INTO assets (owner_id, name, type, symbol, quantity, manual_value)
			VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric)`,
			userID, a.name, a.typ, a.symbol, a.quantity, a.manual)
		if err != nil {
			fmt.Printf("Warning: could not insert asset %s: %v\n", a.name, err)
		}
	}

	fmt.Println("Seeded demo portfolio for", userID)
	fmt.Println("Market values are zero until the first refresh: POST /assets/refresh with X-User-ID:", userID)
}
