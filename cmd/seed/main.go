// Command seed loads a demo scratch card catalog. Intended for local
// development and staging; every run wipes and recreates the catalog.
package main

import (
	"context"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type tier struct {
	label       string
	amount      string
	probability float64
}

type product struct {
	slug     string
	name     string
	price    string
	maxPrize string
	category string
	stock    *int
	tiers    []tier
}

func intPtr(n int) *int { return &n }

var catalog = []product{
	{
		slug: "raspa-da-sorte", name: "Raspa da Sorte", price: "1.00", maxPrize: "100.00", category: "classicas",
		tiers: []tier{
			{"Nada", "0", 0.75},
			{"R$ 1", "1.00", 0.15},
			{"R$ 5", "5.00", 0.07},
			{"R$ 20", "20.00", 0.025},
			{"R$ 100", "100.00", 0.005},
		},
	},
	{
		slug: "raspa-premiada", name: "Raspa Premiada", price: "5.00", maxPrize: "1000.00", category: "classicas",
		tiers: []tier{
			{"Nada", "0", 0.70},
			{"R$ 5", "5.00", 0.18},
			{"R$ 25", "25.00", 0.08},
			{"R$ 100", "100.00", 0.035},
			{"R$ 1.000", "1000.00", 0.005},
		},
	},
	{
		slug: "mega-raspa", name: "Mega Raspa", price: "25.00", maxPrize: "10000.00", category: "premium",
		stock: intPtr(5000),
		tiers: []tier{
			{"Nada", "0", 0.68},
			{"R$ 25", "25.00", 0.20},
			{"R$ 100", "100.00", 0.09},
			{"R$ 1.000", "1000.00", 0.028},
			{"R$ 10.000", "10000.00", 0.002},
		},
	},
}

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	tx, err := db.Begin(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM prizes`); err != nil {
		log.Fatalf("clear prizes: %v", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM raspadinhas`); err != nil {
		log.Fatalf("clear raspadinhas: %v", err)
	}

	for _, p := range catalog {
		id := uuid.NewString()
		_, err := tx.Exec(ctx, `
			INSERT INTO raspadinhas (id, slug, name, price, max_prize, category, stock, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, true)
		`, id, p.slug, p.name, p.price, p.maxPrize, p.category, p.stock)
		if err != nil {
			log.Fatalf("insert %s: %v", p.slug, err)
		}

		var sum float64
		for i, t := range p.tiers {
			sum += t.probability
			_, err := tx.Exec(ctx, `
				INSERT INTO prizes (id, raspadinha_id, label, amount, probability, sort_order)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, uuid.NewString(), id, t.label, t.amount, t.probability, i)
			if err != nil {
				log.Fatalf("insert prize %s/%s: %v", p.slug, t.label, err)
			}
		}
		if sum < 0.999 || sum > 1.001 {
			log.Fatalf("%s: probabilities sum to %f, want 1.0", p.slug, sum)
		}

		log.Printf("seeded %s (%d tiers)", p.slug, len(p.tiers))
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatal(err)
	}
	log.Println("catalog seeded")
}
