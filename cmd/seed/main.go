// seed inserts a test student and a handful of listings into the local dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/ErlanBelekov/campus-marketplace/internal/infrastructure/postgres"
)

const (
	seedEmail    = "seed@am.students.amrita.edu"
	seedPassword = "seed-password"
)

type listing struct {
	name        string
	description string
	price       string
}

var listings = []listing{
	{"Engineering Drafter", "Mini drafter, barely used", "450.00"},
	{"Casio fx-991ES Plus", "Scientific calculator, works fine", "800.00"},
	{"Lab Coat (M)", "White lab coat, washed", "250.00"},
	{"Hero Sprint Cycle", "Good condition, new tyres last sem", "3200.00"},
	{"Data Structures (Cormen)", "3rd edition, some highlighting", "600.50"},
	{"Electric Kettle", "1.5L, hostel-friendly", "500.00"},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set (run: direnv allow)")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}

	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		log.Fatalf("migrate: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		pool.Close()
		log.Fatalf("hash password: %v", err)
	}

	// Upsert test user
	var userID int64
	err = pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, name, programme, branch, year, semester)
		VALUES ($1, $2, 'Seed Student', 'B.Tech', 'CSE', 3, 5)
		ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash, updated_at = NOW()
		RETURNING id`,
		seedEmail, string(hash),
	).Scan(&userID)
	if err != nil {
		pool.Close()
		log.Fatalf("upsert user: %v", err)
	}

	// Insert listings, skip any the seed user already sells (idempotent re-runs)
	var inserted, skipped int
	for _, l := range listings {
		tag, err := pool.Exec(ctx, `
			INSERT INTO products (name, description, price, seller_id)
			SELECT $1, $2, $3::numeric, $4
			WHERE NOT EXISTS (SELECT 1 FROM products WHERE seller_id = $4 AND name = $1)`,
			l.name, l.description, l.price, userID,
		)
		if err != nil {
			pool.Close()
			log.Fatalf("insert listing %q: %v", l.name, err)
		}
		if tag.RowsAffected() == 0 {
			skipped++
		} else {
			inserted++
		}
	}

	pool.Close()

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  User:             %s / %s\n", seedEmail, seedPassword)
	fmt.Printf("  User ID:          %d\n", userID)
	fmt.Printf("  Listings created: %d  (skipped %d already existing)\n", inserted, skipped)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Step 1: log in as the seed user:")
	fmt.Println()
	fmt.Printf("    curl -s -X POST http://localhost:8080/api/auth/login \\\n")
	fmt.Printf("      -H 'Content-Type: application/json' \\\n")
	fmt.Printf("      -d '{\"email\":\"%s\",\"password\":\"%s\"}'\n", seedEmail, seedPassword)
	fmt.Println("    # → {\"id\":...,\"token\":\"eyJ...\"}")
	fmt.Println()
	fmt.Println("  Step 2: browse the listings:")
	fmt.Println()
	fmt.Printf("    curl -s http://localhost:8080/api/products/seller/%d\n", userID)
	fmt.Println()
	fmt.Println("  Step 3: sign up a second student (the OTP is printed in the server log when ENV=local):")
	fmt.Println()
	fmt.Println("    curl -s -X POST http://localhost:8080/api/auth/signup/initiate \\")
	fmt.Println("      -H 'Content-Type: application/json' -d '{\"email\":\"you@am.students.amrita.edu\"}'")
}
