package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/emberhold/GuildShop_Go/internal/database"
)

// Creates the database if missing, runs migrations, and seeds a starter
// catalog so a fresh environment has something to sell.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	password := getEnv("DB_PASSWORD", "postgres")
	dbname := getEnv("DB_NAME", "guildshop")

	ctx := context.Background()

	// Connect to the default database to create the target one
	defaultConnString := fmt.Sprintf("postgres://%s:%s@%s:%s/postgres?sslmode=disable", user, password, host, port)
	conn, err := pgx.Connect(ctx, defaultConnString)
	if err != nil {
		log.Fatalf("Unable to connect to postgres database: %v", err)
	}

	var exists bool
	err = conn.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", dbname).Scan(&exists)
	if err != nil {
		log.Fatalf("Failed to check if database exists: %v", err)
	}

	if !exists {
		fmt.Printf("Creating database %s...\n", dbname)
		if _, err = conn.Exec(ctx, fmt.Sprintf("CREATE DATABASE %s", dbname)); err != nil {
			log.Fatalf("Failed to create database: %v", err)
		}
		fmt.Println("Database created successfully.")
	} else {
		fmt.Printf("Database %s already exists.\n", dbname)
	}
	conn.Close(ctx)

	targetConnString := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, dbname)

	fmt.Println("Running migrations...")
	if err := database.Migrate(targetConnString); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	fmt.Println("Migrations completed successfully.")

	targetConn, err := pgx.Connect(ctx, targetConnString)
	if err != nil {
		log.Fatalf("Unable to connect to %s database: %v", dbname, err)
	}
	defer targetConn.Close(ctx)

	fmt.Println("Seeding starter catalog...")
	if err := seedCatalog(ctx, targetConn); err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}
	fmt.Println("Seed completed successfully.")
}

// seedCatalog inserts a small starter catalog: two colors, a badge,
// and a case whose drop table pays out across four rarity bands.
// Inserts are idempotent on internal_name.
func seedCatalog(ctx context.Context, conn *pgx.Conn) error {
	items := []struct {
		internalName string
		description  string
		category     string
		price        int
		rarity       string
	}{
		{"crimson_hue", "A deep red name color.", "COLOR", 100, "COMMON"},
		{"azure_hue", "A calm blue name color.", "COLOR", 100, "COMMON"},
		{"founders_badge", "For the earliest supporters.", "BADGE", 500, "RARE"},
		{"starter_case", "A case with a little of everything.", "CASE", 250, "UNCOMMON"},
		{"gilded_rod", "Shines even in murky water.", "ROD", 1500, "LEGENDARY"},
		{"cork_handle", "A comfortable rod handle.", "ROD_PART", 200, "UNCOMMON"},
	}

	ids := make(map[string]int)
	for _, item := range items {
		var id int
		err := conn.QueryRow(ctx, `
			INSERT INTO catalog_items (internal_name, display_name, item_description, category, price, rarity, active)
			VALUES ($1, $2, $3, $4, $5, $6, TRUE)
			ON CONFLICT (internal_name) DO UPDATE SET display_name = EXCLUDED.display_name
			RETURNING item_id`,
			item.internalName, displayName(item.internalName), item.description, item.category, item.price, item.rarity,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert %s: %w", item.internalName, err)
		}
		ids[item.internalName] = id
	}

	// Drop weights must sum to exactly 100
	drops := []struct {
		prize  string
		weight int
	}{
		{"gilded_rod", 2},
		{"founders_badge", 8},
		{"cork_handle", 20},
		{"crimson_hue", 70},
	}

	for _, drop := range drops {
		_, err := conn.Exec(ctx, `
			INSERT INTO drop_table (case_item_id, prize_item_id, drop_weight)
			VALUES ($1, $2, $3)
			ON CONFLICT (case_item_id, prize_item_id) DO UPDATE SET drop_weight = EXCLUDED.drop_weight`,
			ids["starter_case"], ids[drop.prize], drop.weight,
		)
		if err != nil {
			return fmt.Errorf("insert drop %s: %w", drop.prize, err)
		}
	}

	return nil
}

// displayName derives a shelf-ready name from a catalog internal name:
// underscores become spaces, words get English title casing.
func displayName(internalName string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(internalName, "_", " "))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
