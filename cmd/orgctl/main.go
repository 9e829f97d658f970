// orgctl provisions organizations. Membership is vetted out of band; there is
// no self-service signup. The plaintext API key is printed exactly once.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/doomdagadiggiedahdah/SentinelNet/internal/auth"
	"github.com/doomdagadiggiedahdah/SentinelNet/internal/config"
	"github.com/doomdagadiggiedahdah/SentinelNet/internal/db"
)

func main() {
	godotenv.Load()

	name := flag.String("name", "", "organization display name")
	sector := flag.String("sector", string(db.SectorOther), "organization sector")
	region := flag.String("region", string(db.RegionOther), "organization region")
	flag.Parse()

	if *name == "" {
		log.Fatal("-name is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	conn, err := db.NewConnection(cfg.Database.URL)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer conn.Close()

	repo := db.NewRepository(conn)

	apiKey := auth.GenerateAPIKey()
	now := time.Now().UTC()

	org := &db.Organization{
		ID:            uuid.New().String(),
		DisplayName:   *name,
		Sector:        db.Sector(*sector),
		Region:        db.Region(*region),
		APIKeyHash:    auth.HashAPIKey(apiKey),
		QueryBudget:   cfg.Budget.DefaultQueryBudget,
		BudgetResetAt: now.Truncate(24 * time.Hour).Add(24 * time.Hour),
		CreatedAt:     now,
	}

	if err := repo.CreateOrganization(org); err != nil {
		log.Fatal("Failed to create organization: ", err)
	}

	fmt.Printf("Organization created\n")
	fmt.Printf("  id:      %s\n", org.ID)
	fmt.Printf("  name:    %s\n", org.DisplayName)
	fmt.Printf("  api key: %s\n", apiKey)
	fmt.Printf("Store the API key now; it cannot be recovered.\n")
}
