package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/boiko-school/nmt-backend/internal/config"
	"github.com/boiko-school/nmt-backend/internal/database"
	"github.com/boiko-school/nmt-backend/internal/logger"
	"github.com/boiko-school/nmt-backend/internal/model"
	"github.com/boiko-school/nmt-backend/internal/repository"
)

func main() {
	var path string
	flag.StringVar(&path, "file", "participants.csv", "Path to a CSV of email,name,password rows")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	participantRepo := repository.NewParticipantRepository(pool)

	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("Failed to open seed file")
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse seed file")
	}

	fmt.Printf("=== Seeding %d Participants ===\n", len(rows))

	successCount := 0
	for i, row := range rows {
		if len(row) < 3 {
			fmt.Printf("Row %d: expected email,name,password, skipping\n", i+1)
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(row[2]), cfg.BcryptCost)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to hash password")
		}

		p := &model.Participant{
			Email:        row[0],
			Name:         row[1],
			Role:         model.RoleParticipant,
			PasswordHash: string(hash),
		}

		if err := participantRepo.Create(ctx, p); err != nil {
			fmt.Printf("Error creating participant %s: %v\n", p.Email, err)
			continue
		}
		successCount++
		if successCount%10 == 0 {
			fmt.Printf("Created %d participants...\n", successCount)
		}
	}

	fmt.Printf("\nSeed completed! Successfully added %d/%d participants.\n", successCount, len(rows))
}
