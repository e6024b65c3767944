package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/boiko-school/nmt-backend/internal/config"
	"github.com/boiko-school/nmt-backend/internal/database"
	"github.com/boiko-school/nmt-backend/internal/logger"
	"github.com/boiko-school/nmt-backend/internal/model"
	"github.com/boiko-school/nmt-backend/internal/repository"
)

// seedFile is the on-disk format: one array of questions per subject.
type seedFile map[model.Subject][]model.Question

func main() {
	var path string
	flag.StringVar(&path, "file", "questions.json", "Path to the question bank JSON file")
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

	questionRepo := repository.NewQuestionRepository(pool)

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("Failed to read seed file")
	}

	var bank seedFile
	if err := json.Unmarshal(data, &bank); err != nil {
		log.Fatal().Err(err).Msg("Failed to parse seed file")
	}

	fmt.Println("=== Seeding Question Bank ===")

	total := 0
	for subject, questions := range bank {
		if !model.ValidSubject(subject) {
			log.Fatal().Str("subject", string(subject)).Msg("Unknown subject in seed file")
		}
		for i := range questions {
			questions[i].Subject = subject
		}
		if err := questionRepo.BulkInsert(ctx, questions); err != nil {
			log.Fatal().Err(err).Str("subject", string(subject)).Msg("Failed to insert questions")
		}
		fmt.Printf("Seeded %d %s questions\n", len(questions), subject)
		total += len(questions)
	}

	fmt.Printf("\nSeed completed! %d questions loaded.\n", total)
}
