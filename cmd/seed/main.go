package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"persona-engine/internal/config"
	"persona-engine/internal/db"
	"persona-engine/internal/domain"
	"persona-engine/internal/repository"
	"persona-engine/internal/service"
)

func main() {
	count := flag.Int("n", 10, "cantidad de personas a crear")
	jitter := flag.Bool("jitter", true, "mueve un rasgo al azar en cada persona")
	flag.Parse()

	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	personaRepo, cleanup, err := openRepo(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	svc := service.NewPersonaService(logger, personaRepo)

	for i := 0; i < *count; i++ {
		userID := "seed-" + uuid.NewString()
		if _, err := svc.GetOrCreate(ctx, userID); err != nil {
			log.Fatal(err)
		}
		if *jitter {
			trait := domain.TraitNames[rand.Intn(len(domain.TraitNames))]
			value := domain.MinTraitValue + rand.Float64()*(domain.MaxTraitValue-domain.MinTraitValue)
			if _, err := svc.UpdateTrait(ctx, userID, trait, value); err != nil {
				log.Fatal(err)
			}
		}
	}

	personas, err := svc.List(ctx, *count, 0)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("seeded %d personas, store now lists %d\n", *count, len(personas))
	for _, p := range personas {
		fmt.Printf("  %s o=%.2f c=%.2f e=%.2f a=%.2f n=%.2f\n",
			p.UserID, p.Openness, p.Conscientiousness, p.Extraversion, p.Agreeableness, p.Neuroticism)
	}
}

// openRepo abre el backend indicado por DATABASE_URL. Con el backend en
// memoria el seed es solo un dry run.
func openRepo(ctx context.Context, cfg *config.Config) (repository.PersonaRepository, func(), error) {
	switch {
	case strings.HasPrefix(cfg.DatabaseURL, "postgres://"), strings.HasPrefix(cfg.DatabaseURL, "postgresql://"):
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := db.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repository.NewPgPersonaRepository(pool), pool.Close, nil
	case strings.HasPrefix(cfg.DatabaseURL, "sqlite://"):
		repo, err := repository.OpenSQLitePersonaRepository(strings.TrimPrefix(cfg.DatabaseURL, "sqlite://"))
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { _ = repo.Close() }, nil
	default:
		return repository.NewMemoryPersonaRepository(), func() {}, nil
	}
}
