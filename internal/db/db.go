package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"persona-engine/internal/config"
)

// NewPool construye y devuelve un pool de conexiones configurado.
func NewPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	// Configuración razonable para ambientes iniciales.
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 30 * time.Second
	poolCfg.ConnConfig.ConnectTimeout = 5 * time.Second

	return pgxpool.NewWithConfig(ctx, poolCfg)
}

// Ping verifica conectividad con la base de datos.
func Ping(ctx context.Context, pool *pgxpool.Pool) error {
	return pool.Ping(ctx)
}

// EnsureSchema crea la extension pgvector y la tabla de personas si no
// existen. Los statements van uno por uno porque el protocolo extendido de
// pgx no acepta lotes.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS personas (
			user_id           TEXT PRIMARY KEY,
			openness          DOUBLE PRECISION NOT NULL DEFAULT 3.0,
			conscientiousness DOUBLE PRECISION NOT NULL DEFAULT 3.0,
			extraversion      DOUBLE PRECISION NOT NULL DEFAULT 3.0,
			agreeableness     DOUBLE PRECISION NOT NULL DEFAULT 3.0,
			neuroticism       DOUBLE PRECISION NOT NULL DEFAULT 3.0,
			trait_vec         vector(5)
		)`,
	}
	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
