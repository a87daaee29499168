package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"persona-engine/internal/domain"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS personas (
		user_id TEXT PRIMARY KEY,
		openness REAL NOT NULL,
		conscientiousness REAL NOT NULL,
		extraversion REAL NOT NULL,
		agreeableness REAL NOT NULL,
		neuroticism REAL NOT NULL
	);
`

// SQLitePersonaRepository persiste personas en un archivo SQLite local.
// Cada operacion es una sola sentencia autocommit: el alcance transaccional
// nunca cruza llamadas.
type SQLitePersonaRepository struct {
	db *sql.DB
}

// OpenSQLitePersonaRepository abre (o crea) la base en path y asegura el esquema.
func OpenSQLitePersonaRepository(path string) (*SQLitePersonaRepository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: sqlite path is required", domain.ErrInvalidArgument)
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite db: %v", domain.ErrStoreFailure, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping sqlite db: %v", domain.ErrStoreFailure, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ensure sqlite schema: %v", domain.ErrStoreFailure, err)
	}
	return &SQLitePersonaRepository{db: db}, nil
}

// Close cierra el archivo SQLite.
func (r *SQLitePersonaRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *SQLitePersonaRepository) Get(ctx context.Context, userID string) (*domain.Persona, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	const query = `
		SELECT user_id, openness, conscientiousness, extraversion, agreeableness, neuroticism
		FROM personas
		WHERE user_id = ?
	`

	var p domain.Persona
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID,
		&p.Openness,
		&p.Conscientiousness,
		&p.Extraversion,
		&p.Agreeableness,
		&p.Neuroticism,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get persona: %v", domain.ErrStoreFailure, err)
	}
	return &p, nil
}

func (r *SQLitePersonaRepository) Save(ctx context.Context, userID string, persona *domain.Persona) error {
	if err := validateSaveArgs(userID, persona); err != nil {
		return err
	}
	const query = `
		INSERT INTO personas (user_id, openness, conscientiousness, extraversion, agreeableness, neuroticism)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			openness = excluded.openness,
			conscientiousness = excluded.conscientiousness,
			extraversion = excluded.extraversion,
			agreeableness = excluded.agreeableness,
			neuroticism = excluded.neuroticism
	`

	_, err := r.db.ExecContext(ctx, query,
		userID,
		persona.Openness,
		persona.Conscientiousness,
		persona.Extraversion,
		persona.Agreeableness,
		persona.Neuroticism,
	)
	if err != nil {
		return fmt.Errorf("%w: save persona: %v", domain.ErrStoreFailure, err)
	}
	return nil
}

func (r *SQLitePersonaRepository) List(ctx context.Context, limit, offset int) ([]domain.Persona, error) {
	limit, offset = normalizePage(limit, offset)
	const query = `
		SELECT user_id, openness, conscientiousness, extraversion, agreeableness, neuroticism
		FROM personas
		ORDER BY user_id
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: list personas: %v", domain.ErrStoreFailure, err)
	}
	defer rows.Close()

	personas, err := scanSQLitePersonas(rows)
	if err != nil {
		return nil, fmt.Errorf("%w: list personas: %v", domain.ErrStoreFailure, err)
	}
	return personas, nil
}

func (r *SQLitePersonaRepository) FindSimilar(ctx context.Context, ref *domain.Persona, limit int) ([]domain.Persona, error) {
	if ref == nil {
		return nil, fmt.Errorf("%w: reference persona cannot be nil", domain.ErrInvalidArgument)
	}
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}
	const query = `
		SELECT user_id, openness, conscientiousness, extraversion, agreeableness, neuroticism
		FROM personas
		WHERE user_id <> ?
		ORDER BY
			(openness - ?) * (openness - ?) +
			(conscientiousness - ?) * (conscientiousness - ?) +
			(extraversion - ?) * (extraversion - ?) +
			(agreeableness - ?) * (agreeableness - ?) +
			(neuroticism - ?) * (neuroticism - ?),
			user_id
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query,
		ref.UserID,
		ref.Openness, ref.Openness,
		ref.Conscientiousness, ref.Conscientiousness,
		ref.Extraversion, ref.Extraversion,
		ref.Agreeableness, ref.Agreeableness,
		ref.Neuroticism, ref.Neuroticism,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: find similar personas: %v", domain.ErrStoreFailure, err)
	}
	defer rows.Close()

	personas, err := scanSQLitePersonas(rows)
	if err != nil {
		return nil, fmt.Errorf("%w: find similar personas: %v", domain.ErrStoreFailure, err)
	}
	return personas, nil
}

func scanSQLitePersonas(rows *sql.Rows) ([]domain.Persona, error) {
	var personas []domain.Persona
	for rows.Next() {
		var p domain.Persona
		if err := rows.Scan(
			&p.UserID,
			&p.Openness,
			&p.Conscientiousness,
			&p.Extraversion,
			&p.Agreeableness,
			&p.Neuroticism,
		); err != nil {
			return nil, err
		}
		personas = append(personas, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return personas, nil
}
