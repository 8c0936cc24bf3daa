package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("assessment not found")

// Assessment is a scored questionnaire kept for later review.
type Assessment struct {
	ID          uuid.UUID       `json:"id"`
	CreatedAt   time.Time       `json:"createdAt"`
	Input       json.RawMessage `json:"input"`
	Score       int             `json:"score"`
	Probability float64         `json:"probability"`
	RiskLevel   string          `json:"riskLevel"`
	Prediction  int             `json:"prediction"`
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS assessments (
	id          UUID PRIMARY KEY,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	input       JSONB NOT NULL,
	score       SMALLINT NOT NULL CHECK (score BETWEEN 0 AND 100),
	probability DOUBLE PRECISION NOT NULL,
	risk_level  TEXT NOT NULL,
	prediction  SMALLINT NOT NULL
)`

// Store persists assessments in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// Connect opens a pool and verifies it with a ping.
func Connect(ctx context.Context, url string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() {
	s.pool.Close()
}

// Migrate creates the assessments table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("migrate assessments: %w", err)
	}
	return nil
}

// Save inserts a, assigning ID and CreatedAt when unset.
func (s *Store) Save(ctx context.Context, a *Assessment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if len(a.Input) == 0 {
		a.Input = json.RawMessage("{}")
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO assessments (id, created_at, input, score, probability, risk_level, prediction)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.CreatedAt, a.Input, a.Score, a.Probability, a.RiskLevel, a.Prediction,
	)
	if err != nil {
		return fmt.Errorf("insert assessment %s: %w", a.ID, err)
	}
	return nil
}

// Get loads one assessment by id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (Assessment, error) {
	var a Assessment
	err := s.pool.QueryRow(ctx,
		`SELECT id, created_at, input, score, probability, risk_level, prediction
		 FROM assessments WHERE id = $1`, id,
	).Scan(&a.ID, &a.CreatedAt, &a.Input, &a.Score, &a.Probability, &a.RiskLevel, &a.Prediction)
	if errors.Is(err, pgx.ErrNoRows) {
		return Assessment{}, ErrNotFound
	}
	if err != nil {
		return Assessment{}, fmt.Errorf("select assessment %s: %w", id, err)
	}
	return a, nil
}
