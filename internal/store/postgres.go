package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Store is the optional write-behind sink: raw provider payload snapshots
// and per-question metrics. Nothing on the request path reads from it.
type Store struct {
	DB *sql.DB
}

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return &Store{DB: db}, nil
}

func (s *Store) Ping(ctx context.Context) error { return s.DB.PingContext(ctx) }

func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE TABLE IF NOT EXISTS provider_raw_snapshots (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			provider       TEXT NOT NULL,
			property_key   TEXT NOT NULL,
			source         TEXT NOT NULL,
			payload        JSONB NOT NULL,
			fetched_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
			payload_sha256 TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_provider ON provider_raw_snapshots(provider, property_key, fetched_at DESC);`,
		`CREATE TABLE IF NOT EXISTS question_metrics (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			request_id    TEXT NOT NULL,
			property_key  TEXT NOT NULL,
			category      TEXT NOT NULL,
			confidence    TEXT NOT NULL,
			source        TEXT NOT NULL,
			live_count    INT NOT NULL DEFAULT 0,
			latency_ms    INT NOT NULL DEFAULT 0,
			answered_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_qmetrics_category ON question_metrics(category, answered_at DESC);`,
	}
	for _, q := range stmts {
		if _, err := s.DB.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

type SnapshotInput struct {
	Provider    string
	PropertyKey string
	Source      string
	PayloadJSON []byte
}

// WriteSnapshot records one provider payload verbatim. Dedup is left to the
// sha column; identical refetches are cheap and queryable.
func (s *Store) WriteSnapshot(ctx context.Context, in SnapshotInput) error {
	if s == nil || s.DB == nil {
		return errors.New("nil db")
	}
	sum := sha256.Sum256(in.PayloadJSON)
	sha := hex.EncodeToString(sum[:])
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO provider_raw_snapshots (provider, property_key, source, payload, payload_sha256)
		VALUES ($1,$2,$3,$4,$5)
	`, in.Provider, in.PropertyKey, in.Source, string(in.PayloadJSON), sha)
	return err
}

type MetricInput struct {
	RequestID   string
	PropertyKey string
	Category    string
	Confidence  string
	Source      string
	LiveCount   int
	LatencyMS   int
}

func (s *Store) WriteQuestionMetric(ctx context.Context, in MetricInput) error {
	if s == nil || s.DB == nil {
		return errors.New("nil db")
	}
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO question_metrics (request_id, property_key, category, confidence, source, live_count, latency_ms)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, in.RequestID, in.PropertyKey, in.Category, in.Confidence, in.Source, in.LiveCount, in.LatencyMS)
	return err
}
