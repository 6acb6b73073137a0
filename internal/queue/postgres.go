package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/apply"
)

// PostgresStore is the durable queue/log backing. Expected schema:
//
//	CREATE TABLE attempts (
//	    id             UUID PRIMARY KEY,
//	    url            TEXT NOT NULL,
//	    normalized_url TEXT NOT NULL,
//	    resume_path    TEXT NOT NULL,
//	    platform       TEXT NOT NULL,
//	    market         TEXT NOT NULL,
//	    status         TEXT NOT NULL,
//	    artifacts      TEXT[] NOT NULL DEFAULT '{}',
//	    created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type PostgresStore struct {
	db *pgxpool.Pool
}

// ConnectPostgres opens the pool and verifies connectivity.
func ConnectPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	// IMPORTANT: connection poolers (PgBouncer in Transaction mode) do not
	// support prepared statements easily, so the statement cache is disabled.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	return &PostgresStore{db: pool}, nil
}

func (s *PostgresStore) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

func nonFailedTerminal() []string {
	statuses := apply.NonFailedTerminalStatuses()
	out := make([]string, len(statuses))
	for i, st := range statuses {
		out[i] = string(st)
	}
	return out
}

func (s *PostgresStore) Enqueue(ctx context.Context, entry *apply.QueueEntry) error {
	if entry.NormalizedURL == "" {
		entry.NormalizedURL = apply.NormalizeURL(entry.URL)
	}
	dup, err := s.IsDuplicate(ctx, entry.NormalizedURL)
	if err != nil {
		return err
	}
	if dup {
		return ErrDuplicate
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.Status = apply.StatusQueued

	query := `
		INSERT INTO attempts (id, url, normalized_url, resume_path, platform, market, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`
	err = s.db.QueryRow(ctx, query,
		entry.ID, entry.URL, entry.NormalizedURL, entry.ResumePath,
		string(entry.Platform), entry.Market, string(entry.Status)).
		Scan(&entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", entry.URL, err)
	}
	return nil
}

// ClaimNext takes the oldest queued entry for a platform. The UPDATE guards
// on status so two workers can never claim the same row.
func (s *PostgresStore) ClaimNext(ctx context.Context, platform apply.Platform) (*apply.QueueEntry, error) {
	query := `
		UPDATE attempts SET status = $1, updated_at = now()
		WHERE id = (
			SELECT id FROM attempts
			WHERE platform = $2 AND status = $3
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, url, normalized_url, resume_path, platform, market, status, created_at, updated_at`

	var entry apply.QueueEntry
	err := s.db.QueryRow(ctx, query,
		string(apply.StatusRunning), string(platform), string(apply.StatusQueued)).
		Scan(&entry.ID, &entry.URL, &entry.NormalizedURL, &entry.ResumePath,
			&entry.Platform, &entry.Market, &entry.Status, &entry.CreatedAt, &entry.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim next %s entry: %w", platform, err)
	}
	return &entry, nil
}

func (s *PostgresStore) RecordStatus(ctx context.Context, id string, status apply.AttemptStatus, artifacts []string) error {
	var current string
	err := s.db.QueryRow(ctx, "SELECT status FROM attempts WHERE id = $1", id).Scan(&current)
	if err == pgx.ErrNoRows {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to read status for %s: %w", id, err)
	}
	if !apply.AttemptStatus(current).CanTransition(status) {
		return fmt.Errorf("%w: %s -> %s", ErrTransition, current, status)
	}

	if artifacts == nil {
		artifacts = []string{}
	}
	_, err = s.db.Exec(ctx,
		"UPDATE attempts SET status = $1, artifacts = artifacts || $2, updated_at = now() WHERE id = $3",
		string(status), artifacts, id)
	if err != nil {
		return fmt.Errorf("failed to record status for %s: %w", id, err)
	}
	return nil
}

func (s *PostgresStore) IsDuplicate(ctx context.Context, normalizedURL string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM attempts WHERE normalized_url = $1 AND status = ANY($2))",
		normalizedURL, nonFailedTerminal()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed dedup lookup for %s: %w", normalizedURL, err)
	}
	return exists, nil
}
