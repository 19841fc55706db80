// Package archive persists finished investigations to Postgres, when one is
// configured — the swarm runs perfectly well without it, since the Field
// itself is the system of record while an investigation is in flight.
package archive

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/duskline/robin-smesh/pkg/models"
)

//go:embed schema.sql
var schemaFS embed.FS

// Store persists completed investigations and their extracted artifacts.
type Store struct {
	pool *pgxpool.Pool
}

// Connect opens a pooled connection to connStr and verifies it with a ping.
func Connect(ctx context.Context, connStr string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping failed: %w", err)
	}
	log.Info().Msg("connected to investigation archive database")
	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema applies the embedded schema, creating tables if they don't
// already exist.
func (s *Store) InitSchema(ctx context.Context) error {
	schemaBytes, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}
	if _, err := s.pool.Exec(ctx, string(schemaBytes)); err != nil {
		return fmt.Errorf("failed to execute schema migrations: %w", err)
	}
	log.Info().Msg("investigation archive schema initialized")
	return nil
}

// SaveInvestigation persists a finished investigation's report and its
// deduplicated artifact set inside a single transaction.
func (s *Store) SaveInvestigation(ctx context.Context, query, markdown string, sourceCount int, artifacts []models.Artifact) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id int64
	insertInvestigationSQL := `
		INSERT INTO investigations (query, markdown, source_count, artifact_count)
		VALUES ($1, $2, $3, $4)
		RETURNING id;
	`
	if err := tx.QueryRow(ctx, insertInvestigationSQL, query, markdown, sourceCount, len(artifacts)).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert investigation: %w", err)
	}

	if len(artifacts) > 0 {
		insertArtifactSQL := `
			INSERT INTO investigation_artifacts (investigation_id, artifact_type, value, confidence, source)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (investigation_id, artifact_type, value) DO NOTHING;
		`
		for _, a := range artifacts {
			if _, err := tx.Exec(ctx, insertArtifactSQL, id, string(a.Type), a.Value, a.Confidence, a.Source); err != nil {
				return 0, fmt.Errorf("failed to insert artifact: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit investigation: %w", err)
	}
	return id, nil
}

// RecentInvestigations returns the most recent investigations, newest first.
func (s *Store) RecentInvestigations(ctx context.Context, limit int) ([]InvestigationSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, query, source_count, artifact_count, created_at
		FROM investigations
		ORDER BY created_at DESC
		LIMIT $1;
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []InvestigationSummary
	for rows.Next() {
		var summary InvestigationSummary
		if err := rows.Scan(&summary.ID, &summary.Query, &summary.SourceCount, &summary.ArtifactCount, &summary.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, summary)
	}
	return out, rows.Err()
}
