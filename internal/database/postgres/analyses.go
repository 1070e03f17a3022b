package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kozaktomas/frushion/internal/constants"
	"github.com/kozaktomas/frushion/internal/database"
)

const analysisColumns = `id, session_id, mode, skin_tone, texture, elasticity, hydration,
	expression, emoji, confidence, score, created_at`

// AnalysisRepository provides PostgreSQL-backed analysis storage
type AnalysisRepository struct {
	pool *Pool
}

// NewAnalysisRepository creates a new PostgreSQL analysis repository
func NewAnalysisRepository(pool *Pool) *AnalysisRepository {
	return &AnalysisRepository{pool: pool}
}

// Ping checks that the backing database answers.
func (r *AnalysisRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanAnalysis(scanner interface{ Scan(...any) error }) (database.StoredAnalysis, error) {
	var a database.StoredAnalysis
	err := scanner.Scan(
		&a.ID,
		&a.SessionID,
		&a.Mode,
		&a.SkinTone,
		&a.Texture,
		&a.Elasticity,
		&a.Hydration,
		&a.Expression,
		&a.Emoji,
		&a.Confidence,
		&a.Score,
		&a.CreatedAt,
	)
	return a, err
}

// Get retrieves an analysis by ID
func (r *AnalysisRepository) Get(ctx context.Context, id string) (*database.StoredAnalysis, error) {
	query := `SELECT ` + analysisColumns + ` FROM analyses WHERE id = $1`

	a, err := scanAnalysis(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis: %w", err)
	}
	return &a, nil
}

// List returns the most recent analyses, newest first
func (r *AnalysisRepository) List(ctx context.Context, limit int) ([]database.StoredAnalysis, error) {
	if limit <= 0 {
		limit = constants.DefaultAnalysesLimit
	}
	query := `SELECT ` + analysisColumns + ` FROM analyses ORDER BY created_at DESC, id LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	var analyses []database.StoredAnalysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		analyses = append(analyses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analyses: %w", err)
	}
	return analyses, nil
}

// Latest returns the newest analysis
func (r *AnalysisRepository) Latest(ctx context.Context) (*database.StoredAnalysis, error) {
	list, err := r.List(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, database.ErrNotFound
	}
	return &list[0], nil
}

// Count returns the total number of analyses
func (r *AnalysisRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM analyses").Scan(&count); err != nil {
		return 0, fmt.Errorf("count analyses: %w", err)
	}
	return count, nil
}

// Save stores an analysis in the database
func (r *AnalysisRepository) Save(ctx context.Context, a *database.StoredAnalysis) error {
	query := `
		INSERT INTO analyses (` + analysisColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			session_id = EXCLUDED.session_id,
			mode = EXCLUDED.mode,
			skin_tone = EXCLUDED.skin_tone,
			texture = EXCLUDED.texture,
			elasticity = EXCLUDED.elasticity,
			hydration = EXCLUDED.hydration,
			expression = EXCLUDED.expression,
			emoji = EXCLUDED.emoji,
			confidence = EXCLUDED.confidence,
			score = EXCLUDED.score,
			created_at = EXCLUDED.created_at
	`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.SessionID, a.Mode,
		a.SkinTone, a.Texture, a.Elasticity, a.Hydration,
		a.Expression, a.Emoji, a.Confidence, a.Score, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	return nil
}

// Delete removes an analysis from the database
func (r *AnalysisRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, "DELETE FROM analyses WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete analysis: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if count == 0 {
		return database.ErrNotFound
	}
	return nil
}
