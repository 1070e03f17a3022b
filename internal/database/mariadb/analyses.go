package mariadb

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

// AnalysisRepository stores analyses in MariaDB.
type AnalysisRepository struct {
	pool *Pool
}

func NewAnalysisRepository(pool *Pool) *AnalysisRepository {
	return &AnalysisRepository{pool: pool}
}

func (r *AnalysisRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanAnalysis(scanner interface{ Scan(...any) error }) (database.StoredAnalysis, error) {
	var a database.StoredAnalysis
	err := scanner.Scan(&a.ID, &a.SessionID, &a.Mode, &a.SkinTone, &a.Texture, &a.Elasticity,
		&a.Hydration, &a.Expression, &a.Emoji, &a.Confidence, &a.Score, &a.CreatedAt)
	return a, err
}

func (r *AnalysisRepository) Get(ctx context.Context, id string) (*database.StoredAnalysis, error) {
	row := r.pool.db.QueryRowContext(ctx, `SELECT `+analysisColumns+` FROM analyses WHERE id = ?`, id)
	a, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis: %w", err)
	}
	return &a, nil
}

func (r *AnalysisRepository) List(ctx context.Context, limit int) ([]database.StoredAnalysis, error) {
	if limit <= 0 {
		limit = constants.DefaultAnalysesLimit
	}
	rows, err := r.pool.db.QueryContext(ctx,
		`SELECT `+analysisColumns+` FROM analyses ORDER BY created_at DESC, id LIMIT ?`, limit)
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

func (r *AnalysisRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM analyses").Scan(&count); err != nil {
		return 0, fmt.Errorf("count analyses: %w", err)
	}
	return count, nil
}

// Save upserts an analysis. MariaDB reports 0 affected rows for unchanged data, so the result is not checked.
func (r *AnalysisRepository) Save(ctx context.Context, a *database.StoredAnalysis) error {
	query := `
		INSERT INTO analyses (` + analysisColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			session_id = VALUES(session_id),
			mode = VALUES(mode),
			skin_tone = VALUES(skin_tone),
			texture = VALUES(texture),
			elasticity = VALUES(elasticity),
			hydration = VALUES(hydration),
			expression = VALUES(expression),
			emoji = VALUES(emoji),
			confidence = VALUES(confidence),
			score = VALUES(score),
			created_at = VALUES(created_at)
	`
	_, err := r.pool.db.ExecContext(ctx, query,
		a.ID, a.SessionID, a.Mode,
		a.SkinTone, a.Texture, a.Elasticity, a.Hydration,
		a.Expression, a.Emoji, a.Confidence, a.Score, a.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	return nil
}

func (r *AnalysisRepository) Delete(ctx context.Context, id string) error {
	// Verify the analysis exists first (RowsAffected is unreliable for no-op writes)
	var exists int
	err := r.pool.db.QueryRowContext(ctx, `SELECT 1 FROM analyses WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return database.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check analysis: %w", err)
	}

	if _, err := r.pool.db.ExecContext(ctx, `DELETE FROM analyses WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete analysis: %w", err)
	}
	return nil
}
