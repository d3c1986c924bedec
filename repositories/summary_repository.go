package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type SummaryRepository struct {
	db SQLExecutor
}

func NewPostgresSummaryRepository(db SQLExecutor) *SummaryRepository {
	return &SummaryRepository{db: db}
}

func (r *SummaryRepository) GetSummary(ctx context.Context, tournamentID int64) (string, bool, error) {
	var text string
	err := r.db.QueryRowContext(ctx,
		`SELECT summary FROM completion_summaries WHERE tournament_id = $1`, tournamentID).Scan(&text)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to load completion summary: %w", err)
	}
	return text, true, nil
}

// PutSummary keeps only the latest summary of a tournament.
func (r *SummaryRepository) PutSummary(ctx context.Context, tournamentID int64, text string) error {
	query := `
		INSERT INTO completion_summaries (tournament_id, summary, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (tournament_id) DO UPDATE SET summary = EXCLUDED.summary, updated_at = now()`

	if _, err := r.db.ExecContext(ctx, query, tournamentID, text); err != nil {
		return fmt.Errorf("failed to save completion summary: %w", err)
	}
	return nil
}
