package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/tournament-client/models"
	"github.com/Dosada05/tournament-client/utils"
	"github.com/Dosada05/tournament-client/voting"
)

// VoteMarkerRepository хранит отметки о голосовании в PostgreSQL.
// Вместо email хранится только хеш идентичности.
type VoteMarkerRepository struct {
	db SQLExecutor
}

func NewPostgresVoteMarkerRepository(db SQLExecutor) *VoteMarkerRepository {
	return &VoteMarkerRepository{db: db}
}

func (r *VoteMarkerRepository) GetVote(ctx context.Context, tournamentID int64, voter string) (*models.VoteMarker, error) {
	query := `
		SELECT tournament_id, voter_hash, voted_for_id, cast_at
		FROM vote_markers
		WHERE tournament_id = $1 AND voter_hash = $2`

	var m models.VoteMarker
	err := r.db.QueryRowContext(ctx, query, tournamentID, utils.HashIdentity(voter)).
		Scan(&m.TournamentID, &m.Voter, &m.VotedForID, &m.CastAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load vote marker: %w", err)
	}
	return &m, nil
}

// PutVote inserts the marker; a second marker for the same key is rejected
// by the primary key and reported as voting.ErrMarkerExists.
func (r *VoteMarkerRepository) PutVote(ctx context.Context, marker models.VoteMarker) error {
	query := `
		INSERT INTO vote_markers (tournament_id, voter_hash, voted_for_id, cast_at)
		VALUES ($1, $2, $3, $4)`

	castAt := marker.CastAt
	if castAt.IsZero() {
		castAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, query, marker.TournamentID, utils.HashIdentity(marker.Voter), marker.VotedForID, castAt)
	if err != nil {
		if isUniqueViolation(err, "vote_markers_pkey") {
			return voting.ErrMarkerExists
		}
		return fmt.Errorf("failed to insert vote marker: %w", err)
	}
	return nil
}
