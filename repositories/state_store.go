package repositories

import "database/sql"

// PostgresStateStore combines the vote marker and summary repositories into
// the single local state store the services expect.
type PostgresStateStore struct {
	*VoteMarkerRepository
	*SummaryRepository
}

func NewPostgresStateStore(db *sql.DB) *PostgresStateStore {
	return &PostgresStateStore{
		VoteMarkerRepository: NewPostgresVoteMarkerRepository(db),
		SummaryRepository:    NewPostgresSummaryRepository(db),
	}
}
