// Package storage holds the two pieces of local state the client keeps:
// completion summaries per tournament and audience vote markers.
package storage

import (
	"context"

	"github.com/Dosada05/tournament-client/voting"
)

// SummaryStore keeps the last completion summary text of a tournament.
type SummaryStore interface {
	GetSummary(ctx context.Context, tournamentID int64) (text string, ok bool, err error)
	PutSummary(ctx context.Context, tournamentID int64, text string) error
}

// StateStore is everything the services persist locally.
type StateStore interface {
	voting.MarkerStore
	SummaryStore
}
