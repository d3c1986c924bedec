package models

import "time"

// VoteMarker is the locally persisted record of an accepted audience vote.
// At most one marker exists per (TournamentID, Voter).
type VoteMarker struct {
	TournamentID int64     `json:"tournament_id"`
	Voter        string    `json:"voter"`
	VotedForID   int64     `json:"voted_for_id"`
	CastAt       time.Time `json:"cast_at"`
}

// VoteCandidate is a participant the audience can vote for.
type VoteCandidate struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
}
