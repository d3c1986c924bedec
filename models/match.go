package models

import "time"

// MatchState is derived from match data on every read and never stored.
type MatchState string

const (
	MatchPending    MatchState = "PENDING"
	MatchScheduled  MatchState = "SCHEDULED"
	MatchInProgress MatchState = "IN_PROGRESS"
	MatchCompleted  MatchState = "COMPLETED"
)

// Round identifiers used by the remote bracket.
const (
	RoundOf16    = "ROUND_OF_16"
	RoundOf8     = "ROUND_OF_8"
	RoundQuarter = "QUARTERFINAL"
	RoundSemi    = "SEMIFINAL"
	RoundBronze  = "BRONZE"
	RoundFinal   = "FINAL"
	RoundUnknown = "UNKNOWN"
)

type Competitor struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Match is one bracket node. ID is stable across refetches.
type Match struct {
	ID            string      `json:"id"`
	Round         string      `json:"round"`
	RoundName     string      `json:"round_name,omitempty"`
	CompetitorA   *Competitor `json:"competitor_a,omitempty"`
	CompetitorB   *Competitor `json:"competitor_b,omitempty"`
	ScheduledTime *time.Time  `json:"scheduled_time,omitempty"`
	WinnerID      string      `json:"winner_id,omitempty"`
	Comment       string      `json:"comment,omitempty"`
	NextMatchID   string      `json:"next_match_id,omitempty"`
}

// Playable reports whether both competitors are assigned.
func (m Match) Playable() bool {
	return m.CompetitorA != nil && m.CompetitorA.ID != "" &&
		m.CompetitorB != nil && m.CompetitorB.ID != ""
}

func (m Match) HasWinner() bool {
	return m.WinnerID != ""
}

// IsCompetitor reports whether id refers to one of the assigned competitors.
func (m Match) IsCompetitor(id string) bool {
	if id == "" {
		return false
	}
	return (m.CompetitorA != nil && m.CompetitorA.ID == id) ||
		(m.CompetitorB != nil && m.CompetitorB.ID == id)
}

// Bracket is the full set of matches of a tournament.
type Bracket struct {
	TournamentID   int64     `json:"tournament_id"`
	TournamentName string    `json:"tournament_name,omitempty"`
	GeneratedAt    time.Time `json:"generated_at,omitempty"`
	Matches        []Match   `json:"matches"`
}
