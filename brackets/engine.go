// Package brackets derives match states, orders bracket rounds and validates
// result recording for the elimination bracket fetched from the remote service.
package brackets

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/Dosada05/tournament-client/models"
)

var (
	ErrMatchNotPlayable    = errors.New("match does not have both competitors assigned")
	ErrWinnerNotCompetitor = errors.New("winner must be one of the match competitors")
	ErrResultLocked        = errors.New("match result is already recorded")
	ErrMatchCompleted      = errors.New("match is already completed")
	ErrInvalidSchedule     = errors.New("schedule time is required")
)

// DeriveMatchState вычисляет состояние матча на момент now.
func DeriveMatchState(m models.Match, now time.Time) models.MatchState {
	switch {
	case m.HasWinner():
		return models.MatchCompleted
	case !m.Playable():
		return models.MatchPending
	case m.ScheduledTime != nil && !m.ScheduledTime.After(now):
		return models.MatchInProgress
	}
	return models.MatchScheduled
}

// roundLadder is the canonical display order of elimination rounds.
var roundLadder = map[string]int{
	models.RoundOf16:    0,
	models.RoundOf8:     1,
	models.RoundQuarter: 2,
	models.RoundSemi:    3,
	models.RoundBronze:  4,
	models.RoundFinal:   5,
}

var roundNames = map[string]string{
	models.RoundOf16:    "1/8 финала",
	models.RoundOf8:     "1/4 финала (8)",
	models.RoundQuarter: "Четвертьфинал",
	models.RoundSemi:    "Полуфинал",
	models.RoundBronze:  "Матч за 3-е место",
	models.RoundFinal:   "Финал",
}

// NumberedMatch is a match together with its 1-based position inside its round.
type NumberedMatch struct {
	models.Match
	Number int               `json:"number"`
	State  models.MatchState `json:"state,omitempty"`
}

type RoundGroup struct {
	Round   string          `json:"round"`
	Name    string          `json:"name"`
	Matches []NumberedMatch `json:"matches"`
}

// GroupByRound groups matches by round. Rounds follow the elimination ladder,
// unknown rounds come after it in alphabetical order. Inside a round matches
// are ordered by id, so the numbering survives refetches that return matches
// in a different order.
func GroupByRound(matches []models.Match) []RoundGroup {
	byRound := make(map[string][]models.Match)
	names := make(map[string]string)
	for _, m := range matches {
		round := m.Round
		if round == "" {
			round = models.RoundUnknown
		}
		byRound[round] = append(byRound[round], m)
		if _, ok := names[round]; !ok && m.RoundName != "" {
			names[round] = m.RoundName
		}
	}

	rounds := make([]string, 0, len(byRound))
	for r := range byRound {
		rounds = append(rounds, r)
	}
	sort.Slice(rounds, func(i, j int) bool {
		ri, iKnown := roundLadder[rounds[i]]
		rj, jKnown := roundLadder[rounds[j]]
		switch {
		case iKnown && jKnown:
			return ri < rj
		case iKnown != jKnown:
			return iKnown
		}
		return rounds[i] < rounds[j]
	})

	groups := make([]RoundGroup, 0, len(rounds))
	for _, r := range rounds {
		ms := byRound[r]
		sort.SliceStable(ms, func(i, j int) bool { return lessMatchID(ms[i].ID, ms[j].ID) })

		g := RoundGroup{Round: r, Name: RoundName(r, names[r]), Matches: make([]NumberedMatch, len(ms))}
		for i, m := range ms {
			g.Matches[i] = NumberedMatch{Match: m, Number: i + 1}
		}
		groups = append(groups, g)
	}
	return groups
}

// RoundName returns the display name of a round, preferring the remote one.
func RoundName(round, remote string) string {
	if remote != "" {
		return remote
	}
	if n, ok := roundNames[round]; ok {
		return n
	}
	return round
}

// lessMatchID orders numeric ids numerically and before non-numeric ones.
func lessMatchID(a, b string) bool {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		if na != nb {
			return na < nb
		}
		return a < b // "01" и "1"
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}

// ResultPolicy controls whether an already recorded winner may be replaced.
type ResultPolicy struct {
	AllowReset bool
}

// RecordResult sets the winner of m. On error m is left untouched.
func RecordResult(m *models.Match, winnerID string, policy ResultPolicy) error {
	if !m.Playable() {
		return ErrMatchNotPlayable
	}
	if !m.IsCompetitor(winnerID) {
		return fmt.Errorf("%w: %q", ErrWinnerNotCompetitor, winnerID)
	}
	if m.HasWinner() && m.WinnerID != winnerID && !policy.AllowReset {
		return ErrResultLocked
	}
	m.WinnerID = winnerID
	return nil
}

// ScheduleMatch sets the scheduled time of m. On error m is left untouched.
func ScheduleMatch(m *models.Match, at time.Time) error {
	if at.IsZero() {
		return ErrInvalidSchedule
	}
	if m.HasWinner() {
		return ErrMatchCompleted
	}
	t := at
	m.ScheduledTime = &t
	return nil
}

type Completion struct {
	Allowed       bool `json:"allowed"`
	BlockingCount int  `json:"blocking_count"`
}

// Reason is the denial text, empty when completion is allowed.
func (c Completion) Reason() string {
	if c.Allowed {
		return ""
	}
	return fmt.Sprintf("cannot finish: %d matches unresolved", c.BlockingCount)
}

// CanCompleteTournament allows completion once every playable match has a winner.
func CanCompleteTournament(matches []models.Match) Completion {
	blocking := 0
	for _, m := range matches {
		if m.Playable() && !m.HasWinner() {
			blocking++
		}
	}
	return Completion{Allowed: blocking == 0, BlockingCount: blocking}
}
