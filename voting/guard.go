// Package voting tracks a spectator's audience vote for one tournament.
//
// The remote service cannot reliably say whether a viewer has already voted,
// so the guard keeps a durable local marker per (tournament, voter). The
// marker only suppresses duplicate submissions; it is never a vote tally.
package voting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/tournament-client/models"
)

type State string

const (
	NotEligible     State = "NOT_ELIGIBLE"
	EligibleUnvoted State = "ELIGIBLE_UNVOTED"
	Voted           State = "VOTED"
)

// Notices shown next to a non-terminal submission outcome.
const (
	NoticeAlreadyVoted = "you have already voted"
	NoticeUnavailable  = "voting temporarily unavailable"
	NoticeServiceIssue = "the voting service is having trouble, your vote may not have been sent"
)

var (
	ErrNotEligible   = errors.New("viewer is not eligible to vote")
	ErrInvalidTarget = errors.New("vote target is required")
)

// MarkerStore persists vote markers. PutVote must not overwrite an existing
// marker; it returns ErrMarkerExists when one is already stored.
type MarkerStore interface {
	GetVote(ctx context.Context, tournamentID int64, voter string) (*models.VoteMarker, error)
	PutVote(ctx context.Context, marker models.VoteMarker) error
}

var ErrMarkerExists = errors.New("vote marker already exists")

// rejection is implemented by remote errors that carry a client-side (4xx) status.
type rejection interface {
	Rejected() bool
}

// IsEligible reports whether a roster entry may vote at the given stage: the
// tournament is running and the spectator holds seats with a booking code.
func IsEligible(stage models.Stage, entry *models.RosterEntry) bool {
	if stage != models.StageInProgress || entry == nil {
		return false
	}
	return entry.Seats() > 0 && strings.TrimSpace(entry.BookingCode) != ""
}

// Status is the guard state for one viewer.
type Status struct {
	State    State `json:"state"`
	VotedFor int64 `json:"voted_for,omitempty"`
}

type Guard struct {
	store MarkerStore
	now   func() time.Time
}

func NewGuard(store MarkerStore) *Guard {
	return &Guard{store: store, now: time.Now}
}

// State resolves the viewer's voting state. A stored marker is terminal and
// wins over eligibility.
func (g *Guard) State(ctx context.Context, tournamentID int64, voter string, stage models.Stage, entry *models.RosterEntry) (Status, error) {
	marker, err := g.store.GetVote(ctx, tournamentID, voter)
	if err != nil {
		return Status{}, fmt.Errorf("voting: load marker: %w", err)
	}
	if marker != nil {
		return Status{State: Voted, VotedFor: marker.VotedForID}, nil
	}
	if !IsEligible(stage, entry) {
		return Status{State: NotEligible}, nil
	}
	return Status{State: EligibleUnvoted}, nil
}

type SubmitRequest struct {
	TournamentID int64
	Voter        string
	CandidateID  int64
	Stage        models.Stage
	Entry        *models.RosterEntry
}

// Outcome is the result of a submission. Notice is set when the state did not
// advance or when the terminal state was reached through a rejection.
type Outcome struct {
	Status
	Notice   string `json:"notice,omitempty"`
	Accepted bool   `json:"accepted"`
}

// Submit sends a vote through remote unless a marker already exists. Remote
// failures never escalate to an error: they come back as an Outcome with a
// notice and the state left at ELIGIBLE_UNVOTED. Only marker store failures
// and an ineligible viewer return an error.
func (g *Guard) Submit(ctx context.Context, req SubmitRequest, remote func(ctx context.Context) error) (Outcome, error) {
	if req.CandidateID <= 0 {
		return Outcome{}, ErrInvalidTarget
	}

	st, err := g.State(ctx, req.TournamentID, req.Voter, req.Stage, req.Entry)
	if err != nil {
		return Outcome{}, err
	}
	switch st.State {
	case Voted:
		return Outcome{Status: st, Notice: NoticeAlreadyVoted}, nil
	case NotEligible:
		return Outcome{Status: st}, ErrNotEligible
	}

	if rerr := remote(ctx); rerr != nil {
		return g.resolveRejection(ctx, req, rerr)
	}

	marker := models.VoteMarker{
		TournamentID: req.TournamentID,
		Voter:        req.Voter,
		VotedForID:   req.CandidateID,
		CastAt:       g.now().UTC(),
	}
	if err := g.store.PutVote(ctx, marker); err != nil {
		if errors.Is(err, ErrMarkerExists) {
			return g.alreadyVoted(ctx, req)
		}
		// голос принят сервером, теряется только локальная отметка
		return Outcome{Status: Status{State: Voted, VotedFor: req.CandidateID}, Accepted: true},
			fmt.Errorf("voting: store marker: %w", err)
	}
	return Outcome{Status: Status{State: Voted, VotedFor: req.CandidateID}, Accepted: true}, nil
}

func (g *Guard) resolveRejection(ctx context.Context, req SubmitRequest, rerr error) (Outcome, error) {
	var rej rejection
	if !errors.As(rerr, &rej) || !rej.Rejected() {
		return Outcome{Status: Status{State: EligibleUnvoted}, Notice: NoticeServiceIssue}, nil
	}
	// повторное чтение: отметка могла появиться из параллельной отправки
	marker, err := g.store.GetVote(ctx, req.TournamentID, req.Voter)
	if err != nil {
		return Outcome{}, fmt.Errorf("voting: load marker: %w", err)
	}
	if marker != nil {
		return Outcome{Status: Status{State: Voted, VotedFor: marker.VotedForID}, Notice: NoticeAlreadyVoted}, nil
	}
	return Outcome{Status: Status{State: EligibleUnvoted}, Notice: NoticeUnavailable}, nil
}

func (g *Guard) alreadyVoted(ctx context.Context, req SubmitRequest) (Outcome, error) {
	marker, err := g.store.GetVote(ctx, req.TournamentID, req.Voter)
	if err != nil || marker == nil {
		return Outcome{Status: Status{State: Voted, VotedFor: req.CandidateID}, Accepted: true}, nil
	}
	return Outcome{Status: Status{State: Voted, VotedFor: marker.VotedForID}, Notice: NoticeAlreadyVoted}, nil
}
