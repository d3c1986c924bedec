package voting

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tournament-client/models"
)

type fakeStore struct {
	mu      sync.Mutex
	markers map[string]models.VoteMarker
	failPut error
}

func newFakeStore() *fakeStore {
	return &fakeStore{markers: make(map[string]models.VoteMarker)}
}

func key(tid int64, voter string) string {
	return fmt.Sprintf("%d:%s", tid, voter)
}

func (s *fakeStore) GetVote(_ context.Context, tid int64, voter string) (*models.VoteMarker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.markers[key(tid, voter)]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (s *fakeStore) PutVote(_ context.Context, m models.VoteMarker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPut != nil {
		return s.failPut
	}
	if _, ok := s.markers[key(m.TournamentID, m.Voter)]; ok {
		return ErrMarkerExists
	}
	s.markers[key(m.TournamentID, m.Voter)] = m
	return nil
}

type statusErr struct{ code int }

func (e statusErr) Error() string  { return "remote failed" }
func (e statusErr) Rejected() bool { return e.code >= 400 && e.code < 500 }

func spectator(seats int, code string) *models.RosterEntry {
	return &models.RosterEntry{ID: 1, Email: "fan@example.com", Role: models.RoleSpectator, TicketSeats: &seats, BookingCode: code}
}

func TestIsEligible(t *testing.T) {
	assert.True(t, IsEligible(models.StageInProgress, spectator(2, "ABC")))
	assert.False(t, IsEligible(models.StageInProgress, spectator(2, "")))
	assert.False(t, IsEligible(models.StageInProgress, spectator(2, "   ")))
	assert.False(t, IsEligible(models.StageInProgress, spectator(0, "ABC")))
	assert.False(t, IsEligible(models.StageInProgress, &models.RosterEntry{BookingCode: "ABC"}))
	assert.False(t, IsEligible(models.StageInProgress, nil))
	assert.False(t, IsEligible(models.StageCompleted, spectator(2, "ABC")))
	assert.False(t, IsEligible(models.StageTicketSales, spectator(2, "ABC")))
}

func TestGuard_State(t *testing.T) {
	ctx := context.Background()
	g := NewGuard(newFakeStore())

	st, err := g.State(ctx, 1, "fan@example.com", models.StageInProgress, spectator(2, "ABC"))
	require.NoError(t, err)
	assert.Equal(t, EligibleUnvoted, st.State)

	st, err = g.State(ctx, 1, "fan@example.com", models.StageInProgress, spectator(2, ""))
	require.NoError(t, err)
	assert.Equal(t, NotEligible, st.State)
}

func TestGuard_SubmitThenShortCircuit(t *testing.T) {
	ctx := context.Background()
	g := NewGuard(newFakeStore())
	req := SubmitRequest{TournamentID: 1, Voter: "fan@example.com", CandidateID: 42, Stage: models.StageInProgress, Entry: spectator(2, "ABC")}

	calls := 0
	remote := func(context.Context) error { calls++; return nil }

	out, err := g.Submit(ctx, req, remote)
	require.NoError(t, err)
	assert.True(t, out.Accepted)
	assert.Equal(t, Voted, out.State)
	assert.Equal(t, int64(42), out.VotedFor)

	req.CandidateID = 7
	out, err = g.Submit(ctx, req, remote)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.False(t, out.Accepted)
	assert.Equal(t, Voted, out.State)
	assert.Equal(t, int64(42), out.VotedFor)
	assert.Equal(t, NoticeAlreadyVoted, out.Notice)

	st, err := g.State(ctx, 1, "fan@example.com", models.StageCompleted, nil)
	require.NoError(t, err)
	assert.Equal(t, Voted, st.State)
}

func TestGuard_RemoteRejection(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	g := NewGuard(store)
	req := SubmitRequest{TournamentID: 3, Voter: "fan@example.com", CandidateID: 5, Stage: models.StageInProgress, Entry: spectator(1, "Q1")}

	out, err := g.Submit(ctx, req, func(context.Context) error { return statusErr{code: 400} })
	require.NoError(t, err)
	assert.Equal(t, EligibleUnvoted, out.State)
	assert.Equal(t, NoticeUnavailable, out.Notice)

	out, err = g.Submit(ctx, req, func(context.Context) error { return statusErr{code: 500} })
	require.NoError(t, err)
	assert.Equal(t, EligibleUnvoted, out.State)
	assert.Equal(t, NoticeServiceIssue, out.Notice)

	out, err = g.Submit(ctx, req, func(context.Context) error { return errors.New("connection reset") })
	require.NoError(t, err)
	assert.Equal(t, NoticeServiceIssue, out.Notice)

	// a marker written by a concurrent submission turns the rejection benign
	remote := func(ctx context.Context) error {
		require.NoError(t, store.PutVote(ctx, models.VoteMarker{TournamentID: 3, Voter: "fan@example.com", VotedForID: 9}))
		return statusErr{code: 400}
	}
	out, err = g.Submit(ctx, req, remote)
	require.NoError(t, err)
	assert.Equal(t, Voted, out.State)
	assert.Equal(t, int64(9), out.VotedFor)
	assert.Equal(t, NoticeAlreadyVoted, out.Notice)
}

func TestGuard_SubmitNotEligible(t *testing.T) {
	g := NewGuard(newFakeStore())
	called := false
	req := SubmitRequest{TournamentID: 1, Voter: "x@example.com", CandidateID: 1, Stage: models.StageInProgress, Entry: spectator(3, "")}

	out, err := g.Submit(context.Background(), req, func(context.Context) error { called = true; return nil })
	assert.ErrorIs(t, err, ErrNotEligible)
	assert.Equal(t, NotEligible, out.State)
	assert.False(t, called)

	_, err = g.Submit(context.Background(), SubmitRequest{TournamentID: 1}, nil)
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestGuard_MarkerWriteFailure(t *testing.T) {
	store := newFakeStore()
	store.failPut = errors.New("disk full")
	g := NewGuard(store)
	req := SubmitRequest{TournamentID: 1, Voter: "fan@example.com", CandidateID: 4, Stage: models.StageInProgress, Entry: spectator(1, "Z")}

	out, err := g.Submit(context.Background(), req, func(context.Context) error { return nil })
	require.Error(t, err)
	assert.True(t, out.Accepted)
	assert.Equal(t, Voted, out.State)
}
