package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tournament-client/apiclient"
	"github.com/Dosada05/tournament-client/models"
	"github.com/Dosada05/tournament-client/storage"
	"github.com/Dosada05/tournament-client/voting"
)

type votingFixture struct {
	svc      VotingService
	remote   *fakeRemote
	store    *storage.MemoryStore
	observer *fakeObserver
}

func newVotingFixture(stage string) votingFixture {
	remote := newFakeRemote(models.Tournament{ID: 9, Name: "Осенний турнир", RawStatus: stage, UserRole: strPtr("SPECTATOR")})
	remote.roster[models.RoleSpectator] = []models.RosterEntry{
		{ID: 20, Email: "Fan@Example.com", TicketSeats: intPtr(2), BookingCode: "BK-1"},
		{ID: 21, Email: "noseat@example.com", TicketSeats: intPtr(0), BookingCode: "BK-2"},
	}
	remote.roster[models.RoleParticipant] = []models.RosterEntry{
		{ID: 1, Name: "Артур", SecondName: "Пендрагон"},
		{ID: 2, Name: "Ланселот"},
	}
	store := storage.NewMemoryStore()
	obs := &fakeObserver{}
	svc := NewVotingService(NewCatalog(remote, time.Minute), remote, voting.NewGuard(store), obs, discardLogger())
	return votingFixture{svc: svc, remote: remote, store: store, observer: obs}
}

func TestVotingPage(t *testing.T) {
	f := newVotingFixture("ACTIVE")

	view, err := f.svc.VotingPage(context.Background(), spectatorViewer, 9)
	require.NoError(t, err)
	assert.Equal(t, voting.EligibleUnvoted, view.Status.State)
	assert.Empty(t, view.Reason)
	assert.Equal(t, []models.VoteCandidate{{ID: 1, FullName: "Артур Пендрагон"}, {ID: 2, FullName: "Ланселот"}}, view.Candidates)
}

func TestVotingPage_NotEligible(t *testing.T) {
	f := newVotingFixture("ACTIVE")
	ctx := context.Background()

	view, err := f.svc.VotingPage(ctx, models.Viewer{Token: "t", Identity: "noseat@example.com"}, 9)
	require.NoError(t, err)
	assert.Equal(t, voting.NotEligible, view.Status.State)
	assert.Equal(t, "your ticket has no booked seats", view.Reason)

	view, err = f.svc.VotingPage(ctx, models.Viewer{Token: "t", Identity: "stranger@example.com"}, 9)
	require.NoError(t, err)
	assert.Equal(t, voting.NotEligible, view.Status.State)

	f = newVotingFixture("TICKET_SALES")
	view, err = f.svc.VotingPage(ctx, spectatorViewer, 9)
	require.NoError(t, err)
	assert.Equal(t, voting.NotEligible, view.Status.State)
	assert.Equal(t, "voting opens once the tournament is running", view.Reason)
}

func TestVote_AcceptedThenShortCircuits(t *testing.T) {
	f := newVotingFixture("ACTIVE")
	ctx := context.Background()

	out, err := f.svc.Vote(ctx, spectatorViewer, 9, 2)
	require.NoError(t, err)
	assert.True(t, out.Accepted)
	assert.Equal(t, voting.Voted, out.State)
	assert.Equal(t, int64(2), out.VotedFor)

	out, err = f.svc.Vote(ctx, spectatorViewer, 9, 1)
	require.NoError(t, err)
	assert.False(t, out.Accepted)
	assert.Equal(t, voting.NoticeAlreadyVoted, out.Notice)
	assert.Equal(t, int64(2), out.VotedFor)

	assert.Equal(t, []string{"vote"}, f.remote.callLog())
	assert.Equal(t, []string{"accepted", "already_voted"}, f.observer.outcomes)
}

func TestVote_UnknownCandidate(t *testing.T) {
	f := newVotingFixture("ACTIVE")

	_, err := f.svc.Vote(context.Background(), spectatorViewer, 9, 42)
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Empty(t, f.remote.callLog())
}

func TestVote_NotEligible(t *testing.T) {
	f := newVotingFixture("ACTIVE")

	_, err := f.svc.Vote(context.Background(), models.Viewer{Token: "t", Identity: "noseat@example.com"}, 9, 1)
	var denial *DenialError
	require.ErrorAs(t, err, &denial)
	assert.Equal(t, "vote", denial.Action)
	assert.Empty(t, f.remote.callLog())
}

func TestVote_RemoteRejectionWithoutMarker(t *testing.T) {
	f := newVotingFixture("ACTIVE")
	f.remote.voteErr = &apiclient.APIError{Op: "submit_vote", StatusCode: 400}

	out, err := f.svc.Vote(context.Background(), spectatorViewer, 9, 1)
	require.NoError(t, err)
	assert.Equal(t, voting.EligibleUnvoted, out.State)
	assert.Equal(t, voting.NoticeUnavailable, out.Notice)
}

func TestVote_RemoteFailure(t *testing.T) {
	f := newVotingFixture("ACTIVE")
	f.remote.voteErr = &apiclient.APIError{Op: "submit_vote", StatusCode: 500}

	out, err := f.svc.Vote(context.Background(), spectatorViewer, 9, 1)
	require.NoError(t, err)
	assert.Equal(t, voting.EligibleUnvoted, out.State)
	assert.Equal(t, voting.NoticeServiceIssue, out.Notice)
	assert.Equal(t, []string{"service_issue"}, f.observer.outcomes)
}

func TestVotingPage_RosterFailureKeepsStoredVote(t *testing.T) {
	f := newVotingFixture("ACTIVE")
	ctx := context.Background()
	require.NoError(t, f.store.PutVote(ctx, models.VoteMarker{TournamentID: 9, Voter: spectatorViewer.Identity, VotedForID: 2}))
	f.remote.rosterErr[models.RoleSpectator] = errors.New("boom")
	f.remote.rosterErr[models.RoleParticipant] = errors.New("boom")

	view, err := f.svc.VotingPage(ctx, spectatorViewer, 9)
	require.NoError(t, err)
	assert.Equal(t, voting.Voted, view.Status.State)
	assert.Equal(t, int64(2), view.Status.VotedFor)
	assert.Empty(t, view.Candidates)

	out, err := f.svc.Vote(ctx, spectatorViewer, 9, 1)
	require.NoError(t, err)
	assert.Equal(t, voting.Voted, out.State)
	assert.Equal(t, voting.NoticeAlreadyVoted, out.Notice)
	assert.Empty(t, f.remote.callLog())
}

func TestVotingPage_SpectatorListFailureMeansNoTicket(t *testing.T) {
	f := newVotingFixture("ACTIVE")
	f.remote.rosterErr[models.RoleSpectator] = errors.New("boom")

	view, err := f.svc.VotingPage(context.Background(), spectatorViewer, 9)
	require.NoError(t, err)
	assert.Equal(t, voting.NotEligible, view.Status.State)
	assert.Equal(t, "voting is only for spectators with a confirmed ticket", view.Reason)
	assert.Len(t, view.Candidates, 2)
}

func TestVote_ParticipantListFailureLeavesCandidateToServer(t *testing.T) {
	f := newVotingFixture("ACTIVE")
	f.remote.rosterErr[models.RoleParticipant] = errors.New("boom")

	out, err := f.svc.Vote(context.Background(), spectatorViewer, 9, 2)
	require.NoError(t, err)
	assert.True(t, out.Accepted)
	assert.Equal(t, []string{"vote"}, f.remote.callLog())
}

func TestVotingPage_AuthFailureSurfaces(t *testing.T) {
	f := newVotingFixture("ACTIVE")
	f.remote.rosterErr[models.RoleSpectator] = &apiclient.APIError{Op: "list_participants", StatusCode: 401}

	_, err := f.svc.VotingPage(context.Background(), spectatorViewer, 9)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}
