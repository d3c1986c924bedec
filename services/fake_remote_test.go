package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Dosada05/tournament-client/apiclient"
	"github.com/Dosada05/tournament-client/models"
)

// fakeRemote is an in-memory RemoteAPI. Writes are logged in calls in the
// order they were issued.
type fakeRemote struct {
	mu sync.Mutex

	tournaments []models.Tournament
	listErr     error
	listCalls   int

	roster    map[models.Role][]models.RosterEntry
	rosterErr map[models.Role]error

	bracket       *models.Bracket
	bracketErr    error
	generated     *models.Bracket
	generateCalls int

	scheduleErr error
	resultErr   error
	completeMsg string
	completeErr error
	writeErr    error
	voteErr     error

	applications    []models.ApplicationSummary
	applicationsErr error
	reviews         map[int64]models.ApplicationReview
	reviewErr       error

	calls []string
}

func newFakeRemote(ts ...models.Tournament) *fakeRemote {
	return &fakeRemote{
		tournaments: ts,
		roster:      make(map[models.Role][]models.RosterEntry),
		rosterErr:   make(map[models.Role]error),
	}
}

func (f *fakeRemote) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeRemote) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeRemote) ListTournaments(_ context.Context, _ string) ([]models.Tournament, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Tournament(nil), f.tournaments...), nil
}

func (f *fakeRemote) ListParticipantsByRole(_ context.Context, _ string, _ int64, role models.Role) ([]models.RosterEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.rosterErr[role]; err != nil {
		return nil, err
	}
	return f.roster[role], nil
}

func (f *fakeRemote) GetBracket(_ context.Context, _ string, _ int64) (*models.Bracket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bracketErr != nil {
		return nil, f.bracketErr
	}
	if f.bracket == nil {
		return nil, apiclient.ErrNoBracket
	}
	cp := *f.bracket
	cp.Matches = append([]models.Match(nil), f.bracket.Matches...)
	return &cp, nil
}

func (f *fakeRemote) GenerateBracket(_ context.Context, _ string, _ int64) (*models.Bracket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generateCalls++
	f.record("generate")
	f.bracket = f.generated
	return f.generated, nil
}

func (f *fakeRemote) UpdateMatchSchedule(_ context.Context, _ string, matchID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("schedule:" + matchID)
	if f.scheduleErr != nil {
		return f.scheduleErr
	}
	f.updateMatch(matchID, func(m *models.Match) { m.ScheduledTime = &at })
	return nil
}

func (f *fakeRemote) RecordMatchResult(_ context.Context, _ string, matchID, winnerID, comment string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("result:" + matchID + ":" + winnerID)
	if f.resultErr != nil {
		return f.resultErr
	}
	f.updateMatch(matchID, func(m *models.Match) {
		m.WinnerID = winnerID
		m.Comment = comment
	})
	return nil
}

func (f *fakeRemote) updateMatch(matchID string, fn func(m *models.Match)) {
	if f.bracket == nil {
		return
	}
	for i := range f.bracket.Matches {
		if f.bracket.Matches[i].ID == matchID {
			fn(&f.bracket.Matches[i])
		}
	}
}

func (f *fakeRemote) CompleteTournament(_ context.Context, _ string, tournamentID int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("complete")
	if f.completeErr != nil {
		return "", f.completeErr
	}
	return f.completeMsg, nil
}

func (f *fakeRemote) CreateSponsorship(_ context.Context, _ string, _ int64, req models.SponsorshipRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("sponsor:" + string(req.PackageType))
	return f.writeErr
}

func (f *fakeRemote) CreateApplication(_ context.Context, _ string, _ models.ApplicationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("apply")
	return f.writeErr
}

func (f *fakeRemote) ListApplications(_ context.Context, _ string, _ int64) ([]models.ApplicationSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.applicationsErr != nil {
		return nil, f.applicationsErr
	}
	return append([]models.ApplicationSummary(nil), f.applications...), nil
}

func (f *fakeRemote) UpdateApplicationStatus(_ context.Context, _ string, applicationID int64, review models.ApplicationReview) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("review:%d:%s", applicationID, review.Status))
	if f.reviewErr != nil {
		return f.reviewErr
	}
	if f.reviews == nil {
		f.reviews = make(map[int64]models.ApplicationReview)
	}
	f.reviews[applicationID] = review
	return nil
}

func (f *fakeRemote) BookTicket(_ context.Context, _ string, _ int64, _ models.TicketRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ticket")
	return f.writeErr
}

func (f *fakeRemote) SubmitVote(_ context.Context, _ string, _, _ int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("vote")
	return f.voteErr
}

type published struct {
	tournamentID int64
	eventType    string
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *fakePublisher) Publish(tournamentID int64, eventType string, _ interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{tournamentID, eventType})
}

type fakeObserver struct {
	mu       sync.Mutex
	denied   []string
	outcomes []string
}

func (o *fakeObserver) GateDenied(action string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.denied = append(o.denied, action)
}

func (o *fakeObserver) VoteOutcome(outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

func (o *fakeObserver) CacheEvicted(int) {}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }
