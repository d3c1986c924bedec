package services

import (
	"context"
	"time"

	"github.com/Dosada05/tournament-client/models"
)

// RemoteAPI is the subset of the tournament backend the services depend on.
// *apiclient.Client satisfies it.
type RemoteAPI interface {
	ListTournaments(ctx context.Context, token string) ([]models.Tournament, error)
	ListParticipantsByRole(ctx context.Context, token string, tournamentID int64, role models.Role) ([]models.RosterEntry, error)

	GetBracket(ctx context.Context, token string, tournamentID int64) (*models.Bracket, error)
	GenerateBracket(ctx context.Context, token string, tournamentID int64) (*models.Bracket, error)
	UpdateMatchSchedule(ctx context.Context, token, matchID string, at time.Time) error
	RecordMatchResult(ctx context.Context, token, matchID, winnerID, comment string) error
	CompleteTournament(ctx context.Context, token string, tournamentID int64) (string, error)

	CreateSponsorship(ctx context.Context, token string, tournamentID int64, req models.SponsorshipRequest) error
	CreateApplication(ctx context.Context, token string, req models.ApplicationRequest) error
	ListApplications(ctx context.Context, token string, tournamentID int64) ([]models.ApplicationSummary, error)
	UpdateApplicationStatus(ctx context.Context, token string, applicationID int64, review models.ApplicationReview) error
	BookTicket(ctx context.Context, token string, tournamentID int64, req models.TicketRequest) error
	SubmitVote(ctx context.Context, token string, tournamentID, candidateID int64) error
}

// Publisher pushes live events to websocket rooms. *brackets.Hub satisfies it.
type Publisher interface {
	Publish(tournamentID int64, eventType string, payload interface{})
}

// Observer receives service level events. metrics.Recorder satisfies it.
type Observer interface {
	GateDenied(action string)
	VoteOutcome(outcome string)
	CacheEvicted(n int)
}

type nopObserver struct{}

func (nopObserver) GateDenied(string)  {}
func (nopObserver) VoteOutcome(string) {}
func (nopObserver) CacheEvicted(int)   {}

type nopPublisher struct{}

func (nopPublisher) Publish(int64, string, interface{}) {}
