package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/tournament-client/brackets"
	"github.com/Dosada05/tournament-client/models"
)

// ActionReviewApplication is the organizer's application status change.
const ActionReviewApplication = "review_application"

// ApplicationsView is the organizer's application list of one tournament.
// ApprovedKnights is nil when the participant roster could not be loaded.
type ApplicationsView struct {
	TournamentID    int64                       `json:"tournament_id"`
	Applications    []models.ApplicationSummary `json:"applications"`
	ApprovedKnights *int                        `json:"approved_knights,omitempty"`
}

// ApplicationService is the organizer side of participant applications.
type ApplicationService interface {
	ListApplications(ctx context.Context, viewer models.Viewer, tournamentID int64) (*ApplicationsView, error)
	ReviewApplication(ctx context.Context, viewer models.Viewer, tournamentID, applicationID int64, review models.ApplicationReview) (*ApplicationsView, error)
}

type applicationService struct {
	catalog   *Catalog
	remote    RemoteAPI
	publisher Publisher
	observer  Observer
	logger    *slog.Logger
}

func NewApplicationService(catalog *Catalog, remote RemoteAPI, publisher Publisher, observer Observer, logger *slog.Logger) ApplicationService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &applicationService{
		catalog:   catalog,
		remote:    remote,
		publisher: publisher,
		observer:  observer,
		logger:    logger,
	}
}

func (s *applicationService) ListApplications(ctx context.Context, viewer models.Viewer, tournamentID int64) (*ApplicationsView, error) {
	if _, err := s.requireOrganizer(ctx, viewer, tournamentID); err != nil {
		return nil, err
	}
	return s.load(ctx, viewer, tournamentID)
}

func (s *applicationService) ReviewApplication(ctx context.Context, viewer models.Viewer, tournamentID, applicationID int64, review models.ApplicationReview) (*ApplicationsView, error) {
	t, err := s.requireOrganizer(ctx, viewer, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.Stage() == models.StageCompleted {
		s.observer.GateDenied(ActionReviewApplication)
		return nil, &DenialError{Action: ActionReviewApplication, Reason: "tournament is already completed"}
	}

	verr := newValidationError()
	if applicationID <= 0 {
		verr.add("application_id", "must be positive")
	}
	status, ok := models.ParseApplicationStatus(string(review.Status))
	if !ok {
		verr.add("status", "must be one of PENDING, APPROVED, REJECTED, EDITS")
	}
	review.Comment = strings.TrimSpace(review.Comment)
	if ok && status.NeedsComment() && review.Comment == "" {
		verr.add("comment", "must be provided when rejecting or requesting edits")
	}
	if err := verr.errOrNil(); err != nil {
		return nil, err
	}
	review.Status = status

	if err := s.remote.UpdateApplicationStatus(ctx, viewer.Token, applicationID, review); err != nil {
		s.logger.Warn("application review failed",
			slog.Int64("tournament_id", tournamentID),
			slog.Int64("application_id", applicationID),
			slog.Any("error", err))
		return nil, classifyRemote(err, ActionReviewApplication)
	}

	// одобрение меняет число свободных мест рыцарей
	s.catalog.Invalidate()
	s.publisher.Publish(tournamentID, brackets.EventTournamentChanged, map[string]string{
		"action": ActionReviewApplication,
		"status": string(status),
	})
	s.logger.Info("application reviewed",
		slog.Int64("tournament_id", tournamentID),
		slog.Int64("application_id", applicationID),
		slog.String("status", string(status)))

	view, err := s.load(ctx, viewer, tournamentID)
	if err != nil {
		s.logger.Warn("refetch after review failed", slog.Int64("tournament_id", tournamentID), slog.Any("error", err))
		return nil, nil
	}
	return view, nil
}

func (s *applicationService) load(ctx context.Context, viewer models.Viewer, tournamentID int64) (*ApplicationsView, error) {
	apps, err := s.remote.ListApplications(ctx, viewer.Token, tournamentID)
	if err != nil {
		return nil, classifyRemote(err, "")
	}
	if apps == nil {
		apps = []models.ApplicationSummary{}
	}
	view := &ApplicationsView{TournamentID: tournamentID, Applications: apps}

	n, err := approvedKnights(ctx, s.remote, viewer, tournamentID)
	if err != nil {
		if isAuthError(err) {
			return nil, err
		}
		s.logger.Warn("failed to count approved knights", slog.Int64("tournament_id", tournamentID), slog.Any("error", err))
		return view, nil
	}
	view.ApprovedKnights = &n
	return view, nil
}

func (s *applicationService) requireOrganizer(ctx context.Context, viewer models.Viewer, tournamentID int64) (*models.Tournament, error) {
	t, err := s.catalog.Get(ctx, viewer.Token, tournamentID)
	if err != nil {
		if errors.Is(err, ErrTournamentNotFound) {
			return nil, err
		}
		return nil, classifyRemote(err, "")
	}
	if !isOrganizer(viewer, *t) {
		s.observer.GateDenied(ActionReviewApplication)
		return nil, fmt.Errorf("%w: only the organizer can review applications", ErrForbiddenOperation)
	}
	return t, nil
}

// approvedKnights counts approved applications on the participant roster.
// The error is already classified.
func approvedKnights(ctx context.Context, remote RemoteAPI, viewer models.Viewer, tournamentID int64) (int, error) {
	participants, err := remote.ListParticipantsByRole(ctx, viewer.Token, tournamentID, models.RoleParticipant)
	if err != nil {
		return 0, classifyRemote(err, "")
	}
	return models.CountApproved(participants), nil
}
