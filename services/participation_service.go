package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/tournament-client/brackets"
	"github.com/Dosada05/tournament-client/gates"
	"github.com/Dosada05/tournament-client/models"
)

// ParticipationService performs the viewer-side writes: sponsorship,
// participant application and ticket booking. Every write is gated locally
// before the remote is called.
type ParticipationService interface {
	Sponsor(ctx context.Context, viewer models.Viewer, tournamentID int64, req models.SponsorshipRequest) (*TournamentView, error)
	Apply(ctx context.Context, viewer models.Viewer, tournamentID int64, req models.ApplicationRequest) (*TournamentView, error)
	BuyTicket(ctx context.Context, viewer models.Viewer, tournamentID int64, req models.TicketRequest) (*TournamentView, error)
}

type participationService struct {
	catalog   *Catalog
	remote    RemoteAPI
	publisher Publisher
	observer  Observer
	logger    *slog.Logger
}

func NewParticipationService(catalog *Catalog, remote RemoteAPI, publisher Publisher, observer Observer, logger *slog.Logger) ParticipationService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &participationService{
		catalog:   catalog,
		remote:    remote,
		publisher: publisher,
		observer:  observer,
		logger:    logger,
	}
}

func (s *participationService) Sponsor(ctx context.Context, viewer models.Viewer, tournamentID int64, req models.SponsorshipRequest) (*TournamentView, error) {
	if _, err := s.gate(ctx, viewer, tournamentID, gates.ActionSponsor); err != nil {
		return nil, err
	}

	verr := newValidationError()
	pkg, ok := models.ParseSponsorshipPackage(string(req.PackageType))
	if !ok {
		verr.add("package_type", "must be one of BRONZE, SILVER, GOLD, PLATINUM")
	}
	if strings.TrimSpace(req.CompanyName) == "" {
		verr.add("company_name", "must be provided")
	}
	if err := verr.errOrNil(); err != nil {
		return nil, err
	}
	req.PackageType = pkg

	err := s.remote.CreateSponsorship(ctx, viewer.Token, tournamentID, req)
	return s.afterWrite(ctx, viewer, tournamentID, gates.ActionSponsor, err)
}

func (s *participationService) Apply(ctx context.Context, viewer models.Viewer, tournamentID int64, req models.ApplicationRequest) (*TournamentView, error) {
	if _, err := s.gate(ctx, viewer, tournamentID, gates.ActionRegister); err != nil {
		return nil, err
	}

	verr := newValidationError()
	if strings.TrimSpace(req.FirstName) == "" {
		verr.add("first_name", "must be provided")
	}
	if strings.TrimSpace(req.LastName) == "" {
		verr.add("last_name", "must be provided")
	}
	if req.BirthDate != "" {
		if _, err := time.Parse(time.DateOnly, req.BirthDate); err != nil {
			verr.add("birth_date", "must be a date in YYYY-MM-DD format")
		}
	}
	if req.Height != nil && *req.Height <= 0 {
		verr.add("height", "must be positive")
	}
	if req.Weight != nil && *req.Weight <= 0 {
		verr.add("weight", "must be positive")
	}
	if err := verr.errOrNil(); err != nil {
		return nil, err
	}
	req.TournamentID = tournamentID

	err := s.remote.CreateApplication(ctx, viewer.Token, req)
	return s.afterWrite(ctx, viewer, tournamentID, gates.ActionRegister, err)
}

func (s *participationService) BuyTicket(ctx context.Context, viewer models.Viewer, tournamentID int64, req models.TicketRequest) (*TournamentView, error) {
	view, err := s.gate(ctx, viewer, tournamentID, gates.ActionBuyTicket)
	if err != nil {
		return nil, err
	}

	verr := newValidationError()
	if req.Seats < 1 {
		verr.add("seats", "must be at least 1")
	}
	if !req.AgreeToRules {
		verr.add("agree_to_rules", "the tournament rules must be accepted")
	}
	if err := verr.errOrNil(); err != nil {
		return nil, err
	}
	if avail := view.Tournament.AvailableSeats; avail != nil && req.Seats > *avail {
		s.observer.GateDenied(string(gates.ActionBuyTicket))
		return nil, &DenialError{
			Action: string(gates.ActionBuyTicket),
			Reason: fmt.Sprintf("only %d seats left", *avail),
		}
	}

	err = s.remote.BookTicket(ctx, viewer.Token, tournamentID, req)
	return s.afterWrite(ctx, viewer, tournamentID, gates.ActionBuyTicket, err)
}

// gate loads the tournament and returns a DenialError when action is not
// available to the viewer.
func (s *participationService) gate(ctx context.Context, viewer models.Viewer, tournamentID int64, action gates.Action) (*TournamentView, error) {
	t, err := s.catalog.Get(ctx, viewer.Token, tournamentID)
	if err != nil {
		if errors.Is(err, ErrTournamentNotFound) {
			return nil, err
		}
		return nil, classifyRemote(err, "")
	}
	view := newTournamentView(*t, viewer)
	if v := view.Actions.Get(action); !v.Allowed {
		s.observer.GateDenied(string(action))
		return nil, &DenialError{Action: string(action), Reason: v.Reason}
	}
	return &view, nil
}

// afterWrite maps the remote result and, on success, drops cached lists and
// returns the refreshed tournament.
func (s *participationService) afterWrite(ctx context.Context, viewer models.Viewer, tournamentID int64, action gates.Action, remoteErr error) (*TournamentView, error) {
	if remoteErr != nil {
		err := classifyRemote(remoteErr, string(action))
		s.logger.Warn("participation write failed",
			slog.String("action", string(action)),
			slog.Int64("tournament_id", tournamentID),
			slog.Any("error", remoteErr))
		return nil, err
	}

	s.catalog.Invalidate()
	s.publisher.Publish(tournamentID, brackets.EventTournamentChanged, map[string]string{"action": string(action)})
	s.logger.Info("participation write accepted",
		slog.String("action", string(action)),
		slog.Int64("tournament_id", tournamentID))

	t, err := s.catalog.Get(ctx, viewer.Token, tournamentID)
	if err != nil {
		// запись прошла, но обновить карточку не удалось
		s.logger.Warn("refetch after write failed", slog.Int64("tournament_id", tournamentID), slog.Any("error", err))
		return nil, nil
	}
	view := newTournamentView(*t, viewer)
	return &view, nil
}
