package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/tournament-client/gates"
	"github.com/Dosada05/tournament-client/models"
	"github.com/Dosada05/tournament-client/storage"
)

// TournamentView is a tournament decorated with everything the viewer needs
// to decide what to show: the normalized stage, their role and the gated actions.
type TournamentView struct {
	Tournament      models.Tournament `json:"tournament"`
	Stage           models.Stage      `json:"stage"`
	ViewerRole      models.Role       `json:"viewer_role,omitempty"`
	FundingRatio    float64           `json:"funding_ratio"`
	FundingProgress float64           `json:"funding_progress"`
	Actions         gates.ActionSet   `json:"actions"`

	CompletionSummary string `json:"completion_summary,omitempty"`
	AudienceChoice    string `json:"audience_choice,omitempty"`
}

func newTournamentView(t models.Tournament, viewer models.Viewer) TournamentView {
	return TournamentView{
		Tournament:      t,
		Stage:           t.Stage(),
		ViewerRole:      t.ViewerRole(),
		FundingRatio:    t.FundingRatio(),
		FundingProgress: t.FundingProgress(),
		Actions:         gates.Evaluate(t, viewer.Organizer),
	}
}

type TournamentService interface {
	ListTournaments(ctx context.Context, viewer models.Viewer) ([]TournamentView, error)
	GetTournament(ctx context.Context, viewer models.Viewer, id int64) (*TournamentView, error)
	GetRoster(ctx context.Context, viewer models.Viewer, id int64) (*models.Roster, error)
}

type tournamentService struct {
	catalog   *Catalog
	remote    RemoteAPI
	summaries storage.SummaryStore
	logger    *slog.Logger
}

func NewTournamentService(catalog *Catalog, remote RemoteAPI, summaries storage.SummaryStore, logger *slog.Logger) TournamentService {
	return &tournamentService{
		catalog:   catalog,
		remote:    remote,
		summaries: summaries,
		logger:    logger,
	}
}

func (s *tournamentService) ListTournaments(ctx context.Context, viewer models.Viewer) ([]TournamentView, error) {
	list, err := s.catalog.List(ctx, viewer.Token)
	if err != nil {
		return nil, classifyRemote(err, "")
	}
	views := make([]TournamentView, 0, len(list))
	for _, t := range list {
		views = append(views, newTournamentView(t, viewer))
	}
	return views, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, viewer models.Viewer, id int64) (*TournamentView, error) {
	t, err := s.catalog.Get(ctx, viewer.Token, id)
	if err != nil {
		if errors.Is(err, ErrTournamentNotFound) {
			return nil, err
		}
		return nil, classifyRemote(err, "")
	}

	view := newTournamentView(*t, viewer)
	if view.Stage == models.StageCompleted && s.summaries != nil {
		text, ok, err := s.summaries.GetSummary(ctx, id)
		if err != nil {
			// итоги необязательны для карточки турнира
			s.logger.Warn("failed to load completion summary", slog.Int64("tournament_id", id), slog.Any("error", err))
		} else if ok {
			view.CompletionSummary = text
			view.AudienceChoice = AudienceChoiceWinner(text)
		}
	}
	return &view, nil
}

// GetRoster загружает спонсоров, участников и зрителей параллельно. Список
// роли, который не удалось получить, считается пустым; ошибка авторизации
// прерывает загрузку целиком.
func (s *tournamentService) GetRoster(ctx context.Context, viewer models.Viewer, id int64) (*models.Roster, error) {
	roster := &models.Roster{
		Sponsors:     []models.RosterEntry{},
		Participants: []models.RosterEntry{},
		Spectators:   []models.RosterEntry{},
	}

	g, gCtx := errgroup.WithContext(ctx)
	fetch := func(role models.Role, dst *[]models.RosterEntry) {
		g.Go(func() error {
			entries, err := s.remote.ListParticipantsByRole(gCtx, viewer.Token, id, role)
			if err != nil {
				cerr := classifyRemote(err, "")
				if isAuthError(cerr) {
					return cerr
				}
				s.logger.Warn("roster list unavailable",
					slog.Int64("tournament_id", id),
					slog.String("role", string(role)),
					slog.Any("error", err))
				return nil
			}
			if entries != nil {
				*dst = entries
			}
			return nil
		})
	}
	fetch(models.RoleSponsor, &roster.Sponsors)
	fetch(models.RoleParticipant, &roster.Participants)
	fetch(models.RoleSpectator, &roster.Spectators)

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load roster for tournament %d: %w", id, err)
	}
	return roster, nil
}
