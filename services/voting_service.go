package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/tournament-client/gates"
	"github.com/Dosada05/tournament-client/models"
	"github.com/Dosada05/tournament-client/voting"
)

// VotingView is the audience voting page of one tournament.
type VotingView struct {
	TournamentID   int64                  `json:"tournament_id"`
	TournamentName string                 `json:"tournament_name"`
	Stage          models.Stage           `json:"stage"`
	Status         voting.Status          `json:"status"`
	Reason         string                 `json:"reason,omitempty"`
	Candidates     []models.VoteCandidate `json:"candidates"`
}

type VotingService interface {
	VotingPage(ctx context.Context, viewer models.Viewer, tournamentID int64) (*VotingView, error)
	Vote(ctx context.Context, viewer models.Viewer, tournamentID, candidateID int64) (*voting.Outcome, error)
}

type votingService struct {
	catalog  *Catalog
	remote   RemoteAPI
	guard    *voting.Guard
	observer Observer
	logger   *slog.Logger
}

func NewVotingService(catalog *Catalog, remote RemoteAPI, guard *voting.Guard, observer Observer, logger *slog.Logger) VotingService {
	if observer == nil {
		observer = nopObserver{}
	}
	return &votingService{
		catalog:  catalog,
		remote:   remote,
		guard:    guard,
		observer: observer,
		logger:   logger,
	}
}

func (s *votingService) VotingPage(ctx context.Context, viewer models.Viewer, tournamentID int64) (*VotingView, error) {
	t, err := s.tournament(ctx, viewer, tournamentID)
	if err != nil {
		return nil, err
	}
	vc, err := s.loadRoster(ctx, viewer, tournamentID)
	if err != nil {
		return nil, err
	}

	st, err := s.guard.State(ctx, tournamentID, viewer.Identity, t.Stage(), vc.entry)
	if err != nil {
		return nil, err
	}

	view := &VotingView{
		TournamentID:   t.ID,
		TournamentName: t.Name,
		Stage:          t.Stage(),
		Status:         st,
		Candidates:     vc.candidates,
	}
	if st.State == voting.NotEligible {
		view.Reason = ineligibleReason(*t, vc.entry)
	}
	return view, nil
}

// Vote отправляет голос зрителя. Неоднозначные ответы сервера не считаются
// ошибкой: они возвращаются как Outcome с уведомлением.
func (s *votingService) Vote(ctx context.Context, viewer models.Viewer, tournamentID, candidateID int64) (*voting.Outcome, error) {
	t, err := s.tournament(ctx, viewer, tournamentID)
	if err != nil {
		return nil, err
	}

	// сохраненная отметка отвечает без похода за списками
	st, err := s.guard.State(ctx, tournamentID, viewer.Identity, t.Stage(), nil)
	if err != nil {
		return nil, err
	}
	if st.State == voting.Voted {
		out := voting.Outcome{Status: st, Notice: voting.NoticeAlreadyVoted}
		s.observer.VoteOutcome(outcomeLabel(out))
		return &out, nil
	}

	vc, err := s.loadRoster(ctx, viewer, tournamentID)
	if err != nil {
		return nil, err
	}
	// без списка участников кандидата проверяет сервер
	if vc.candidatesLoaded && !hasCandidate(vc.candidates, candidateID) {
		verr := newValidationError()
		verr.add("voted_for_id", "must be one of the tournament participants")
		return nil, verr
	}

	req := voting.SubmitRequest{
		TournamentID: tournamentID,
		Voter:        viewer.Identity,
		CandidateID:  candidateID,
		Stage:        t.Stage(),
		Entry:        vc.entry,
	}
	out, err := s.guard.Submit(ctx, req, func(ctx context.Context) error {
		return s.remote.SubmitVote(ctx, viewer.Token, tournamentID, candidateID)
	})

	switch {
	case errors.Is(err, voting.ErrNotEligible):
		s.observer.GateDenied(string(gates.ActionVote))
		s.observer.VoteOutcome("not_eligible")
		return nil, &DenialError{Action: string(gates.ActionVote), Reason: ineligibleReason(*t, vc.entry)}
	case errors.Is(err, voting.ErrInvalidTarget):
		verr := newValidationError()
		verr.add("voted_for_id", "must be provided")
		return nil, verr
	case err != nil && out.Accepted:
		// голос принят, но отметка не сохранилась; повтор отсечет сервер
		s.logger.Error("vote accepted but marker not stored",
			slog.Int64("tournament_id", tournamentID),
			slog.Any("error", err))
	case err != nil:
		return nil, err
	}

	s.observer.VoteOutcome(outcomeLabel(out))
	if out.Accepted {
		s.logger.Info("vote accepted", slog.Int64("tournament_id", tournamentID), slog.Int64("voted_for_id", candidateID))
	}
	return &out, nil
}

func (s *votingService) tournament(ctx context.Context, viewer models.Viewer, tournamentID int64) (*models.Tournament, error) {
	t, err := s.catalog.Get(ctx, viewer.Token, tournamentID)
	if err != nil {
		if errors.Is(err, ErrTournamentNotFound) {
			return nil, err
		}
		return nil, classifyRemote(err, "")
	}
	return t, nil
}

type votingRoster struct {
	entry            *models.RosterEntry
	candidates       []models.VoteCandidate
	candidatesLoaded bool
}

// loadRoster ищет билет зрителя и кандидатов. Сбой списка не ломает страницу:
// без списка зрителей билета нет, без списка участников кандидатов нет.
// Только отказ в авторизации возвращается ошибкой.
func (s *votingService) loadRoster(ctx context.Context, viewer models.Viewer, tournamentID int64) (votingRoster, error) {
	vc := votingRoster{candidates: []models.VoteCandidate{}}

	spectators, err := s.remote.ListParticipantsByRole(ctx, viewer.Token, tournamentID, models.RoleSpectator)
	switch {
	case err != nil && isAuthError(classifyRemote(err, "")):
		return vc, fmt.Errorf("failed to load spectators: %w", classifyRemote(err, ""))
	case err != nil:
		s.logger.Warn("spectator list unavailable, treating viewer as without ticket",
			slog.Int64("tournament_id", tournamentID),
			slog.Any("error", err))
	default:
		vc.entry = models.FindByIdentity(spectators, viewer.Identity)
	}

	knights, err := s.remote.ListParticipantsByRole(ctx, viewer.Token, tournamentID, models.RoleParticipant)
	switch {
	case err != nil && isAuthError(classifyRemote(err, "")):
		return vc, fmt.Errorf("failed to load participants: %w", classifyRemote(err, ""))
	case err != nil:
		s.logger.Warn("participant list unavailable",
			slog.Int64("tournament_id", tournamentID),
			slog.Any("error", err))
	default:
		vc.candidatesLoaded = true
		for _, k := range knights {
			if k.ID <= 0 {
				continue
			}
			vc.candidates = append(vc.candidates, models.VoteCandidate{ID: k.ID, FullName: k.FullName()})
		}
	}
	return vc, nil
}

func hasCandidate(candidates []models.VoteCandidate, id int64) bool {
	for _, c := range candidates {
		if c.ID == id {
			return true
		}
	}
	return false
}

func ineligibleReason(t models.Tournament, entry *models.RosterEntry) string {
	switch {
	case t.Stage() != models.StageInProgress:
		return gates.CanVote(t.Stage()).Reason
	case entry == nil:
		return "voting is only for spectators with a confirmed ticket"
	case entry.Seats() <= 0:
		return "your ticket has no booked seats"
	case strings.TrimSpace(entry.BookingCode) == "":
		return "your ticket booking is not confirmed"
	}
	return ""
}

func outcomeLabel(out voting.Outcome) string {
	switch {
	case out.Accepted:
		return "accepted"
	case out.Notice == voting.NoticeAlreadyVoted:
		return "already_voted"
	case out.Notice == voting.NoticeUnavailable:
		return "unavailable"
	case out.Notice == voting.NoticeServiceIssue:
		return "service_issue"
	}
	return "unknown"
}
