package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Dosada05/tournament-client/apiclient"
	"github.com/Dosada05/tournament-client/brackets"
	"github.com/Dosada05/tournament-client/models"
	"github.com/Dosada05/tournament-client/storage"
)

// Действия организатора, попадающие в DenialError.
const (
	ActionSaveMatch = "save_match"
	ActionComplete  = "complete"
	ActionEdit      = "edit_match"
)

// completionSlot occupies the bracket's saving slot while a completion runs.
const completionSlot = "tournament-completion"

// BracketView is the bracket as the management and public pages render it.
type BracketView struct {
	TournamentID   int64                 `json:"tournament_id"`
	TournamentName string                `json:"tournament_name"`
	Stage          models.Stage          `json:"stage"`
	Available      bool                  `json:"available"`
	Generated      bool                  `json:"generated,omitempty"`
	Rounds         []brackets.RoundGroup `json:"rounds"`
	Completion     brackets.Completion   `json:"completion"`
	CanComplete    bool                  `json:"can_complete"`
	BlockedReason  string                `json:"blocked_reason,omitempty"`
	Podium         brackets.Podium       `json:"podium"`
	Edit           brackets.EditState    `json:"edit"`
	Organizer      bool                  `json:"organizer"`

	// только для организатора; nil, если список участников недоступен
	ApprovedKnights *int `json:"approved_knights,omitempty"`

	CompletionSummary string `json:"completion_summary,omitempty"`
	AudienceChoice    string `json:"audience_choice,omitempty"`
}

// Summary is the stored completion text of a tournament.
type Summary struct {
	TournamentID   int64  `json:"tournament_id"`
	Text           string `json:"text"`
	AudienceChoice string `json:"audience_choice,omitempty"`
}

type BracketService interface {
	GetBracket(ctx context.Context, viewer models.Viewer, tournamentID int64) (*BracketView, error)
	BeginEdit(ctx context.Context, viewer models.Viewer, tournamentID int64, matchID string) (brackets.EditState, error)
	CancelEdit(ctx context.Context, viewer models.Viewer, tournamentID int64, matchID string) (brackets.EditState, error)
	SaveMatch(ctx context.Context, viewer models.Viewer, tournamentID int64, matchID string, edit brackets.MatchEdit) (*BracketView, error)
	CompleteTournament(ctx context.Context, viewer models.Viewer, tournamentID int64) (string, error)
	CompletionSummary(ctx context.Context, tournamentID int64) (*Summary, error)
}

type bracketService struct {
	catalog   *Catalog
	remote    RemoteAPI
	summaries storage.SummaryStore
	publisher Publisher
	observer  Observer
	policy    brackets.ResultPolicy
	logger    *slog.Logger
	now       func() time.Time

	mu    sync.Mutex
	locks map[int64]*brackets.EditLock
}

type BracketServiceConfig struct {
	Catalog   *Catalog
	Remote    RemoteAPI
	Summaries storage.SummaryStore
	Publisher Publisher
	Observer  Observer
	Policy    brackets.ResultPolicy
	Logger    *slog.Logger
}

func NewBracketService(cfg BracketServiceConfig) BracketService {
	if cfg.Publisher == nil {
		cfg.Publisher = nopPublisher{}
	}
	if cfg.Observer == nil {
		cfg.Observer = nopObserver{}
	}
	return &bracketService{
		catalog:   cfg.Catalog,
		remote:    cfg.Remote,
		summaries: cfg.Summaries,
		publisher: cfg.Publisher,
		observer:  cfg.Observer,
		policy:    cfg.Policy,
		logger:    cfg.Logger,
		now:       time.Now,
		locks:     make(map[int64]*brackets.EditLock),
	}
}

func (s *bracketService) GetBracket(ctx context.Context, viewer models.Viewer, tournamentID int64) (*BracketView, error) {
	t, err := s.loadTournament(ctx, viewer, tournamentID)
	if err != nil {
		return nil, err
	}
	organizer := isOrganizer(viewer, *t)

	generated := false
	b, err := s.remote.GetBracket(ctx, viewer.Token, tournamentID)
	if err != nil {
		if !errors.Is(err, apiclient.ErrNoBracket) {
			return nil, classifyRemote(err, "")
		}
		b = nil
		if organizer && t.Stage() != models.StageCompleted {
			// сетки еще нет, организатор генерирует ее при первом открытии
			b, err = s.remote.GenerateBracket(ctx, viewer.Token, tournamentID)
			if err != nil {
				return nil, classifyRemote(err, "generate_bracket")
			}
			generated = true
			s.logger.Info("bracket generated", slog.Int64("tournament_id", tournamentID), slog.Int("matches", len(b.Matches)))
			s.publisher.Publish(tournamentID, brackets.EventBracketUpdated, map[string]interface{}{"generated": true})
		}
	}

	view := s.buildView(*t, b, organizer)
	view.Generated = generated
	if organizer {
		n, err := approvedKnights(ctx, s.remote, viewer, tournamentID)
		switch {
		case err == nil:
			view.ApprovedKnights = &n
		case isAuthError(err):
			return nil, err
		default:
			s.logger.Warn("failed to count approved knights", slog.Int64("tournament_id", tournamentID), slog.Any("error", err))
		}
	}
	if view.Stage == models.StageCompleted {
		s.attachSummary(ctx, &view)
	}
	return &view, nil
}

func (s *bracketService) BeginEdit(ctx context.Context, viewer models.Viewer, tournamentID int64, matchID string) (brackets.EditState, error) {
	t, err := s.requireOrganizer(ctx, viewer, tournamentID, ActionEdit)
	if err != nil {
		return brackets.EditState{}, err
	}
	if t.Stage() == models.StageCompleted {
		return brackets.EditState{}, s.deny(ActionEdit, "tournament is already completed")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	lock := s.lockFor(tournamentID)
	if err := lock.BeginEdit(matchID); err != nil {
		return lock.State(), fmt.Errorf("%w: %v", ErrEditInProgress, err)
	}
	return lock.State(), nil
}

func (s *bracketService) CancelEdit(ctx context.Context, viewer models.Viewer, tournamentID int64, matchID string) (brackets.EditState, error) {
	if _, err := s.requireOrganizer(ctx, viewer, tournamentID, ActionEdit); err != nil {
		return brackets.EditState{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	lock := s.lockFor(tournamentID)
	if err := lock.Cancel(matchID); err != nil {
		return lock.State(), fmt.Errorf("%w: %v", ErrEditInProgress, err)
	}
	return lock.State(), nil
}

// SaveMatch применяет изменения боя: сначала время, затем победителя. Пока
// сохранение идет, другие правки сетки этого турнира отклоняются.
func (s *bracketService) SaveMatch(ctx context.Context, viewer models.Viewer, tournamentID int64, matchID string, edit brackets.MatchEdit) (*BracketView, error) {
	t, err := s.requireOrganizer(ctx, viewer, tournamentID, ActionSaveMatch)
	if err != nil {
		return nil, err
	}
	if t.Stage() == models.StageCompleted {
		return nil, s.deny(ActionSaveMatch, "tournament is already completed")
	}

	s.mu.Lock()
	lock := s.lockFor(tournamentID)
	err = lock.BeginSave(matchID)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEditInProgress, err)
	}

	saved := false
	defer func() {
		s.mu.Lock()
		lock.FinishSave(matchID, saved)
		s.mu.Unlock()
	}()

	b, err := s.remote.GetBracket(ctx, viewer.Token, tournamentID)
	if err != nil {
		if errors.Is(err, apiclient.ErrNoBracket) {
			return nil, ErrMatchNotFound
		}
		return nil, classifyRemote(err, "")
	}
	m, ok := findMatch(b, matchID)
	if !ok {
		return nil, ErrMatchNotFound
	}

	plan, err := brackets.PlanSave(m, edit, s.policy)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	for _, step := range plan.Steps {
		var stepErr error
		switch step.Kind {
		case brackets.StepSchedule:
			stepErr = s.remote.UpdateMatchSchedule(ctx, viewer.Token, matchID, step.ScheduledTime)
		case brackets.StepResult:
			stepErr = s.remote.RecordMatchResult(ctx, viewer.Token, matchID, step.WinnerID, step.Comment)
		}
		if stepErr != nil {
			s.logger.Warn("match save step failed",
				slog.Int64("tournament_id", tournamentID),
				slog.String("match_id", matchID),
				slog.String("step", string(step.Kind)),
				slog.Any("error", stepErr))
			return nil, classifyRemote(stepErr, ActionSaveMatch)
		}
	}
	saved = true

	if !plan.Empty() {
		s.logger.Info("match saved",
			slog.Int64("tournament_id", tournamentID),
			slog.String("match_id", matchID),
			slog.Int("steps", len(plan.Steps)))
		s.publisher.Publish(tournamentID, brackets.EventBracketUpdated, map[string]string{"match_id": matchID})
		b, err = s.remote.GetBracket(ctx, viewer.Token, tournamentID)
		if err != nil {
			return nil, classifyRemote(err, "")
		}
	}

	view := s.buildView(*t, b, true)
	// замок освобождается в defer, в ответе уже итоговое состояние
	view.Edit = brackets.EditState{Phase: brackets.PhaseIdle}
	return &view, nil
}

func (s *bracketService) CompleteTournament(ctx context.Context, viewer models.Viewer, tournamentID int64) (string, error) {
	t, err := s.requireOrganizer(ctx, viewer, tournamentID, ActionComplete)
	if err != nil {
		return "", err
	}
	if t.Stage() == models.StageCompleted {
		return "", s.deny(ActionComplete, "tournament is already completed")
	}

	// завершение занимает слот сохранения до конца, правки боев ждут
	s.mu.Lock()
	lock := s.lockFor(tournamentID)
	prev := lock.State()
	err = lock.BeginSave(completionSlot)
	s.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEditInProgress, err)
	}
	defer func() {
		s.mu.Lock()
		lock.FinishSave(completionSlot, true)
		if prev.Phase == brackets.PhaseEditing {
			_ = lock.BeginEdit(prev.MatchID)
		}
		s.mu.Unlock()
	}()

	b, err := s.remote.GetBracket(ctx, viewer.Token, tournamentID)
	if err != nil {
		if errors.Is(err, apiclient.ErrNoBracket) {
			return "", s.deny(ActionComplete, "bracket has not been generated")
		}
		return "", classifyRemote(err, "")
	}
	if c := brackets.CanCompleteTournament(b.Matches); !c.Allowed {
		return "", s.deny(ActionComplete, c.Reason())
	}

	msg, err := s.remote.CompleteTournament(ctx, viewer.Token, tournamentID)
	if err != nil {
		return "", classifyRemote(err, ActionComplete)
	}

	if s.summaries != nil {
		if err := s.summaries.PutSummary(ctx, tournamentID, msg); err != nil {
			s.logger.Error("failed to persist completion summary", slog.Int64("tournament_id", tournamentID), slog.Any("error", err))
		}
	}
	s.catalog.MarkCompleted(tournamentID)
	s.catalog.Invalidate()

	s.logger.Info("tournament completed", slog.Int64("tournament_id", tournamentID))
	s.publisher.Publish(tournamentID, brackets.EventTournamentCompleted, Summary{
		TournamentID:   tournamentID,
		Text:           msg,
		AudienceChoice: AudienceChoiceWinner(msg),
	})
	return msg, nil
}

func (s *bracketService) CompletionSummary(ctx context.Context, tournamentID int64) (*Summary, error) {
	if s.summaries == nil {
		return nil, ErrNotFound
	}
	text, ok, err := s.summaries.GetSummary(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load completion summary: %w", err)
	}
	if !ok {
		return nil, ErrNotFound
	}
	return &Summary{TournamentID: tournamentID, Text: text, AudienceChoice: AudienceChoiceWinner(text)}, nil
}

func (s *bracketService) buildView(t models.Tournament, b *models.Bracket, organizer bool) BracketView {
	view := BracketView{
		TournamentID:   t.ID,
		TournamentName: t.Name,
		Stage:          t.Stage(),
		Organizer:      organizer,
		Rounds:         []brackets.RoundGroup{},
	}

	s.mu.Lock()
	view.Edit = s.lockFor(t.ID).State()
	s.mu.Unlock()

	if b == nil {
		view.BlockedReason = "bracket has not been generated"
		return view
	}

	now := s.now()
	view.Available = true
	view.Rounds = brackets.GroupByRound(b.Matches)
	for gi := range view.Rounds {
		for mi := range view.Rounds[gi].Matches {
			nm := &view.Rounds[gi].Matches[mi]
			nm.State = brackets.DeriveMatchState(nm.Match, now)
		}
	}
	view.Completion = brackets.CanCompleteTournament(b.Matches)
	view.Podium = brackets.FinalResult(b.Matches)

	switch {
	case view.Stage == models.StageCompleted:
		view.BlockedReason = "tournament is already completed"
	case !view.Completion.Allowed:
		view.BlockedReason = view.Completion.Reason()
	default:
		view.CanComplete = organizer
	}
	return view
}

func (s *bracketService) attachSummary(ctx context.Context, view *BracketView) {
	if s.summaries == nil {
		return
	}
	text, ok, err := s.summaries.GetSummary(ctx, view.TournamentID)
	if err != nil {
		s.logger.Warn("failed to load completion summary", slog.Int64("tournament_id", view.TournamentID), slog.Any("error", err))
		return
	}
	if ok {
		view.CompletionSummary = text
		view.AudienceChoice = AudienceChoiceWinner(text)
	}
}

func (s *bracketService) loadTournament(ctx context.Context, viewer models.Viewer, tournamentID int64) (*models.Tournament, error) {
	t, err := s.catalog.Get(ctx, viewer.Token, tournamentID)
	if err != nil {
		if errors.Is(err, ErrTournamentNotFound) {
			return nil, err
		}
		return nil, classifyRemote(err, "")
	}
	return t, nil
}

func (s *bracketService) requireOrganizer(ctx context.Context, viewer models.Viewer, tournamentID int64, action string) (*models.Tournament, error) {
	t, err := s.loadTournament(ctx, viewer, tournamentID)
	if err != nil {
		return nil, err
	}
	if !isOrganizer(viewer, *t) {
		s.observer.GateDenied(action)
		return nil, fmt.Errorf("%w: only the organizer can manage the bracket", ErrForbiddenOperation)
	}
	return t, nil
}

func (s *bracketService) deny(action, reason string) error {
	s.observer.GateDenied(action)
	return &DenialError{Action: action, Reason: reason}
}

// lockFor must be called with s.mu held.
func (s *bracketService) lockFor(tournamentID int64) *brackets.EditLock {
	l, ok := s.locks[tournamentID]
	if !ok {
		l = brackets.NewEditLock()
		s.locks[tournamentID] = l
	}
	return l
}

func isOrganizer(viewer models.Viewer, t models.Tournament) bool {
	return viewer.Organizer || t.ViewerRole() == models.RoleOrganizer
}
