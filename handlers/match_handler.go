package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/tournament-client/brackets"
	"github.com/Dosada05/tournament-client/models"
	"github.com/Dosada05/tournament-client/services"
)

// Локальные форматы времени боя (datetime-local из формы).
var matchTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

type MatchHandler struct {
	bracketService services.BracketService
	loc            *time.Location
}

func NewMatchHandler(bs services.BracketService, loc *time.Location) *MatchHandler {
	if loc == nil {
		loc = time.Local
	}
	return &MatchHandler{bracketService: bs, loc: loc}
}

type saveMatchInput struct {
	ScheduledTime string `json:"scheduled_time,omitempty"`
	WinnerID      string `json:"winner_id,omitempty"`
	Comment       string `json:"comment,omitempty"`
}

func (h *MatchHandler) parseMatchTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	for _, layout := range matchTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, h.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("scheduled_time %q is not a valid date-time", raw)
}

// GetBracket godoc
// @Summary Турнирная сетка
// @Tags matches
// @Description Раунды, состояния боев, возможность завершения и итоги. Для организатора сетка генерируется, если ее еще нет.
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} services.BracketView
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/bracket [get]
func (h *MatchHandler) GetBracket(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	viewer, ok := viewerFromRequest(w, r)
	if !ok {
		return
	}

	view, err := h.bracketService.GetBracket(r.Context(), viewer, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// BeginEdit godoc
// @Summary Открыть бой для редактирования
// @Tags matches
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param matchID path string true "Match ID"
// @Success 200 {object} brackets.EditState
// @Failure 403 {object} map[string]string "Только организатор"
// @Failure 409 {object} map[string]string "Идет сохранение другого боя"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/matches/{matchID}/edit [post]
func (h *MatchHandler) BeginEdit(w http.ResponseWriter, r *http.Request) {
	h.editTransition(w, r, h.bracketService.BeginEdit)
}

// CancelEdit godoc
// @Summary Закрыть редактирование боя
// @Tags matches
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param matchID path string true "Match ID"
// @Success 200 {object} brackets.EditState
// @Failure 409 {object} map[string]string "Идет сохранение"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/matches/{matchID}/edit [delete]
func (h *MatchHandler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	h.editTransition(w, r, h.bracketService.CancelEdit)
}

type editTransitionFunc func(ctx context.Context, viewer models.Viewer, tournamentID int64, matchID string) (brackets.EditState, error)

func (h *MatchHandler) editTransition(w http.ResponseWriter, r *http.Request, fn editTransitionFunc) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchID := chi.URLParam(r, "matchID")
	if matchID == "" {
		badRequestResponse(w, r, errors.New("missing matchID in URL"))
		return
	}
	viewer, ok := viewerFromRequest(w, r)
	if !ok {
		return
	}

	state, err := fn(r.Context(), viewer, tournamentID, matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"edit": state}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SaveMatch godoc
// @Summary Сохранить бой
// @Tags matches
// @Description Меняет только измененные поля: сначала время боя, затем победителя.
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param matchID path string true "Match ID"
// @Param body body saveMatchInput true "Изменения боя"
// @Success 200 {object} services.BracketView
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 403 {object} map[string]string "Только организатор"
// @Failure 404 {object} map[string]string "Бой не найден"
// @Failure 409 {object} map[string]string "Идет сохранение другого боя"
// @Failure 422 {object} map[string]string "Изменение недопустимо"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/matches/{matchID} [patch]
func (h *MatchHandler) SaveMatch(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchID := chi.URLParam(r, "matchID")
	if matchID == "" {
		badRequestResponse(w, r, errors.New("missing matchID in URL"))
		return
	}
	viewer, ok := viewerFromRequest(w, r)
	if !ok {
		return
	}

	var input saveMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	edit := brackets.MatchEdit{
		WinnerID: strings.TrimSpace(input.WinnerID),
		Comment:  strings.TrimSpace(input.Comment),
	}
	if strings.TrimSpace(input.ScheduledTime) != "" {
		at, err := h.parseMatchTime(input.ScheduledTime)
		if err != nil {
			failedValidationResponse(w, r, map[string]string{"scheduled_time": err.Error()})
			return
		}
		edit.ScheduledTime = &at
	}

	view, err := h.bracketService.SaveMatch(r.Context(), viewer, tournamentID, matchID, edit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CompleteTournament godoc
// @Summary Завершить турнир
// @Tags matches
// @Description Доступно, когда у всех боев с двумя участниками определен победитель.
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} services.Summary
// @Failure 403 {object} map[string]string "Только организатор"
// @Failure 409 {object} map[string]string "Идет сохранение боя"
// @Failure 422 {object} map[string]interface{} "Остались незавершенные бои"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/complete [post]
func (h *MatchHandler) CompleteTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	viewer, ok := viewerFromRequest(w, r)
	if !ok {
		return
	}

	msg, err := h.bracketService.CompleteTournament(r.Context(), viewer, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	summary := services.Summary{TournamentID: tournamentID, Text: msg, AudienceChoice: services.AudienceChoiceWinner(msg)}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"summary": summary}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetSummary godoc
// @Summary Итоги турнира
// @Tags matches
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} services.Summary
// @Failure 404 {object} map[string]string "Итогов нет"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/summary [get]
func (h *MatchHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	summary, err := h.bracketService.CompletionSummary(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"summary": summary}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
