package handlers

import (
	"net/http"

	"github.com/Dosada05/tournament-client/services"
)

type VotingHandler struct {
	votingService services.VotingService
}

func NewVotingHandler(vs services.VotingService) *VotingHandler {
	return &VotingHandler{votingService: vs}
}

type voteInput struct {
	VotedForID int64 `json:"voted_for_id"`
}

// VotingPage godoc
// @Summary Страница зрительского голосования
// @Tags voting
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} services.VotingView
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/voting [get]
func (h *VotingHandler) VotingPage(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	viewer, ok := viewerFromRequest(w, r)
	if !ok {
		return
	}

	view, err := h.votingService.VotingPage(r.Context(), viewer, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"voting": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Vote godoc
// @Summary Проголосовать за рыцаря
// @Tags voting
// @Description Повторный голос не отправляется. Неоднозначный ответ сервиса возвращается как уведомление, а не ошибка.
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param body body voteInput true "Кандидат"
// @Success 200 {object} voting.Outcome
// @Failure 422 {object} map[string]interface{} "Голосование недоступно"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/votes [post]
func (h *VotingHandler) Vote(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	viewer, ok := viewerFromRequest(w, r)
	if !ok {
		return
	}

	var input voteInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	out, err := h.votingService.Vote(r.Context(), viewer, tournamentID, input.VotedForID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"vote": out}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
