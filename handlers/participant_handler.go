package handlers

import (
	"net/http"

	"github.com/Dosada05/tournament-client/models"
	"github.com/Dosada05/tournament-client/services"
)

type ParticipantHandler struct {
	participationService services.ParticipationService
}

func NewParticipantHandler(ps services.ParticipationService) *ParticipantHandler {
	return &ParticipantHandler{
		participationService: ps,
	}
}

// writeAccepted отдает обновленную карточку; если ее не удалось перечитать,
// запись все равно считается принятой.
func writeAccepted(w http.ResponseWriter, r *http.Request, view *services.TournamentView) {
	env := jsonResponse{"status": "accepted"}
	if view != nil {
		env["tournament"] = view
	}
	if err := writeJSON(w, http.StatusCreated, env, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Sponsor godoc
// @Summary Стать спонсором турнира
// @Tags participants
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param body body models.SponsorshipRequest true "Пакет спонсорства"
// @Success 201 {object} map[string]interface{} "Заявка принята"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 422 {object} map[string]interface{} "Действие недоступно / Ошибка валидации"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/sponsorships [post]
func (h *ParticipantHandler) Sponsor(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	viewer, ok := viewerFromRequest(w, r)
	if !ok {
		return
	}

	var input models.SponsorshipRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.participationService.Sponsor(r.Context(), viewer, tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeAccepted(w, r, view)
}

// Apply godoc
// @Summary Подать заявку рыцаря
// @Tags participants
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param body body models.ApplicationRequest true "Анкета участника"
// @Success 201 {object} map[string]interface{} "Заявка принята"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 422 {object} map[string]interface{} "Действие недоступно / Ошибка валидации"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/applications [post]
func (h *ParticipantHandler) Apply(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	viewer, ok := viewerFromRequest(w, r)
	if !ok {
		return
	}

	var input models.ApplicationRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.participationService.Apply(r.Context(), viewer, tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeAccepted(w, r, view)
}

// BuyTicket godoc
// @Summary Купить билет
// @Tags participants
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param body body models.TicketRequest true "Количество мест"
// @Success 201 {object} map[string]interface{} "Бронь создана"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 422 {object} map[string]interface{} "Действие недоступно / Ошибка валидации"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/tickets [post]
func (h *ParticipantHandler) BuyTicket(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	viewer, ok := viewerFromRequest(w, r)
	if !ok {
		return
	}

	var input models.TicketRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.participationService.BuyTicket(r.Context(), viewer, tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeAccepted(w, r, view)
}
