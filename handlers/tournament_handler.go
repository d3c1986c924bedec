package handlers

import (
	"net/http"

	"github.com/Dosada05/tournament-client/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(ts services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: ts}
}

// ListTournaments godoc
// @Summary Список турниров
// @Tags tournaments
// @Description Турниры, видимые пользователю, со стадией, ролью и доступными действиями.
// @Produce json
// @Success 200 {object} map[string]interface{} "tournaments"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 502 {object} map[string]string "Сервис турниров недоступен"
// @Failure 503 {object} map[string]string "Сервис турниров временно недоступен"
// @Security BearerAuth
// @Router /tournaments [get]
func (h *TournamentHandler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	viewer, ok := viewerFromRequest(w, r)
	if !ok {
		return
	}

	views, err := h.tournamentService.ListTournaments(r.Context(), viewer)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": views}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetTournament godoc
// @Summary Карточка турнира
// @Tags tournaments
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} services.TournamentView
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Security BearerAuth
// @Router /tournaments/{tournamentID} [get]
func (h *TournamentHandler) GetTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	viewer, ok := viewerFromRequest(w, r)
	if !ok {
		return
	}

	view, err := h.tournamentService.GetTournament(r.Context(), viewer, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetRoster godoc
// @Summary Участники турнира
// @Tags tournaments
// @Description Спонсоры, рыцари и зрители турнира.
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} models.Roster
// @Failure 401 {object} map[string]string "Неавторизован"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/roster [get]
func (h *TournamentHandler) GetRoster(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	viewer, ok := viewerFromRequest(w, r)
	if !ok {
		return
	}

	roster, err := h.tournamentService.GetRoster(r.Context(), viewer, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"roster": roster}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
