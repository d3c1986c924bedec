package handlers

import (
	"net/http"

	"github.com/Dosada05/tournament-client/models"
	"github.com/Dosada05/tournament-client/services"
)

type ApplicationHandler struct {
	applicationService services.ApplicationService
}

func NewApplicationHandler(as services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applicationService: as}
}

// ListApplications godoc
// @Summary Заявки рыцарей на турнир
// @Tags applications
// @Description Список заявок и число одобренных рыцарей. Только для организатора.
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} services.ApplicationsView
// @Failure 403 {object} map[string]string "Только организатор"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/applications [get]
func (h *ApplicationHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	viewer, ok := viewerFromRequest(w, r)
	if !ok {
		return
	}

	view, err := h.applicationService.ListApplications(r.Context(), viewer, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"applications": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ReviewApplication godoc
// @Summary Изменить статус заявки
// @Tags applications
// @Description REJECTED и EDITS требуют комментарий.
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param applicationID path int true "Application ID"
// @Param body body models.ApplicationReview true "Новый статус"
// @Success 200 {object} map[string]interface{} "Статус обновлен"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 403 {object} map[string]string "Только организатор"
// @Failure 422 {object} map[string]interface{} "Ошибка валидации / Отказ сервера"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/applications/{applicationID} [patch]
func (h *ApplicationHandler) ReviewApplication(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	applicationID, err := getIDFromURL(r, "applicationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	viewer, ok := viewerFromRequest(w, r)
	if !ok {
		return
	}

	var input models.ApplicationReview
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.applicationService.ReviewApplication(r.Context(), viewer, tournamentID, applicationID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	env := jsonResponse{"status": "updated"}
	if view != nil {
		env["applications"] = view
	}
	if err := writeJSON(w, http.StatusOK, env, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
