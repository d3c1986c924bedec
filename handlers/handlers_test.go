package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tournament-client/brackets"
	"github.com/Dosada05/tournament-client/middleware"
	"github.com/Dosada05/tournament-client/models"
	"github.com/Dosada05/tournament-client/services"
	"github.com/Dosada05/tournament-client/voting"
)

var testViewer = models.Viewer{Token: "tok", Identity: "fan@example.com"}

func withViewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(middleware.WithViewer(r.Context(), testViewer)))
	})
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"denial", &services.DenialError{Action: "sponsor", Reason: "sold out"}, http.StatusUnprocessableEntity},
		{"validation", &services.ValidationError{Fields: map[string]string{"seats": "must be at least 1"}}, http.StatusUnprocessableEntity},
		{"engine validation", fmt.Errorf("%w: %w", services.ErrValidationFailed, brackets.ErrResultLocked), http.StatusUnprocessableEntity},
		{"remote rejected", fmt.Errorf("%w: x", services.ErrRemoteRejected), http.StatusUnprocessableEntity},
		{"not found", services.ErrTournamentNotFound, http.StatusNotFound},
		{"match not found", services.ErrMatchNotFound, http.StatusNotFound},
		{"lock", fmt.Errorf("%w: saving", services.ErrEditInProgress), http.StatusConflict},
		{"auth", services.ErrAuthenticationFailed, http.StatusUnauthorized},
		{"forbidden", services.ErrForbiddenOperation, http.StatusForbidden},
		{"unavailable", services.ErrTemporarilyUnavailable, http.StatusServiceUnavailable},
		{"transport", services.ErrTransport, http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mapServiceErrorToHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestDenialResponseBody(t *testing.T) {
	rec := httptest.NewRecorder()
	mapServiceErrorToHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil),
		&services.DenialError{Action: "buy_ticket", Reason: "sold out", Remote: true})

	body := decodeBody(t, rec)
	assert.Equal(t, "sold out", body["error"])
	assert.Equal(t, "buy_ticket", body["action"])
	assert.Equal(t, true, body["remote"])
}

type stubParticipation struct {
	services.ParticipationService
	gotSeats int
	err      error
}

func (s *stubParticipation) BuyTicket(_ context.Context, _ models.Viewer, id int64, req models.TicketRequest) (*services.TournamentView, error) {
	s.gotSeats = req.Seats
	if s.err != nil {
		return nil, s.err
	}
	return &services.TournamentView{Tournament: models.Tournament{ID: id}}, nil
}

func TestBuyTicketHandler(t *testing.T) {
	stub := &stubParticipation{}
	h := NewParticipantHandler(stub)
	r := chi.NewRouter()
	r.With(withViewer).Post("/tournaments/{tournamentID}/tickets", h.BuyTicket)

	req := httptest.NewRequest(http.MethodPost, "/tournaments/4/tickets", strings.NewReader(`{"seats":2,"agree_to_rules":true}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 2, stub.gotSeats)
	assert.Equal(t, "accepted", decodeBody(t, rec)["status"])

	stub.err = &services.DenialError{Action: "buy_ticket", Reason: "sold out"}
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tournaments/4/tickets", strings.NewReader(`{"seats":1,"agree_to_rules":true}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tournaments/4/tickets", strings.NewReader(`{"seats":1,"unknown":1}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tournaments/abc/tickets", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerRequiresViewer(t *testing.T) {
	h := NewParticipantHandler(&stubParticipation{})
	r := chi.NewRouter()
	r.Post("/tournaments/{tournamentID}/tickets", h.BuyTicket)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tournaments/4/tickets", strings.NewReader(`{"seats":1}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type stubBracket struct {
	services.BracketService
	edit brackets.MatchEdit
}

func (s *stubBracket) SaveMatch(_ context.Context, _ models.Viewer, id int64, matchID string, edit brackets.MatchEdit) (*services.BracketView, error) {
	s.edit = edit
	return &services.BracketView{TournamentID: id}, nil
}

func TestSaveMatchHandler_ParsesLocalTime(t *testing.T) {
	loc := time.FixedZone("MSK", 3*60*60)
	stub := &stubBracket{}
	h := NewMatchHandler(stub, loc)
	r := chi.NewRouter()
	r.With(withViewer).Patch("/tournaments/{tournamentID}/matches/{matchID}", h.SaveMatch)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/tournaments/1/matches/11",
		strings.NewReader(`{"scheduled_time":"2025-06-01T18:30","winner_id":" 3 "}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, stub.edit.ScheduledTime)
	assert.True(t, stub.edit.ScheduledTime.Equal(time.Date(2025, 6, 1, 15, 30, 0, 0, time.UTC)))
	assert.Equal(t, "3", stub.edit.WinnerID)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/tournaments/1/matches/11",
		strings.NewReader(`{"scheduled_time":"tomorrow"}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

type stubVoting struct {
	services.VotingService
}

func (stubVoting) Vote(_ context.Context, _ models.Viewer, _ int64, candidateID int64) (*voting.Outcome, error) {
	return &voting.Outcome{Status: voting.Status{State: voting.EligibleUnvoted}, Notice: voting.NoticeUnavailable}, nil
}

func TestVoteHandler_NoticeIsNotAnError(t *testing.T) {
	h := NewVotingHandler(stubVoting{})
	r := chi.NewRouter()
	r.With(withViewer).Post("/tournaments/{tournamentID}/votes", h.Vote)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tournaments/9/votes", strings.NewReader(`{"voted_for_id":2}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	vote := decodeBody(t, rec)["vote"].(map[string]interface{})
	assert.Equal(t, voting.NoticeUnavailable, vote["notice"])
	assert.Equal(t, string(voting.EligibleUnvoted), vote["state"])
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://aivango.example"})
	req := httptest.NewRequest(http.MethodGet, "/ws/tournaments/1", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://aivango.example")
	assert.True(t, check(req))
	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(req))

	assert.True(t, originChecker(nil)(req))
	assert.True(t, originChecker([]string{"*"})(req))
}

type stubApplications struct {
	services.ApplicationService
	appID  int64
	review models.ApplicationReview
}

func (s *stubApplications) ReviewApplication(_ context.Context, _ models.Viewer, id, applicationID int64, review models.ApplicationReview) (*services.ApplicationsView, error) {
	s.appID = applicationID
	s.review = review
	if review.Status == "" {
		return nil, &services.ValidationError{Fields: map[string]string{"status": "must be one of PENDING, APPROVED, REJECTED, EDITS"}}
	}
	return &services.ApplicationsView{TournamentID: id, Applications: []models.ApplicationSummary{}}, nil
}

func TestReviewApplicationHandler(t *testing.T) {
	stub := &stubApplications{}
	h := NewApplicationHandler(stub)
	r := chi.NewRouter()
	r.With(withViewer).Patch("/tournaments/{tournamentID}/applications/{applicationID}", h.ReviewApplication)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/tournaments/1/applications/31",
		strings.NewReader(`{"status":"REJECTED","comment":"нет герба"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(31), stub.appID)
	assert.Equal(t, models.ApplicationRejected, stub.review.Status)
	assert.Equal(t, "updated", decodeBody(t, rec)["status"])

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/tournaments/1/applications/31", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/tournaments/1/applications/x", strings.NewReader(`{"status":"APPROVED"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
