package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/tournament-client/models"
)

// DefaultCompletionMessage is used when the remote completes a tournament
// without a summary text.
const DefaultCompletionMessage = "Турнир завершен"

func (c *Client) ListTournaments(ctx context.Context, token string) ([]models.Tournament, error) {
	var dtos []tournamentDTO
	if _, err := c.do(ctx, "list_tournaments", token, http.MethodPost, "/api/tournament/tournaments", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]models.Tournament, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toModel())
	}
	return out, nil
}

// GetBracket returns ErrNoBracket when the remote has not generated one yet.
func (c *Client) GetBracket(ctx context.Context, token string, tournamentID int64) (*models.Bracket, error) {
	var dto bracketDTO
	path := fmt.Sprintf("/api/tournament/%d/bracket", tournamentID)
	raw, err := c.do(ctx, "get_bracket", token, http.MethodGet, path, nil, &dto)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusNotFound || apiErr.StatusCode == http.StatusBadRequest) {
			return nil, fmt.Errorf("%w: %v", ErrNoBracket, err)
		}
		return nil, err
	}
	if len(strings.TrimSpace(string(raw))) == 0 || len(dto.Matches) == 0 {
		return nil, ErrNoBracket
	}
	b := dto.toModel(c.loc)
	if b.TournamentID == 0 {
		b.TournamentID = tournamentID
	}
	return b, nil
}

func (c *Client) GenerateBracket(ctx context.Context, token string, tournamentID int64) (*models.Bracket, error) {
	var dto bracketDTO
	path := fmt.Sprintf("/api/tournament/%d/generate-bracket", tournamentID)
	if _, err := c.do(ctx, "generate_bracket", token, http.MethodPost, path, nil, &dto); err != nil {
		return nil, err
	}
	b := dto.toModel(c.loc)
	if b.TournamentID == 0 {
		b.TournamentID = tournamentID
	}
	return b, nil
}

func matchPathID(matchID string) (int64, error) {
	id, err := strconv.ParseInt(matchID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: match id %q is not numeric", ErrInvalidID, matchID)
	}
	return id, nil
}

// UpdateMatchSchedule sends the time as a zone-less local timestamp in the
// client's configured location.
func (c *Client) UpdateMatchSchedule(ctx context.Context, token, matchID string, at time.Time) error {
	id, err := matchPathID(matchID)
	if err != nil {
		return err
	}
	body := fightDateBody{NewFightDate: at.In(c.loc).Format(localDateTime)}
	_, err = c.do(ctx, "update_match_schedule", token, http.MethodPatch, fmt.Sprintf("/api/fights/%d/date", id), body, nil)
	return err
}

func (c *Client) RecordMatchResult(ctx context.Context, token, matchID, winnerID, comment string) error {
	id, err := matchPathID(matchID)
	if err != nil {
		return err
	}
	winner, err := strconv.ParseInt(winnerID, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: winner id %q is not numeric", ErrInvalidID, winnerID)
	}
	body := fightResultBody{WinnerID: winner, Comment: strings.TrimSpace(comment)}
	_, err = c.do(ctx, "record_match_result", token, http.MethodPatch, fmt.Sprintf("/api/fights/%d/result", id), body, nil)
	return err
}

// CompleteTournament returns the remote's free-text summary.
func (c *Client) CompleteTournament(ctx context.Context, token string, tournamentID int64) (string, error) {
	raw, err := c.do(ctx, "complete_tournament", token, http.MethodPatch, fmt.Sprintf("/api/tournament/%d/complete", tournamentID), nil, nil)
	if err != nil {
		return "", err
	}
	msg := strings.TrimSpace(string(raw))
	if strings.HasPrefix(msg, `"`) {
		var unquoted string
		if json.Unmarshal(raw, &unquoted) == nil {
			msg = strings.TrimSpace(unquoted)
		}
	}
	if msg == "" {
		return DefaultCompletionMessage, nil
	}
	return msg, nil
}

func (c *Client) CreateSponsorship(ctx context.Context, token string, tournamentID int64, req models.SponsorshipRequest) error {
	body := sponsorshipBody{PackageType: string(req.PackageType), CompanyName: strings.TrimSpace(req.CompanyName)}
	_, err := c.do(ctx, "create_sponsorship", token, http.MethodPost, fmt.Sprintf("/api/sponsorship/tournaments/%d", tournamentID), body, nil)
	return err
}

func (c *Client) CreateApplication(ctx context.Context, token string, req models.ApplicationRequest) error {
	body := applicationBody{
		TournamentID:  req.TournamentID,
		KnightName:    strings.TrimSpace(req.FirstName),
		KnightSurname: strings.TrimSpace(req.LastName),
		Height:        req.Height,
		Weight:        req.Weight,
		Motivation:    strings.TrimSpace(req.Motivation),
		BirthDate:     req.BirthDate,
		CoatOfArmsURL: strings.TrimSpace(req.CoatOfArmsURL),
	}
	_, err := c.do(ctx, "create_application", token, http.MethodPost, "/api/application", body, nil)
	return err
}

// ListApplications returns the participant applications of a tournament.
func (c *Client) ListApplications(ctx context.Context, token string, tournamentID int64) ([]models.ApplicationSummary, error) {
	var dtos []applicationListDTO
	path := fmt.Sprintf("/api/application/tournament/%d", tournamentID)
	if _, err := c.do(ctx, "list_applications", token, http.MethodGet, path, nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]models.ApplicationSummary, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toModel(c.loc))
	}
	return out, nil
}

func (c *Client) UpdateApplicationStatus(ctx context.Context, token string, applicationID int64, review models.ApplicationReview) error {
	body := applicationStatusBody{Status: string(review.Status), Comment: strings.TrimSpace(review.Comment)}
	_, err := c.do(ctx, "update_application_status", token, http.MethodPatch, fmt.Sprintf("/api/application/%d/status", applicationID), body, nil)
	return err
}

func (c *Client) BookTicket(ctx context.Context, token string, tournamentID int64, req models.TicketRequest) error {
	body := ticketBody{SeatsCount: req.Seats, AgreeToRules: req.AgreeToRules}
	_, err := c.do(ctx, "book_ticket", token, http.MethodPost, fmt.Sprintf("/api/tickets/tournaments/%d", tournamentID), body, nil)
	return err
}

func (c *Client) SubmitVote(ctx context.Context, token string, tournamentID, candidateID int64) error {
	body := voteBody{TournamentID: tournamentID, VotedForID: candidateID}
	_, err := c.do(ctx, "submit_vote", token, http.MethodPost, "/api/votes", body, nil)
	return err
}

// ListParticipantsByRole returns the roster entries of one role.
func (c *Client) ListParticipantsByRole(ctx context.Context, token string, tournamentID int64, role models.Role) ([]models.RosterEntry, error) {
	q := url.Values{}
	q.Set("role", role.BackendRole())
	path := fmt.Sprintf("/api/tournament/%d/participants?%s", tournamentID, q.Encode())

	var dtos []participantDTO
	if _, err := c.do(ctx, "list_participants", token, http.MethodGet, path, nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]models.RosterEntry, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toModel(role))
	}
	return out, nil
}
