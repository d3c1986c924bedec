package apiclient

import (
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/tournament-client/models"
)

// localDateTime is the remote timestamp format (no zone).
const localDateTime = "2006-01-02T15:04:05"

type tournamentDTO struct {
	ID                   int64    `json:"id"`
	Name                 string   `json:"name"`
	RequiredAmount       *float64 `json:"requiredAmount"`
	CollectedAmount      *float64 `json:"collectedAmount"`
	Description          string   `json:"description"`
	PrizePercentNum      *float64 `json:"prizePercentNum"`
	TournamentStatus     string   `json:"tournamentStatus"`
	TotalSeats           *int     `json:"totalSeats"`
	AvailableSeats       *int     `json:"availableSeats"`
	EventDate            string   `json:"eventDate"`
	FinalLocationName    string   `json:"finalLocationName"`
	OrganizerName        string   `json:"organizerName"`
	TotalKnights         *int     `json:"totalKnights"`
	AvailableKnightSlots *int     `json:"availableKnightSlots"`
	UserRole             *string  `json:"userRole"`
}

func (d tournamentDTO) toModel() models.Tournament {
	t := models.Tournament{
		ID:                   d.ID,
		Name:                 d.Name,
		Description:          d.Description,
		RawStatus:            d.TournamentStatus,
		CollectedAmount:      d.CollectedAmount,
		TotalSeats:           d.TotalSeats,
		AvailableSeats:       d.AvailableSeats,
		TotalKnights:         d.TotalKnights,
		AvailableKnightSlots: d.AvailableKnightSlots,
		EventDate:            d.EventDate,
		Location:             d.FinalLocationName,
		OrganizerName:        d.OrganizerName,
		UserRole:             d.UserRole,
	}
	if d.RequiredAmount != nil {
		t.RequiredAmount = *d.RequiredAmount
	}
	if d.PrizePercentNum != nil {
		t.PrizePercent = *d.PrizePercentNum
	}
	return t
}

type fightMatchDTO struct {
	MatchID          *int64  `json:"matchId"`
	Round            string  `json:"round"`
	RoundDisplayName string  `json:"roundDisplayName"`
	Fighter1ID       *int64  `json:"fighter1Id"`
	Fighter1Name     string  `json:"fighter1Name"`
	Fighter2ID       *int64  `json:"fighter2Id"`
	Fighter2Name     string  `json:"fighter2Name"`
	WinnerID         *int64  `json:"winnerId"`
	WinnerName       string  `json:"winnerName"`
	FightDate        *string `json:"fightDate"`
	Comment          string  `json:"comment"`
	NextMatchID      *int64  `json:"nextMatchId"`
}

type bracketDTO struct {
	TournamentID   int64           `json:"tournamentId"`
	TournamentName string          `json:"tournamentName"`
	GeneratedAt    *string         `json:"generatedAt"`
	Matches        []fightMatchDTO `json:"matches"`
}

func idString(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

func competitor(id *int64, name string) *models.Competitor {
	if id == nil {
		return nil
	}
	return &models.Competitor{ID: idString(id), Name: name}
}

// parseRemoteTime accepts the remote LocalDateTime with or without seconds
// and fractional part, and RFC 3339 with a zone.
func parseRemoteTime(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, true
	}
	if i := strings.IndexByte(raw, '.'); i > 0 {
		raw = raw[:i]
	}
	for _, layout := range []string{localDateTime, "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (d fightMatchDTO) toModel(loc *time.Location) models.Match {
	m := models.Match{
		ID:          idString(d.MatchID),
		Round:       strings.ToUpper(strings.TrimSpace(d.Round)),
		RoundName:   d.RoundDisplayName,
		CompetitorA: competitor(d.Fighter1ID, d.Fighter1Name),
		CompetitorB: competitor(d.Fighter2ID, d.Fighter2Name),
		WinnerID:    idString(d.WinnerID),
		Comment:     d.Comment,
		NextMatchID: idString(d.NextMatchID),
	}
	if d.FightDate != nil {
		if t, ok := parseRemoteTime(*d.FightDate, loc); ok {
			m.ScheduledTime = &t
		}
	}
	return m
}

func (d bracketDTO) toModel(loc *time.Location) *models.Bracket {
	b := &models.Bracket{
		TournamentID:   d.TournamentID,
		TournamentName: d.TournamentName,
		Matches:        make([]models.Match, 0, len(d.Matches)),
	}
	if d.GeneratedAt != nil {
		if t, ok := parseRemoteTime(*d.GeneratedAt, loc); ok {
			b.GeneratedAt = t
		}
	}
	for _, m := range d.Matches {
		b.Matches = append(b.Matches, m.toModel(loc))
	}
	return b
}

type participantDTO struct {
	ID                 *int64   `json:"id"`
	Name               string   `json:"name"`
	SecondName         string   `json:"secondName"`
	Email              string   `json:"email"`
	Role               string   `json:"role"`
	ApplicationStatus  string   `json:"applicationStatus"`
	ApplicationComment string   `json:"applicationComment"`
	TicketSeatsCount   *int     `json:"ticketSeatsCount"`
	BookingCode        *string  `json:"bookingCode"`
	PackageType        string   `json:"packageType"`
	SponsorshipAmount  *float64 `json:"sponsorshipAmount"`
	CompanyName        string   `json:"companyName"`
}

func (d participantDTO) toModel(fallback models.Role) models.RosterEntry {
	e := models.RosterEntry{
		Name:               d.Name,
		SecondName:         d.SecondName,
		Email:              d.Email,
		Role:               models.NormalizeRole(d.Role),
		ApplicationStatus:  strings.ToUpper(strings.TrimSpace(d.ApplicationStatus)),
		ApplicationComment: d.ApplicationComment,
		TicketSeats:        d.TicketSeatsCount,
		PackageType:        d.PackageType,
		SponsorshipAmount:  d.SponsorshipAmount,
		CompanyName:        d.CompanyName,
	}
	if d.ID != nil {
		e.ID = *d.ID
	}
	if d.BookingCode != nil {
		e.BookingCode = strings.TrimSpace(*d.BookingCode)
	}
	if e.Role == models.RoleNone {
		e.Role = fallback
	}
	return e
}

type sponsorshipBody struct {
	PackageType string `json:"packageType"`
	CompanyName string `json:"companyName"`
}

type applicationBody struct {
	TournamentID  int64    `json:"tournamentId"`
	KnightName    string   `json:"knightName"`
	KnightSurname string   `json:"knightSurname"`
	Height        *float64 `json:"height,omitempty"`
	Weight        *float64 `json:"weight,omitempty"`
	Motivation    string   `json:"motivation,omitempty"`
	BirthDate     string   `json:"birthDate,omitempty"`
	CoatOfArmsURL string   `json:"coatOfArmsUrl,omitempty"`
}

type applicationListDTO struct {
	ID        int64  `json:"id"`
	FullName  string `json:"fullName"`
	CreatedAt string `json:"createdAt"`
}

func (d applicationListDTO) toModel(loc *time.Location) models.ApplicationSummary {
	a := models.ApplicationSummary{ID: d.ID, FullName: strings.TrimSpace(d.FullName)}
	if t, ok := parseRemoteTime(d.CreatedAt, loc); ok {
		a.CreatedAt = &t
	}
	return a
}

type applicationStatusBody struct {
	Status  string `json:"status"`
	Comment string `json:"comment,omitempty"`
}

type ticketBody struct {
	SeatsCount   int  `json:"seatsCount"`
	AgreeToRules bool `json:"agreeToRules"`
}

type voteBody struct {
	TournamentID int64 `json:"tournamentId"`
	VotedForID   int64 `json:"votedForId"`
}

type fightDateBody struct {
	NewFightDate string `json:"newFightDate"`
}

type fightResultBody struct {
	WinnerID int64  `json:"winnerId"`
	Comment  string `json:"comment,omitempty"`
}
