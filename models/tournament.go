package models

import "time"

// Stage представляет каноническую стадию жизненного цикла турнира.
type Stage string

const (
	StageFundraising  Stage = "FUNDRAISING"
	StageRegistration Stage = "REGISTRATION"
	StageTicketSales  Stage = "TICKET_SALES"
	StageInProgress   Stage = "IN_PROGRESS"
	StageCompleted    Stage = "COMPLETED"
	StageUnknown      Stage = "UNKNOWN"
)

// Role is the role a viewer holds inside one specific tournament.
// Once assigned it never changes for that tournament.
type Role string

const (
	RoleNone        Role = ""
	RoleSpectator   Role = "SPECTATOR"
	RoleParticipant Role = "PARTICIPANT"
	RoleSponsor     Role = "SPONSOR"
	RoleOrganizer   Role = "ORGANIZER"
)

// Tournament представляет турнир в том виде, в каком его отдает удаленный сервис.
type Tournament struct {
	ID                   int64    `json:"id"`
	Name                 string   `json:"name"`
	Description          string   `json:"description,omitempty"`
	RawStatus            string   `json:"status"`
	RequiredAmount       float64  `json:"required_amount"`
	CollectedAmount      *float64 `json:"collected_amount,omitempty"`
	PrizePercent         float64  `json:"prize_percent,omitempty"`
	TotalSeats           *int     `json:"total_seats,omitempty"`
	AvailableSeats       *int     `json:"available_seats,omitempty"`
	TotalKnights         *int     `json:"total_knights,omitempty"`
	AvailableKnightSlots *int     `json:"available_knight_slots,omitempty"`
	EventDate            string   `json:"event_date,omitempty"`
	Location             string   `json:"location,omitempty"`
	OrganizerName        string   `json:"organizer_name,omitempty"`
	UserRole             *string  `json:"user_role,omitempty"`
}

// Stage normalizes the backend status label.
func (t Tournament) Stage() Stage {
	return NormalizeStage(t.RawStatus)
}

// ViewerRole returns the viewer's fixed role in this tournament.
func (t Tournament) ViewerRole() Role {
	if t.UserRole == nil {
		return RoleNone
	}
	return NormalizeRole(*t.UserRole)
}

// Collected returns the collected amount, zero when the backend omitted it.
func (t Tournament) Collected() float64 {
	if t.CollectedAmount == nil {
		return 0
	}
	return *t.CollectedAmount
}

// FundingRatio is collected/required*100 without clamping; it may exceed 100.
func (t Tournament) FundingRatio() float64 {
	if t.RequiredAmount <= 0 {
		return 0
	}
	return t.Collected() / t.RequiredAmount * 100
}

// FundingProgress is the display value of FundingRatio, clamped to [0,100].
func (t Tournament) FundingProgress() float64 {
	r := t.FundingRatio()
	switch {
	case r < 0:
		return 0
	case r > 100:
		return 100
	}
	return r
}

// EventDay parses EventDate ("YYYY-MM-DD"); ok is false when absent or malformed.
func (t Tournament) EventDay() (day time.Time, ok bool) {
	if len(t.EventDate) < 10 {
		return time.Time{}, false
	}
	d, err := time.Parse(time.DateOnly, t.EventDate[:10])
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
