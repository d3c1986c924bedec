package models

import "strings"

// RosterEntry is one person attached to a tournament under some role.
// Which optional fields are filled depends on Role.
type RosterEntry struct {
	ID         int64  `json:"id"`
	Name       string `json:"name,omitempty"`
	SecondName string `json:"second_name,omitempty"`
	Email      string `json:"email,omitempty"`
	Role       Role   `json:"role"`

	// PARTICIPANT
	ApplicationStatus  string `json:"application_status,omitempty"`
	ApplicationComment string `json:"application_comment,omitempty"`

	// SPECTATOR
	TicketSeats *int   `json:"ticket_seats,omitempty"`
	BookingCode string `json:"booking_code,omitempty"`

	// SPONSOR
	PackageType       string   `json:"package_type,omitempty"`
	SponsorshipAmount *float64 `json:"sponsorship_amount,omitempty"`
	CompanyName       string   `json:"company_name,omitempty"`
}

func (e RosterEntry) FullName() string {
	full := strings.TrimSpace(strings.TrimSpace(e.Name) + " " + strings.TrimSpace(e.SecondName))
	if full == "" {
		return "Unknown"
	}
	return full
}

// Seats returns the booked seat count, zero when unknown.
func (e RosterEntry) Seats() int {
	if e.TicketSeats == nil {
		return 0
	}
	return *e.TicketSeats
}

// Roster groups the people of a tournament by role.
type Roster struct {
	Sponsors     []RosterEntry `json:"sponsors"`
	Participants []RosterEntry `json:"participants"`
	Spectators   []RosterEntry `json:"spectators"`
}

// FindByIdentity returns the entry whose email matches identity, case-insensitively.
func FindByIdentity(entries []RosterEntry, identity string) *RosterEntry {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return nil
	}
	for i := range entries {
		if strings.EqualFold(strings.TrimSpace(entries[i].Email), identity) {
			return &entries[i]
		}
	}
	return nil
}
