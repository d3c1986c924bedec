package models

import "strings"

// NormalizeStage maps a backend lifecycle label onto a canonical Stage.
// The backend vocabulary has drifted between versions (WAITING_DONATION,
// KNIGHT_REGISTRATION, ACTIVE, ...), so matching is by substring and the
// order of the checks matters.
func NormalizeStage(raw string) Stage {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return StageUnknown
	}

	switch {
	case strings.Contains(s, "DONATION"), strings.Contains(s, "WAITING"):
		return StageFundraising
	case strings.Contains(s, "REG"):
		return StageRegistration
	case strings.Contains(s, "TICKET"), strings.Contains(s, "SALE"):
		return StageTicketSales
	case strings.Contains(s, "PROGRESS"), strings.Contains(s, "RUN"), strings.Contains(s, "ACTIVE"):
		return StageInProgress
	case strings.Contains(s, "COMP"), strings.Contains(s, "DONE"), strings.Contains(s, "FINISH"):
		return StageCompleted
	case strings.Contains(s, "CREATE"), strings.Contains(s, "DRAFT"):
		return StageFundraising
	}

	switch Stage(s) {
	case StageFundraising, StageRegistration, StageTicketSales, StageInProgress, StageCompleted:
		return Stage(s)
	}
	return StageUnknown
}

// NormalizeRole maps the backend role label onto a Role. KNIGHT is the
// backend's name for a participant.
func NormalizeRole(raw string) Role {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "SPECTATOR":
		return RoleSpectator
	case "KNIGHT", "PARTICIPANT":
		return RoleParticipant
	case "SPONSOR":
		return RoleSponsor
	case "ORGANIZER":
		return RoleOrganizer
	}
	return RoleNone
}

// BackendRole returns the label the remote service expects in role filters.
func (r Role) BackendRole() string {
	if r == RoleParticipant {
		return "KNIGHT"
	}
	return string(r)
}
