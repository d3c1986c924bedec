package gates

import "github.com/Dosada05/tournament-client/models"

type Action string

const (
	ActionSponsor   Action = "sponsor"
	ActionRegister  Action = "register"
	ActionBuyTicket Action = "buy_ticket"
	ActionVote      Action = "vote"
)

// ownerRole is the single role under which each action may be exercised.
var ownerRole = map[Action]models.Role{
	ActionSponsor:   models.RoleSponsor,
	ActionRegister:  models.RoleParticipant,
	ActionBuyTicket: models.RoleSpectator,
	ActionVote:      models.RoleSpectator,
}

// ApplyRole filters a stage verdict by the viewer's fixed role in the
// tournament. organizer is true when the viewer organizes this tournament or
// holds the platform-wide organizer flag; organizers never act on the
// participant side. A denial from the role filter takes precedence over the
// stage verdict.
func ApplyRole(action Action, role models.Role, organizer bool, v Verdict) Verdict {
	if organizer || role == models.RoleOrganizer {
		return deny("organizers cannot " + actionPhrase(action))
	}

	owner := ownerRole[action]
	switch {
	case action == ActionRegister && role == models.RoleParticipant:
		return deny("already registered as a participant")
	case action == ActionVote && role != models.RoleSpectator:
		return deny("voting is only for spectators with a confirmed ticket")
	case role != models.RoleNone && role != owner:
		return deny(roleTakenReason(role))
	}
	return v
}

func actionPhrase(a Action) string {
	switch a {
	case ActionSponsor:
		return "sponsor"
	case ActionRegister:
		return "apply as participants"
	case ActionBuyTicket:
		return "buy tickets"
	case ActionVote:
		return "vote"
	}
	return string(a)
}

func roleTakenReason(role models.Role) string {
	switch role {
	case models.RoleSpectator:
		return "you already take part as a spectator"
	case models.RoleParticipant:
		return "you already take part as a participant"
	case models.RoleSponsor:
		return "you already take part as a sponsor"
	}
	return "you already take part in this tournament"
}

// ActionSet holds the role-filtered verdict for every viewer action.
type ActionSet struct {
	Sponsor   Verdict `json:"sponsor"`
	Register  Verdict `json:"register"`
	BuyTicket Verdict `json:"buy_ticket"`
	Vote      Verdict `json:"vote"`
}

// Get returns the verdict for a single action.
func (s ActionSet) Get(a Action) Verdict {
	switch a {
	case ActionSponsor:
		return s.Sponsor
	case ActionRegister:
		return s.Register
	case ActionBuyTicket:
		return s.BuyTicket
	case ActionVote:
		return s.Vote
	}
	return deny("unknown action")
}

// Evaluate runs every gate for t and filters the results by the viewer's role.
func Evaluate(t models.Tournament, globalOrganizer bool) ActionSet {
	stage := t.Stage()
	role := t.ViewerRole()

	required := t.RequiredAmount
	var collected *float64
	if t.CollectedAmount != nil {
		c := *t.CollectedAmount
		collected = &c
	}

	return ActionSet{
		Sponsor:   ApplyRole(ActionSponsor, role, globalOrganizer, CanSponsor(stage, t.FundingRatio(), &required, collected)),
		Register:  ApplyRole(ActionRegister, role, globalOrganizer, CanRegisterAsParticipant(stage, t.AvailableKnightSlots)),
		BuyTicket: ApplyRole(ActionBuyTicket, role, globalOrganizer, CanBuyTicket(stage, t.AvailableSeats)),
		Vote:      ApplyRole(ActionVote, role, globalOrganizer, CanVote(stage)),
	}
}
