// Package gates decides whether tournament actions are open at the current
// lifecycle stage. The functions are pure; callers combine them with the
// viewer's role through ApplyRole before exposing an action.
package gates

import "github.com/Dosada05/tournament-client/models"

// Verdict is the outcome of one eligibility check. Reason is set only when
// Allowed is false.
type Verdict struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

func allow() Verdict { return Verdict{Allowed: true} }

func deny(reason string) Verdict { return Verdict{Reason: reason} }

const (
	ReasonNoFundingTarget = "no funding target"
	ReasonFullyFunded     = "already fully funded"
	ReasonNoSlots         = "no slots remaining"
	ReasonSoldOut         = "sold out"
	ReasonRunning         = "tournament already running"
	ReasonFinished        = "tournament already finished"
)

// CanSponsor is open only while the tournament is fundraising and not yet
// fully funded. required and collected may be nil when unknown.
func CanSponsor(stage models.Stage, fundingRatioPct float64, required, collected *float64) Verdict {
	if stage != models.StageFundraising {
		switch stage {
		case models.StageRegistration:
			return deny("fundraising is over, registration already open")
		case models.StageTicketSales:
			return deny("fundraising closed, ticket sales under way")
		case models.StageInProgress:
			return deny(ReasonRunning)
		case models.StageCompleted:
			return deny(ReasonFinished)
		}
		return deny("fundraising is not open")
	}

	if required != nil && *required <= 0 {
		return deny(ReasonNoFundingTarget)
	}
	if required != nil && collected != nil && *collected >= *required {
		return deny(ReasonFullyFunded)
	}
	if fundingRatioPct >= 100 {
		return deny(ReasonFullyFunded)
	}
	return allow()
}

// CanRegisterAsParticipant is open only during registration. Unknown
// capacity never blocks.
func CanRegisterAsParticipant(stage models.Stage, availableSlots *int) Verdict {
	if stage != models.StageRegistration {
		switch stage {
		case models.StageFundraising:
			return deny("registration has not started yet")
		case models.StageTicketSales:
			return deny("registration already closed")
		case models.StageInProgress:
			return deny(ReasonRunning)
		case models.StageCompleted:
			return deny(ReasonFinished)
		}
		return deny("registration is not available")
	}

	if availableSlots != nil && *availableSlots <= 0 {
		return deny(ReasonNoSlots)
	}
	return allow()
}

// CanBuyTicket is open only during ticket sales. Unknown capacity never blocks.
func CanBuyTicket(stage models.Stage, availableSeats *int) Verdict {
	if stage != models.StageTicketSales {
		switch stage {
		case models.StageFundraising:
			return deny("ticket sales have not started, fundraising under way")
		case models.StageRegistration:
			return deny("ticket sales have not started, registration under way")
		case models.StageInProgress:
			return deny(ReasonRunning)
		case models.StageCompleted:
			return deny(ReasonFinished)
		}
		return deny("ticket sales are not open")
	}

	if availableSeats != nil && *availableSeats <= 0 {
		return deny(ReasonSoldOut)
	}
	return allow()
}

// CanVote reports whether audience voting is open at this stage. Ticket
// confirmation is checked separately by the voting guard.
func CanVote(stage models.Stage) Verdict {
	switch stage {
	case models.StageInProgress:
		return allow()
	case models.StageCompleted:
		return deny("voting closed, tournament already finished")
	}
	return deny("voting opens once the tournament is running")
}
