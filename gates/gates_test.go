package gates

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Dosada05/tournament-client/models"
)

var allStages = []models.Stage{
	models.StageFundraising,
	models.StageRegistration,
	models.StageTicketSales,
	models.StageInProgress,
	models.StageCompleted,
	models.StageUnknown,
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }

func TestGates_DenyOutsideDesignatedStage(t *testing.T) {
	checks := map[string]struct {
		open models.Stage
		run  func(models.Stage) Verdict
	}{
		"sponsor": {models.StageFundraising, func(s models.Stage) Verdict {
			return CanSponsor(s, 10, floatPtr(1000), floatPtr(100))
		}},
		"register": {models.StageRegistration, func(s models.Stage) Verdict {
			return CanRegisterAsParticipant(s, intPtr(5))
		}},
		"ticket": {models.StageTicketSales, func(s models.Stage) Verdict {
			return CanBuyTicket(s, intPtr(5))
		}},
	}

	for name, c := range checks {
		t.Run(name, func(t *testing.T) {
			reasons := map[string]models.Stage{}
			for _, stage := range allStages {
				v := c.run(stage)
				if stage == c.open {
					assert.True(t, v.Allowed, "stage %s", stage)
					assert.Empty(t, v.Reason)
					continue
				}
				assert.False(t, v.Allowed, "stage %s", stage)
				assert.NotEmpty(t, v.Reason, "stage %s", stage)

				prev, seen := reasons[v.Reason]
				assert.False(t, seen, "stages %s and %s share reason %q", prev, stage, v.Reason)
				reasons[v.Reason] = stage
			}
		})
	}
}

func TestCanSponsor(t *testing.T) {
	v := CanSponsor(models.StageFundraising, 100, floatPtr(1000), floatPtr(1000))
	assert.False(t, v.Allowed)
	assert.Equal(t, ReasonFullyFunded, v.Reason)

	v = CanSponsor(models.StageFundraising, 99, floatPtr(1000), floatPtr(990))
	assert.True(t, v.Allowed)

	v = CanSponsor(models.StageFundraising, 0, floatPtr(0), nil)
	assert.Equal(t, ReasonNoFundingTarget, v.Reason)

	// only the ratio is known
	v = CanSponsor(models.StageFundraising, 120, nil, nil)
	assert.Equal(t, ReasonFullyFunded, v.Reason)

	v = CanSponsor(models.StageFundraising, 0, nil, nil)
	assert.True(t, v.Allowed)
}

func TestCanRegisterAsParticipant_Capacity(t *testing.T) {
	v := CanRegisterAsParticipant(models.StageRegistration, intPtr(0))
	assert.False(t, v.Allowed)
	assert.Equal(t, ReasonNoSlots, v.Reason)

	assert.True(t, CanRegisterAsParticipant(models.StageRegistration, nil).Allowed)
}

func TestCanBuyTicket_Capacity(t *testing.T) {
	v := CanBuyTicket(models.StageTicketSales, intPtr(-1))
	assert.Equal(t, ReasonSoldOut, v.Reason)
	assert.True(t, CanBuyTicket(models.StageTicketSales, nil).Allowed)
}

func TestCanVote(t *testing.T) {
	for _, stage := range allStages {
		v := CanVote(stage)
		assert.Equal(t, stage == models.StageInProgress, v.Allowed, "stage %s", stage)
	}
}

func TestApplyRole_ParticipantNeverSponsorsOrBuys(t *testing.T) {
	open := Verdict{Allowed: true}
	for _, action := range []Action{ActionSponsor, ActionBuyTicket, ActionRegister, ActionVote} {
		v := ApplyRole(action, models.RoleParticipant, false, open)
		assert.False(t, v.Allowed, "action %s", action)
		assert.NotEmpty(t, v.Reason)
	}

	for _, raw := range []string{"WAITING_DONATION", "KNIGHT_REGISTRATION", "TICKET_SALES", "ACTIVE", "COMPLETED"} {
		tr := models.Tournament{
			RawStatus:      raw,
			RequiredAmount: 1000,
			AvailableSeats: intPtr(10),
			UserRole:       strPtr("KNIGHT"),
		}
		set := Evaluate(tr, false)
		assert.False(t, set.Sponsor.Allowed, raw)
		assert.False(t, set.BuyTicket.Allowed, raw)
	}
}

func TestApplyRole(t *testing.T) {
	open := Verdict{Allowed: true}
	closed := Verdict{Reason: "closed"}

	tests := []struct {
		name      string
		action    Action
		role      models.Role
		organizer bool
		in        Verdict
		allowed   bool
	}{
		{"fresh viewer keeps gate verdict", ActionSponsor, models.RoleNone, false, open, true},
		{"fresh viewer keeps denial", ActionSponsor, models.RoleNone, false, closed, false},
		{"sponsor may sponsor again", ActionSponsor, models.RoleSponsor, false, open, true},
		{"sponsor cannot register", ActionRegister, models.RoleSponsor, false, open, false},
		{"spectator buys more seats", ActionBuyTicket, models.RoleSpectator, false, open, true},
		{"spectator votes", ActionVote, models.RoleSpectator, false, open, true},
		{"no role cannot vote", ActionVote, models.RoleNone, false, open, false},
		{"organizer role", ActionBuyTicket, models.RoleOrganizer, false, open, false},
		{"global organizer", ActionSponsor, models.RoleNone, true, open, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ApplyRole(tt.action, tt.role, tt.organizer, tt.in)
			assert.Equal(t, tt.allowed, v.Allowed)
			if !v.Allowed {
				assert.NotEmpty(t, v.Reason)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	tr := models.Tournament{
		RawStatus:       "WAITING_DONATION",
		RequiredAmount:  1000,
		CollectedAmount: floatPtr(400),
	}
	set := Evaluate(tr, false)
	assert.True(t, set.Sponsor.Allowed)
	assert.False(t, set.Register.Allowed)
	assert.False(t, set.BuyTicket.Allowed)
	assert.False(t, set.Vote.Allowed)
	assert.Equal(t, set.Sponsor, set.Get(ActionSponsor))

	tr.CollectedAmount = floatPtr(1000)
	assert.Equal(t, ReasonFullyFunded, Evaluate(tr, false).Sponsor.Reason)

	tr = models.Tournament{RawStatus: "ACTIVE", UserRole: strPtr("SPECTATOR")}
	assert.True(t, Evaluate(tr, false).Vote.Allowed)
	assert.False(t, Evaluate(tr, true).Vote.Allowed)
}
