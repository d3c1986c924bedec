package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStage(t *testing.T) {
	tests := []struct {
		raw  string
		want Stage
	}{
		{"WAITING_DONATION", StageFundraising},
		{"waiting_donation", StageFundraising},
		{"KNIGHT_REGISTRATION", StageRegistration},
		{"registration", StageRegistration},
		{"TICKET_SALES", StageTicketSales},
		{"on sale", StageTicketSales},
		{"ACTIVE", StageInProgress},
		{"running", StageInProgress},
		{"IN_PROGRESS", StageInProgress},
		{"COMPLETED", StageCompleted},
		{"done", StageCompleted},
		{"Finished", StageCompleted},
		{"CREATED", StageFundraising},
		{"draft", StageFundraising},
		{"FUNDRAISING", StageFundraising},
		{"UNKNOWN", StageUnknown},
		{"  ", StageUnknown},
		{"", StageUnknown},
		{"CANCELED", StageUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeStage(tt.raw))
		})
	}
}

func TestNormalizeStage_Idempotent(t *testing.T) {
	labels := []string{
		"WAITING_DONATION", "KNIGHT_REGISTRATION", "TICKET_SALES", "ACTIVE",
		"COMPLETED", "CREATED", "DRAFT", "RUNNING", "IN_PROGRESS", "REGISTRATION",
		"FUNDRAISING", "UNKNOWN",
	}
	for _, raw := range labels {
		once := NormalizeStage(raw)
		assert.Equal(t, once, NormalizeStage(string(once)), "label %q", raw)
	}
}

func TestNormalizeRole(t *testing.T) {
	assert.Equal(t, RoleParticipant, NormalizeRole("knight"))
	assert.Equal(t, RoleParticipant, NormalizeRole("PARTICIPANT"))
	assert.Equal(t, RoleSpectator, NormalizeRole(" Spectator "))
	assert.Equal(t, RoleSponsor, NormalizeRole("SPONSOR"))
	assert.Equal(t, RoleOrganizer, NormalizeRole("organizer"))
	assert.Equal(t, RoleNone, NormalizeRole(""))
	assert.Equal(t, RoleNone, NormalizeRole("viewer"))
	assert.Equal(t, "KNIGHT", RoleParticipant.BackendRole())
}

func TestTournamentFunding(t *testing.T) {
	collected := 1500.0
	tr := Tournament{RequiredAmount: 1000, CollectedAmount: &collected}
	assert.InDelta(t, 150, tr.FundingRatio(), 0.001)
	assert.InDelta(t, 100, tr.FundingProgress(), 0.001)

	tr.RequiredAmount = 0
	assert.Zero(t, tr.FundingRatio())

	tr = Tournament{RequiredAmount: 1000}
	assert.Zero(t, tr.Collected())
	assert.Zero(t, tr.FundingProgress())
}
