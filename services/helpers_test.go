package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tournament-client/apiclient"
)

func TestClassifyRemote(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		action string
		want   error
	}{
		{"unauthorized", &apiclient.APIError{Op: "x", StatusCode: 401}, "sponsor", ErrAuthenticationFailed},
		{"forbidden", &apiclient.APIError{Op: "x", StatusCode: 403}, "", ErrAuthenticationFailed},
		{"write rejected", &apiclient.APIError{Op: "x", StatusCode: 409}, "buy_ticket", ErrRemoteRejected},
		{"read rejected", &apiclient.APIError{Op: "x", StatusCode: 404}, "", ErrRemoteRejected},
		{"server error", &apiclient.APIError{Op: "x", StatusCode: 502}, "sponsor", ErrTemporarilyUnavailable},
		{"transport", fmt.Errorf("op: %w: dial", apiclient.ErrTransport), "", ErrTransport},
		{"deadline", context.DeadlineExceeded, "", ErrTransport},
		{"non-numeric id", fmt.Errorf("%w: match id \"a\" is not numeric", apiclient.ErrInvalidID), "save_match", ErrValidationFailed},
		{"unknown", errors.New("boom"), "", ErrTransport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classifyRemote(tt.err, tt.action), tt.want)
		})
	}
	assert.NoError(t, classifyRemote(nil, "sponsor"))
}

func TestClassifyRemote_DenialReason(t *testing.T) {
	err := classifyRemote(&apiclient.APIError{StatusCode: 400, Body: `{"message":"Недостаточно мест"}`}, "buy_ticket")
	var denial *DenialError
	require.ErrorAs(t, err, &denial)
	assert.True(t, denial.Remote)
	assert.Equal(t, "buy_ticket", denial.Action)
	assert.Equal(t, "Недостаточно мест", denial.Reason)
	assert.ErrorIs(t, err, ErrDenied)

	err = classifyRemote(&apiclient.APIError{StatusCode: 400, Body: "<html>bad</html>"}, "buy_ticket")
	require.ErrorAs(t, err, &denial)
	assert.Equal(t, "the server refused to buy ticket", denial.Reason)

	err = classifyRemote(&apiclient.APIError{StatusCode: 400, Body: "already sponsoring"}, "sponsor")
	require.ErrorAs(t, err, &denial)
	assert.Equal(t, "already sponsoring", denial.Reason)
}

func TestLocalDenialIsNotRemoteRejection(t *testing.T) {
	err := error(&DenialError{Action: "sponsor", Reason: "already fully funded"})
	assert.ErrorIs(t, err, ErrDenied)
	assert.NotErrorIs(t, err, ErrRemoteRejected)
	assert.Equal(t, "sponsor denied: already fully funded", err.Error())
}

func TestValidationError(t *testing.T) {
	v := newValidationError()
	assert.NoError(t, v.errOrNil())

	v.add("seats", "must be at least 1")
	v.add("agree_to_rules", "must be accepted")
	v.add("seats", "ignored")
	err := v.errOrNil()
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Equal(t, "validation failed: agree_to_rules: must be accepted; seats: must be at least 1", err.Error())
}

func TestAudienceChoiceWinner(t *testing.T) {
	tests := []struct {
		summary string
		want    string
	}{
		{"Турнир завершен. Победитель: Артур. Приз Зрительских Симпатий получает: Сэр Ланселот.", "Сэр Ланселот"},
		{"приз зрительский симпатий получает:   Гавейн\nСпасибо!", "Гавейн"},
		{"Турнир завершен", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AudienceChoiceWinner(tt.summary), tt.summary)
	}
}
