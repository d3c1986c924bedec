package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Dosada05/tournament-client/apiclient"
	"github.com/Dosada05/tournament-client/models"
)

// --- Общие хелперы ---

const maxRemoteReasonLen = 200

// classifyRemote maps a remote failure onto the service error vocabulary.
// action is the user action the call performed; for reads it is empty and
// a 4xx is reported as ErrRemoteRejected instead of a denial.
func classifyRemote(err error, action string) error {
	if err == nil {
		return nil
	}

	var apiErr *apiclient.APIError
	switch {
	case errors.As(err, &apiErr):
		switch {
		case apiErr.Unauthorized():
			return fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
		case apiErr.Rejected() && action != "":
			return &DenialError{Action: action, Reason: remoteReason(apiErr, action), Remote: true}
		case apiErr.Rejected():
			return fmt.Errorf("%w: %v", ErrRemoteRejected, err)
		}
		return fmt.Errorf("%w: %v", ErrTemporarilyUnavailable, err)
	case errors.Is(err, apiclient.ErrInvalidID):
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrTransport, err)
	case errors.Is(err, apiclient.ErrTransport):
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return fmt.Errorf("%w: %v", ErrTransport, err)
}

// remoteReason extracts a short human message from a rejection body. The
// backend answers either with plain text or with {"message": "..."}.
func remoteReason(apiErr *apiclient.APIError, action string) string {
	body := strings.TrimSpace(apiErr.Body)
	if strings.HasPrefix(body, "{") {
		var payload struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		body = ""
		if json.Unmarshal([]byte(apiErr.Body), &payload) == nil {
			body = strings.TrimSpace(payload.Message)
			if body == "" {
				body = strings.TrimSpace(payload.Error)
			}
		}
	}
	if body != "" && utf8.RuneCountInString(body) <= maxRemoteReasonLen && !strings.HasPrefix(body, "<") {
		return body
	}
	return fmt.Sprintf("the server refused to %s", strings.ReplaceAll(action, "_", " "))
}

func isAuthError(err error) bool {
	return errors.Is(err, ErrAuthenticationFailed)
}

// audienceChoicePattern находит победителя приза зрительских симпатий в тексте итогов.
var audienceChoicePattern = regexp.MustCompile(`(?i)Приз\s+Зрительск(?:их|ий)\s+Симпатий\s+получает:\s*([^\n\.]+)`)

// AudienceChoiceWinner returns the audience choice winner named in a
// completion summary, or "" when the summary does not mention one.
func AudienceChoiceWinner(summary string) string {
	m := audienceChoicePattern.FindStringSubmatch(summary)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func findMatch(b *models.Bracket, matchID string) (models.Match, bool) {
	if b == nil {
		return models.Match{}, false
	}
	for _, m := range b.Matches {
		if m.ID == matchID {
			return m, true
		}
	}
	return models.Match{}, false
}
