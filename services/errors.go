package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound           = errors.New("requested resource not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrMatchNotFound      = errors.New("match not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed = errors.New("validation failed")
	ErrDenied           = errors.New("action denied")
	ErrEditInProgress   = errors.New("another match edit is in progress")

	// Ошибки аутентификации и авторизации
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")

	// Ошибки удаленного сервиса
	ErrRemoteRejected         = errors.New("remote service rejected the request")
	ErrTemporarilyUnavailable = errors.New("service temporarily unavailable")
	ErrTransport              = errors.New("remote service unreachable")
)

// DenialError is a user-facing refusal of an action. Remote is true when the
// refusal came back from the remote service rather than from a local gate.
type DenialError struct {
	Action string
	Reason string
	Remote bool
}

func (e *DenialError) Error() string {
	return fmt.Sprintf("%s denied: %s", e.Action, e.Reason)
}

func (e *DenialError) Is(target error) bool {
	if target == ErrDenied {
		return true
	}
	return e.Remote && target == ErrRemoteRejected
}

// ValidationError carries per-field messages for failedValidationResponse.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) add(field, msg string) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// errOrNil returns nil for an empty set so callers can return it directly.
func (e *ValidationError) errOrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
