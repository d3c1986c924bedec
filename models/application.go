package models

import (
	"strings"
	"time"
)

// ApplicationStatus is the organizer's decision on a participant application.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "PENDING"
	ApplicationApproved ApplicationStatus = "APPROVED"
	ApplicationRejected ApplicationStatus = "REJECTED"
	ApplicationEdits    ApplicationStatus = "EDITS" // вернуть рыцарю на доработку
)

// ParseApplicationStatus accepts any letter case and surrounding spaces.
func ParseApplicationStatus(raw string) (ApplicationStatus, bool) {
	switch s := ApplicationStatus(strings.ToUpper(strings.TrimSpace(raw))); s {
	case ApplicationPending, ApplicationApproved, ApplicationRejected, ApplicationEdits:
		return s, true
	}
	return "", false
}

// NeedsComment reports whether the remote requires a reviewer comment.
func (s ApplicationStatus) NeedsComment() bool {
	return s == ApplicationRejected || s == ApplicationEdits
}

// ApplicationSummary is one row of a tournament's application list.
type ApplicationSummary struct {
	ID        int64      `json:"id"`
	FullName  string     `json:"full_name"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// ApplicationReview is the organizer's status change for one application.
type ApplicationReview struct {
	Status  ApplicationStatus `json:"status"`
	Comment string            `json:"comment,omitempty"`
}

// CountApproved counts participant entries whose application was approved.
func CountApproved(participants []RosterEntry) int {
	n := 0
	for _, p := range participants {
		if ApplicationStatus(p.ApplicationStatus) == ApplicationApproved {
			n++
		}
	}
	return n
}
