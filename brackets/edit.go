package brackets

import (
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/tournament-client/models"
)

// ErrEditLocked is returned when another match of the bracket is being edited or saved.
var ErrEditLocked = errors.New("another match edit is in progress")

// MatchEdit is an organizer's pending change to one match. Nil/empty fields
// mean "leave as is".
type MatchEdit struct {
	ScheduledTime *time.Time `json:"scheduled_time,omitempty"`
	WinnerID      string     `json:"winner_id,omitempty"`
	Comment       string     `json:"comment,omitempty"`
}

type SaveStepKind string

const (
	StepSchedule SaveStepKind = "schedule"
	StepResult   SaveStepKind = "result"
)

type SaveStep struct {
	Kind          SaveStepKind
	ScheduledTime time.Time
	WinnerID      string
	Comment       string
}

// SavePlan is the ordered list of remote writes needed to apply an edit.
type SavePlan struct {
	MatchID string
	Steps   []SaveStep
}

func (p SavePlan) Empty() bool { return len(p.Steps) == 0 }

// PlanSave validates edit against m and returns only the changed fields as
// steps. The schedule step always precedes the result step.
func PlanSave(m models.Match, edit MatchEdit, policy ResultPolicy) (SavePlan, error) {
	plan := SavePlan{MatchID: m.ID}
	scratch := m

	if edit.ScheduledTime != nil && (m.ScheduledTime == nil || !m.ScheduledTime.Equal(*edit.ScheduledTime)) {
		if err := ScheduleMatch(&scratch, *edit.ScheduledTime); err != nil {
			return SavePlan{}, err
		}
		plan.Steps = append(plan.Steps, SaveStep{Kind: StepSchedule, ScheduledTime: *edit.ScheduledTime})
	}

	if edit.WinnerID != "" && edit.WinnerID != m.WinnerID {
		if err := RecordResult(&scratch, edit.WinnerID, policy); err != nil {
			return SavePlan{}, err
		}
		plan.Steps = append(plan.Steps, SaveStep{Kind: StepResult, WinnerID: edit.WinnerID, Comment: edit.Comment})
	}
	return plan, nil
}

type EditPhase string

const (
	PhaseIdle    EditPhase = "idle"
	PhaseEditing EditPhase = "editing"
	PhaseSaving  EditPhase = "saving"
)

// EditState is the tagged value idle | editing(matchID) | saving(matchID).
type EditState struct {
	Phase   EditPhase `json:"phase"`
	MatchID string    `json:"match_id,omitempty"`
}

// EditLock serializes match edits of one bracket. It is not safe for
// concurrent use; callers guard it with their own mutex.
type EditLock struct {
	state EditState
}

func NewEditLock() *EditLock {
	return &EditLock{state: EditState{Phase: PhaseIdle}}
}

func (l *EditLock) State() EditState { return l.state }

// BeginEdit opens matchID for editing. Switching to another match is allowed
// while nothing is being saved.
func (l *EditLock) BeginEdit(matchID string) error {
	if l.state.Phase == PhaseSaving {
		return fmt.Errorf("%w: match %s is saving", ErrEditLocked, l.state.MatchID)
	}
	l.state = EditState{Phase: PhaseEditing, MatchID: matchID}
	return nil
}

// Cancel closes the editor unless a save is in flight.
func (l *EditLock) Cancel(matchID string) error {
	switch {
	case l.state.Phase == PhaseSaving:
		return fmt.Errorf("%w: match %s is saving", ErrEditLocked, l.state.MatchID)
	case l.state.Phase == PhaseEditing && l.state.MatchID != matchID:
		return nil
	}
	l.state = EditState{Phase: PhaseIdle}
	return nil
}

// BeginSave moves to saving(matchID). Only one save may be in flight.
func (l *EditLock) BeginSave(matchID string) error {
	if l.state.Phase == PhaseSaving {
		return fmt.Errorf("%w: match %s is saving", ErrEditLocked, l.state.MatchID)
	}
	l.state = EditState{Phase: PhaseSaving, MatchID: matchID}
	return nil
}

// FinishSave releases the lock. A failed save returns the match to editing so
// the organizer can retry.
func (l *EditLock) FinishSave(matchID string, ok bool) {
	if l.state.Phase != PhaseSaving || l.state.MatchID != matchID {
		return
	}
	if ok {
		l.state = EditState{Phase: PhaseIdle}
		return
	}
	l.state = EditState{Phase: PhaseEditing, MatchID: matchID}
}
