// Package workflow holds the review status shared by admissions and messages.
//
// A record starts pending and is approved or rejected exactly once:
//
//	pending --approve--> approved
//	pending --reject---> rejected
//
// approved and rejected are terminal.
package workflow

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var Statuses = []Status{StatusPending, StatusApproved, StatusRejected}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

var (
	// ErrUnknownAction is returned for actions other than approve and reject.
	ErrUnknownAction = errors.New("unknown review action")

	// ErrStatusConflict is returned by repositories when a conditional status update matched no row
	// because the stored status is no longer the expected one.
	ErrStatusConflict = errors.New("status changed concurrently")
)

func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionApprove, ActionReject:
		return a, nil
	}
	return "", errors.Wrapf(ErrUnknownAction, "%q", s)
}

// InvalidTransitionError reports an action applied to a record that already left pending.
type InvalidTransitionError struct {
	From   Status
	Action Action
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s: record is already %s", e.Action, e.From)
}

func IsInvalidTransition(err error) bool {
	_, ok := errors.Cause(err).(*InvalidTransitionError)
	return ok
}

// Transition returns the status reached by applying `action` to a record in `current` status.
func Transition(current Status, action Action) (Status, error) {
	if action != ActionApprove && action != ActionReject {
		return current, errors.Wrapf(ErrUnknownAction, "%q", action)
	}
	if current != StatusPending {
		return current, &InvalidTransitionError{From: current, Action: action}
	}
	if action == ActionApprove {
		return StatusApproved, nil
	}
	return StatusRejected, nil
}

// Review records who moved a record out of pending, and when.
type Review struct {
	By   string
	At   time.Time
	Note string
}
