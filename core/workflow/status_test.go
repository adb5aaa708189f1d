package workflow

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name        string
		current     Status
		action      Action
		want        Status
		wantErr     bool
		wantUnknown bool
	}{
		{name: "approve pending", current: StatusPending, action: ActionApprove, want: StatusApproved},
		{name: "reject pending", current: StatusPending, action: ActionReject, want: StatusRejected},
		{name: "approve approved", current: StatusApproved, action: ActionApprove, want: StatusApproved, wantErr: true},
		{name: "reject approved", current: StatusApproved, action: ActionReject, want: StatusApproved, wantErr: true},
		{name: "approve rejected", current: StatusRejected, action: ActionApprove, want: StatusRejected, wantErr: true},
		{name: "reject rejected", current: StatusRejected, action: ActionReject, want: StatusRejected, wantErr: true},
		{name: "unknown action", current: StatusPending, action: "publish", want: StatusPending, wantUnknown: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.current, tt.action)
			assert.Equal(t, tt.want, got)
			switch {
			case tt.wantUnknown:
				assert.Equal(t, ErrUnknownAction, errors.Cause(err))
			case tt.wantErr:
				require.Error(t, err)
				assert.True(t, IsInvalidTransition(err))
				tErr := err.(*InvalidTransitionError)
				assert.Equal(t, tt.current, tErr.From)
				assert.Equal(t, tt.action, tErr.Action)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

// Once a status leaves pending, no sequence of actions moves it again.
func TestTransition_terminalStatusesAreFinal(t *testing.T) {
	actions := []Action{ActionApprove, ActionReject}
	for _, first := range actions {
		status, err := Transition(StatusPending, first)
		require.NoError(t, err)
		require.True(t, status.IsTerminal())

		for i := 0; i < 8; i++ {
			next, err := Transition(status, actions[i%2])
			assert.True(t, IsInvalidTransition(err))
			assert.Equal(t, status, next)
		}
	}
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction("approve")
	assert.NoError(t, err)
	assert.Equal(t, ActionApprove, a)

	a, err = ParseAction("reject")
	assert.NoError(t, err)
	assert.Equal(t, ActionReject, a)

	_, err = ParseAction("APPROVE")
	assert.Equal(t, ErrUnknownAction, errors.Cause(err))
}

func TestStatus(t *testing.T) {
	assert.True(t, StatusPending.IsValid())
	assert.False(t, StatusPending.IsTerminal())
	assert.True(t, StatusApproved.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.False(t, Status("draft").IsValid())
}
