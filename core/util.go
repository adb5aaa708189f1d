package core

import "strings"

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// Notifier publishes events about new or changed records to live admin sessions.
type Notifier interface {
	Notify(event Event)
}

// Event is a record-level notification.
type Event struct {
	Type    string      `json:"type"`
	ID      string      `json:"id"`
	Summary string      `json:"summary"`
	Data    interface{} `json:"data,omitempty"`
}

// Event types.
const (
	EventAdmissionSubmitted = "admission.submitted"
	EventAdmissionReviewed  = "admission.reviewed"
	EventMessageSubmitted   = "message.submitted"
	EventMessageReviewed    = "message.reviewed"
	EventUserRegistered     = "user.registered"
)

type nopNotifier struct{}

func (nopNotifier) Notify(Event) {}

// NopNotifier discards every event.
var NopNotifier Notifier = nopNotifier{}
