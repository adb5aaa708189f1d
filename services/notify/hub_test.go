package notifysvc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/user"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func TestCanReceive(t *testing.T) {
	tests := []struct {
		role  user.Role
		event string
		want  bool
	}{
		{user.RoleSuperAdmin, core.EventAdmissionSubmitted, true},
		{user.RoleSuperAdmin, core.EventMessageSubmitted, true},
		{user.RoleSuperAdmin, core.EventUserRegistered, true},
		{user.RoleKetuaYayasan, core.EventAdmissionSubmitted, true},
		{user.RoleKetuaYayasan, core.EventMessageReviewed, true},
		{user.RoleKetuaYayasan, core.EventUserRegistered, false},
		{user.RoleKepalaSekolah, core.EventAdmissionReviewed, true},
		{user.RoleKepalaSekolah, core.EventMessageSubmitted, false},
		{user.RoleTeacher, core.EventAdmissionSubmitted, false},
		{user.RoleParent, core.EventMessageSubmitted, false},
		{user.Role("janitor"), core.EventAdmissionSubmitted, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+tt.event, func(t *testing.T) {
			assert.Equal(t, tt.want, CanReceive(tt.role, tt.event))
		})
	}
}

func TestHub(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nopLogger{}, []string{"*"})
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, user.Identity{ID: "1", Name: "Admin", Role: user.Role(r.URL.Query().Get("role"))})
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?role=" + string(user.RoleSuperAdmin)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	want := core.Event{Type: core.EventAdmissionSubmitted, ID: "reg-1", Summary: "Ahmad (TKA/TPA)"}

	// the connection is registered asynchronously: notify until the first event arrives
	received := make(chan struct{})
	go func() {
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-received:
				return
			case <-ticker.C:
				hub.Notify(want)
			}
		}
	}()

	var got core.Event
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	close(received)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, want, got)

	cancel()
	time.Sleep(50 * time.Millisecond)
	hub.Notify(want) // must not block once closed
}
