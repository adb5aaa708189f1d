package logsvc

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/user"
)

func TestRollbarLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(log.New(&buf, "", 0), &core.Config{Env: "TEST"})
	logger.Enable(true) // no token: stays disabled

	identity := &user.Identity{ID: "u1", Name: "Admin", Role: user.RoleSuperAdmin}
	logger.Error("saving settings", errors.New("boom"), identity, map[string]interface{}{"version": 3})

	out := buf.String()
	assert.Contains(t, out, "[ERROR] saving settings user=u1(super_admin)")
	assert.Contains(t, out, "\tboom")
	assert.Contains(t, out, "map[version:3]")
}

func Test_split(t *testing.T) {
	usr := user.User{ID: "u2", Name: "Guru", Role: user.RoleTeacher}
	err := errors.New("boom")

	tests := []struct {
		name       string
		args       []interface{}
		wantLen    int
		wantPerson string
	}{
		{"no args", nil, 1, ""},
		{"error only", []interface{}{err}, 2, ""},
		{"user value", []interface{}{err, usr}, 2, "u2"},
		{"first user wins", []interface{}{&user.Identity{ID: "u1"}, usr}, 1, "u1"},
		{"nil identity", []interface{}{(*user.Identity)(nil)}, 1, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			payload, person := split("msg", tc.args)
			assert.Len(t, payload, tc.wantLen)
			assert.Equal(t, "msg", payload[0])
			if tc.wantPerson == "" {
				assert.Nil(t, person)
			} else if assert.NotNil(t, person) {
				assert.Equal(t, tc.wantPerson, person.ID)
			}
		})
	}
}
