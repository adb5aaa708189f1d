package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/user"
)

func keys(tabs []Tab) []TabKey {
	ks := make([]TabKey, 0, len(tabs))
	for _, t := range tabs {
		ks = append(ks, t.Key)
	}
	return ks
}

func TestTabsFor(t *testing.T) {
	tests := []struct {
		role user.Role
		want []TabKey
	}{
		{role: user.RoleSuperAdmin, want: []TabKey{TabStudents, TabTeachers, TabGraduates, TabAdmissions, TabMessages, TabAlbums, TabSettings, TabReports, TabUsers}},
		{role: user.RoleKetuaYayasan, want: []TabKey{TabTeachers, TabGraduates, TabAdmissions, TabMessages, TabReports}},
		{role: user.RoleKepalaSekolah, want: []TabKey{TabStudents, TabTeachers, TabGraduates, TabAdmissions, TabReports}},
		{role: user.RoleTeacher, want: []TabKey{TabStudents, TabReports}},
		{role: user.RoleParent, want: []TabKey{TabReports}},
		{role: "guest", want: []TabKey{}},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.want, keys(TabsFor(&user.Identity{ID: "1", Role: tt.role})))
		})
	}

	assert.Empty(t, TabsFor(nil))
}

func TestMustGet(t *testing.T) {
	for _, tab := range Tabs {
		assert.Equal(t, tab.Key, MustGet(tab.Key).Key)
	}
	_, ok := Get("dashboard")
	assert.False(t, ok)
	assert.Panics(t, func() { MustGet("dashboard") })
}
