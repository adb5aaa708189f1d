// Package workspace composes the admin workspace from the role policy: every tab is guarded by the roles
// holding its capability, and a user sees only the tabs they may open.
package workspace

import (
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/user"
)

type TabKey string

const (
	TabStudents   TabKey = "students"
	TabTeachers   TabKey = "teachers"
	TabGraduates  TabKey = "graduates"
	TabAdmissions TabKey = "admissions"
	TabMessages   TabKey = "messages"
	TabAlbums     TabKey = "albums"
	TabSettings   TabKey = "settings"
	TabReports    TabKey = "reports"
	TabUsers      TabKey = "users"
)

type Tab struct {
	Key   TabKey `json:"key"`
	Title string `json:"title"`
	Path  string `json:"path"`

	capability user.Capability
	roles      []user.Role // used when no capability guards the tab
}

// AllowedRoles returns the roles that may open the tab.
func (t Tab) AllowedRoles() user.RoleSet {
	if t.capability != "" {
		return user.NewRoleSet(user.RolesWith(t.capability)...)
	}
	return user.NewRoleSet(t.roles...)
}

// Tabs lists the admin tabs in display order.
var Tabs = []Tab{
	{Key: TabStudents, Title: "Data Siswa", Path: "/siswa", capability: user.CapManageStudents},
	{Key: TabTeachers, Title: "Data Pengajar", Path: "/pengajar", capability: user.CapManageTeachers},
	{Key: TabGraduates, Title: "Data Lulusan", Path: "/lulusan", capability: user.CapManageGraduates},
	{Key: TabAdmissions, Title: "Pendaftaran SPMB", Path: "/spmb", capability: user.CapManageAdmissions},
	{Key: TabMessages, Title: "Pesan & Testimoni", Path: "/pesan", capability: user.CapManageMessages},
	{Key: TabAlbums, Title: "Album Foto", Path: "/album", capability: user.CapManageSettings},
	{Key: TabSettings, Title: "Pengaturan Website", Path: "/pengaturan", capability: user.CapManageSettings},
	{Key: TabReports, Title: "Laporan", Path: "/laporan", capability: user.CapViewReports},
	{Key: TabUsers, Title: "Pengguna", Path: "/pengguna", roles: []user.Role{user.RoleSuperAdmin}},
}

// Get returns the tab with the given key.
func Get(key TabKey) (Tab, bool) {
	for _, t := range Tabs {
		if t.Key == key {
			return t, true
		}
	}
	return Tab{}, false
}

// MustGet is Get for keys known at compile time.
func MustGet(key TabKey) Tab {
	t, ok := Get(key)
	if !ok {
		panic("workspace: unknown tab " + string(key))
	}
	return t
}

// TabsFor returns the tabs `identity` may open.
func TabsFor(identity *user.Identity) []Tab {
	tabs := make([]Tab, 0, len(Tabs))
	for _, t := range Tabs {
		if user.Authorize(identity, t.AllowedRoles()) == user.Allow {
			tabs = append(tabs, t)
		}
	}
	return tabs
}
