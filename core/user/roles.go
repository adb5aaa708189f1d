package user

import (
	"fmt"
	"sort"
)

// Role is the single access role held by an account.
type Role string

const (
	RoleSuperAdmin    Role = "super_admin"
	RoleKetuaYayasan  Role = "ketua_yayasan"
	RoleKepalaSekolah Role = "kepala_sekolah"
	RoleTeacher       Role = "teacher"
	RoleParent        Role = "parent"
)

// Capability is a permission derived from a Role.
type Capability string

const (
	CapManageStudents   Capability = "manage_students"
	CapManageTeachers   Capability = "manage_teachers"
	CapManageGraduates  Capability = "manage_graduates"
	CapManageAdmissions Capability = "manage_admissions"
	CapManageSettings   Capability = "manage_settings"
	CapViewReports      Capability = "view_reports"
	CapManageMessages   Capability = "manage_messages"
)

var (
	AllRoles = []Role{RoleSuperAdmin, RoleKetuaYayasan, RoleKepalaSekolah, RoleTeacher, RoleParent}

	AllCapabilities = []Capability{
		CapManageStudents, CapManageTeachers, CapManageGraduates, CapManageAdmissions,
		CapManageSettings, CapViewReports, CapManageMessages,
	}

	// SelfServiceRoles may be requested at registration; any other role is granted by a super admin.
	SelfServiceRoles = []Role{RoleTeacher, RoleParent}

	RoleOptions = []RoleOption{
		{Name: "Super Admin", Value: RoleSuperAdmin},
		{Name: "Ketua Yayasan", Value: RoleKetuaYayasan},
		{Name: "Kepala Sekolah", Value: RoleKepalaSekolah},
		{Name: "Guru", Value: RoleTeacher},
		{Name: "Orang Tua", Value: RoleParent},
	}

	rolePolicy = map[Role][]Capability{
		RoleSuperAdmin: AllCapabilities,
		RoleKetuaYayasan: {
			CapManageTeachers, CapManageGraduates, CapManageAdmissions, CapManageMessages, CapViewReports,
		},
		RoleKepalaSekolah: {
			CapManageStudents, CapManageTeachers, CapManageGraduates, CapManageAdmissions, CapViewReports,
		},
		RoleTeacher: {CapManageStudents, CapViewReports},
		RoleParent:  {CapViewReports},
	}
)

type RoleOption struct {
	Name  string `json:"name"`
	Value Role   `json:"value"`
}

func (r Role) IsValid() bool {
	_, ok := rolePolicy[r]
	return ok
}

// Can reports whether the role grants `capability`. Unknown roles grant nothing.
func (r Role) Can(capability Capability) bool {
	caps, err := CapabilitiesFor(r)
	if err != nil {
		return false
	}
	return caps.Has(capability)
}

// UnknownRoleError is returned for roles outside the closed role set.
type UnknownRoleError struct {
	Role Role
}

func (e *UnknownRoleError) Error() string {
	return fmt.Sprintf("unknown role %q", string(e.Role))
}

// CapabilitySet is an immutable set of capabilities.
type CapabilitySet struct {
	caps map[Capability]struct{}
}

func newCapabilitySet(caps ...Capability) CapabilitySet {
	set := CapabilitySet{caps: make(map[Capability]struct{}, len(caps))}
	for _, c := range caps {
		set.caps[c] = struct{}{}
	}
	return set
}

func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s.caps[c]
	return ok
}

func (s CapabilitySet) Len() int { return len(s.caps) }

// IsSubsetOf reports whether every capability of s is in other.
func (s CapabilitySet) IsSubsetOf(other CapabilitySet) bool {
	for c := range s.caps {
		if !other.Has(c) {
			return false
		}
	}
	return true
}

// Slice returns the capabilities sorted by name.
func (s CapabilitySet) Slice() []Capability {
	caps := make([]Capability, 0, len(s.caps))
	for c := range s.caps {
		caps = append(caps, c)
	}
	sort.Slice(caps, func(i, j int) bool { return caps[i] < caps[j] })
	return caps
}

// CapabilitiesFor returns the fixed capability set of `role`.
func CapabilitiesFor(role Role) (CapabilitySet, error) {
	caps, ok := rolePolicy[role]
	if !ok {
		return CapabilitySet{}, &UnknownRoleError{Role: role}
	}
	return newCapabilitySet(caps...), nil
}

// RolesWith returns the roles granting `capability`, in AllRoles order.
func RolesWith(capability Capability) []Role {
	roles := make([]Role, 0, len(AllRoles))
	for _, role := range AllRoles {
		if role.Can(capability) {
			roles = append(roles, role)
		}
	}
	return roles
}
