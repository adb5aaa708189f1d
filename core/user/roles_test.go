package user

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapabilitiesFor(t *testing.T) {
	tests := []struct {
		role Role
		want []Capability
	}{
		{role: RoleSuperAdmin, want: AllCapabilities},
		{role: RoleKetuaYayasan, want: []Capability{CapManageTeachers, CapManageGraduates, CapManageAdmissions, CapManageMessages, CapViewReports}},
		{role: RoleKepalaSekolah, want: []Capability{CapManageStudents, CapManageTeachers, CapManageGraduates, CapManageAdmissions, CapViewReports}},
		{role: RoleTeacher, want: []Capability{CapManageStudents, CapViewReports}},
		{role: RoleParent, want: []Capability{CapViewReports}},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			got, err := CapabilitiesFor(tt.role)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, got.Slice())
			assert.Equal(t, len(tt.want), got.Len())
		})
	}

	t.Run("unknown role", func(t *testing.T) {
		for _, role := range []Role{"", "guest", "SUPER_ADMIN", "super_admin "} {
			_, err := CapabilitiesFor(role)
			roleErr, ok := errors.Cause(err).(*UnknownRoleError)
			require.True(t, ok, "role %q: got %T", role, err)
			assert.Equal(t, role, roleErr.Role)
			assert.False(t, role.IsValid())
			for _, c := range AllCapabilities {
				assert.False(t, role.Can(c))
			}
		}
	})
}

func TestCapabilitiesFor_superAdminIsSuperset(t *testing.T) {
	admin, err := CapabilitiesFor(RoleSuperAdmin)
	require.NoError(t, err)
	for _, role := range AllRoles {
		caps, err := CapabilitiesFor(role)
		require.NoError(t, err)
		assert.True(t, caps.IsSubsetOf(admin), role)
	}
}

func TestCapabilitySet_Slice(t *testing.T) {
	caps, _ := CapabilitiesFor(RoleKetuaYayasan)
	got := caps.Slice()
	for i := 1; i < len(got); i++ {
		assert.Less(t, string(got[i-1]), string(got[i]))
	}
	// callers cannot alter the policy through the slice
	got[0] = "hacked"
	again, _ := CapabilitiesFor(RoleKetuaYayasan)
	assert.False(t, again.Has("hacked"))
}

func TestRolesWith(t *testing.T) {
	assert.Equal(t, []Role{RoleSuperAdmin}, RolesWith(CapManageSettings))
	assert.Equal(t, []Role{RoleSuperAdmin, RoleKetuaYayasan}, RolesWith(CapManageMessages))
	assert.Equal(t, []Role{RoleSuperAdmin, RoleKepalaSekolah, RoleTeacher}, RolesWith(CapManageStudents))
	assert.Equal(t, AllRoles, RolesWith(CapViewReports))
	assert.Empty(t, RolesWith("fly"))
}

func TestAuthorize(t *testing.T) {
	// every subset of the role set, against every role and an unknown one
	candidates := append(append([]Role(nil), AllRoles...), "guest")
	for mask := 0; mask < 1<<len(AllRoles); mask++ {
		var allowed []Role
		for i, r := range AllRoles {
			if mask&(1<<i) != 0 {
				allowed = append(allowed, r)
			}
		}
		set := NewRoleSet(allowed...)

		assert.Equal(t, Unauthenticated, Authorize(nil, set))
		for _, role := range candidates {
			got := Authorize(&Identity{ID: "1", Role: role}, set)
			want := Forbidden
			for _, r := range allowed {
				if r == role {
					want = Allow
				}
			}
			assert.Equal(t, want, got, "role %q, allowed %v", role, allowed)
		}
	}
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "unauthenticated", Unauthenticated.String())
	assert.Equal(t, "forbidden", Forbidden.String())
	assert.Equal(t, "unknown", Decision(42).String())
}
