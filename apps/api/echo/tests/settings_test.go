package tests

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/settings"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/user"
)

func Test_settingsApi(t *testing.T) {
	app, env := setup(t)
	users := createUsers(t, env)
	admin := users[user.RoleSuperAdmin]
	token := getToken(t, app, admin)

	current := func(t *testing.T) settings.Settings {
		req, rec := newAuthRequest(http.MethodGet, "/api/admin/settings", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var s settings.Settings
		unmarshal(t, rec, &s)
		return s
	}

	t.Run("only super admin", func(t *testing.T) {
		for _, role := range []user.Role{user.RoleKetuaYayasan, user.RoleKepalaSekolah, user.RoleTeacher, user.RoleParent} {
			req, rec := newAuthRequest(http.MethodGet, "/api/admin/settings", getToken(t, app, users[role]))
			app.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusForbidden, rec.Code, role)
		}
	})

	t.Run("defaults before first save", func(t *testing.T) {
		s := current(t)
		assert.Equal(t, 0, s.Version)
		assert.Equal(t, settings.Default().SiteName, s.SiteName)
		assert.Len(t, s.Programs, 3)
	})

	t.Run("save and stale save", func(t *testing.T) {
		s := current(t)
		s.Tagline = "  Berakhlak mulia  "
		s.Contact.Phone = "081234567890"

		req, rec := newAuthRequest(http.MethodPut, "/api/admin/settings", token, marchallObj(t, s))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var saved settings.Settings
		unmarshal(t, rec, &saved)
		assert.Equal(t, s.Version+1, saved.Version)
		assert.Equal(t, "Berakhlak mulia", saved.Tagline)
		assert.Equal(t, admin.ID, saved.UpdatedBy)

		// s still carries the replaced version
		s.Tagline = "Kalah cepat"
		req, rec = newAuthRequest(http.MethodPut, "/api/admin/settings", token, marchallObj(t, s))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: settings.ErrVersionConflict.Error()}),
		}, rec)

		assert.Equal(t, "Berakhlak mulia", current(t).Tagline)
	})

	t.Run("invalid settings", func(t *testing.T) {
		s := current(t)
		s.SiteName = " "
		s.Contact.Email = "bukan-email"

		req, rec := newAuthRequest(http.MethodPut, "/api/admin/settings", token, marchallObj(t, s))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var fields map[string]string
		unmarshal(t, rec, &fields)
		assert.Contains(t, fields, "nama_situs")
		assert.Contains(t, fields, "email")
	})

	t.Run("logo", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/api/admin/settings/logo", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		before := current(t)
		req, rec = newUploadRequest(t, http.MethodPut, "/api/admin/settings/logo", token, "Logo Yayasan.png", []byte("first"), nil)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var s settings.Settings
		unmarshal(t, rec, &s)
		assert.Equal(t, before.Version+1, s.Version)
		assert.True(t, strings.HasSuffix(s.LogoPath, "-logo-yayasan.png"), s.LogoPath)
		assert.Equal(t, env.Store.PublicURL("website", s.LogoPath), s.LogoURL)
		assert.Equal(t, 1, env.Store.Len())

		// replacing the logo removes the previous object
		req, rec = newUploadRequest(t, http.MethodPut, "/api/admin/settings/logo", token, "logo.png", []byte("second"), nil)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, 1, env.Store.Len())

		// the public view hides the storage path
		req, rec = newRequest(http.MethodGet, "/api/site/settings")
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var public map[string]interface{}
		unmarshal(t, rec, &public)
		assert.NotContains(t, public, "logo_path")
		assert.NotContains(t, public, "updated_by")
		assert.NotEmpty(t, public["logo_url"])
	})
}
