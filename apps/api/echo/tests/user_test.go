package tests

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/Adeanak/web-pendidikanalhikmahfix-sub000/apps/api/echo"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/user"
	testutil "github.com/Adeanak/web-pendidikanalhikmahfix-sub000/tests"
)

func Test_authApi_login(t *testing.T) {
	app, env := setup(t)

	admin := testutil.CreateUser(t, env.UserRepo, "Admin", "admin", "admin@alhikmah.test", testutil.Password, user.RoleSuperAdmin, true)
	testutil.CreateUser(t, env.UserRepo, "Naughty", "naughty", "naughty@alhikmah.test", testutil.Password, user.RoleTeacher, false)

	body := func(uname, pwd string) []byte {
		return marchallObj(t, echoapi.LoginRequest{Username: uname, Password: pwd})
	}
	authFailed := marchallObj(t, httpErr{Error: "authentication failed"})

	tests := []httpTest{
		{name: "empty credentials", body: body("", ""), wantCode: http.StatusBadRequest, wantData: authFailed},
		{name: "unknown user", body: body("ghost", testutil.Password), wantCode: http.StatusBadRequest, wantData: authFailed},
		{name: "wrong password", body: body("admin", "Wr0ng-pass!"), wantCode: http.StatusBadRequest, wantData: authFailed},
		{
			name: "inactive account", body: body("naughty", testutil.Password), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/auth/login", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	for _, uname := range []string{"admin", " ADMIN ", "admin@alhikmah.test"} {
		t.Run("success with "+uname, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/auth/login", body(uname, testutil.Password))
			app.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var resp echoapi.LoginResponse
			unmarshal(t, rec, &resp)
			assert.NotEmpty(t, resp.Token)
			require.NotNil(t, resp.User)
			assert.Equal(t, admin.ID, resp.User.ID)
			assert.Equal(t, user.RoleSuperAdmin, resp.User.Role)
			assert.Len(t, resp.User.Capabilities, len(user.AllCapabilities))

			// the token opens the session
			req, rec = newAuthRequest(http.MethodGet, "/api/auth/me", resp.Token)
			app.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}

	usr, err := env.Users.GetByID(ctxBg, admin.ID)
	require.NoError(t, err)
	assert.NotNil(t, usr.LastLogin)
}

func Test_authApi_register(t *testing.T) {
	app, env := setup(t)
	testutil.CreateUser(t, env.UserRepo, "Taken", "taken", "taken@alhikmah.test", testutil.Password, user.RoleParent, true)

	reg := func(uname, email string, role user.Role) []byte {
		return marchallObj(t, user.Registration{
			Name:            "Siti Aminah",
			Username:        uname,
			Email:           email,
			Role:            role,
			Password:        testutil.Password,
			PasswordConfirm: testutil.Password,
		})
	}

	tests := []httpTest{
		{
			name: "username taken", body: reg("taken", "new@alhikmah.test", ""), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": user.ErrUsernameExists.Error()}),
		},
		{
			name: "email taken", body: reg("siti", "TAKEN@alhikmah.test", ""), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": user.ErrEmailExists.Error()}),
		},
		{
			name: "admin role cannot be requested", body: reg("siti", "siti@alhikmah.test", user.RoleSuperAdmin), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"role": "only teacher or parent can be requested"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/auth/register", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("registered accounts wait for approval", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/api/auth/register", reg("siti", "siti@alhikmah.test", user.RoleTeacher))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var usr user.User
		unmarshal(t, rec, &usr)
		assert.False(t, usr.IsActive)
		assert.Equal(t, user.RoleTeacher, usr.Role)

		req, rec = newRequest(http.MethodPost, "/api/auth/login", marchallObj(t, echoapi.LoginRequest{Username: "siti", Password: testutil.Password}))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		select {
		case event := <-env.Notifier.Events:
			assert.Equal(t, usr.ID, event.ID)
		default:
			t.Error("no registration event")
		}
	})
}

func Test_authApi_refreshToken(t *testing.T) {
	app, env := setup(t)

	naughty := testutil.CreateUser(t, env.UserRepo, "N Dog", "ndog", "ndog@alhikmah.test", "", user.RoleParent, false)
	teacher := testutil.CreateUser(t, env.UserRepo, "Hero", "hero", "hero@alhikmah.test", "", user.RoleTeacher, true)

	now := time.Now()
	unrefreshableToken, err := app.SignToken(&echoapi.Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   teacher.ID,
			ExpiresAt: now.Add(env.Conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		OrigIssuedAt: now.Add(-2 * env.Conf.Server.JWTRefreshExpirationDelta).Unix(), // older than threshold
		Role:         teacher.Role,
	})
	require.NoError(t, err)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Inactive user not allowed", token: getToken(t, app, naughty), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "Refresh period expired", token: unrefreshableToken, wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "refresh has expired"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/auth/token-refresh", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("Token refreshed", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/auth/token-refresh", getToken(t, app, teacher))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		// cannot guess new token.. just check that it's not empty
		var resp echoapi.LoginResponse
		unmarshal(t, rec, &resp)
		assert.NotEmpty(t, resp.Token)
	})
}

func Test_authApi_me(t *testing.T) {
	app, env := setup(t)
	users := createUsers(t, env)

	req, rec := newRequest(http.MethodGet, "/api/auth/me")
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)

	req, rec = newAuthRequest(http.MethodGet, "/api/auth/me", "not-a-token")
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	for role, usr := range users {
		t.Run(string(role), func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/api/auth/me", getToken(t, app, usr))
			app.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)

			var session echoapi.Session
			unmarshal(t, rec, &session)
			assert.Equal(t, usr.ID, session.ID)
			assert.Equal(t, usr.Name, session.Name)
			assert.Equal(t, role, session.Role)
			assert.Equal(t, usr.Capabilities(), session.Capabilities)
		})
	}
}

func Test_userApi_query(t *testing.T) {
	app, env := setup(t)
	users := createUsers(t, env)
	pending := testutil.CreateUser(t, env.UserRepo, "Pending", "pending", "pending@alhikmah.test", testutil.Password, user.RoleParent, false)
	adminToken := getToken(t, app, users[user.RoleSuperAdmin])

	path := func(search string, isActive string, roles ...user.Role) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		if isActive != "" {
			v.Add("is_active", isActive)
		}
		for _, r := range roles {
			v.Add("role", string(r))
		}
		return "/api/admin/users?" + v.Encode()
	}
	ids := func(usrs ...user.User) []string {
		res := make([]string, 0, len(usrs))
		for _, u := range usrs {
			res = append(res, u.ID)
		}
		return res
	}

	t.Run("Auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/admin/users")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})

	for _, role := range []user.Role{user.RoleKetuaYayasan, user.RoleKepalaSekolah, user.RoleTeacher, user.RoleParent} {
		t.Run("Forbidden for "+string(role), func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/api/admin/users", getToken(t, app, users[role]))
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
		})
	}

	tests := []struct {
		name    string
		path    string
		wantIDs []string
	}{
		{name: "all", path: path("", ""), wantIDs: append(ids(pending), ids(
			users[user.RoleSuperAdmin], users[user.RoleKetuaYayasan], users[user.RoleKepalaSekolah],
			users[user.RoleTeacher], users[user.RoleParent])...,
		)},
		{name: "search (unknown)", path: path("lol", ""), wantIDs: []string{}},
		{name: "search by email", path: path("PENDING@", ""), wantIDs: ids(pending)},
		{name: "inactive", path: path("", "false"), wantIDs: ids(pending)},
		{name: "role=parent", path: path("", "", user.RoleParent), wantIDs: ids(pending, users[user.RoleParent])},
		{name: "active parents", path: path("", "true", user.RoleParent), wantIDs: ids(users[user.RoleParent])},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, adminToken)
			app.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)

			var got []user.User
			unmarshal(t, rec, &got)
			assert.ElementsMatch(t, tt.wantIDs, ids(got...))
		})
	}
}

func Test_userApi_lifecycle(t *testing.T) {
	app, env := setup(t)
	admin := testutil.CreateUser(t, env.UserRepo, "Admin", "admin", "admin@alhikmah.test", testutil.Password, user.RoleSuperAdmin, true)
	adminToken := getToken(t, app, admin)
	pending := testutil.CreateUser(t, env.UserRepo, "Ustadz Ali", "ali", "ali@alhikmah.test", testutil.Password, user.RoleParent, false)

	t.Run("approve with another role", func(t *testing.T) {
		body := marchallObj(t, user.ApproveUser{Role: user.RoleTeacher})
		req, rec := newAuthRequest(http.MethodPost, "/api/admin/users/"+pending.ID+"/approve", adminToken, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var usr user.User
		unmarshal(t, rec, &usr)
		assert.True(t, usr.IsActive)
		assert.Equal(t, user.RoleTeacher, usr.Role)

		sent := env.Mail.SentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, "ali@alhikmah.test", sent[0].To[0].Address)
		assert.Equal(t, "account_approved", sent[0].TemplateName)
	})

	t.Run("approve unknown user", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/admin/users/unknown/approve", adminToken, []byte("{}"))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("approve with unknown role", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/admin/users/"+pending.ID+"/approve", adminToken, []byte(`{"role":"janitor"}`))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"role": "invalid role"})}, rec)
	})

	t.Run("cannot deactivate oneself", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/admin/users/"+admin.ID+"/deactivate", adminToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: user.ErrSelfDeactivation.Error()})}, rec)
	})

	t.Run("deactivate", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/admin/users/"+pending.ID+"/deactivate", adminToken)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var usr user.User
		unmarshal(t, rec, &usr)
		assert.False(t, usr.IsActive)

		// the session of a deactivated account is refused
		usr, err := env.Users.GetByID(ctxBg, pending.ID)
		require.NoError(t, err)
		req, rec = newAuthRequest(http.MethodGet, "/api/auth/me", getToken(t, app, usr))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("create", func(t *testing.T) {
		body := marchallObj(t, user.NewUser{
			Name:            "Kepala Sekolah",
			Username:        "kepsek",
			Email:           "kepsek@alhikmah.test",
			Role:            user.RoleKepalaSekolah,
			Password:        testutil.Password,
			PasswordConfirm: testutil.Password,
		})
		req, rec := newAuthRequest(http.MethodPost, "/api/admin/users", adminToken, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var usr user.User
		unmarshal(t, rec, &usr)
		assert.True(t, usr.IsActive)
		assert.Equal(t, user.RoleKepalaSekolah, usr.Role)
	})

	t.Run("roles", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/admin/users/roles", adminToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, user.RoleOptions)}, rec)
	})
}
