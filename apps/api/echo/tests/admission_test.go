package tests

import (
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/admission"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/user"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/workflow"
)

func ahmadForm(extra ...func(*admission.NewRegistration)) admission.NewRegistration {
	form := admission.NewRegistration{
		ApplicantName: "Ahmad",
		ProgramChoice: core.ProgramTKATPA,
		GuardianName:  "Budi Santoso",
		Phone:         "0812-3456-7890",
		Email:         "budi@example.com",
		Address:       "Jl. Pesantren No. 7",
		BirthDate:     "2019-04-12",
	}
	for _, fn := range extra {
		fn(&form)
	}
	return form
}

func submitRegistration(t *testing.T, app http.Handler, form admission.NewRegistration) admission.Registration {
	req, rec := newRequest(http.MethodPost, "/api/site/admissions", marchallObj(t, form))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var reg admission.Registration
	unmarshal(t, rec, &reg)
	return reg
}

func Test_admissionApi_submit(t *testing.T) {
	app, env := setup(t)

	t.Run("starts pending whatever the client sends", func(t *testing.T) {
		reg := submitRegistration(t, app, ahmadForm(func(f *admission.NewRegistration) { f.Status = "approved" }))
		assert.NotEmpty(t, reg.ID)
		assert.Equal(t, "Ahmad", reg.ApplicantName)
		assert.Equal(t, core.ProgramTKATPA, reg.ProgramChoice)
		assert.Equal(t, workflow.StatusPending, reg.Status)
		require.NotNil(t, reg.BirthDate)
		assert.Equal(t, "2019-04-12", reg.BirthDate.Format("2006-01-02"))

		stored, err := env.Admissions.Get(ctxBg, reg.ID)
		require.NoError(t, err)
		assert.Equal(t, workflow.StatusPending, stored.Status)

		select {
		case event := <-env.Notifier.Events:
			assert.Equal(t, core.EventAdmissionSubmitted, event.Type)
			assert.Equal(t, reg.ID, event.ID)
		default:
			t.Error("no submission event")
		}

		sent := env.Mail.SentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, "admission_received", sent[0].TemplateName)
		assert.Equal(t, "budi@example.com", sent[0].To[0].Address)
	})

	tests := []httpTest{
		{
			name: "every missing field is reported", body: []byte(`{"status":"approved"}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"nama_lengkap":    "this field is required",
				"program_pilihan": "this field is required",
				"nama_wali":       "this field is required",
				"no_telepon":      "this field is required",
				"alamat":          "this field is required",
			}),
		},
		{
			name: "invalid values", wantCode: http.StatusBadRequest,
			body: marchallObj(t, ahmadForm(func(f *admission.NewRegistration) {
				f.ProgramChoice = "SMA"
				f.Phone = "call me"
				f.Email = "budi@"
				f.ApplicantName = "   "
			})),
			wantData: marchallObj(t, map[string]string{
				"nama_lengkap":    "this field is required",
				"program_pilihan": "must be one of TKA/TPA, PAUD/KOBER or Diniyah",
				"no_telepon":      "enter a valid phone number",
				"email":           "email must be a valid email address",
			}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/site/admissions", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_admissionApi_review(t *testing.T) {
	app, env := setup(t)
	users := createUsers(t, env)
	token := getToken(t, app, users[user.RoleKetuaYayasan])

	reg := submitRegistration(t, app, ahmadForm())
	path := "/api/admin/admissions/" + reg.ID

	t.Run("forbidden without manage_admissions", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path+"/approve", getToken(t, app, users[user.RoleTeacher]))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unknown action", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path+"/archive", token)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown registration", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/admin/admissions/unknown/approve", token)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("approve", func(t *testing.T) {
		env.Mail.Reset()
		body := marchallObj(t, admission.ReviewRegistration{Note: "Silakan datang hari Senin."})
		req, rec := newAuthRequest(http.MethodPost, path+"/approve", token, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got admission.Registration
		unmarshal(t, rec, &got)
		assert.Equal(t, workflow.StatusApproved, got.Status)
		assert.Equal(t, users[user.RoleKetuaYayasan].ID, got.ReviewedBy)
		assert.NotNil(t, got.ReviewedAt)
		assert.Equal(t, "Silakan datang hari Senin.", got.ReviewNote)

		sent := env.Mail.SentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, "admission_reviewed", sent[0].TemplateName)
	})

	t.Run("reject after approve is refused", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path+"/reject", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusConflict, rec.Code)

		var resp struct {
			Error  string          `json:"error"`
			Status workflow.Status `json:"status"`
		}
		unmarshal(t, rec, &resp)
		assert.Equal(t, workflow.StatusApproved, resp.Status)

		stored, err := env.Admissions.Get(ctxBg, reg.ID)
		require.NoError(t, err)
		assert.Equal(t, workflow.StatusApproved, stored.Status)
	})

	t.Run("query by status", func(t *testing.T) {
		other := submitRegistration(t, app, ahmadForm(func(f *admission.NewRegistration) {
			f.ApplicantName = "Fatimah"
			f.ProgramChoice = core.ProgramDiniyah
		}))

		req, rec := newAuthRequest(http.MethodGet, "/api/admin/admissions?status=pending", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var pending []admission.Registration
		unmarshal(t, rec, &pending)
		require.Len(t, pending, 1)
		assert.Equal(t, other.ID, pending[0].ID)

		req, rec = newAuthRequest(http.MethodGet, "/api/admin/admissions?search=ahm", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var found []admission.Registration
		unmarshal(t, rec, &found)
		require.Len(t, found, 1)
		assert.Equal(t, reg.ID, found[0].ID)
	})

	t.Run("bulk delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/api/admin/admissions?id="+reg.ID, token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)

		_, err := env.Admissions.Get(ctxBg, reg.ID)
		assert.True(t, core.IsNotFound(err))
	})
}

func Test_admissionApi_concurrentReview(t *testing.T) {
	app, env := setup(t)
	users := createUsers(t, env)
	tokens := []string{
		getToken(t, app, users[user.RoleSuperAdmin]),
		getToken(t, app, users[user.RoleKetuaYayasan]),
		getToken(t, app, users[user.RoleKepalaSekolah]),
	}

	for i := 0; i < 10; i++ {
		reg := submitRegistration(t, app, ahmadForm())

		var wg sync.WaitGroup
		codes := make([]int, 6)
		for j := range codes {
			wg.Add(1)
			go func(j int) {
				defer wg.Done()
				action := "approve"
				if j%2 == 1 {
					action = "reject"
				}
				req, rec := newAuthRequest(http.MethodPost, "/api/admin/admissions/"+reg.ID+"/"+action, tokens[j%len(tokens)])
				app.ServeHTTP(rec, req)
				codes[j] = rec.Code
			}(j)
		}
		wg.Wait()

		var ok, conflicts int
		for _, code := range codes {
			switch code {
			case http.StatusOK:
				ok++
			case http.StatusConflict:
				conflicts++
			}
		}
		assert.Equal(t, 1, ok, "codes %v", codes)
		assert.Equal(t, len(codes)-1, conflicts, "codes %v", codes)

		stored, err := env.Admissions.Get(ctxBg, reg.ID)
		require.NoError(t, err)
		assert.True(t, stored.Status.IsTerminal())
	}
}
