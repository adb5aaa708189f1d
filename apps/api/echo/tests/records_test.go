package tests

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/report"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/student"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/user"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/workflow"
)

func Test_studentApi(t *testing.T) {
	app, env := setup(t)
	users := createUsers(t, env)
	token := getToken(t, app, users[user.RoleTeacher])

	create := func(t *testing.T, in student.StudentInput) *httptest.ResponseRecorder {
		req, rec := newAuthRequest(http.MethodPost, "/api/admin/students", token, marchallObj(t, in))
		app.ServeHTTP(rec, req)
		return rec
	}

	rec := create(t, student.StudentInput{Name: "Zahra", NIS: "2025001", Program: core.ProgramDiniyah, Gender: "p", BirthDate: "2016-02-01"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var zahra student.Student
	unmarshal(t, rec, &zahra)
	assert.Equal(t, student.StatusActive, zahra.Status)
	assert.Equal(t, "P", zahra.Gender)

	t.Run("parent cannot manage students", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/admin/students", getToken(t, app, users[user.RoleParent]))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("invalid input", func(t *testing.T) {
		rec := create(t, student.StudentInput{Name: "Yusuf", NIS: "2025001", Program: "SMA", Status: "expelled"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		var fields map[string]string
		unmarshal(t, rec, &fields)
		assert.Equal(t, "must be one of TKA/TPA, PAUD/KOBER or Diniyah", fields["program"])
		assert.Equal(t, "must be one of active, inactive or graduated", fields["status"])
	})

	t.Run("NIS is unique", func(t *testing.T) {
		rec := create(t, student.StudentInput{Name: "Yusuf", NIS: "2025001", Program: core.ProgramTKATPA})
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"nis": student.ErrNISExists.Error()}),
		}, rec)
	})

	t.Run("update keeps its own NIS", func(t *testing.T) {
		in := student.StudentInput{Name: "Zahra Aulia", NIS: "2025001", Program: core.ProgramDiniyah}
		req, rec := newAuthRequest(http.MethodPut, "/api/admin/students/"+zahra.ID, token, marchallObj(t, in))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var s student.Student
		unmarshal(t, rec, &s)
		assert.Equal(t, "Zahra Aulia", s.Name)
		assert.Nil(t, s.BirthDate)
	})

	t.Run("photo", func(t *testing.T) {
		req, rec := newUploadRequest(t, http.MethodPut, "/api/admin/students/"+zahra.ID+"/photo", token, "zahra.png", []byte("png"), nil)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var s student.Student
		unmarshal(t, rec, &s)
		assert.NotEmpty(t, s.PhotoURL)
		assert.Equal(t, 1, env.Store.Len())
	})

	t.Run("query", func(t *testing.T) {
		create(t, student.StudentInput{Name: "Yusuf", Program: core.ProgramTKATPA})

		req, rec := newAuthRequest(http.MethodGet, "/api/admin/students?program=Diniyah", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var got []student.Student
		unmarshal(t, rec, &got)
		require.Len(t, got, 1)
		assert.Equal(t, zahra.ID, got[0].ID)
	})

	t.Run("report summary", func(t *testing.T) {
		submitRegistration(t, app, ahmadForm())

		req, rec := newAuthRequest(http.MethodGet, "/api/admin/reports/summary", getToken(t, app, users[user.RoleParent]))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var summary report.Summary
		unmarshal(t, rec, &summary)
		assert.Equal(t, 2, summary.Students.Total)
		assert.Equal(t, 1, summary.Students.ByProgram[core.ProgramDiniyah])
		assert.Equal(t, 1, summary.Admissions[workflow.StatusPending])
	})

	t.Run("delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/api/admin/students/"+zahra.ID, token)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, 0, env.Store.Len())

		req, rec = newAuthRequest(http.MethodDelete, "/api/admin/students/"+zahra.ID, token)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
