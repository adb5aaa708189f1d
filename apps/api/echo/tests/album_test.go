package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/album"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/user"
)

func Test_albumApi(t *testing.T) {
	app, env := setup(t)
	users := createUsers(t, env)
	token := getToken(t, app, users[user.RoleSuperAdmin])

	req, rec := newAuthRequest(http.MethodPost, "/api/admin/albums", getToken(t, app, users[user.RoleKetuaYayasan]), marchallObj(t, album.AlbumInput{Title: "Wisuda"}))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	req, rec = newAuthRequest(http.MethodPost, "/api/admin/albums", token, marchallObj(t, album.AlbumInput{Title: " Wisuda 2025 ", Description: "Wisuda santri"}))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var a album.Album
	unmarshal(t, rec, &a)
	assert.Equal(t, "Wisuda 2025", a.Title)

	t.Run("add photo", func(t *testing.T) {
		req, rec := newUploadRequest(t, http.MethodPost, "/api/admin/albums/"+a.ID+"/photos", token, "foto.jpg", []byte("jpeg"), map[string]string{"keterangan": "Pembukaan"})
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var p album.Photo
		unmarshal(t, rec, &p)
		assert.Equal(t, a.ID, p.AlbumID)
		assert.Equal(t, "Pembukaan", p.Caption)
		assert.NotEmpty(t, p.URL)
		assert.Equal(t, 1, env.Store.Len())

		req, rec = newRequest(http.MethodGet, "/api/site/albums")
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var albums []album.Album
		unmarshal(t, rec, &albums)
		require.Len(t, albums, 1)
		assert.Equal(t, 1, albums[0].PhotoCount)
		assert.Equal(t, p.URL, albums[0].CoverURL)

		req, rec = newRequest(http.MethodGet, "/api/site/albums/"+a.ID)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var detail album.Album
		unmarshal(t, rec, &detail)
		require.Len(t, detail.Photos, 1)
		assert.Equal(t, p.ID, detail.Photos[0].ID)

		req, rec = newAuthRequest(http.MethodDelete, "/api/admin/albums/"+a.ID+"/photos/"+p.ID, token)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, 0, env.Store.Len())
	})

	t.Run("add photo to unknown album", func(t *testing.T) {
		req, rec := newUploadRequest(t, http.MethodPost, "/api/admin/albums/unknown/photos", token, "foto.jpg", []byte("jpeg"), nil)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, 0, env.Store.Len())
	})

	t.Run("delete album removes its files", func(t *testing.T) {
		for _, name := range []string{"a.jpg", "b.jpg"} {
			req, rec := newUploadRequest(t, http.MethodPost, "/api/admin/albums/"+a.ID+"/photos", token, name, []byte(name), nil)
			app.ServeHTTP(rec, req)
			require.Equal(t, http.StatusCreated, rec.Code)
		}
		require.Equal(t, 2, env.Store.Len())

		req, rec := newAuthRequest(http.MethodDelete, "/api/admin/albums/"+a.ID, token)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, 0, env.Store.Len())

		req, rec = newRequest(http.MethodGet, "/api/site/albums/"+a.ID)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
