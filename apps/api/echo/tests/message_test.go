package tests

import (
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/message"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/user"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/workflow"
)

func submitMessage(t *testing.T, app http.Handler, nm message.NewMessage) message.Message {
	req, rec := newRequest(http.MethodPost, "/api/site/messages", marchallObj(t, nm))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var msg message.Message
	unmarshal(t, rec, &msg)
	return msg
}

func Test_messageApi_submit(t *testing.T) {
	app, env := setup(t)

	t.Run("rating 0 and empty body", func(t *testing.T) {
		body := marchallObj(t, message.NewMessage{Name: "Aisyah", Rating: 0, Body: ""})
		req, rec := newRequest(http.MethodPost, "/api/site/messages", body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var fields map[string]string
		unmarshal(t, rec, &fields)
		assert.Contains(t, fields, "rating")
		assert.Contains(t, fields, "pesan")
		assert.NotContains(t, fields, "nama")
	})

	t.Run("rating above 5", func(t *testing.T) {
		body := marchallObj(t, message.NewMessage{Name: "Aisyah", Rating: 6, Body: "Mantap"})
		req, rec := newRequest(http.MethodPost, "/api/site/messages", body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"rating": "rating must be 5 or less"}),
		}, rec)
	})

	t.Run("status is ignored", func(t *testing.T) {
		msg := submitMessage(t, app, message.NewMessage{Name: "Aisyah", Rating: 5, Body: "Guru-gurunya sabar.", Status: "approved"})
		assert.Equal(t, workflow.StatusPending, msg.Status)

		select {
		case event := <-env.Notifier.Events:
			assert.Equal(t, core.EventMessageSubmitted, event.Type)
		default:
			t.Error("no submission event")
		}

		// pending messages are not published
		req, rec := newRequest(http.MethodGet, "/api/site/testimonials")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusOK,
			wantData: []byte(`{"rata_rata_rating":0,"testimoni":[]}`),
		}, rec)
	})
}

func Test_messageApi_review(t *testing.T) {
	app, env := setup(t)
	users := createUsers(t, env)
	token := getToken(t, app, users[user.RoleKetuaYayasan])

	good := submitMessage(t, app, message.NewMessage{Name: "Aisyah", Email: "aisyah@example.com", Rating: 5, Body: "Alhamdulillah"})
	okay := submitMessage(t, app, message.NewMessage{Name: "Umar", Rating: 4, Body: "Bagus"})
	spam := submitMessage(t, app, message.NewMessage{Name: "Spam", Rating: 1, Body: "Beli sekarang"})

	review := func(id, action, reply string) (int, message.Message) {
		req, rec := newAuthRequest(http.MethodPost, "/api/admin/messages/"+id+"/"+action, token, marchallObj(t, message.ReviewMessage{Reply: reply}))
		app.ServeHTTP(rec, req)
		var msg message.Message
		if rec.Code == http.StatusOK {
			unmarshal(t, rec, &msg)
		}
		return rec.Code, msg
	}

	t.Run("kepala sekolah cannot manage messages", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/admin/messages", getToken(t, app, users[user.RoleKepalaSekolah]))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("approve with reply", func(t *testing.T) {
		env.Mail.Reset()
		code, msg := review(good.ID, "approve", "Jazakillah khairan")
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, workflow.StatusApproved, msg.Status)
		assert.Equal(t, "Jazakillah khairan", msg.AdminReply)

		sent := env.Mail.SentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, "message_reply", sent[0].TemplateName)
	})

	t.Run("reply is dropped on reject", func(t *testing.T) {
		code, msg := review(spam.ID, "reject", "no thanks")
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, workflow.StatusRejected, msg.Status)
		assert.Empty(t, msg.AdminReply)
	})

	t.Run("approve twice", func(t *testing.T) {
		code, _ := review(good.ID, "approve", "")
		assert.Equal(t, http.StatusConflict, code)
	})

	t.Run("reply to a rejected message", func(t *testing.T) {
		body := marchallObj(t, message.ReplyMessage{Reply: "Maaf"})
		req, rec := newAuthRequest(http.MethodPut, "/api/admin/messages/"+spam.ID+"/reply", token, body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"balasan_admin": message.ErrReplyNotPublished.Error()}),
		}, rec)
	})

	t.Run("replace reply of an approved message", func(t *testing.T) {
		body := marchallObj(t, message.ReplyMessage{Reply: "Terima kasih atas doanya"})
		req, rec := newAuthRequest(http.MethodPut, "/api/admin/messages/"+good.ID+"/reply", token, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var msg message.Message
		unmarshal(t, rec, &msg)
		assert.Equal(t, workflow.StatusApproved, msg.Status)
		assert.Equal(t, "Terima kasih atas doanya", msg.AdminReply)
	})

	t.Run("testimonials", func(t *testing.T) {
		code, _ := review(okay.ID, "approve", "")
		require.Equal(t, http.StatusOK, code)

		req, rec := newRequest(http.MethodGet, "/api/site/testimonials")
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			AverageRating float64               `json:"rata_rata_rating"`
			Testimonials  []message.Testimonial `json:"testimoni"`
		}
		unmarshal(t, rec, &resp)
		assert.InDelta(t, 4.5, resp.AverageRating, 0.001)
		require.Len(t, resp.Testimonials, 2)
		ids := []string{resp.Testimonials[0].ID, resp.Testimonials[1].ID}
		assert.ElementsMatch(t, []string{good.ID, okay.ID}, ids)
	})
}

func Test_messageApi_concurrentReview(t *testing.T) {
	app, env := setup(t)
	users := createUsers(t, env)
	tokens := []string{
		getToken(t, app, users[user.RoleSuperAdmin]),
		getToken(t, app, users[user.RoleKetuaYayasan]),
	}

	tests := []struct {
		name    string
		actions []string
	}{
		{name: "approve against reject", actions: []string{"approve", "reject"}},
		{name: "many writers", actions: []string{"approve", "reject", "approve", "reject", "approve", "reject"}},
		{name: "approvals only", actions: []string{"approve", "approve", "approve"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 10; i++ {
				msg := submitMessage(t, app, message.NewMessage{Name: "Fatimah", Rating: 5, Body: "Alhamdulillah"})

				body := marchallObj(t, message.ReviewMessage{Reply: "Jazakallah khair"})
				var wg sync.WaitGroup
				codes := make([]int, len(tt.actions))
				for j, action := range tt.actions {
					wg.Add(1)
					go func(j int, action string) {
						defer wg.Done()
						req, rec := newAuthRequest(http.MethodPost, "/api/admin/messages/"+msg.ID+"/"+action, tokens[j%len(tokens)], body)
						app.ServeHTTP(rec, req)
						codes[j] = rec.Code
					}(j, action)
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

				stored, err := env.Messages.Get(ctxBg, msg.ID)
				require.NoError(t, err)
				require.True(t, stored.Status.IsTerminal())
				if stored.Status == workflow.StatusApproved {
					assert.Equal(t, "Jazakallah khair", stored.AdminReply)
				} else {
					assert.Empty(t, stored.AdminReply)
				}
			}
		})
	}
}
