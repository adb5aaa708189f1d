package emailsvc

import (
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
)

func testConf(env string) *core.Config {
	return &core.Config{
		Env:              env,
		AppName:          "Al-Hikmah",
		FrontendBaseURL:  "https://alhikmah.test",
		DefaultFromEmail: "noreply@alhikmah.test",
		SendgridApiKey:   "SG.test",
	}
}

func Test_sendgridService_build(t *testing.T) {
	tests := []struct {
		env     string
		sandbox bool
	}{
		{"DEV", true},
		{"QA", true},
		{"PROD", false},
	}
	for _, tc := range tests {
		t.Run(tc.env, func(t *testing.T) {
			svc := NewSendgridService(nil, testConf(tc.env)).(*sendgridService)
			msg := &core.EmailMessage{
				To:      []mail.Address{{Name: "Wali", Address: "wali@example.com"}},
				Subject: "Pendaftaran diterima",
				BodyStr: "Terima kasih",
			}
			require.NoError(t, msg.Render(svc.baseURL))

			m := svc.build(msg)
			require.Len(t, m.Personalizations, 1)
			assert.Equal(t, "[Al-Hikmah] Pendaftaran diterima", m.Personalizations[0].Subject)
			require.Len(t, m.Personalizations[0].To, 1)
			assert.Equal(t, "wali@example.com", m.Personalizations[0].To[0].Address)
			assert.Equal(t, "noreply@alhikmah.test", m.From.Address)
			assert.Equal(t, []string{"plain"}, m.Categories)
			require.Len(t, m.Content, 1)
			assert.Equal(t, "text/plain", m.Content[0].Type)

			if tc.sandbox {
				require.NotNil(t, m.MailSettings)
				require.NotNil(t, m.MailSettings.SandboxMode)
				assert.True(t, *m.MailSettings.SandboxMode.Enable)
			} else {
				assert.Nil(t, m.MailSettings)
			}
		})
	}
}

func Test_consoleService_templates(t *testing.T) {
	svc := NewConsoleServiceMock(testConf("TEST"))

	svc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Address: "wali@example.com"}},
		Subject:      "Pendaftaran diterima",
		TemplateName: "pending_digest",
		TemplateData: struct{ PendingAdmissions, PendingMessages int }{2, 1},
	})

	sent := svc.SentMessages()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].TextContent, "Pendaftaran SPMB: 2")
	assert.Contains(t, sent[0].TextContent, "https://alhikmah.test")
	assert.NotEmpty(t, sent[0].HTMLContent)
	assert.Equal(t, "pending_digest", sent[0].Category())

	body, err := svc.format(sent[0])
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(body, "From: \"Al-Hikmah\" <noreply@alhikmah.test>\r\n"))
	assert.Contains(t, body, "Subject: [Al-Hikmah] Pendaftaran diterima\r\n")
	assert.Contains(t, body, "multipart/alternative")

	svc.Reset()
	assert.Empty(t, svc.SentMessages())
}
