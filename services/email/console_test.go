package emailsvc

import (
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentalearn/lms/core"
)

func testConfig() *core.Config {
	return &core.Config{
		AppName:             "DentaLearn",
		FrontendBaseURL:     "https://learn.test",
		DefaultFromEmailStr: "DentaLearn <noreply@learn.test>",
	}
}

func TestConsoleServiceMock(t *testing.T) {
	svc := NewConsoleServiceMock(testConfig())
	to := []mail.Address{{Name: "Bob", Address: "bob@test.test"}}

	reset := &core.EmailMessage{
		To:           to,
		Subject:      "Password Reset",
		TemplateName: "password_reset",
		TemplateData: map[string]string{"Name": "Bob", "UID": "uid", "Token": "tok"},
	}
	plain := &core.EmailMessage{To: to, Subject: "Hi", BodyStr: "Hello Bob"}
	noRecipient := &core.EmailMessage{Subject: "Lost", BodyStr: "nobody"}
	require.NoError(t, plain.Attach(strings.NewReader("certificate"), "cert.txt", "text/plain"))

	svc.SendMessages(reset, plain, noRecipient)

	sent := svc.Messages()
	require.Len(t, sent, 2)
	assert.Contains(t, sent[0].TextContent, "https://learn.test")
	assert.Contains(t, sent[0].TextContent, "tok")
	assert.NotEmpty(t, sent[0].HTMLContent)
	assert.Equal(t, "Hello Bob", sent[1].TextContent)
	assert.True(t, sent[1].HasAttachments())

	svc.Reset()
	assert.Empty(t, svc.Messages())
}

func TestConsoleServiceMock_unknownTemplate(t *testing.T) {
	svc := NewConsoleServiceMock(testConfig())
	svc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Address: "bob@test.test"}},
		TemplateName: "does_not_exist",
	})
	assert.Empty(t, svc.Messages())
}

func TestSendgridService_prepare(t *testing.T) {
	svc := NewSendgridService(nil, testConfig()).(*sendgridService)
	msg := core.EmailMessage{
		To:          []mail.Address{{Name: "Bob", Address: "bob@test.test"}},
		Cc:          []mail.Address{{Address: "cc@test.test"}},
		Subject:     "Hi",
		TextContent: "Hello",
	}
	require.NoError(t, msg.Attach(strings.NewReader("certificate"), "cert.txt", "text/plain"))

	m := svc.prepare(msg)
	require.Len(t, m.Personalizations, 1)
	assert.Equal(t, "[DentaLearn] Hi", m.Personalizations[0].Subject)
	assert.Equal(t, "bob@test.test", m.Personalizations[0].To[0].Address)
	assert.Equal(t, "cc@test.test", m.Personalizations[0].CC[0].Address)
	assert.Equal(t, "noreply@learn.test", m.From.Address)
	require.Len(t, m.Content, 1, "no empty html part")
	require.Len(t, m.Attachments, 1)
	assert.Equal(t, "cert.txt", m.Attachments[0].Filename)
}
