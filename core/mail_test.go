package core

import (
	"encoding/base64"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailMessage_Render(t *testing.T) {
	to := []mail.Address{{Name: "Bob", Address: "bob@test.test"}}

	tests := []struct {
		name     string
		msg      EmailMessage
		wantErr  string
		wantText []string
		wantHTML bool
	}{
		{
			name: "password reset",
			msg: EmailMessage{To: to, TemplateName: "password_reset", TemplateData: map[string]string{
				"Name": "Bob", "UID": "uid", "Token": "tok",
			}},
			wantText: []string{"Hi Bob,", "https://learn.test/password-reset/uid/tok", "The DentaLearn team"},
			wantHTML: true,
		},
		{
			name: "course reminder",
			msg: EmailMessage{To: to, TemplateName: "course_reminder", TemplateData: map[string]interface{}{
				"LearnerName": "Bob", "Percentage": 33.3, "CourseTitle": "Periodontics 101", "CourseID": "c1",
			}},
			wantText: []string{"You are 33% through \"Periodontics 101\"", "https://learn.test/courses/c1"},
			wantHTML: true,
		},
		{
			name: "certificate issued",
			msg: EmailMessage{To: to, TemplateName: "certificate_issued", TemplateData: map[string]string{
				"LearnerName": "Bob", "CourseTitle": "Periodontics 101", "Number": "DL-2026-ABCDEF12",
			}},
			wantText: []string{"DL-2026-ABCDEF12"},
			wantHTML: true,
		},
		{
			name:     "plain body",
			msg:      EmailMessage{To: to, BodyStr: "hello"},
			wantText: []string{"hello"},
		},
		{
			name:    "unknown template",
			msg:     EmailMessage{To: to, TemplateName: "nope"},
			wantErr: `unknown email template "nope"`,
		},
		{
			name:    "missing data",
			msg:     EmailMessage{To: to, TemplateName: "password_reset", TemplateData: map[string]string{"Name": "Bob"}},
			wantErr: "rendering text content",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.msg
			err := msg.Render("https://learn.test")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, msg.HasContent())
			for _, want := range tt.wantText {
				assert.Contains(t, msg.TextContent, want)
			}
			assert.Equal(t, tt.wantHTML, msg.HTMLContent != "")
		})
	}
}

func TestEmailMessage_Attach(t *testing.T) {
	var msg EmailMessage
	assert.False(t, msg.HasAttachments())

	require.NoError(t, msg.Attach(strings.NewReader("certificate"), "cert.txt", "text/plain"))
	require.NoError(t, msg.Attach(strings.NewReader("<html><body>hi</body></html>"), "cert.html"))
	require.True(t, msg.HasAttachments())
	require.Len(t, msg.Attachments, 2)

	at := msg.Attachments[0]
	assert.Equal(t, "cert.txt", at.Filename)
	assert.Equal(t, "text/plain", at.ContentType)
	decoded, err := base64.StdEncoding.DecodeString(at.Content.String())
	require.NoError(t, err)
	assert.Equal(t, "certificate", string(decoded))

	assert.Equal(t, "text/html; charset=utf-8", msg.Attachments[1].ContentType, "sniffed")
}
