package certificate

import (
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentalearn/lms/core"
	"github.com/dentalearn/lms/core/user"
	emailsvc "github.com/dentalearn/lms/services/email"
)

type errorRecorder struct {
	msgs []string
	errs []error
}

func (l *errorRecorder) Debug(string, ...interface{}) {}
func (l *errorRecorder) Info(string, ...interface{})  {}
func (l *errorRecorder) Warn(string, ...interface{})  {}
func (l *errorRecorder) Fatal(string, ...interface{}) {}
func (l *errorRecorder) Error(msg string, args ...interface{}) {
	l.msgs = append(l.msgs, msg)
	for _, arg := range args {
		if err, ok := arg.(error); ok {
			l.errs = append(l.errs, err)
		}
	}
}

func TestService_sendCertificateMail(t *testing.T) {
	conf := &core.Config{AppName: "DentaLearn", FrontendBaseURL: "https://learn.test"}
	learner := user.User{ID: "learner-1", Name: "Bob", Email: "bob@test.test"}
	cert := Certificate{Number: "DL-2026-0A1B2C3D", LearnerName: "Bob", CourseTitle: "Periodontics 101"}

	t.Run("sends the certificate", func(t *testing.T) {
		mailSvc := emailsvc.NewConsoleServiceMock(conf)
		logger := &errorRecorder{}
		svc := &service{mailSvc: mailSvc, logger: logger, conf: conf}

		svc.sendCertificateMail(learner, cert)
		assert.Empty(t, logger.msgs)
		msgs := mailSvc.Messages()
		require.Len(t, msgs, 1)
		require.Len(t, msgs[0].Attachments, 1)
		assert.Equal(t, "DL-2026-0A1B2C3D.txt", msgs[0].Attachments[0].Filename)
	})

	t.Run("logs a failed attachment", func(t *testing.T) {
		errRead := errors.New("read failed")
		attachmentReader = func(Certificate, string) io.Reader { return iotest.ErrReader(errRead) }
		t.Cleanup(func() {
			attachmentReader = func(cert Certificate, appName string) io.Reader {
				return strings.NewReader(cert.Text(appName))
			}
		})

		mailSvc := emailsvc.NewConsoleServiceMock(conf)
		logger := &errorRecorder{}
		svc := &service{mailSvc: mailSvc, logger: logger, conf: conf}

		svc.sendCertificateMail(learner, cert)
		assert.Empty(t, mailSvc.Messages())
		require.Equal(t, []string{"certificate DL-2026-0A1B2C3D not mailed to bob@test.test"}, logger.msgs)
		require.Len(t, logger.errs, 1)
		assert.Equal(t, errRead, errors.Cause(logger.errs[0]))
	})
}
