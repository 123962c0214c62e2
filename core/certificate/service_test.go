package certificate_test

import (
	"context"
	"encoding/base64"
	"regexp"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentalearn/lms/core"
	"github.com/dentalearn/lms/core/certificate"
	"github.com/dentalearn/lms/core/course"
	"github.com/dentalearn/lms/core/progress"
	"github.com/dentalearn/lms/core/user"
	emailsvc "github.com/dentalearn/lms/services/email"
	inmemdb "github.com/dentalearn/lms/storage/database/inmem"
	testutil "github.com/dentalearn/lms/tests"
)

type fixture struct {
	svc      certificate.ServiceInterface
	progress progress.ServiceInterface
	mailSvc  *emailsvc.ConsoleServiceMock
	course   testutil.SampleCourse
	learner  user.User
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func setup(t *testing.T) fixture {
	conf := &core.Config{AppName: "DentaLearn", FrontendBaseURL: "https://learn.test"}
	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)
	courseSvc := course.NewService(inmemdb.NewCourseRepository(db))
	progressSvc := progress.NewService(
		progress.NewRegistry(inmemdb.NewProgressStore(db), progress.TrackerConfig{}),
		courseSvc,
	)
	mailSvc := emailsvc.NewConsoleServiceMock(conf)

	instructor := testutil.CreateUser(t, usrRepo, "Dr Ada", "ada", "ada@test.test", "", []string{user.RoleInstructor}, true)
	learner := testutil.CreateUser(t, usrRepo, "Bob Smith", "bob", "bob@test.test", "", []string{user.RoleStudent}, true)
	sc := testutil.CreateSampleCourse(t, courseSvc, instructor.ID, true)
	_, err := courseSvc.Enroll(context.Background(), sc.ID, learner.ID)
	require.NoError(t, err)

	return fixture{
		svc:      certificate.NewServiceMock(inmemdb.NewCertificateRepository(db), courseSvc, progressSvc, mailSvc, nopLogger{}, conf),
		progress: progressSvc,
		mailSvc:  mailSvc,
		course:   sc,
		learner:  learner,
	}
}

func (f fixture) completeCourse(t *testing.T, quizScore int) {
	ctx := context.Background()
	c, lid := f.course, f.learner.ID
	_, err := f.progress.RecordVideoProgress(ctx, lid, c.ID, c.VideoA.ID, progress.VideoProgressUpdate{Ended: true})
	require.NoError(t, err)
	_, err = f.progress.SubmitQuiz(ctx, lid, c.ID, c.QuizA.ID, progress.QuizSubmission{Answers: c.QuizAnswers(quizScore)})
	require.NoError(t, err)
	if quizScore >= c.QuizA.Quiz.PassingScore {
		_, err = f.progress.RecordVideoProgress(ctx, lid, c.ID, c.VideoB.ID, progress.VideoProgressUpdate{Position: 120, TotalSeconds: 120})
		require.NoError(t, err)
	}
}

func TestService_Issue(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.completeCourse(t, 5)

	cert, err := f.svc.Issue(ctx, f.learner, f.course.ID)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^DL-\d{4}-[0-9A-F]{8}$`), cert.Number)
	assert.Equal(t, "Bob Smith", cert.LearnerName)
	assert.Equal(t, f.course.Title, cert.CourseTitle)
	assert.Equal(t, f.course.ID, cert.CourseID)

	msgs := f.mailSvc.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "bob@test.test", msgs[0].To[0].Address)
	assert.Contains(t, msgs[0].TextContent, cert.Number)
	require.Len(t, msgs[0].Attachments, 1)
	assert.Equal(t, cert.Number+".txt", msgs[0].Attachments[0].Filename)
	content, err := base64.StdEncoding.DecodeString(msgs[0].Attachments[0].Content.String())
	require.NoError(t, err)
	assert.Contains(t, string(content), "This certifies that Bob Smith")

	t.Run("idempotent", func(t *testing.T) {
		again, err := f.svc.Issue(ctx, f.learner, f.course.ID)
		require.NoError(t, err)
		assert.Equal(t, cert, again)
		assert.Len(t, f.mailSvc.Messages(), 1, "no second email")
	})
	t.Run("verify", func(t *testing.T) {
		got, err := f.svc.Verify(ctx, " "+strings.ToLower(cert.Number)+" ")
		require.NoError(t, err)
		assert.Equal(t, cert, got)

		_, err = f.svc.Verify(ctx, "DL-2000-00000000")
		assert.Equal(t, certificate.ErrNotFound, errors.Cause(err))
		_, err = f.svc.Verify(ctx, "  ")
		assert.Equal(t, certificate.ErrNotFound, errors.Cause(err))
	})
	t.Run("list", func(t *testing.T) {
		certs, err := f.svc.ListForLearner(ctx, f.learner.ID)
		require.NoError(t, err)
		assert.Equal(t, []certificate.Certificate{cert}, certs)

		certs, err = f.svc.ListForLearner(ctx, "someone-else")
		require.NoError(t, err)
		assert.Empty(t, certs)
	})
}

func TestService_Issue_incomplete(t *testing.T) {
	ctx := context.Background()

	t.Run("no progress", func(t *testing.T) {
		f := setup(t)
		_, err := f.svc.Issue(ctx, f.learner, f.course.ID)
		assert.Equal(t, certificate.ErrCourseIncomplete, errors.Cause(err))
	})
	t.Run("failed quiz", func(t *testing.T) {
		f := setup(t)
		f.completeCourse(t, 2)
		_, err := f.svc.Issue(ctx, f.learner, f.course.ID)
		assert.Equal(t, certificate.ErrCourseIncomplete, errors.Cause(err))
		assert.Empty(t, f.mailSvc.Messages())
	})
	t.Run("not enrolled", func(t *testing.T) {
		f := setup(t)
		stranger := f.learner
		stranger.ID = "someone-else"
		_, err := f.svc.Issue(ctx, stranger, f.course.ID)
		assert.Equal(t, course.ErrNotEnrolled, errors.Cause(err))
	})
	t.Run("unknown course", func(t *testing.T) {
		f := setup(t)
		_, err := f.svc.Issue(ctx, f.learner, "nope")
		assert.Equal(t, course.ErrNotFound, errors.Cause(err))
	})
}
