package remindersvc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentalearn/lms/core"
	"github.com/dentalearn/lms/core/course"
	"github.com/dentalearn/lms/core/progress"
	"github.com/dentalearn/lms/core/user"
	emailsvc "github.com/dentalearn/lms/services/email"
	inmemdb "github.com/dentalearn/lms/storage/database/inmem"
	testutil "github.com/dentalearn/lms/tests"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func TestService_Run(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	now := start
	core.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { core.NowFunc = func() time.Time { return time.Now().UTC() } })

	conf := &core.Config{AppName: "DentaLearn", FrontendBaseURL: "https://learn.test"}
	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)
	usrSvc := user.NewService(usrRepo, nil, conf)
	courseSvc := course.NewService(inmemdb.NewCourseRepository(db))
	progressSvc := progress.NewService(
		progress.NewRegistry(inmemdb.NewProgressStore(db), progress.TrackerConfig{}),
		courseSvc,
	)
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	svc := NewService(courseSvc, progressSvc, usrSvc, mailSvc, nopLogger{}, core.ReminderConfig{InactiveAfter: 7 * 24 * time.Hour})

	instructor := testutil.CreateUser(t, usrRepo, "Dr Ada", "ada", "ada@test.test", "", []string{user.RoleInstructor}, true)
	sc := testutil.CreateSampleCourse(t, courseSvc, instructor.ID, true)

	idle := testutil.CreateUser(t, usrRepo, "Idle", "idle", "idle@test.test", "", []string{user.RoleStudent}, true)
	done := testutil.CreateUser(t, usrRepo, "Done", "done", "done@test.test", "", []string{user.RoleStudent}, true)
	busy := testutil.CreateUser(t, usrRepo, "Busy", "busy", "busy@test.test", "", []string{user.RoleStudent}, true)
	gone := testutil.CreateUser(t, usrRepo, "Gone", "gone", "gone@test.test", "", []string{user.RoleStudent}, false)
	for _, usr := range []user.User{idle, done, busy, gone} {
		_, err := courseSvc.Enroll(ctx, sc.ID, usr.ID)
		require.NoError(t, err)
	}

	// done completes the course on day one
	_, err := progressSvc.RecordVideoProgress(ctx, done.ID, sc.ID, sc.VideoA.ID, progress.VideoProgressUpdate{Ended: true})
	require.NoError(t, err)
	_, err = progressSvc.SubmitQuiz(ctx, done.ID, sc.ID, sc.QuizA.ID, progress.QuizSubmission{Answers: sc.QuizAnswers(5)})
	require.NoError(t, err)
	_, err = progressSvc.RecordVideoProgress(ctx, done.ID, sc.ID, sc.VideoB.ID, progress.VideoProgressUpdate{Ended: true})
	require.NoError(t, err)

	// nothing is due within the first week
	n, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	now = start.Add(8 * 24 * time.Hour)
	_, err = progressSvc.RecordVideoProgress(ctx, busy.ID, sc.ID, sc.VideoA.ID, progress.VideoProgressUpdate{Position: 10, TotalSeconds: 300})
	require.NoError(t, err)

	due, err := svc.Due(ctx)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, idle.ID, due[0].Learner.ID)
	assert.Equal(t, sc.ID, due[0].Course.ID)

	n, err = svc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	msgs := mailSvc.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "idle@test.test", msgs[0].To[0].Address)
	assert.Contains(t, msgs[0].TextContent, "0% through \"Periodontics 101\"")
	assert.Contains(t, msgs[0].TextContent, "https://learn.test/courses/"+sc.ID)
}

func TestService_RunKeepsLiveProgress(t *testing.T) {
	ctx := context.Background()
	conf := &core.Config{AppName: "DentaLearn", FrontendBaseURL: "https://learn.test"}
	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)
	courseSvc := course.NewService(inmemdb.NewCourseRepository(db))
	store := inmemdb.NewProgressStore(db)
	registry := progress.NewRegistry(store, progress.TrackerConfig{})
	progressSvc := progress.NewService(registry, courseSvc)
	svc := NewService(
		courseSvc, progressSvc, user.NewService(usrRepo, nil, conf), emailsvc.NewConsoleServiceMock(conf), nopLogger{},
		core.ReminderConfig{InactiveAfter: time.Hour},
	)

	instructor := testutil.CreateUser(t, usrRepo, "Dr Ada", "ada", "ada@test.test", "", []string{user.RoleInstructor}, true)
	sc := testutil.CreateSampleCourse(t, courseSvc, instructor.ID, true)
	learner := testutil.CreateUser(t, usrRepo, "Bob", "bob", "bob@test.test", "", []string{user.RoleStudent}, true)
	_, err := courseSvc.Enroll(ctx, sc.ID, learner.ID)
	require.NoError(t, err)

	_, err = progressSvc.RecordVideoProgress(ctx, learner.ID, sc.ID, sc.VideoA.ID, progress.VideoProgressUpdate{Position: 10, TotalSeconds: 300})
	require.NoError(t, err)
	held := registry.Tracker(learner.ID)

	_, err = svc.Run(ctx)
	require.NoError(t, err)
	assert.Same(t, held, registry.Tracker(learner.ID), "a reminder run leaves the learner's tracker in place")

	_, err = progressSvc.RecordVideoProgress(ctx, learner.ID, sc.ID, sc.VideoA.ID, progress.VideoProgressUpdate{Ended: true})
	require.NoError(t, err)
	_, err = held.RecordVideoProgress(ctx, sc.ID, sc.VideoB.ID, 5, 120)
	require.NoError(t, err)

	cp, ok, err := progress.NewTracker(learner.ID, store, progress.TrackerConfig{}).CourseProgress(ctx, sc.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Contains(t, cp.Videos, sc.VideoA.ID)
	assert.True(t, cp.Videos[sc.VideoA.ID].Completed)
}

func TestService_Schedule(t *testing.T) {
	svc := NewService(nil, nil, nil, nil, nopLogger{}, core.ReminderConfig{Schedule: "not a schedule"})
	_, err := svc.Schedule(context.Background())
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.conf.Schedule = "0 9 * * MON"
	c, err := svc.Schedule(ctx)
	require.NoError(t, err)
	require.Len(t, c.Entries(), 1)
	assert.Equal(t, time.Monday, c.Entries()[0].Next.Weekday())
}
