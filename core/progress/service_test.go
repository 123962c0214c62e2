package progress_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentalearn/lms/core/course"
	"github.com/dentalearn/lms/core/progress"
	"github.com/dentalearn/lms/core/user"
	inmemdb "github.com/dentalearn/lms/storage/database/inmem"
	testutil "github.com/dentalearn/lms/tests"
)

type fixture struct {
	svc       progress.ServiceInterface
	courseSvc course.ServiceInterface
	course    testutil.SampleCourse
	learner   user.User
}

func setup(t *testing.T) fixture {
	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)
	courseSvc := course.NewService(inmemdb.NewCourseRepository(db))

	instructor := testutil.CreateUser(t, usrRepo, "Dr Ada", "ada", "ada@test.test", "", []string{user.RoleInstructor}, true)
	learner := testutil.CreateUser(t, usrRepo, "Bob", "bob", "bob@test.test", "", []string{user.RoleStudent}, true)
	sc := testutil.CreateSampleCourse(t, courseSvc, instructor.ID, true)
	_, err := courseSvc.Enroll(context.Background(), sc.ID, learner.ID)
	require.NoError(t, err)

	registry := progress.NewRegistry(inmemdb.NewProgressStore(db), progress.TrackerConfig{})
	return fixture{
		svc:       progress.NewService(registry, courseSvc),
		courseSvc: courseSvc,
		course:    sc,
		learner:   learner,
	}
}

func TestService_scenarioPassingQuiz(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c, lid := f.course, f.learner.ID

	v, err := f.svc.RecordVideoProgress(ctx, lid, c.ID, c.VideoA.ID, progress.VideoProgressUpdate{Position: 290, TotalSeconds: 300})
	require.NoError(t, err)
	assert.True(t, v.Completed)

	ok, err := f.svc.IsUnlocked(ctx, lid, c.ID, c.QuizA.ID, course.ContentQuiz)
	require.NoError(t, err)
	assert.True(t, ok)

	res, err := f.svc.SubmitQuiz(ctx, lid, c.ID, c.QuizA.ID, progress.QuizSubmission{Answers: c.QuizAnswers(4)})
	require.NoError(t, err)
	assert.Equal(t, progress.QuizResult{Score: 4, TotalQuestions: 5, Passed: true, Completed: true}, res)

	ok, err = f.svc.IsUnlocked(ctx, lid, c.ID, c.VideoB.ID, course.ContentVideo)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.svc.RecordVideoProgress(ctx, lid, c.ID, c.VideoB.ID, progress.VideoProgressUpdate{Ended: true})
	require.NoError(t, err)

	comp, err := f.svc.Completion(ctx, lid, c.ID)
	require.NoError(t, err)
	assert.Equal(t, progress.Completion{Completed: 3, Total: 3, Percentage: 100}, comp)
}

func TestService_scenarioFailingQuiz(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c, lid := f.course, f.learner.ID

	_, err := f.svc.RecordVideoProgress(ctx, lid, c.ID, c.VideoA.ID, progress.VideoProgressUpdate{Position: 290, TotalSeconds: 300})
	require.NoError(t, err)
	res, err := f.svc.SubmitQuiz(ctx, lid, c.ID, c.QuizA.ID, progress.QuizSubmission{Answers: c.QuizAnswers(2)})
	require.NoError(t, err)
	assert.False(t, res.Passed)
	assert.False(t, res.Completed)

	_, err = f.svc.RecordVideoProgress(ctx, lid, c.ID, c.VideoB.ID, progress.VideoProgressUpdate{Position: 10, TotalSeconds: 120})
	assert.Equal(t, progress.ErrContentLocked, errors.Cause(err))

	ov, err := f.svc.Overview(ctx, lid, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 33.3, ov.Completion.Percentage)
	require.Len(t, ov.Items, 3)
	assert.Equal(t, progress.StateCompleted, ov.Items[0].State)
	assert.Equal(t, progress.StateInProgress, ov.Items[1].State)
	assert.Equal(t, progress.StateLocked, ov.Items[2].State)
}

func TestService_catalogIsAuthoritative(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c, lid := f.course, f.learner.ID

	// the client claims a 100s video: the catalog says 300s
	v, err := f.svc.RecordVideoProgress(ctx, lid, c.ID, c.VideoA.ID, progress.VideoProgressUpdate{Position: 99, TotalSeconds: 100})
	require.NoError(t, err)
	assert.Equal(t, 300.0, v.TotalSeconds)
	assert.False(t, v.Completed)
}

func TestService_errors(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c, lid := f.course, f.learner.ID

	unpublished := testutil.CreateSampleCourse(t, f.courseSvc, c.InstructorID, false)
	published := testutil.CreateSampleCourse(t, f.courseSvc, c.InstructorID, true)
	upd := progress.VideoProgressUpdate{Position: 10, TotalSeconds: 300}

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{
			name: "unknown course",
			run: func() error {
				_, err := f.svc.RecordVideoProgress(ctx, lid, "nope", c.VideoA.ID, upd)
				return err
			},
			want: course.ErrNotFound,
		},
		{
			name: "not enrolled",
			run: func() error {
				_, err := f.svc.RecordVideoProgress(ctx, lid, published.ID, published.VideoA.ID, upd)
				return err
			},
			want: course.ErrNotEnrolled,
		},
		{
			name: "not enrolled in an unpublished course",
			run: func() error {
				_, err := f.svc.Overview(ctx, lid, unpublished.ID)
				return err
			},
			want: course.ErrNotEnrolled,
		},
		{
			name: "content of another course",
			run: func() error {
				_, err := f.svc.RecordVideoProgress(ctx, lid, c.ID, published.VideoA.ID, upd)
				return err
			},
			want: progress.ErrUnknownContent,
		},
		{
			name: "quiz reported as a video",
			run: func() error {
				_, err := f.svc.RecordVideoProgress(ctx, lid, c.ID, c.QuizA.ID, upd)
				return err
			},
			want: progress.ErrUnknownContent,
		},
		{
			name: "locked quiz",
			run: func() error {
				_, err := f.svc.SubmitQuiz(ctx, lid, c.ID, c.QuizA.ID, progress.QuizSubmission{Answers: c.QuizAnswers(5)})
				return err
			},
			want: progress.ErrContentLocked,
		},
		{
			name: "unknown content type check",
			run: func() error {
				_, err := f.svc.IsUnlocked(ctx, lid, c.ID, "nope", course.ContentVideo)
				return err
			},
			want: progress.ErrUnknownContent,
		},
		{
			name: "negative position",
			run: func() error {
				_, err := f.svc.RecordVideoProgress(ctx, lid, c.ID, c.VideoA.ID, progress.VideoProgressUpdate{Position: -1})
				return err
			},
			want: progress.ErrInvalidArgument,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Cause(tt.run()))
		})
	}

	t.Run("unknown question", func(t *testing.T) {
		_, err := f.svc.RecordVideoProgress(ctx, lid, c.ID, c.VideoA.ID, progress.VideoProgressUpdate{Ended: true})
		require.NoError(t, err)
		_, err = f.svc.SubmitQuiz(ctx, lid, c.ID, c.QuizA.ID, progress.QuizSubmission{Answers: map[string]string{"q9": "a"}})
		assert.Equal(t, progress.ErrInvalidArgument, errors.Cause(err))
	})
}

func TestService_Overview(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c, lid := f.course, f.learner.ID

	ov, err := f.svc.Overview(ctx, lid, c.ID)
	require.NoError(t, err)
	assert.Nil(t, ov.Progress, "no progress yet")
	assert.Equal(t, progress.Completion{Total: 3}, ov.Completion)
	assert.Equal(t, []progress.ItemState{
		{ContentID: c.VideoA.ID, ModuleID: c.VideoA.ModuleID, Type: course.ContentVideo, State: progress.StateUnlocked},
		{ContentID: c.QuizA.ID, ModuleID: c.QuizA.ModuleID, Type: course.ContentQuiz, State: progress.StateLocked},
		{ContentID: c.VideoB.ID, ModuleID: c.VideoB.ModuleID, Type: course.ContentVideo, State: progress.StateLocked},
	}, ov.Items)

	_, err = f.svc.RecordVideoProgress(ctx, lid, c.ID, c.VideoA.ID, progress.VideoProgressUpdate{Position: 30, TotalSeconds: 300})
	require.NoError(t, err)
	ov, err = f.svc.Overview(ctx, lid, c.ID)
	require.NoError(t, err)
	require.NotNil(t, ov.Progress)
	assert.Equal(t, 30.0, ov.Progress.Videos[c.VideoA.ID].LastPosition)
	assert.Equal(t, progress.StateInProgress, ov.Items[0].State)

	snap, err := f.svc.Snapshot(ctx, lid, c.ID)
	require.NoError(t, err)
	assert.Equal(t, ov, snap)
	_, err = f.svc.Snapshot(ctx, "unknown", c.ID)
	assert.Equal(t, course.ErrNotEnrolled, errors.Cause(err))
	assert.NoError(t, f.svc.Flush(ctx))
}
