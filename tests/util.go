package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/dentalearn/lms/core/course"
	"github.com/dentalearn/lms/core/user"
	"github.com/dentalearn/lms/storage/database"
)

// PrepareDB opens and migrates the database at TEST_DATABASE_URL, or skips the test.
func PrepareDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := database.OpenURL(dsn)
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	if err = database.Migrate(db); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// SampleCourse is the course used across tests:
// module 1 holds a 300s video then a 5-question quiz (passing score 3, correct option "a"),
// module 2 holds a 120s video.
type SampleCourse struct {
	course.Course
	VideoA, QuizA, VideoB course.ContentItem
}

// QuizAnswers answers the sample quiz with `correct` right answers.
func (sc SampleCourse) QuizAnswers(correct int) map[string]string {
	answers := make(map[string]string, len(sc.QuizA.Quiz.Questions))
	for i, q := range sc.QuizA.Quiz.Questions {
		if i < correct {
			answers[q.ID] = "a"
		} else {
			answers[q.ID] = "b"
		}
	}
	return answers
}

// CreateSampleCourse authors SampleCourse through the course service, publishing it if asked.
func CreateSampleCourse(t *testing.T, svc course.ServiceInterface, instructorID string, publish bool) SampleCourse {
	t.Helper()
	ctx := context.Background()
	fail := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("CreateSampleCourse() failed: %v", err)
		}
	}

	c, err := svc.Create(ctx, instructorID, course.NewCourse{Title: "Periodontics 101", Description: "Gum health basics"})
	fail(err)
	m1, err := svc.AddModule(ctx, c.ID, course.NewModule{Title: "Anatomy"})
	fail(err)
	m2, err := svc.AddModule(ctx, c.ID, course.NewModule{Title: "Hygiene"})
	fail(err)

	var sc SampleCourse
	sc.VideoA, err = svc.AddContent(ctx, c.ID, m1.ID, course.NewContent{
		Type: course.ContentVideo, Title: "The periodontium", VideoURL: "https://videos.test/a.mp4", DurationSeconds: 300,
	})
	fail(err)

	questions := make([]course.NewQuestion, 0, 5)
	for i := 1; i <= 5; i++ {
		questions = append(questions, course.NewQuestion{
			ID:              fmt.Sprintf("q%d", i),
			Prompt:          fmt.Sprintf("Question %d", i),
			Options:         []course.Option{{ID: "a", Text: "Right"}, {ID: "b", Text: "Wrong"}},
			CorrectOptionID: "a",
		})
	}
	sc.QuizA, err = svc.AddContent(ctx, c.ID, m1.ID, course.NewContent{
		Type: course.ContentQuiz, Title: "Anatomy quiz", Quiz: &course.NewQuiz{PassingScore: 3, Questions: questions},
	})
	fail(err)
	sc.VideoB, err = svc.AddContent(ctx, c.ID, m2.ID, course.NewContent{
		Type: course.ContentVideo, Title: "Brushing technique", VideoURL: "https://videos.test/b.mp4", DurationSeconds: 120,
	})
	fail(err)

	if publish {
		_, err = svc.Publish(ctx, c.ID)
		fail(err)
	}
	sc.Course, err = svc.Get(ctx, c.ID)
	fail(err)
	return sc
}
