package progress

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/dentalearn/lms/core/course"
)

var errStoreDown = errors.New("store down")

// memStore is a Store whose failures can be switched on.
type memStore struct {
	mu       sync.Mutex
	records  map[string]map[string][]byte
	failLoad bool
	failSave bool
	loads    int
	saves    int
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]map[string][]byte)}
}

func (s *memStore) Load(_ context.Context, learnerID string) (map[string][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.failLoad {
		return nil, errStoreDown
	}
	out := make(map[string][]byte, len(s.records[learnerID]))
	for k, v := range s.records[learnerID] {
		out[k] = append([]byte(nil), v...)
	}
	return out, nil
}

func (s *memStore) Save(_ context.Context, learnerID, courseID string, record []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.failSave {
		return errStoreDown
	}
	if s.records[learnerID] == nil {
		s.records[learnerID] = make(map[string][]byte)
	}
	s.records[learnerID][courseID] = append([]byte(nil), record...)
	return nil
}

func (s *memStore) setFailSave(fail bool) {
	s.mu.Lock()
	s.failSave = fail
	s.mu.Unlock()
}

// logRecorder is a core.Logger keeping the messages it receives.
type logRecorder struct {
	mu    sync.Mutex
	warns []string
}

func (l *logRecorder) record(msg string) {
	l.mu.Lock()
	l.warns = append(l.warns, msg)
	l.mu.Unlock()
}

func (l *logRecorder) Debug(string, ...interface{})       {}
func (l *logRecorder) Info(string, ...interface{})        {}
func (l *logRecorder) Warn(msg string, _ ...interface{})  { l.record(msg) }
func (l *logRecorder) Error(msg string, _ ...interface{}) { l.record(msg) }
func (l *logRecorder) Fatal(msg string, _ ...interface{}) { panic(msg) }

const (
	courseID = "course-1"
	learner  = "learner-1"

	videoA = "video-a"
	quizA  = "quiz-a"
	videoB = "video-b"
)

// sampleOutline is a course with 2 modules: A holds a 300s video and a 5-question quiz
// (passing score 3), B holds a 120s video.
func sampleOutline() []course.Module {
	questions := make([]course.Question, 0, 5)
	for i := 1; i <= 5; i++ {
		questions = append(questions, course.Question{
			ID:              fmt.Sprintf("q%d", i),
			Prompt:          fmt.Sprintf("Question %d", i),
			Options:         []course.Option{{ID: "a", Text: "A"}, {ID: "b", Text: "B"}},
			CorrectOptionID: "a",
		})
	}
	return []course.Module{
		{
			ID: "module-a", CourseID: courseID, Title: "Anatomy", Position: 1,
			Items: []course.ContentItem{
				{ID: videoA, ModuleID: "module-a", Type: course.ContentVideo, Position: 1, DurationSeconds: 300},
				{ID: quizA, ModuleID: "module-a", Type: course.ContentQuiz, Position: 2, Quiz: &course.Quiz{PassingScore: 3, Questions: questions}},
			},
		},
		{
			ID: "module-b", CourseID: courseID, Title: "Hygiene", Position: 2,
			Items: []course.ContentItem{
				{ID: videoB, ModuleID: "module-b", Type: course.ContentVideo, Position: 1, DurationSeconds: 120},
			},
		},
	}
}

// answersScoring returns answers to the 5 sample questions with `correct` right ones.
func answersScoring(correct int) map[string]string {
	answers := make(map[string]string, 5)
	for i := 1; i <= 5; i++ {
		opt := "b"
		if i <= correct {
			opt = "a"
		}
		answers[fmt.Sprintf("q%d", i)] = opt
	}
	return answers
}

func newTestTracker(store Store) (*Tracker, *logRecorder) {
	logger := new(logRecorder)
	return NewTracker(learner, store, TrackerConfig{Logger: logger}), logger
}
