package progress

import (
	"math"
	"time"

	"github.com/dentalearn/lms/core/course"
)

// DefaultVideoCompletionThreshold is the watched fraction at which a video counts as completed.
const DefaultVideoCompletionThreshold = 0.95

type (
	VideoProgress struct {
		LastPosition float64   `json:"last_position"` // seconds, 0 <= LastPosition <= TotalSeconds
		TotalSeconds float64   `json:"total_seconds"`
		Completed    bool      `json:"completed"`
		UpdatedAt    time.Time `json:"updated_at"` // UTC
	}

	QuizProgress struct {
		Answers        map[string]string `json:"answers"` // {questionID: optionID}
		Score          int               `json:"score"`
		TotalQuestions int               `json:"total_questions"`
		Completed      bool              `json:"completed"`
		Attempts       int               `json:"attempts"`
		UpdatedAt      time.Time         `json:"updated_at"` // UTC
	}

	// CourseProgress is a learner's progress through one course.
	// Completion is never stored; see Completion.
	CourseProgress struct {
		CourseID string                    `json:"course_id"`
		Videos   map[string]*VideoProgress `json:"video_progress"`
		Quizzes  map[string]*QuizProgress  `json:"quiz_progress"`
	}

	QuizResult struct {
		Score          int  `json:"score"`
		TotalQuestions int  `json:"total_questions"`
		Passed         bool `json:"passed"`
		Completed      bool `json:"completed"`
	}

	Completion struct {
		Completed  int     `json:"completed"`
		Total      int     `json:"total"`
		Percentage float64 `json:"percentage"` // [0, 100], one decimal
	}
)

func newCourseProgress(courseID string) *CourseProgress {
	return &CourseProgress{
		CourseID: courseID,
		Videos:   make(map[string]*VideoProgress),
		Quizzes:  make(map[string]*QuizProgress),
	}
}

func (cp *CourseProgress) clone() CourseProgress {
	c := CourseProgress{
		CourseID: cp.CourseID,
		Videos:   make(map[string]*VideoProgress, len(cp.Videos)),
		Quizzes:  make(map[string]*QuizProgress, len(cp.Quizzes)),
	}
	for id, v := range cp.Videos {
		vc := *v
		c.Videos[id] = &vc
	}
	for id, q := range cp.Quizzes {
		qc := *q
		qc.Answers = copyAnswers(q.Answers)
		c.Quizzes[id] = &qc
	}
	return c
}

// IsItemCompleted reports whether the content item is completed.
func (cp *CourseProgress) IsItemCompleted(item course.ContentItem) bool {
	if cp == nil {
		return false
	}
	switch item.Type {
	case course.ContentVideo:
		v, ok := cp.Videos[item.ID]
		return ok && v.Completed
	case course.ContentQuiz:
		q, ok := cp.Quizzes[item.ID]
		return ok && q.Completed
	}
	return false
}

// IsItemStarted reports whether any progress was recorded for the content item.
func (cp *CourseProgress) IsItemStarted(item course.ContentItem) bool {
	if cp == nil {
		return false
	}
	switch item.Type {
	case course.ContentVideo:
		_, ok := cp.Videos[item.ID]
		return ok
	case course.ContentQuiz:
		_, ok := cp.Quizzes[item.ID]
		return ok
	}
	return false
}

// LastActivity is the latest update time across all entries.
func (cp *CourseProgress) LastActivity() time.Time {
	var last time.Time
	if cp == nil {
		return last
	}
	for _, v := range cp.Videos {
		if v.UpdatedAt.After(last) {
			last = v.UpdatedAt
		}
	}
	for _, q := range cp.Quizzes {
		if q.UpdatedAt.After(last) {
			last = q.UpdatedAt
		}
	}
	return last
}

// IsComplete reports whether every item of the outline is completed.
// It does not rely on Percentage, which is rounded.
func (c Completion) IsComplete() bool {
	return c.Total > 0 && c.Completed == c.Total
}

// computeCompletion derives the completion of cp over the outline. cp may be nil.
func computeCompletion(cp *CourseProgress, outline []course.Module) Completion {
	var c Completion
	for _, item := range flatten(outline) {
		c.Total++
		if cp.IsItemCompleted(item) {
			c.Completed++
		}
	}
	if c.Total > 0 {
		c.Percentage = math.Round(float64(c.Completed)*1000/float64(c.Total)) / 10
	}
	return c
}

func flatten(outline []course.Module) []course.ContentItem {
	items := make([]course.ContentItem, 0)
	for _, m := range outline {
		items = append(items, m.Items...)
	}
	return items
}

func copyAnswers(answers map[string]string) map[string]string {
	c := make(map[string]string, len(answers))
	for k, v := range answers {
		c[k] = v
	}
	return c
}
