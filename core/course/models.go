package course

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dentalearn/lms/core"
)

type ContentType string

const (
	ContentVideo ContentType = "video"
	ContentQuiz  ContentType = "quiz"
)

type (
	Course struct {
		ID           string    `json:"id"`
		Title        string    `json:"title"`
		Description  string    `json:"description"`
		InstructorID string    `json:"instructor_id"`
		IsPublished  bool      `json:"is_published"`
		Modules      []Module  `json:"modules,omitempty"`
		CreatedAt    time.Time `json:"created_at"` // UTC
		UpdatedAt    time.Time `json:"updated_at"` // UTC
	}

	// Module is an ordered group of content items.
	Module struct {
		ID       string        `json:"id"`
		CourseID string        `json:"course_id"`
		Title    string        `json:"title"`
		Position int           `json:"position"`
		Items    []ContentItem `json:"items"`
	}

	ContentItem struct {
		ID              string      `json:"id"`
		ModuleID        string      `json:"module_id"`
		Type            ContentType `json:"type"`
		Title           string      `json:"title"`
		Position        int         `json:"position"`
		VideoURL        string      `json:"video_url,omitempty"`
		DurationSeconds float64     `json:"duration_seconds,omitempty"`
		Quiz            *Quiz       `json:"quiz,omitempty"`
	}

	Quiz struct {
		PassingScore int        `json:"passing_score"`
		Questions    []Question `json:"questions"`
	}

	Question struct {
		ID              string   `json:"id"`
		Prompt          string   `json:"prompt"`
		Options         []Option `json:"options"`
		CorrectOptionID string   `json:"-"`
	}

	Option struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	}

	Enrollment struct {
		ID        string    `json:"id"`
		CourseID  string    `json:"course_id"`
		LearnerID string    `json:"learner_id"`
		CreatedAt time.Time `json:"created_at"` // UTC
	}
)

// Outline returns the ordered modules of the course.
func (c Course) Outline() []Module {
	return c.Modules
}

// Items flattens the outline: module order, then content order.
func (c Course) Items() []ContentItem {
	items := make([]ContentItem, 0)
	for _, m := range c.Modules {
		items = append(items, m.Items...)
	}
	return items
}

// Item finds a content item by ID.
func (c Course) Item(id string) (ContentItem, bool) {
	for _, m := range c.Modules {
		for _, item := range m.Items {
			if item.ID == id {
				return item, true
			}
		}
	}
	return ContentItem{}, false
}

// Module finds a module by ID.
func (c Course) Module(id string) (Module, bool) {
	for _, m := range c.Modules {
		if m.ID == id {
			return m, true
		}
	}
	return Module{}, false
}

// AnswerKey maps every question ID to its correct option ID.
func (q Quiz) AnswerKey() map[string]string {
	key := make(map[string]string, len(q.Questions))
	for _, qn := range q.Questions {
		key[qn.ID] = qn.CorrectOptionID
	}
	return key
}

// quizJSON is the stored form of a Quiz; unlike the API form it keeps the answer key.
type (
	quizJSON struct {
		PassingScore int            `json:"passing_score"`
		Questions    []questionJSON `json:"questions"`
	}

	questionJSON struct {
		ID              string   `json:"id"`
		Prompt          string   `json:"prompt"`
		Options         []Option `json:"options"`
		CorrectOptionID string   `json:"correct_option_id"`
	}
)

// MarshalStored encodes the quiz with its answer key, for storage only.
func (q *Quiz) MarshalStored() ([]byte, error) {
	if q == nil {
		return nil, nil
	}
	qj := quizJSON{PassingScore: q.PassingScore, Questions: make([]questionJSON, 0, len(q.Questions))}
	for _, qn := range q.Questions {
		qj.Questions = append(qj.Questions, questionJSON(qn))
	}
	return json.Marshal(qj)
}

// UnmarshalStoredQuiz decodes a quiz encoded by MarshalStored.
func UnmarshalStoredQuiz(data []byte) (*Quiz, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var qj quizJSON
	if err := json.Unmarshal(data, &qj); err != nil {
		return nil, err
	}
	q := &Quiz{PassingScore: qj.PassingScore, Questions: make([]Question, 0, len(qj.Questions))}
	for _, qn := range qj.Questions {
		q.Questions = append(q.Questions, Question(qn))
	}
	return q, nil
}

// Requests

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	return validate.Struct(nc)
}

type NewModule struct {
	Title string `json:"title" validate:"required,max=200"`
}

func (nm *NewModule) Validate(validate *validator.Validate) error {
	nm.Title = core.CleanString(nm.Title)
	return validate.Struct(nm)
}

type (
	NewContent struct {
		Type            ContentType `json:"type" validate:"required,oneof=video quiz"`
		Title           string      `json:"title" validate:"required,max=200"`
		VideoURL        string      `json:"video_url" validate:"omitempty,url"`
		DurationSeconds float64     `json:"duration_seconds" validate:"gte=0"`
		Quiz            *NewQuiz    `json:"quiz" validate:"omitempty"`
	}

	NewQuiz struct {
		PassingScore int           `json:"passing_score" validate:"gte=0"`
		Questions    []NewQuestion `json:"questions" validate:"required,min=1,dive"`
	}

	NewQuestion struct {
		ID              string   `json:"id" validate:"required"`
		Prompt          string   `json:"prompt" validate:"required"`
		Options         []Option `json:"options" validate:"required,min=2,dive"`
		CorrectOptionID string   `json:"correct_option_id" validate:"required"`
	}
)

func (nc *NewContent) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.VideoURL = core.CleanString(nc.VideoURL)
	return validate.Struct(nc)
}

// ToQuiz converts the request into a Quiz definition.
func (nq *NewQuiz) ToQuiz() *Quiz {
	if nq == nil {
		return nil
	}
	q := &Quiz{PassingScore: nq.PassingScore, Questions: make([]Question, 0, len(nq.Questions))}
	for _, qn := range nq.Questions {
		q.Questions = append(q.Questions, Question(qn))
	}
	return q
}

type QueryFilter struct {
	Search       string `query:"search"`
	InstructorID string `query:"instructor_id"`
	IsPublished  *bool  `query:"is_published"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.InstructorID = core.CleanString(qf.InstructorID)
}

type EnrollmentFilter struct {
	CourseID  string
	LearnerID string
}
