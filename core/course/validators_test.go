package course_test

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/dentalearn/lms/core"
	"github.com/dentalearn/lms/core/course"
)

// fieldErrors validates v and returns the translated messages per field.
func fieldErrors(t *testing.T, validate func(*validator.Validate) error) map[string]string {
	t.Helper()
	v := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(v, translator)
	course.InitValidators(v, translator)

	err := validate(v)
	if err == nil {
		return nil
	}
	vErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		t.Fatalf("unexpected error type %T: %v", err, err)
	}
	msgs := make(map[string]string, len(vErrs))
	for _, fe := range vErrs {
		msgs[fe.Field()] = fe.Translate(translator)
	}
	return msgs
}

func question(id, correct string) course.NewQuestion {
	return course.NewQuestion{
		ID:              id,
		Prompt:          "Prompt " + id,
		Options:         []course.Option{{ID: "a", Text: "A"}, {ID: "b", Text: "B"}},
		CorrectOptionID: correct,
	}
}

func TestNewCourse_Validate(t *testing.T) {
	nc := course.NewCourse{Title: "  Endodontics  ", Description: " Root canals "}
	assert.Nil(t, fieldErrors(t, nc.Validate))
	assert.Equal(t, "Endodontics", nc.Title)
	assert.Equal(t, "Root canals", nc.Description)

	blank := course.NewCourse{Title: "   "}
	assert.Equal(t, map[string]string{"title": "this field is required"}, fieldErrors(t, blank.Validate))

	nm := course.NewModule{}
	assert.Equal(t, map[string]string{"title": "this field is required"}, fieldErrors(t, nm.Validate))
}

func TestNewContent_Validate(t *testing.T) {
	tests := []struct {
		name string
		nc   course.NewContent
		want map[string]string
	}{
		{
			name: "video",
			nc:   course.NewContent{Type: course.ContentVideo, Title: "Intro", VideoURL: " https://videos.test/a.mp4 ", DurationSeconds: 30},
		},
		{
			name: "quiz",
			nc: course.NewContent{Type: course.ContentQuiz, Title: "Check", Quiz: &course.NewQuiz{
				PassingScore: 2, Questions: []course.NewQuestion{question("q1", "a"), question("q2", "b")},
			}},
		},
		{
			name: "unknown type",
			nc:   course.NewContent{Type: "pdf", Title: "Slides"},
			want: map[string]string{"type": "type must be one of [video quiz]"},
		},
		{
			name: "video without url",
			nc:   course.NewContent{Type: course.ContentVideo, Title: "Intro"},
			want: map[string]string{"video_url": "a video requires a video_url"},
		},
		{
			name: "quiz without questions",
			nc:   course.NewContent{Type: course.ContentQuiz, Title: "Check"},
			want: map[string]string{"quiz": "a quiz requires questions"},
		},
		{
			name: "nil questions",
			nc:   course.NewContent{Type: course.ContentQuiz, Title: "Check", Quiz: &course.NewQuiz{}},
			want: map[string]string{"questions": "this field is required"},
		},
		{
			name: "passing score above question count",
			nc: course.NewContent{Type: course.ContentQuiz, Title: "Check", Quiz: &course.NewQuiz{
				PassingScore: 3, Questions: []course.NewQuestion{question("q1", "a"), question("q2", "a")},
			}},
			want: map[string]string{"passing_score": "passing_score cannot exceed the number of questions"},
		},
		{
			name: "duplicate question ids",
			nc: course.NewContent{Type: course.ContentQuiz, Title: "Check", Quiz: &course.NewQuiz{
				PassingScore: 1, Questions: []course.NewQuestion{question("q1", "a"), question("q1", "b")},
			}},
			want: map[string]string{"questions": "question ids must be unique"},
		},
		{
			name: "correct option not offered",
			nc: course.NewContent{Type: course.ContentQuiz, Title: "Check", Quiz: &course.NewQuiz{
				PassingScore: 1, Questions: []course.NewQuestion{question("q1", "z")},
			}},
			want: map[string]string{"correct_option_id": "correct_option_id must be one of the options"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nc := tt.nc
			assert.Equal(t, tt.want, fieldErrors(t, nc.Validate))
		})
	}
}

func TestQuiz_storedForm(t *testing.T) {
	nq := &course.NewQuiz{PassingScore: 1, Questions: []course.NewQuestion{question("q1", "b")}}
	q := nq.ToQuiz()

	data, err := q.MarshalStored()
	assert.NoError(t, err)
	assert.Contains(t, string(data), `"correct_option_id":"b"`)

	back, err := course.UnmarshalStoredQuiz(data)
	assert.NoError(t, err)
	assert.Equal(t, q, back)

	none, err := course.UnmarshalStoredQuiz([]byte("null"))
	assert.NoError(t, err)
	assert.Nil(t, none)
}
