package course

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/dentalearn/lms/core"
)

var (
	videoURLTag  = "videourl"
	videoURLText = "a video requires a video_url"

	quizRequiredTag  = "quizrequired"
	quizRequiredText = "a quiz requires questions"

	quizPassingTag  = "quizpassing"
	quizPassingText = "passing_score cannot exceed the number of questions"

	quizOptionTag  = "quizoption"
	quizOptionText = "correct_option_id must be one of the options"

	duplicateIDTag  = "uniqueids"
	duplicateIDText = "question ids must be unique"
)

// InitValidators registers the course validators and their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(contentStructValidation, NewContent{})
	validate.RegisterStructValidation(quizStructValidation, NewQuiz{})
	validate.RegisterStructValidation(questionStructValidation, NewQuestion{})

	core.RegisterCustomTranslation(validate, translator, videoURLTag, videoURLText)
	core.RegisterCustomTranslation(validate, translator, quizRequiredTag, quizRequiredText)
	core.RegisterCustomTranslation(validate, translator, quizPassingTag, quizPassingText)
	core.RegisterCustomTranslation(validate, translator, quizOptionTag, quizOptionText)
	core.RegisterCustomTranslation(validate, translator, duplicateIDTag, duplicateIDText)
}

// contentStructValidation checks the fields each content type requires.
func contentStructValidation(sl validator.StructLevel) {
	nc, ok := sl.Current().Interface().(NewContent)
	if !ok {
		return
	}
	switch nc.Type {
	case ContentVideo:
		if nc.VideoURL == "" {
			sl.ReportError(nc.VideoURL, "video_url", "VideoURL", videoURLTag, "")
		}
	case ContentQuiz:
		if nc.Quiz == nil {
			sl.ReportError(nc.Quiz, "quiz", "Quiz", quizRequiredTag, "")
		}
	}
}

// quizStructValidation checks that the quiz can be passed and that question IDs are unique.
func quizStructValidation(sl validator.StructLevel) {
	nq, ok := sl.Current().Interface().(NewQuiz)
	if !ok {
		return
	}
	if nq.PassingScore > len(nq.Questions) {
		sl.ReportError(nq.PassingScore, "passing_score", "PassingScore", quizPassingTag, "")
	}
	seen := make(map[string]struct{}, len(nq.Questions))
	for _, qn := range nq.Questions {
		if _, dup := seen[qn.ID]; dup {
			sl.ReportError(nq.Questions, "questions", "Questions", duplicateIDTag, "")
			return
		}
		seen[qn.ID] = struct{}{}
	}
}

// questionStructValidation checks that the correct option is one of the options.
func questionStructValidation(sl validator.StructLevel) {
	qn, ok := sl.Current().Interface().(NewQuestion)
	if !ok || qn.CorrectOptionID == "" {
		return
	}
	for _, opt := range qn.Options {
		if opt.ID == qn.CorrectOptionID {
			return
		}
	}
	sl.ReportError(qn.CorrectOptionID, "correct_option_id", "CorrectOptionID", quizOptionTag, "")
}
