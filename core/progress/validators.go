package progress

import (
	"math"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/dentalearn/lms/core"
)

var (
	// longest accepted video: 24h
	maxVideoSeconds = 24 * 60 * 60.

	secondsTag  = "seconds"
	secondsText = "{0} must be between 0 and 86400 seconds"
)

// VideoProgressUpdate is a playback checkpoint reported by the player.
type VideoProgressUpdate struct {
	Position     float64 `json:"position" validate:"seconds"`
	TotalSeconds float64 `json:"total_seconds" validate:"seconds"`
	Ended        bool    `json:"ended"` // end of stream
}

func (vu *VideoProgressUpdate) Validate(validate *validator.Validate) error {
	return validate.Struct(vu)
}

// QuizSubmission holds the learner's answers: {questionID: optionID}.
type QuizSubmission struct {
	Answers map[string]string `json:"answers" validate:"required,dive,keys,required,endkeys,required"`
}

func (qs *QuizSubmission) Validate(validate *validator.Validate) error {
	for qID, optID := range qs.Answers {
		qs.Answers[qID] = core.CleanString(optID)
	}
	return validate.Struct(qs)
}

// InitValidators registers the progress validators and their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(secondsTag, secondsValidation)
	_ = validate.RegisterTranslation(
		secondsTag, translator,
		func(t ut.Translator) error { return t.Add(secondsTag, secondsText, false) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(secondsTag, fe.Field())
			return s
		},
	)
}

// secondsValidation accepts finite durations in [0, maxVideoSeconds].
func secondsValidation(fl validator.FieldLevel) bool {
	v := fl.Field().Float()
	return !math.IsNaN(v) && v >= 0 && v <= maxVideoSeconds
}
