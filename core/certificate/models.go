package certificate

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Certificate attests that a learner completed every content item of a course.
// The learner name and course title are copied at issuance.
type Certificate struct {
	ID          string    `json:"id"`
	Number      string    `json:"number"`
	LearnerID   string    `json:"learner_id"`
	CourseID    string    `json:"course_id"`
	LearnerName string    `json:"learner_name"`
	CourseTitle string    `json:"course_title"`
	IssuedAt    time.Time `json:"issued_at"` // UTC
}

// NewNumber returns a public certificate number: DL-<year>-<8 hex chars>.
func NewNumber(issuedAt time.Time) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("DL-%d-%s", issuedAt.Year(), strings.ToUpper(suffix))
}

// CleanNumber normalizes a number typed by a visitor.
func CleanNumber(number string) string {
	return strings.ToUpper(strings.TrimSpace(number))
}

// Text renders the plain text certificate attached to the issuance email.
func (c Certificate) Text(appName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s - Certificate of Completion\n\n", appName)
	fmt.Fprintf(&b, "This certifies that %s\n", c.LearnerName)
	fmt.Fprintf(&b, "has successfully completed the course \"%s\"\n", c.CourseTitle)
	fmt.Fprintf(&b, "on %s.\n\n", c.IssuedAt.Format("January 2, 2006"))
	fmt.Fprintf(&b, "Certificate number: %s\n", c.Number)
	return b.String()
}
