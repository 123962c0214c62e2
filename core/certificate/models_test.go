package certificate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewNumber(t *testing.T) {
	issuedAt := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		n := NewNumber(issuedAt)
		assert.Regexp(t, `^DL-2026-[0-9A-F]{8}$`, n)
		assert.False(t, seen[n])
		seen[n] = true
		assert.Equal(t, n, CleanNumber(" "+n+"\n"))
	}
	assert.Equal(t, "DL-2026-ABCDEF12", CleanNumber("dl-2026-abcdef12"))
}

func TestCertificate_Text(t *testing.T) {
	cert := Certificate{
		Number:      "DL-2026-ABCDEF12",
		LearnerName: "Bob Smith",
		CourseTitle: "Periodontics 101",
		IssuedAt:    time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}
	txt := cert.Text("DentaLearn")
	assert.Contains(t, txt, "DentaLearn - Certificate of Completion")
	assert.Contains(t, txt, "has successfully completed the course \"Periodontics 101\"")
	assert.Contains(t, txt, "on March 14, 2026.")
	assert.Contains(t, txt, "Certificate number: DL-2026-ABCDEF12")
}
