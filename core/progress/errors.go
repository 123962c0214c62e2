package progress

import (
	"github.com/pkg/errors"
)

var (
	// ErrInvalidArgument is returned for malformed input: negative values, empty ids,
	// answers to unknown questions. Nothing is recorded.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnknownContent is returned when the content is not part of the course outline.
	ErrUnknownContent = errors.New("unknown content")
	// ErrContentLocked is returned when progress is reported on a content whose predecessor is not completed.
	ErrContentLocked = errors.New("content is locked")
	// ErrPersistence matches every PersistenceError.
	ErrPersistence = errors.New("progress store unavailable")
)

// PersistenceError reports a failed load or save.
// After a failed save the progress is kept in memory until a later save or Flush succeeds.
type PersistenceError struct {
	Op  string // load | save
	Err error
}

func (e *PersistenceError) Error() string {
	return "progress " + e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

func invalidArgf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidArgument, format, args...)
}
