package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/dentalearn/lms/core"
	"github.com/dentalearn/lms/core/course"
)

type TrackerConfig struct {
	// VideoCompletionThreshold is the watched fraction in (0, 1] completing a video.
	// Defaults to DefaultVideoCompletionThreshold.
	VideoCompletionThreshold float64
	Logger                   core.Logger
}

// Tracker holds the progress of one learner across all their courses.
// Records are loaded from the Store on first use and saved after every mutation.
// A Tracker is safe for concurrent use.
type Tracker struct {
	learnerID string
	store     Store
	threshold float64
	logger    core.Logger

	mu      sync.Mutex
	loaded  bool
	courses map[string]*CourseProgress
	dirty   map[string]struct{} // courses whose last save failed
}

func NewTracker(learnerID string, store Store, conf TrackerConfig) *Tracker {
	threshold := conf.VideoCompletionThreshold
	if threshold <= 0 || threshold > 1 || math.IsNaN(threshold) {
		threshold = DefaultVideoCompletionThreshold
	}
	return &Tracker{
		learnerID: learnerID,
		store:     store,
		threshold: threshold,
		logger:    conf.Logger,
		courses:   make(map[string]*CourseProgress),
		dirty:     make(map[string]struct{}),
	}
}

func (t *Tracker) LearnerID() string { return t.learnerID }

// load reads the learner's records once. A failed load leaves the tracker unloaded.
// Records that fail to decode are dropped: the course starts over with no progress.
func (t *Tracker) load(ctx context.Context) error {
	if t.loaded {
		return nil
	}
	records, err := t.store.Load(ctx, t.learnerID)
	if err != nil {
		return &PersistenceError{Op: "load", Err: err}
	}

	courses := make(map[string]*CourseProgress, len(records))
	for courseID, record := range records {
		cp, err := decodeRecord(courseID, record)
		if err != nil {
			if t.logger != nil {
				t.logger.Warn(
					fmt.Sprintf("discarding corrupt progress record: learner=%s course=%s", t.learnerID, courseID),
					errors.Wrap(err, "decoding progress record"),
				)
			}
			continue
		}
		courses[courseID] = cp
	}
	t.courses = courses
	t.loaded = true
	return nil
}

func decodeRecord(courseID string, record []byte) (*CourseProgress, error) {
	cp := newCourseProgress(courseID)
	if err := json.Unmarshal(record, cp); err != nil {
		return nil, err
	}
	cp.CourseID = courseID
	if cp.Videos == nil {
		cp.Videos = make(map[string]*VideoProgress)
	}
	if cp.Quizzes == nil {
		cp.Quizzes = make(map[string]*QuizProgress)
	}
	for id, v := range cp.Videos {
		if v == nil {
			delete(cp.Videos, id)
		}
	}
	for id, q := range cp.Quizzes {
		if q == nil {
			delete(cp.Quizzes, id)
		}
	}
	return cp, nil
}

// save persists the whole course record. On failure the course is marked dirty.
func (t *Tracker) save(ctx context.Context, courseID string) error {
	record, err := json.Marshal(t.courses[courseID])
	if err != nil {
		return errors.Wrap(err, "encoding progress record")
	}
	if err = t.store.Save(ctx, t.learnerID, courseID, record); err != nil {
		t.dirty[courseID] = struct{}{}
		return &PersistenceError{Op: "save", Err: err}
	}
	delete(t.dirty, courseID)
	return nil
}

func (t *Tracker) courseProgress(courseID string) *CourseProgress {
	cp, ok := t.courses[courseID]
	if !ok {
		cp = newCourseProgress(courseID)
		t.courses[courseID] = cp
	}
	return cp
}

func checkSeconds(name string, v float64) error {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return invalidArgf("%s must be a non-negative number, got %v", name, v)
	}
	return nil
}

// RecordVideoProgress records a playback checkpoint.
// The position is clamped to totalSeconds, which replaces any previous total.
// Completed is set once position/total reaches the completion threshold and never cleared.
// The course record is persisted before returning.
func (t *Tracker) RecordVideoProgress(ctx context.Context, courseID, videoID string, position, totalSeconds float64) (VideoProgress, error) {
	return t.recordVideo(ctx, courseID, videoID, position, totalSeconds, false)
}

// RecordVideoEnded records the end of the stream: the video is completed.
func (t *Tracker) RecordVideoEnded(ctx context.Context, courseID, videoID string, totalSeconds float64) (VideoProgress, error) {
	return t.recordVideo(ctx, courseID, videoID, totalSeconds, totalSeconds, true)
}

func (t *Tracker) recordVideo(ctx context.Context, courseID, videoID string, position, total float64, ended bool) (VideoProgress, error) {
	if courseID == "" || videoID == "" {
		return VideoProgress{}, invalidArgf("course and video ids are required")
	}
	if err := checkSeconds("position", position); err != nil {
		return VideoProgress{}, err
	}
	if err := checkSeconds("total_seconds", total); err != nil {
		return VideoProgress{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.load(ctx); err != nil {
		return VideoProgress{}, err
	}

	cp := t.courseProgress(courseID)
	entry, ok := cp.Videos[videoID]
	if !ok {
		entry = new(VideoProgress)
		cp.Videos[videoID] = entry
	}
	entry.TotalSeconds = total
	entry.LastPosition = math.Min(position, total)
	watched := total > 0 && entry.LastPosition/total >= t.threshold
	entry.Completed = entry.Completed || watched || ended
	entry.UpdatedAt = core.NowFunc()

	return *entry, t.save(ctx, courseID)
}

// RecordQuizSubmission scores an attempt against the answer key.
// Unanswered questions count as wrong. Answers and score are replaced on every attempt;
// Completed is set once an attempt reaches passingScore and never cleared.
// The course record is persisted before returning.
func (t *Tracker) RecordQuizSubmission(
	ctx context.Context,
	courseID, quizID string,
	answers, correctAnswers map[string]string,
	passingScore int,
) (QuizResult, error) {
	if courseID == "" || quizID == "" {
		return QuizResult{}, invalidArgf("course and quiz ids are required")
	}
	if len(correctAnswers) == 0 {
		return QuizResult{}, invalidArgf("quiz %s has no questions", quizID)
	}
	if passingScore < 0 || passingScore > len(correctAnswers) {
		return QuizResult{}, invalidArgf("passing score %d out of range [0, %d]", passingScore, len(correctAnswers))
	}

	var score int
	for questionID, optionID := range answers {
		correct, ok := correctAnswers[questionID]
		if !ok {
			return QuizResult{}, invalidArgf("unknown question %q", questionID)
		}
		if optionID == correct {
			score++
		}
	}
	passed := score >= passingScore

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.load(ctx); err != nil {
		return QuizResult{}, err
	}

	cp := t.courseProgress(courseID)
	entry, ok := cp.Quizzes[quizID]
	if !ok {
		entry = new(QuizProgress)
		cp.Quizzes[quizID] = entry
	}
	entry.Answers = copyAnswers(answers)
	entry.Score = score
	entry.TotalQuestions = len(correctAnswers)
	entry.Completed = entry.Completed || passed
	entry.Attempts++
	entry.UpdatedAt = core.NowFunc()

	res := QuizResult{
		Score:          score,
		TotalQuestions: entry.TotalQuestions,
		Passed:         passed,
		Completed:      entry.Completed,
	}
	return res, t.save(ctx, courseID)
}

// CourseProgress returns a copy of the learner's progress in the course.
// The bool is false when nothing was recorded yet.
func (t *Tracker) CourseProgress(ctx context.Context, courseID string) (CourseProgress, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.load(ctx); err != nil {
		return CourseProgress{}, false, err
	}
	cp, ok := t.courses[courseID]
	if !ok {
		return CourseProgress{}, false, nil
	}
	return cp.clone(), true, nil
}

// Courses returns the IDs of the courses with recorded progress, sorted.
func (t *Tracker) Courses(ctx context.Context) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.load(ctx); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(t.courses))
	for id := range t.courses {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Completion computes the completion of the course over the authoritative outline.
// Items in the progress record that are not in the outline are ignored.
func (t *Tracker) Completion(ctx context.Context, courseID string, outline []course.Module) (Completion, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.load(ctx); err != nil {
		return Completion{}, err
	}
	return computeCompletion(t.courses[courseID], outline), nil
}

// IsContentUnlocked applies the linear progression rule over the flattened outline
// (module order, then content order).
func (t *Tracker) IsContentUnlocked(
	ctx context.Context,
	courseID string,
	outline []course.Module,
	contentID string,
	contentType course.ContentType,
) (bool, error) {
	items := flatten(outline)
	idx := indexOf(items, contentID, contentType)
	if idx < 0 {
		return false, errors.Wrapf(ErrUnknownContent, "%s %s", contentType, contentID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.load(ctx); err != nil {
		return false, err
	}
	return isUnlocked(t.courses[courseID], items, idx), nil
}

// ContentState returns the lifecycle state of one content item.
func (t *Tracker) ContentState(
	ctx context.Context,
	courseID string,
	outline []course.Module,
	contentID string,
	contentType course.ContentType,
) (State, error) {
	items := flatten(outline)
	idx := indexOf(items, contentID, contentType)
	if idx < 0 {
		return "", errors.Wrapf(ErrUnknownContent, "%s %s", contentType, contentID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.load(ctx); err != nil {
		return "", err
	}
	return stateOf(t.courses[courseID], items, idx), nil
}

// States returns the lifecycle state of every item of the outline, in order.
func (t *Tracker) States(ctx context.Context, courseID string, outline []course.Module) ([]ItemState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.load(ctx); err != nil {
		return nil, err
	}
	return statesOf(t.courses[courseID], outline), nil
}

// Pending returns the number of courses whose last save failed.
func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.dirty)
}

// Flush retries saving every course whose last save failed.
// It returns the first error; courses that failed again stay pending.
func (t *Tracker) Flush(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	courseIDs := make([]string, 0, len(t.dirty))
	for id := range t.dirty {
		courseIDs = append(courseIDs, id)
	}
	sort.Strings(courseIDs)

	var firstErr error
	for _, id := range courseIDs {
		if err := t.save(ctx, id); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
