package progress

import (
	"context"

	"github.com/pkg/errors"

	"github.com/dentalearn/lms/core/course"
)

type (
	// Overview is the learner's progress in a course as shown to the player.
	Overview struct {
		CourseID   string          `json:"course_id"`
		LearnerID  string          `json:"learner_id"`
		Progress   *CourseProgress `json:"progress"` // nil: no progress yet
		Completion Completion      `json:"completion"`
		Items      []ItemState     `json:"items"`
	}

	// ServiceInterface resolves content against the course catalog before reaching the learner's tracker.
	// The catalog is authoritative for outlines, video durations and quiz answer keys.
	ServiceInterface interface {
		RecordVideoProgress(ctx context.Context, learnerID, courseID, contentID string, upd VideoProgressUpdate) (VideoProgress, error)
		SubmitQuiz(ctx context.Context, learnerID, courseID, contentID string, sub QuizSubmission) (QuizResult, error)
		Overview(ctx context.Context, learnerID, courseID string) (Overview, error)
		Completion(ctx context.Context, learnerID, courseID string) (Completion, error)
		IsUnlocked(ctx context.Context, learnerID, courseID, contentID string, contentType course.ContentType) (bool, error)
		// Snapshot is Overview for background readers: it does not keep the learner's tracker in memory.
		Snapshot(ctx context.Context, learnerID, courseID string) (Overview, error)
		Flush(ctx context.Context) error
	}

	service struct {
		registry *Registry
		courses  course.ServiceInterface
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(registry *Registry, courses course.ServiceInterface) ServiceInterface {
	return &service{registry: registry, courses: courses}
}

// enrolledCourse returns the course if the learner is enrolled in it.
func (svc *service) enrolledCourse(ctx context.Context, learnerID, courseID string) (course.Course, error) {
	c, err := svc.courses.Get(ctx, courseID)
	if err != nil {
		return course.Course{}, err
	}
	enrolled, err := svc.courses.IsEnrolled(ctx, c.ID, learnerID)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "checking enrollment")
	}
	if !enrolled {
		return course.Course{}, course.ErrNotEnrolled
	}
	return c, nil
}

// unlockedItem finds the content item and checks that the learner may access it.
func (svc *service) unlockedItem(
	ctx context.Context,
	learnerID, courseID, contentID string,
	contentType course.ContentType,
) (course.Course, course.ContentItem, error) {
	c, err := svc.enrolledCourse(ctx, learnerID, courseID)
	if err != nil {
		return course.Course{}, course.ContentItem{}, err
	}
	item, ok := c.Item(contentID)
	if !ok || item.Type != contentType {
		return course.Course{}, course.ContentItem{}, errors.Wrapf(ErrUnknownContent, "%s %s", contentType, contentID)
	}
	unlocked, err := svc.registry.Tracker(learnerID).IsContentUnlocked(ctx, c.ID, c.Outline(), item.ID, item.Type)
	if err != nil {
		return course.Course{}, course.ContentItem{}, err
	}
	if !unlocked {
		return course.Course{}, course.ContentItem{}, ErrContentLocked
	}
	return c, item, nil
}

func (svc *service) RecordVideoProgress(
	ctx context.Context,
	learnerID, courseID, contentID string,
	upd VideoProgressUpdate,
) (VideoProgress, error) {
	c, item, err := svc.unlockedItem(ctx, learnerID, courseID, contentID, course.ContentVideo)
	if err != nil {
		return VideoProgress{}, err
	}

	total := upd.TotalSeconds
	if item.DurationSeconds > 0 {
		total = item.DurationSeconds
	}
	tracker := svc.registry.Tracker(learnerID)
	if upd.Ended {
		return tracker.RecordVideoEnded(ctx, c.ID, item.ID, total)
	}
	return tracker.RecordVideoProgress(ctx, c.ID, item.ID, upd.Position, total)
}

func (svc *service) SubmitQuiz(
	ctx context.Context,
	learnerID, courseID, contentID string,
	sub QuizSubmission,
) (QuizResult, error) {
	c, item, err := svc.unlockedItem(ctx, learnerID, courseID, contentID, course.ContentQuiz)
	if err != nil {
		return QuizResult{}, err
	}
	if item.Quiz == nil {
		return QuizResult{}, errors.Wrapf(ErrUnknownContent, "quiz %s has no definition", item.ID)
	}
	return svc.registry.Tracker(learnerID).RecordQuizSubmission(
		ctx, c.ID, item.ID, sub.Answers, item.Quiz.AnswerKey(), item.Quiz.PassingScore,
	)
}

func (svc *service) Overview(ctx context.Context, learnerID, courseID string) (Overview, error) {
	return svc.overview(ctx, svc.registry.Tracker, learnerID, courseID)
}

func (svc *service) Snapshot(ctx context.Context, learnerID, courseID string) (Overview, error) {
	return svc.overview(ctx, svc.registry.Peek, learnerID, courseID)
}

func (svc *service) overview(
	ctx context.Context,
	trackerOf func(learnerID string) *Tracker,
	learnerID, courseID string,
) (Overview, error) {
	c, err := svc.enrolledCourse(ctx, learnerID, courseID)
	if err != nil {
		return Overview{}, err
	}

	ov := Overview{CourseID: c.ID, LearnerID: learnerID}
	cp, ok, err := trackerOf(learnerID).CourseProgress(ctx, c.ID)
	if err != nil {
		return Overview{}, err
	}
	if ok {
		ov.Progress = &cp
	}
	// derived from the same snapshot
	ov.Completion = computeCompletion(ov.Progress, c.Outline())
	ov.Items = statesOf(ov.Progress, c.Outline())
	return ov, nil
}

func (svc *service) Completion(ctx context.Context, learnerID, courseID string) (Completion, error) {
	c, err := svc.enrolledCourse(ctx, learnerID, courseID)
	if err != nil {
		return Completion{}, err
	}
	return svc.registry.Tracker(learnerID).Completion(ctx, c.ID, c.Outline())
}

func (svc *service) IsUnlocked(
	ctx context.Context,
	learnerID, courseID, contentID string,
	contentType course.ContentType,
) (bool, error) {
	c, err := svc.enrolledCourse(ctx, learnerID, courseID)
	if err != nil {
		return false, err
	}
	return svc.registry.Tracker(learnerID).IsContentUnlocked(ctx, c.ID, c.Outline(), contentID, contentType)
}

func (svc *service) Flush(ctx context.Context) error {
	return svc.registry.Flush(ctx)
}
