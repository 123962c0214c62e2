package course

import (
	"context"

	"github.com/pkg/errors"

	"github.com/dentalearn/lms/core"
)

var (
	// errors
	ErrNotFound         = errors.New("course not found")
	ErrModuleNotFound   = errors.New("module not found")
	ErrNotEnrolled      = errors.New("learner is not enrolled in this course")
	ErrNotPublished     = errors.New("course is not published")
	ErrEmptyCourse      = errors.New("course has no content")
	ErrAlreadyPublished = errors.New("course is already published")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, c Course) (Course, error)
		UpdateCourse(ctx context.Context, c Course) (Course, error)
		// GetCourse returns the course with its full outline, ordered by position.
		GetCourse(ctx context.Context, id string) (Course, error)
		// QueryCourses returns courses without their outline, newest first.
		QueryCourses(ctx context.Context, filter *QueryFilter) ([]Course, error)
		DeleteCourse(ctx context.Context, id string) error

		CreateModule(ctx context.Context, m Module) (Module, error)
		CreateContent(ctx context.Context, item ContentItem) (ContentItem, error)

		// CreateEnrollment is idempotent: an existing enrollment is returned as is.
		CreateEnrollment(ctx context.Context, e Enrollment) (Enrollment, error)
		GetEnrollment(ctx context.Context, courseID, learnerID string) (Enrollment, error)
		QueryEnrollments(ctx context.Context, filter EnrollmentFilter) ([]Enrollment, error)
	}

	ServiceInterface interface {
		Create(ctx context.Context, instructorID string, nc NewCourse) (Course, error)
		AddModule(ctx context.Context, courseID string, nm NewModule) (Module, error)
		AddContent(ctx context.Context, courseID, moduleID string, nc NewContent) (ContentItem, error)
		Publish(ctx context.Context, courseID string) (Course, error)
		Get(ctx context.Context, id string) (Course, error)
		Query(ctx context.Context, filter *QueryFilter) ([]Course, error)
		Delete(ctx context.Context, id string) error
		Enroll(ctx context.Context, courseID, learnerID string) (Enrollment, error)
		IsEnrolled(ctx context.Context, courseID, learnerID string) (bool, error)
		LearnerEnrollments(ctx context.Context, learnerID string) ([]Enrollment, error)
		AllEnrollments(ctx context.Context) ([]Enrollment, error)
	}

	service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository) ServiceInterface {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, instructorID string, nc NewCourse) (Course, error) {
	now := core.NowFunc()
	return svc.repo.CreateCourse(ctx, Course{
		Title:        nc.Title,
		Description:  nc.Description,
		InstructorID: instructorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// AddModule appends a module at the end of the course outline.
func (svc *service) AddModule(ctx context.Context, courseID string, nm NewModule) (Module, error) {
	c, err := svc.repo.GetCourse(ctx, courseID)
	if err != nil {
		return Module{}, err
	}
	m, err := svc.repo.CreateModule(ctx, Module{
		CourseID: c.ID,
		Title:    nm.Title,
		Position: nextPosition(len(c.Modules), func(i int) int { return c.Modules[i].Position }),
	})
	if err != nil {
		return Module{}, errors.Wrap(err, "creating module")
	}
	return m, svc.touch(ctx, c)
}

// AddContent appends a content item at the end of the module.
func (svc *service) AddContent(ctx context.Context, courseID, moduleID string, nc NewContent) (ContentItem, error) {
	c, err := svc.repo.GetCourse(ctx, courseID)
	if err != nil {
		return ContentItem{}, err
	}
	m, ok := c.Module(moduleID)
	if !ok {
		return ContentItem{}, ErrModuleNotFound
	}

	item := ContentItem{
		ModuleID: m.ID,
		Type:     nc.Type,
		Title:    nc.Title,
		Position: nextPosition(len(m.Items), func(i int) int { return m.Items[i].Position }),
	}
	switch nc.Type {
	case ContentVideo:
		item.VideoURL = nc.VideoURL
		item.DurationSeconds = nc.DurationSeconds
	case ContentQuiz:
		item.Quiz = nc.Quiz.ToQuiz()
	}

	item, err = svc.repo.CreateContent(ctx, item)
	if err != nil {
		return ContentItem{}, errors.Wrap(err, "creating content")
	}
	return item, svc.touch(ctx, c)
}

func (svc *service) Publish(ctx context.Context, courseID string) (Course, error) {
	c, err := svc.repo.GetCourse(ctx, courseID)
	if err != nil {
		return Course{}, err
	}
	if c.IsPublished {
		return Course{}, ErrAlreadyPublished
	}
	if len(c.Items()) == 0 {
		return Course{}, ErrEmptyCourse
	}
	c.IsPublished = true
	c.UpdatedAt = core.NowFunc()
	if _, err = svc.repo.UpdateCourse(ctx, c); err != nil {
		return Course{}, errors.Wrap(err, "publishing course")
	}
	return c, nil
}

func (svc *service) Get(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourse(ctx, id)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter) ([]Course, error) {
	return svc.repo.QueryCourses(ctx, filter)
}

func (svc *service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteCourse(ctx, id)
}

// Enroll registers the learner in a published course. Enrolling twice is a no-op.
func (svc *service) Enroll(ctx context.Context, courseID, learnerID string) (Enrollment, error) {
	c, err := svc.repo.GetCourse(ctx, courseID)
	if err != nil {
		return Enrollment{}, err
	}
	if !c.IsPublished {
		return Enrollment{}, ErrNotPublished
	}
	e, err := svc.repo.CreateEnrollment(ctx, Enrollment{
		CourseID:  c.ID,
		LearnerID: learnerID,
		CreatedAt: core.NowFunc(),
	})
	return e, errors.Wrap(err, "creating enrollment")
}

func (svc *service) IsEnrolled(ctx context.Context, courseID, learnerID string) (bool, error) {
	if _, err := svc.repo.GetEnrollment(ctx, courseID, learnerID); err != nil {
		if errors.Cause(err) == ErrNotEnrolled {
			return false, nil
		}
		return false, errors.Wrap(err, "getting enrollment")
	}
	return true, nil
}

func (svc *service) LearnerEnrollments(ctx context.Context, learnerID string) ([]Enrollment, error) {
	return svc.repo.QueryEnrollments(ctx, EnrollmentFilter{LearnerID: learnerID})
}

func (svc *service) AllEnrollments(ctx context.Context) ([]Enrollment, error) {
	return svc.repo.QueryEnrollments(ctx, EnrollmentFilter{})
}

func (svc *service) touch(ctx context.Context, c Course) error {
	c.UpdatedAt = core.NowFunc()
	_, err := svc.repo.UpdateCourse(ctx, c)
	return errors.Wrap(err, "updating course")
}

// nextPosition returns 1 + the highest position among n ordered elements.
func nextPosition(n int, pos func(i int) int) int {
	if n == 0 {
		return 1
	}
	return pos(n-1) + 1
}
