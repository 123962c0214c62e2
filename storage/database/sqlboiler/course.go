package boiledrepos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/queries"

	"github.com/dentalearn/lms/core"
	"github.com/dentalearn/lms/core/course"
)

const (
	courseColumns     = `id, title, description, instructor_id, is_published, created_at, updated_at`
	enrollmentColumns = `id, course_id, learner_id, created_at`
)

type (
	courseRow struct {
		ID           string    `boil:"id"`
		Title        string    `boil:"title"`
		Description  string    `boil:"description"`
		InstructorID string    `boil:"instructor_id"`
		IsPublished  bool      `boil:"is_published"`
		CreatedAt    time.Time `boil:"created_at"`
		UpdatedAt    time.Time `boil:"updated_at"`
	}

	moduleRow struct {
		ID       string `boil:"id"`
		CourseID string `boil:"course_id"`
		Title    string `boil:"title"`
		Position int    `boil:"position"`
	}

	contentRow struct {
		ID              string       `boil:"id"`
		ModuleID        string       `boil:"module_id"`
		Type            string       `boil:"type"`
		Title           string       `boil:"title"`
		Position        int          `boil:"position"`
		VideoURL        null.String  `boil:"video_url"`
		DurationSeconds null.Float64 `boil:"duration_seconds"`
		Quiz            null.JSON    `boil:"quiz"`
	}

	enrollmentRow struct {
		ID        string    `boil:"id"`
		CourseID  string    `boil:"course_id"`
		LearnerID string    `boil:"learner_id"`
		CreatedAt time.Time `boil:"created_at"`
	}
)

func (c courseRow) unboil() course.Course {
	return course.Course{
		ID:           c.ID,
		Title:        c.Title,
		Description:  c.Description,
		InstructorID: c.InstructorID,
		IsPublished:  c.IsPublished,
		CreatedAt:    c.CreatedAt.UTC(),
		UpdatedAt:    c.UpdatedAt.UTC(),
	}
}

func (c contentRow) unboil() (course.ContentItem, error) {
	item := course.ContentItem{
		ID:              c.ID,
		ModuleID:        c.ModuleID,
		Type:            course.ContentType(c.Type),
		Title:           c.Title,
		Position:        c.Position,
		VideoURL:        c.VideoURL.String,
		DurationSeconds: c.DurationSeconds.Float64,
	}
	if c.Quiz.Valid {
		quiz, err := course.UnmarshalStoredQuiz(c.Quiz.JSON)
		if err != nil {
			return course.ContentItem{}, errors.Wrapf(err, "decoding quiz %s", c.ID)
		}
		item.Quiz = quiz
	}
	return item, nil
}

func (e enrollmentRow) unboil() course.Enrollment {
	return course.Enrollment{ID: e.ID, CourseID: e.CourseID, LearnerID: e.LearnerID, CreatedAt: e.CreatedAt.UTC()}
}

type courseRepository struct {
	exec core.DBExecutor
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(exec core.DBExecutor) course.Repository {
	return &courseRepository{exec: exec}
}

func validUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (repo courseRepository) CreateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	c.ID = uuid.New().String()
	c.Modules = nil
	q := `INSERT INTO course (` + courseColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := queries.Raw(q,
		c.ID, c.Title, c.Description, c.InstructorID, c.IsPublished, c.CreatedAt.UTC(), c.UpdatedAt.UTC(),
	).ExecContext(ctx, repo.exec)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return c, nil
}

func (repo courseRepository) UpdateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	q := `UPDATE course SET title = $2, description = $3, is_published = $4, updated_at = $5 WHERE id = $1`
	res, err := queries.Raw(q, c.ID, c.Title, c.Description, c.IsPublished, c.UpdatedAt.UTC()).ExecContext(ctx, repo.exec)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return c, nil
}

func (repo courseRepository) GetCourse(ctx context.Context, id string) (course.Course, error) {
	if !validUUID(id) {
		return course.Course{}, course.ErrNotFound
	}

	var cr courseRow
	if err := queries.Raw(`SELECT `+courseColumns+` FROM course WHERE id = $1`, id).Bind(ctx, repo.exec, &cr); err != nil {
		return course.Course{}, trapNoRowsErr(err, course.ErrNotFound, "finding course")
	}
	c := cr.unboil()

	var modules []moduleRow
	q := `SELECT id, course_id, title, position FROM course_module WHERE course_id = $1 ORDER BY position`
	if err := queries.Raw(q, id).Bind(ctx, repo.exec, &modules); err != nil {
		return course.Course{}, errors.Wrap(err, "querying modules")
	}
	var contents []contentRow
	q = `SELECT cc.id, cc.module_id, cc.type, cc.title, cc.position, cc.video_url, cc.duration_seconds, cc.quiz
		FROM course_content cc JOIN course_module cm ON cm.id = cc.module_id
		WHERE cm.course_id = $1 ORDER BY cm.position, cc.position`
	if err := queries.Raw(q, id).Bind(ctx, repo.exec, &contents); err != nil {
		return course.Course{}, errors.Wrap(err, "querying contents")
	}

	byModule := make(map[string][]course.ContentItem, len(modules))
	for _, cr := range contents {
		item, err := cr.unboil()
		if err != nil {
			return course.Course{}, err
		}
		byModule[item.ModuleID] = append(byModule[item.ModuleID], item)
	}
	c.Modules = make([]course.Module, 0, len(modules))
	for _, m := range modules {
		items := byModule[m.ID]
		if items == nil {
			items = make([]course.ContentItem, 0)
		}
		c.Modules = append(c.Modules, course.Module{
			ID:       m.ID,
			CourseID: m.CourseID,
			Title:    m.Title,
			Position: m.Position,
			Items:    items,
		})
	}
	return c, nil
}

func (repo courseRepository) QueryCourses(ctx context.Context, filter *course.QueryFilter) ([]course.Course, error) {
	where := make([]string, 0)
	args := make([]interface{}, 0)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter != nil {
		if filter.Search != "" {
			where = append(where, "title ILIKE "+arg("%"+filter.Search+"%"))
		}
		if filter.InstructorID != "" {
			if !validUUID(filter.InstructorID) {
				return []course.Course{}, nil
			}
			where = append(where, "instructor_id = "+arg(filter.InstructorID))
		}
		if filter.IsPublished != nil {
			where = append(where, "is_published = "+arg(*filter.IsPublished))
		}
	}

	q := `SELECT ` + courseColumns + ` FROM course`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC"

	var rows []courseRow
	if err := queries.Raw(q, args...).Bind(ctx, repo.exec, &rows); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	courses := make([]course.Course, 0, len(rows))
	for _, cr := range rows {
		courses = append(courses, cr.unboil())
	}
	return courses, nil
}

// DeleteCourse removes the course; modules, contents, enrollments and certificates cascade.
func (repo courseRepository) DeleteCourse(ctx context.Context, id string) error {
	if !validUUID(id) {
		return course.ErrNotFound
	}
	res, err := queries.Raw(`DELETE FROM course WHERE id = $1`, id).ExecContext(ctx, repo.exec)
	if err != nil {
		return errors.Wrap(err, "deleting course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.ErrNotFound
	}
	return nil
}

func (repo courseRepository) CreateModule(ctx context.Context, m course.Module) (course.Module, error) {
	m.ID = uuid.New().String()
	m.Items = make([]course.ContentItem, 0)
	q := `INSERT INTO course_module (id, course_id, title, position) VALUES ($1, $2, $3, $4)`
	if _, err := queries.Raw(q, m.ID, m.CourseID, m.Title, m.Position).ExecContext(ctx, repo.exec); err != nil {
		return course.Module{}, errors.Wrap(err, "inserting module")
	}
	return m, nil
}

func (repo courseRepository) CreateContent(ctx context.Context, item course.ContentItem) (course.ContentItem, error) {
	item.ID = uuid.New().String()
	quiz, err := item.Quiz.MarshalStored()
	if err != nil {
		return course.ContentItem{}, errors.Wrap(err, "encoding quiz")
	}
	q := `INSERT INTO course_content (id, module_id, type, title, position, video_url, duration_seconds, quiz)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = queries.Raw(q,
		item.ID, item.ModuleID, string(item.Type), item.Title, item.Position,
		null.NewString(item.VideoURL, item.VideoURL != ""),
		null.NewFloat64(item.DurationSeconds, item.Type == course.ContentVideo),
		null.NewJSON(quiz, quiz != nil),
	).ExecContext(ctx, repo.exec)
	if err != nil {
		return course.ContentItem{}, errors.Wrap(err, "inserting content")
	}
	return item, nil
}

func (repo courseRepository) CreateEnrollment(ctx context.Context, e course.Enrollment) (course.Enrollment, error) {
	e.ID = uuid.New().String()
	q := `INSERT INTO enrollment (` + enrollmentColumns + `) VALUES ($1, $2, $3, $4)
		ON CONFLICT (course_id, learner_id) DO NOTHING`
	if _, err := queries.Raw(q, e.ID, e.CourseID, e.LearnerID, e.CreatedAt.UTC()).ExecContext(ctx, repo.exec); err != nil {
		return course.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	return repo.GetEnrollment(ctx, e.CourseID, e.LearnerID)
}

func (repo courseRepository) GetEnrollment(ctx context.Context, courseID, learnerID string) (course.Enrollment, error) {
	if !validUUID(courseID) || !validUUID(learnerID) {
		return course.Enrollment{}, course.ErrNotEnrolled
	}
	var er enrollmentRow
	q := `SELECT ` + enrollmentColumns + ` FROM enrollment WHERE course_id = $1 AND learner_id = $2`
	if err := queries.Raw(q, courseID, learnerID).Bind(ctx, repo.exec, &er); err != nil {
		return course.Enrollment{}, trapNoRowsErr(err, course.ErrNotEnrolled, "finding enrollment")
	}
	return er.unboil(), nil
}

func (repo courseRepository) QueryEnrollments(ctx context.Context, filter course.EnrollmentFilter) ([]course.Enrollment, error) {
	where := make([]string, 0)
	args := make([]interface{}, 0)
	if filter.CourseID != "" {
		args = append(args, filter.CourseID)
		where = append(where, fmt.Sprintf("course_id::text = $%d", len(args)))
	}
	if filter.LearnerID != "" {
		args = append(args, filter.LearnerID)
		where = append(where, fmt.Sprintf("learner_id::text = $%d", len(args)))
	}

	q := `SELECT ` + enrollmentColumns + ` FROM enrollment`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at"

	var rows []enrollmentRow
	if err := queries.Raw(q, args...).Bind(ctx, repo.exec, &rows); err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	enrollments := make([]course.Enrollment, 0, len(rows))
	for _, er := range rows {
		enrollments = append(enrollments, er.unboil())
	}
	return enrollments, nil
}
