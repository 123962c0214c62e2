package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/dentalearn/lms/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db}
}

func copyContent(item course.ContentItem) course.ContentItem {
	if item.Quiz != nil {
		q := *item.Quiz
		q.Questions = make([]course.Question, 0, len(item.Quiz.Questions))
		for _, qn := range item.Quiz.Questions {
			qn.Options = append([]course.Option(nil), qn.Options...)
			q.Questions = append(q.Questions, qn)
		}
		item.Quiz = &q
	}
	return item
}

func (repo *courseRepository) CreateCourse(_ context.Context, c course.Course) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	c.ID = newID()
	c.Modules = nil
	repo.db.courses[c.ID] = &c
	return c, nil
}

// UpdateCourse saves the course fields; the outline is left untouched.
func (repo *courseRepository) UpdateCourse(_ context.Context, c course.Course) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.courses[c.ID]; !ok {
		return course.Course{}, course.ErrNotFound
	}
	stored := c
	stored.Modules = nil
	repo.db.courses[c.ID] = &stored
	return c, nil
}

func (repo *courseRepository) GetCourse(_ context.Context, id string) (course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	stored, ok := repo.db.courses[id]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	c := *stored
	c.Modules = repo.outline(c.ID)
	return c, nil
}

func (repo *courseRepository) outline(courseID string) []course.Module {
	modules := make([]course.Module, 0)
	for _, m := range repo.db.modules {
		if m.CourseID == courseID {
			mod := *m
			mod.Items = make([]course.ContentItem, 0)
			modules = append(modules, mod)
		}
	}
	sort.Slice(modules, func(i, j int) bool { return modules[i].Position < modules[j].Position })

	for i := range modules {
		for _, item := range repo.db.contents {
			if item.ModuleID == modules[i].ID {
				modules[i].Items = append(modules[i].Items, copyContent(*item))
			}
		}
		items := modules[i].Items
		sort.Slice(items, func(a, b int) bool { return items[a].Position < items[b].Position })
	}
	return modules
}

func (repo *courseRepository) QueryCourses(_ context.Context, filter *course.QueryFilter) ([]course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	courses := make([]course.Course, 0)
	for _, c := range repo.db.courses {
		if filter != nil {
			if filter.Search != "" && !strings.Contains(strings.ToLower(c.Title), strings.ToLower(filter.Search)) {
				continue
			}
			if filter.InstructorID != "" && c.InstructorID != filter.InstructorID {
				continue
			}
			if filter.IsPublished != nil && c.IsPublished != *filter.IsPublished {
				continue
			}
		}
		courses = append(courses, *c)
	}
	sort.SliceStable(courses, func(i, j int) bool { return courses[i].CreatedAt.After(courses[j].CreatedAt) })
	return courses, nil
}

func (repo *courseRepository) DeleteCourse(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.courses[id]; !ok {
		return course.ErrNotFound
	}
	delete(repo.db.courses, id)
	for mID, m := range repo.db.modules {
		if m.CourseID != id {
			continue
		}
		for cID, item := range repo.db.contents {
			if item.ModuleID == mID {
				delete(repo.db.contents, cID)
			}
		}
		delete(repo.db.modules, mID)
	}
	for eID, e := range repo.db.enrollments {
		if e.CourseID == id {
			delete(repo.db.enrollments, eID)
		}
	}
	for cID, cert := range repo.db.certificates {
		if cert.CourseID == id {
			delete(repo.db.certificates, cID)
		}
	}
	return nil
}

func (repo *courseRepository) CreateModule(_ context.Context, m course.Module) (course.Module, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.courses[m.CourseID]; !ok {
		return course.Module{}, course.ErrNotFound
	}
	m.ID = newID()
	m.Items = make([]course.ContentItem, 0)
	stored := m
	stored.Items = nil
	repo.db.modules[m.ID] = &stored
	return m, nil
}

func (repo *courseRepository) CreateContent(_ context.Context, item course.ContentItem) (course.ContentItem, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.modules[item.ModuleID]; !ok {
		return course.ContentItem{}, course.ErrModuleNotFound
	}
	item.ID = newID()
	stored := copyContent(item)
	repo.db.contents[item.ID] = &stored
	return item, nil
}

func (repo *courseRepository) CreateEnrollment(_ context.Context, e course.Enrollment) (course.Enrollment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.courses[e.CourseID]; !ok {
		return course.Enrollment{}, course.ErrNotFound
	}
	for _, existing := range repo.db.enrollments {
		if existing.CourseID == e.CourseID && existing.LearnerID == e.LearnerID {
			return *existing, nil
		}
	}
	e.ID = newID()
	repo.db.enrollments[e.ID] = &e
	return e, nil
}

func (repo *courseRepository) GetEnrollment(_ context.Context, courseID, learnerID string) (course.Enrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, e := range repo.db.enrollments {
		if e.CourseID == courseID && e.LearnerID == learnerID {
			return *e, nil
		}
	}
	return course.Enrollment{}, course.ErrNotEnrolled
}

func (repo *courseRepository) QueryEnrollments(_ context.Context, filter course.EnrollmentFilter) ([]course.Enrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	enrollments := make([]course.Enrollment, 0)
	for _, e := range repo.db.enrollments {
		if filter.CourseID != "" && e.CourseID != filter.CourseID {
			continue
		}
		if filter.LearnerID != "" && e.LearnerID != filter.LearnerID {
			continue
		}
		enrollments = append(enrollments, *e)
	}
	sort.SliceStable(enrollments, func(i, j int) bool { return enrollments[i].CreatedAt.Before(enrollments[j].CreatedAt) })
	return enrollments, nil
}
