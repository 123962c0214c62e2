// Package remindersvc emails learners who stopped making progress in a course.
package remindersvc

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/dentalearn/lms/core"
	"github.com/dentalearn/lms/core/course"
	"github.com/dentalearn/lms/core/progress"
	"github.com/dentalearn/lms/core/user"
)

type Service struct {
	courses  course.ServiceInterface
	progress progress.ServiceInterface
	users    user.ServiceInterface
	mailSvc  core.EmailService
	logger   core.Logger
	conf     core.ReminderConfig
}

func NewService(
	courses course.ServiceInterface,
	progressSvc progress.ServiceInterface,
	users user.ServiceInterface,
	mailSvc core.EmailService,
	logger core.Logger,
	conf core.ReminderConfig,
) *Service {
	return &Service{
		courses:  courses,
		progress: progressSvc,
		users:    users,
		mailSvc:  mailSvc,
		logger:   logger,
		conf:     conf,
	}
}

// Reminder is a "continue your course" email to send.
type Reminder struct {
	Learner    user.User
	Course     course.Course
	Completion progress.Completion
}

// Due lists the enrollments in published courses that are not completed
// and saw no activity for InactiveAfter (enrollment counts as activity).
func (s *Service) Due(ctx context.Context) ([]Reminder, error) {
	enrollments, err := s.courses.AllEnrollments(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing enrollments")
	}

	cutoff := core.NowFunc().Add(-s.conf.InactiveAfter)
	courses := make(map[string]*course.Course)
	learners := make(map[string]*user.User)
	reminders := make([]Reminder, 0)

	for _, e := range enrollments {
		c, ok := courses[e.CourseID]
		if !ok {
			got, err := s.courses.Get(ctx, e.CourseID)
			if err != nil && errors.Cause(err) != course.ErrNotFound {
				return nil, errors.Wrap(err, "getting course")
			}
			if err == nil && got.IsPublished {
				c = &got
			}
			courses[e.CourseID] = c
		}
		if c == nil {
			continue
		}

		learner, ok := learners[e.LearnerID]
		if !ok {
			got, err := s.users.GetByID(ctx, e.LearnerID)
			if err != nil && errors.Cause(err) != user.ErrNotFound {
				return nil, errors.Wrap(err, "getting learner")
			}
			if err == nil && got.IsActive {
				learner = &got
			}
			learners[e.LearnerID] = learner
		}
		if learner == nil {
			continue
		}

		ov, err := s.progress.Snapshot(ctx, learner.ID, c.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "getting progress of %s in %s", learner.ID, c.ID)
		}
		lastActivity := e.CreatedAt
		if la := ov.Progress.LastActivity(); la.After(lastActivity) {
			lastActivity = la
		}
		if !ov.Completion.IsComplete() && lastActivity.Before(cutoff) {
			reminders = append(reminders, Reminder{Learner: *learner, Course: *c, Completion: ov.Completion})
		}
	}

	return reminders, nil
}

// Run emails every due reminder and returns how many were sent.
func (s *Service) Run(ctx context.Context) (int, error) {
	reminders, err := s.Due(ctx)
	if err != nil {
		return 0, err
	}
	messages := make([]*core.EmailMessage, 0, len(reminders))
	for _, r := range reminders {
		messages = append(messages, &core.EmailMessage{
			To:           []mail.Address{{Name: r.Learner.DisplayName(), Address: r.Learner.Email}},
			Subject:      "Continue " + r.Course.Title,
			TemplateName: "course_reminder",
			TemplateData: map[string]interface{}{
				"LearnerName": r.Learner.DisplayName(),
				"Percentage":  r.Completion.Percentage,
				"CourseTitle": r.Course.Title,
				"CourseID":    r.Course.ID,
			},
		})
	}
	if len(messages) > 0 {
		s.mailSvc.SendMessages(messages...)
	}
	return len(messages), nil
}

// Schedule runs the reminders on the configured cron schedule until ctx is done.
// Runs never overlap.
func (s *Service) Schedule(ctx context.Context) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(s.conf.Schedule, func() {
		start := time.Now()
		n, err := s.Run(ctx)
		if err != nil {
			s.logger.Error("sending reminders", err)
			return
		}
		s.logger.Info(fmt.Sprintf("sent %d reminders in %v", n, time.Since(start)))
	})
	if err != nil {
		return nil, errors.Wrapf(err, "parsing reminder schedule %q", s.conf.Schedule)
	}
	c.Start()

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return c, nil
}
