package certificate

import (
	"context"
	"fmt"
	"io"
	"net/mail"
	"strings"

	"github.com/pkg/errors"

	"github.com/dentalearn/lms/core"
	"github.com/dentalearn/lms/core/course"
	"github.com/dentalearn/lms/core/progress"
	"github.com/dentalearn/lms/core/user"
)

var (
	// errors
	ErrNotFound         = errors.New("certificate not found")
	ErrCourseIncomplete = errors.New("course is not completed")
	ErrExists           = errors.New("certificate already issued")
)

// attachmentReader returns the content of the attached certificate. Mockable.
var attachmentReader = func(cert Certificate, appName string) io.Reader {
	return strings.NewReader(cert.Text(appName))
}

type (
	Repository interface {
		// CreateCertificate returns ErrExists when the learner already holds a certificate for the course.
		CreateCertificate(ctx context.Context, cert Certificate) (Certificate, error)
		GetCertificate(ctx context.Context, learnerID, courseID string) (Certificate, error)
		GetCertificateByNumber(ctx context.Context, number string) (Certificate, error)
		// QueryCertificates returns the learner's certificates, newest first.
		QueryCertificates(ctx context.Context, learnerID string) ([]Certificate, error)
	}

	ServiceInterface interface {
		// Issue returns the learner's certificate for the course, creating it when the course is completed.
		Issue(ctx context.Context, learner user.User, courseID string) (Certificate, error)
		ListForLearner(ctx context.Context, learnerID string) ([]Certificate, error)
		Verify(ctx context.Context, number string) (Certificate, error)
	}

	service struct {
		repo     Repository
		courses  course.ServiceInterface
		progress progress.ServiceInterface
		mailSvc  core.EmailService
		logger   core.Logger
		conf     *core.Config
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(
	repo Repository,
	courses course.ServiceInterface,
	progressSvc progress.ServiceInterface,
	mailSvc core.EmailService,
	logger core.Logger,
	conf *core.Config,
) ServiceInterface {
	return &service{repo: repo, courses: courses, progress: progressSvc, mailSvc: mailSvc, logger: logger, conf: conf}
}

func (svc *service) Issue(ctx context.Context, learner user.User, courseID string) (Certificate, error) {
	cert, created, err := svc.issue(ctx, learner, courseID)
	if err != nil {
		return Certificate{}, err
	}
	if created {
		go svc.sendCertificateMail(learner, cert)
	}
	return cert, nil
}

// issue returns the existing certificate or creates a new one; created reports the latter.
func (svc *service) issue(ctx context.Context, learner user.User, courseID string) (cert Certificate, created bool, err error) {
	cert, err = svc.repo.GetCertificate(ctx, learner.ID, courseID)
	if err == nil {
		return cert, false, nil
	} else if errors.Cause(err) != ErrNotFound {
		return Certificate{}, false, errors.Wrap(err, "getting certificate")
	}

	c, err := svc.courses.Get(ctx, courseID)
	if err != nil {
		return Certificate{}, false, err
	}
	completion, err := svc.progress.Completion(ctx, learner.ID, c.ID)
	if err != nil {
		return Certificate{}, false, err
	}
	if !completion.IsComplete() {
		return Certificate{}, false, ErrCourseIncomplete
	}

	now := core.NowFunc()
	cert, err = svc.repo.CreateCertificate(ctx, Certificate{
		Number:      NewNumber(now),
		LearnerID:   learner.ID,
		CourseID:    c.ID,
		LearnerName: learner.DisplayName(),
		CourseTitle: c.Title,
		IssuedAt:    now,
	})
	if err != nil {
		if errors.Cause(err) == ErrExists {
			// issued concurrently
			cert, err = svc.repo.GetCertificate(ctx, learner.ID, c.ID)
			return cert, false, err
		}
		return Certificate{}, false, errors.Wrap(err, "creating certificate")
	}
	return cert, true, nil
}

func (svc *service) sendCertificateMail(learner user.User, cert Certificate) {
	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: learner.DisplayName(), Address: learner.Email}},
		Subject:      "Your certificate for " + cert.CourseTitle,
		TemplateName: "certificate_issued",
		TemplateData: map[string]string{
			"LearnerName": cert.LearnerName,
			"CourseTitle": cert.CourseTitle,
			"Number":      cert.Number,
		},
	}
	err := msg.Attach(attachmentReader(cert, svc.conf.AppName), cert.Number+".txt", "text/plain")
	if err != nil {
		svc.logger.Error(
			fmt.Sprintf("certificate %s not mailed to %s", cert.Number, learner.Email),
			errors.Wrap(err, "attaching certificate"),
		)
		return
	}
	svc.mailSvc.SendMessages(msg)
}

func (svc *service) ListForLearner(ctx context.Context, learnerID string) ([]Certificate, error) {
	return svc.repo.QueryCertificates(ctx, learnerID)
}

func (svc *service) Verify(ctx context.Context, number string) (Certificate, error) {
	number = CleanNumber(number)
	if number == "" {
		return Certificate{}, ErrNotFound
	}
	return svc.repo.GetCertificateByNumber(ctx, number)
}
