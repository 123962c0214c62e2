package certificate

import (
	"context"

	"github.com/dentalearn/lms/core"
	"github.com/dentalearn/lms/core/course"
	"github.com/dentalearn/lms/core/progress"
	"github.com/dentalearn/lms/core/user"
)

type serviceMock struct {
	service
}

// NewServiceMock returns a ServiceInterface that sends emails synchronously.
func NewServiceMock(
	repo Repository,
	courses course.ServiceInterface,
	progressSvc progress.ServiceInterface,
	mailSvc core.EmailService,
	logger core.Logger,
	conf *core.Config,
) ServiceInterface {
	return &serviceMock{
		service: service{repo: repo, courses: courses, progress: progressSvc, mailSvc: mailSvc, logger: logger, conf: conf},
	}
}

func (svc *serviceMock) Issue(ctx context.Context, learner user.User, courseID string) (Certificate, error) {
	cert, created, err := svc.issue(ctx, learner, courseID)
	if err != nil {
		return Certificate{}, err
	}
	if created {
		// run synchronously
		svc.sendCertificateMail(learner, cert)
	}
	return cert, nil
}
