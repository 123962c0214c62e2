package boiledrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/sqlboiler/v4/queries"

	"github.com/dentalearn/lms/core"
	"github.com/dentalearn/lms/core/certificate"
)

const certificateColumns = `id, number, learner_id, course_id, learner_name, course_title, issued_at`

type certificateRow struct {
	ID          string    `boil:"id"`
	Number      string    `boil:"number"`
	LearnerID   string    `boil:"learner_id"`
	CourseID    string    `boil:"course_id"`
	LearnerName string    `boil:"learner_name"`
	CourseTitle string    `boil:"course_title"`
	IssuedAt    time.Time `boil:"issued_at"`
}

func (c certificateRow) unboil() certificate.Certificate {
	return certificate.Certificate{
		ID:          c.ID,
		Number:      c.Number,
		LearnerID:   c.LearnerID,
		CourseID:    c.CourseID,
		LearnerName: c.LearnerName,
		CourseTitle: c.CourseTitle,
		IssuedAt:    c.IssuedAt.UTC(),
	}
}

type certificateRepository struct {
	exec core.DBExecutor
}

var _ certificate.Repository = (*certificateRepository)(nil) // interface compliance check

func NewCertificateRepository(exec core.DBExecutor) certificate.Repository {
	return &certificateRepository{exec: exec}
}

func (repo certificateRepository) CreateCertificate(ctx context.Context, cert certificate.Certificate) (certificate.Certificate, error) {
	cert.ID = uuid.New().String()
	q := `INSERT INTO certificate (` + certificateColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := queries.Raw(q,
		cert.ID, cert.Number, cert.LearnerID, cert.CourseID, cert.LearnerName, cert.CourseTitle, cert.IssuedAt.UTC(),
	).ExecContext(ctx, repo.exec)
	if err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return certificate.Certificate{}, certificate.ErrExists
		}
		return certificate.Certificate{}, errors.Wrap(err, "inserting certificate")
	}
	return cert, nil
}

func (repo certificateRepository) get(ctx context.Context, where string, args ...interface{}) (certificate.Certificate, error) {
	var cr certificateRow
	if err := queries.Raw(`SELECT `+certificateColumns+` FROM certificate WHERE `+where, args...).Bind(ctx, repo.exec, &cr); err != nil {
		return certificate.Certificate{}, trapNoRowsErr(err, certificate.ErrNotFound, "finding certificate")
	}
	return cr.unboil(), nil
}

func (repo certificateRepository) GetCertificate(ctx context.Context, learnerID, courseID string) (certificate.Certificate, error) {
	if !validUUID(learnerID) || !validUUID(courseID) {
		return certificate.Certificate{}, certificate.ErrNotFound
	}
	return repo.get(ctx, "learner_id = $1 AND course_id = $2", learnerID, courseID)
}

func (repo certificateRepository) GetCertificateByNumber(ctx context.Context, number string) (certificate.Certificate, error) {
	return repo.get(ctx, "number = $1", number)
}

func (repo certificateRepository) QueryCertificates(ctx context.Context, learnerID string) ([]certificate.Certificate, error) {
	if !validUUID(learnerID) {
		return []certificate.Certificate{}, nil
	}
	var rows []certificateRow
	q := `SELECT ` + certificateColumns + ` FROM certificate WHERE learner_id = $1 ORDER BY issued_at DESC`
	if err := queries.Raw(q, learnerID).Bind(ctx, repo.exec, &rows); err != nil {
		return nil, errors.Wrap(err, "querying certificates")
	}
	certs := make([]certificate.Certificate, 0, len(rows))
	for _, cr := range rows {
		certs = append(certs, cr.unboil())
	}
	return certs, nil
}
