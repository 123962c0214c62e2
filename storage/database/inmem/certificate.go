package inmemdb

import (
	"context"
	"sort"

	"github.com/dentalearn/lms/core/certificate"
)

type certificateRepository struct {
	db *DB
}

var _ certificate.Repository = (*certificateRepository)(nil)

func NewCertificateRepository(db *DB) certificate.Repository {
	return &certificateRepository{db: db}
}

func (repo *certificateRepository) CreateCertificate(_ context.Context, cert certificate.Certificate) (certificate.Certificate, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, c := range repo.db.certificates {
		if c.LearnerID == cert.LearnerID && c.CourseID == cert.CourseID {
			return certificate.Certificate{}, certificate.ErrExists
		}
	}
	cert.ID = newID()
	repo.db.certificates[cert.ID] = &cert
	return cert, nil
}

func (repo *certificateRepository) find(match func(c *certificate.Certificate) bool) (certificate.Certificate, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, c := range repo.db.certificates {
		if match(c) {
			return *c, nil
		}
	}
	return certificate.Certificate{}, certificate.ErrNotFound
}

func (repo *certificateRepository) GetCertificate(_ context.Context, learnerID, courseID string) (certificate.Certificate, error) {
	return repo.find(func(c *certificate.Certificate) bool {
		return c.LearnerID == learnerID && c.CourseID == courseID
	})
}

func (repo *certificateRepository) GetCertificateByNumber(_ context.Context, number string) (certificate.Certificate, error) {
	return repo.find(func(c *certificate.Certificate) bool { return c.Number == number })
}

func (repo *certificateRepository) QueryCertificates(_ context.Context, learnerID string) ([]certificate.Certificate, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	certs := make([]certificate.Certificate, 0)
	for _, c := range repo.db.certificates {
		if c.LearnerID == learnerID {
			certs = append(certs, *c)
		}
	}
	sort.SliceStable(certs, func(i, j int) bool { return certs[i].IssuedAt.After(certs[j].IssuedAt) })
	return certs, nil
}
