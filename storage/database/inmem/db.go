package inmemdb

import (
	"sync"

	"github.com/google/uuid"

	"github.com/dentalearn/lms/core/certificate"
	"github.com/dentalearn/lms/core/course"
	"github.com/dentalearn/lms/core/user"
)

// DB keeps every table in memory. It is meant for local development and tests.
type DB struct {
	mutex sync.RWMutex

	users        map[string]*user.User
	courses      map[string]*course.Course // without outline
	modules      map[string]*course.Module // without items
	contents     map[string]*course.ContentItem
	enrollments  map[string]*course.Enrollment
	certificates map[string]*certificate.Certificate
	progress     map[string]map[string][]byte // {learnerID: {courseID: record}}
}

func Open() *DB {
	return &DB{
		users:        make(map[string]*user.User),
		courses:      make(map[string]*course.Course),
		modules:      make(map[string]*course.Module),
		contents:     make(map[string]*course.ContentItem),
		enrollments:  make(map[string]*course.Enrollment),
		certificates: make(map[string]*certificate.Certificate),
		progress:     make(map[string]map[string][]byte),
	}
}

func newID() string {
	return uuid.New().String()
}
