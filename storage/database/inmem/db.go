// Package inmemdb provides in-memory repositories with the same semantics as
// the PostgreSQL ones. They back the service and API tests.
package inmemdb

import (
	"sync"

	"github.com/trezcool/qitc/core/application"
	"github.com/trezcool/qitc/core/course"
	"github.com/trezcool/qitc/core/enroll"
	"github.com/trezcool/qitc/core/user"
)

type (
	DB struct {
		sync.RWMutex

		users         map[string]*user.User
		courses       map[int]*course.Course
		tasks         map[int]*course.Task
		enrollments   map[enrollmentKey]*enroll.Enrollment
		journal       map[journalKey]*enroll.JournalEntry
		revokedTokens map[string]struct{}
		applications  map[int]*application.Application

		courseSeq      int
		taskSeq        int
		applicationSeq int
	}

	enrollmentKey struct {
		userID   string
		courseID int
	}

	journalKey struct {
		userID string
		taskID int
	}
)

func Open() (*DB, error) {
	db := &DB{
		users:         make(map[string]*user.User),
		courses:       make(map[int]*course.Course),
		tasks:         make(map[int]*course.Task),
		enrollments:   make(map[enrollmentKey]*enroll.Enrollment),
		journal:       make(map[journalKey]*enroll.JournalEntry),
		revokedTokens: make(map[string]struct{}),
		applications:  make(map[int]*application.Application),
	}
	return db, nil
}
