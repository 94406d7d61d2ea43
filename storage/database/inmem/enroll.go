package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/qitc/core/enroll"
	"github.com/trezcool/qitc/core/user"
)

type enrollmentRepository struct {
	db *DB
}

var _ enroll.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *DB) enroll.Repository {
	return &enrollmentRepository{db: db}
}

func (repo *enrollmentRepository) CreateEnrollment(ctx context.Context, courseID int, userID string) (enroll.Enrollment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := enrollmentKey{userID: userID, courseID: courseID}
	if _, ok := repo.db.enrollments[key]; ok {
		return enroll.Enrollment{}, enroll.ErrAlreadyEnrolled
	}

	enr := enroll.Enrollment{UserID: userID, CourseID: courseID}
	repo.db.enrollments[key] = &enr
	for _, tsk := range repo.db.tasks {
		if tsk.CourseID == courseID {
			jk := journalKey{userID: userID, taskID: tsk.ID}
			repo.db.journal[jk] = &enroll.JournalEntry{UserID: userID, TaskID: tsk.ID}
		}
	}
	if crs, ok := repo.db.courses[courseID]; ok {
		crs.StudentsCount++
	}
	return enr, nil
}

func (repo *enrollmentRepository) DeleteEnrollment(ctx context.Context, courseID int, userID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := enrollmentKey{userID: userID, courseID: courseID}
	if _, ok := repo.db.enrollments[key]; !ok {
		return enroll.ErrNotEnrolled
	}
	delete(repo.db.enrollments, key)

	for _, tsk := range repo.db.tasks {
		if tsk.CourseID == courseID {
			delete(repo.db.journal, journalKey{userID: userID, taskID: tsk.ID})
		}
	}
	if crs, ok := repo.db.courses[courseID]; ok && crs.StudentsCount > 0 {
		crs.StudentsCount--
	}
	return nil
}

func (repo *enrollmentRepository) QueryStudentsByCourseID(ctx context.Context, courseID int) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]user.User, 0)
	for key := range repo.db.enrollments {
		if key.courseID != courseID {
			continue
		}
		if usr, ok := repo.db.users[key.userID]; ok {
			students = append(students, *usr)
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].CreatedAt.Before(students[j].CreatedAt) })
	return students, nil
}

func (repo *enrollmentRepository) QueryJournalByUserID(ctx context.Context, userID string) ([]enroll.JournalEntry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	entries := make([]enroll.JournalEntry, 0)
	for key, entry := range repo.db.journal {
		if key.userID == userID {
			entries = append(entries, *entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].TaskID < entries[j].TaskID })
	return entries, nil
}
