package enroll

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/qitc/core"
	"github.com/trezcool/qitc/core/course"
	"github.com/trezcool/qitc/core/user"
)

var (
	// errors
	ErrAlreadyEnrolled = errors.New("student is already enrolled in this course")
	ErrNotEnrolled     = errors.New("student is not enrolled in this course")
	ErrNotAStudent     = errors.New("user is not a student")
)

type (
	// Enrollment records the fact that a student is registered in a course.
	// The (UserID, CourseID) pair is the identity; there is no surrogate key.
	Enrollment struct {
		UserID   string `json:"user_id" db:"user_id"`
		CourseID int    `json:"course_id" db:"course_id"`
	}

	// JournalEntry is the per-student, per-task progress record. One row
	// exists for every task of every course the student is enrolled in.
	JournalEntry struct {
		UserID  string `json:"user_id" db:"user_id"`
		TaskID  int    `json:"task_id" db:"task_id"`
		Mark    int    `json:"mark" db:"mark"`
		Comment string `json:"comment" db:"comment"`
	}

	// Repository owns the multi-row writes. CreateEnrollment and
	// DeleteEnrollment each run as one transaction: the enrollment row, its
	// journal rows and the course student counter change together or not at
	// all. A duplicate enrollment must surface as ErrAlreadyEnrolled, not as
	// a generic failure.
	Repository interface {
		CreateEnrollment(ctx context.Context, courseID int, userID string) (Enrollment, error)
		DeleteEnrollment(ctx context.Context, courseID int, userID string) error
		QueryStudentsByCourseID(ctx context.Context, courseID int) ([]user.User, error)
		QueryJournalByUserID(ctx context.Context, userID string) ([]JournalEntry, error)
	}

	Service struct {
		repo    Repository
		usrRepo user.Repository
		crsRepo course.Repository
		log     core.Logger
	}
)

func NewService(repo Repository, usrRepo user.Repository, crsRepo course.Repository, log core.Logger) *Service {
	return &Service{repo: repo, usrRepo: usrRepo, crsRepo: crsRepo, log: log}
}

// Enroll adds a student to a course and opens a journal row (mark 0, empty
// comment) for every task the course currently has. A course with zero tasks
// enrolls fine with an empty journal set. Nothing is written when a
// precondition fails.
func (svc *Service) Enroll(ctx context.Context, courseID int, userID string) (Enrollment, error) {
	usr, err := svc.usrRepo.GetUserByID(ctx, userID)
	if err != nil {
		return Enrollment{}, err
	}
	if !usr.IsStudent() {
		return Enrollment{}, ErrNotAStudent
	}
	if _, err = svc.crsRepo.GetCourseByID(ctx, courseID); err != nil {
		return Enrollment{}, err
	}

	enr, err := svc.repo.CreateEnrollment(ctx, courseID, userID)
	if err != nil {
		return Enrollment{}, err
	}
	svc.log.Info("student enrolled", "user_id", userID, "course_id", courseID)
	return enr, nil
}

// Unenroll removes a student from a course along with the journal rows for
// that course's tasks, atomically.
func (svc *Service) Unenroll(ctx context.Context, courseID int, userID string) error {
	if err := svc.repo.DeleteEnrollment(ctx, courseID, userID); err != nil {
		return err
	}
	svc.log.Info("student unenrolled", "user_id", userID, "course_id", courseID)
	return nil
}

// Students lists the users enrolled in a course.
// A missing course is course.ErrNotFound; an empty course is an empty list.
func (svc *Service) Students(ctx context.Context, courseID int) ([]user.User, error) {
	if _, err := svc.crsRepo.GetCourseByID(ctx, courseID); err != nil {
		return nil, err
	}
	return svc.repo.QueryStudentsByCourseID(ctx, courseID)
}

// Journal lists a student's journal entries across all enrolled courses.
func (svc *Service) Journal(ctx context.Context, userID string) ([]JournalEntry, error) {
	if _, err := svc.usrRepo.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	return svc.repo.QueryJournalByUserID(ctx, userID)
}
