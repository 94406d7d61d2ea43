package pgrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/qitc/core"
	"github.com/trezcool/qitc/core/enroll"
	"github.com/trezcool/qitc/core/user"
)

type enrollmentRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

var _ enroll.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *sqlx.DB, conf *core.Config) enroll.Repository {
	return &enrollmentRepository{db: db, timeout: conf.Database.Timeout}
}

// CreateEnrollment inserts the enrollment row, one journal row per task of
// the course, and bumps the course student counter, all in one transaction.
// The composite primary key serializes concurrent enrolls of the same pair:
// the loser's insert fails with a unique violation, reported as
// enroll.ErrAlreadyEnrolled.
func (repo *enrollmentRepository) CreateEnrollment(ctx context.Context, courseID int, userID string) (enroll.Enrollment, error) {
	ctx, cancel := deadline(ctx, repo.timeout)
	defer cancel()

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return enroll.Enrollment{}, dbErr(errors.Wrap(err, "beginning transaction"), nil)
	}
	defer func() { _ = tx.Rollback() }()

	const insertEnrollment = `INSERT INTO enrollments (user_id, course_id) VALUES ($1, $2)`
	if _, err = tx.ExecContext(ctx, insertEnrollment, userID, courseID); err != nil {
		if isUniqueViolation(err) {
			return enroll.Enrollment{}, enroll.ErrAlreadyEnrolled
		}
		return enroll.Enrollment{}, dbErr(errors.Wrap(err, "inserting enrollment"), nil)
	}

	// a course with zero tasks inserts zero journal rows; that is fine
	const insertJournal = `
		INSERT INTO journal (user_id, task_id, mark, comment)
		SELECT $1, id, 0, '' FROM tasks WHERE course_id = $2`
	if _, err = tx.ExecContext(ctx, insertJournal, userID, courseID); err != nil {
		return enroll.Enrollment{}, dbErr(errors.Wrap(err, "inserting journal rows"), nil)
	}

	const bumpCount = `UPDATE courses SET students_count = students_count + 1 WHERE id = $1`
	if _, err = tx.ExecContext(ctx, bumpCount, courseID); err != nil {
		return enroll.Enrollment{}, dbErr(errors.Wrap(err, "updating students count"), nil)
	}

	if err = tx.Commit(); err != nil {
		return enroll.Enrollment{}, dbErr(errors.Wrap(err, "committing enrollment"), nil)
	}
	return enroll.Enrollment{UserID: userID, CourseID: courseID}, nil
}

// DeleteEnrollment removes the enrollment row, the journal rows for the
// course's tasks and decrements the student counter, all in one transaction.
func (repo *enrollmentRepository) DeleteEnrollment(ctx context.Context, courseID int, userID string) error {
	ctx, cancel := deadline(ctx, repo.timeout)
	defer cancel()

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return dbErr(errors.Wrap(err, "beginning transaction"), nil)
	}
	defer func() { _ = tx.Rollback() }()

	const deleteEnrollment = `DELETE FROM enrollments WHERE user_id = $1 AND course_id = $2`
	res, err := tx.ExecContext(ctx, deleteEnrollment, userID, courseID)
	if err != nil {
		return dbErr(errors.Wrap(err, "deleting enrollment"), nil)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return enroll.ErrNotEnrolled
	}

	const deleteJournal = `
		DELETE FROM journal
		WHERE user_id = $1 AND task_id IN (SELECT id FROM tasks WHERE course_id = $2)`
	if _, err = tx.ExecContext(ctx, deleteJournal, userID, courseID); err != nil {
		return dbErr(errors.Wrap(err, "deleting journal rows"), nil)
	}

	const dropCount = `
		UPDATE courses SET students_count = students_count - 1
		WHERE id = $1 AND students_count > 0`
	if _, err = tx.ExecContext(ctx, dropCount, courseID); err != nil {
		return dbErr(errors.Wrap(err, "updating students count"), nil)
	}

	if err = tx.Commit(); err != nil {
		return dbErr(errors.Wrap(err, "committing unenrollment"), nil)
	}
	return nil
}

func (repo *enrollmentRepository) QueryStudentsByCourseID(ctx context.Context, courseID int) ([]user.User, error) {
	ctx, cancel := deadline(ctx, repo.timeout)
	defer cancel()

	const query = `
		SELECT u.* FROM users u
		JOIN enrollments e ON e.user_id = u.id
		WHERE e.course_id = $1
		ORDER BY u.created_at`
	students := make([]user.User, 0)
	if err := repo.db.SelectContext(ctx, &students, query, courseID); err != nil {
		return nil, dbErr(errors.Wrap(err, "querying course students"), nil)
	}
	return students, nil
}

func (repo *enrollmentRepository) QueryJournalByUserID(ctx context.Context, userID string) ([]enroll.JournalEntry, error) {
	ctx, cancel := deadline(ctx, repo.timeout)
	defer cancel()

	const query = `SELECT * FROM journal WHERE user_id = $1 ORDER BY task_id`
	entries := make([]enroll.JournalEntry, 0)
	if err := repo.db.SelectContext(ctx, &entries, query, userID); err != nil {
		return nil, dbErr(errors.Wrap(err, "querying journal"), nil)
	}
	return entries, nil
}
