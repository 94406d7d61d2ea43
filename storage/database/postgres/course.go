package pgrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/qitc/core"
	"github.com/trezcool/qitc/core/course"
)

type courseRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB, conf *core.Config) course.Repository {
	return &courseRepository{db: db, timeout: conf.Database.Timeout}
}

func (repo *courseRepository) CheckNameUniqueness(ctx context.Context, name string) error {
	ctx, cancel := deadline(ctx, repo.timeout)
	defer cancel()

	var exists bool
	const query = `SELECT EXISTS (SELECT 1 FROM courses WHERE name = $1)`
	if err := repo.db.GetContext(ctx, &exists, query, name); err != nil {
		return dbErr(errors.Wrap(err, "checking course name uniqueness"), nil)
	}
	if exists {
		return course.ErrNameExists
	}
	return nil
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	ctx, cancel := deadline(ctx, repo.timeout)
	defer cancel()

	const query = `
		INSERT INTO courses (name, description, status)
		VALUES ($1, $2, $3)
		RETURNING id, students_count`
	err := repo.db.QueryRowxContext(ctx, query, crs.Name, crs.Description, crs.Status).
		Scan(&crs.ID, &crs.StudentsCount)
	if err != nil {
		if isUniqueViolation(err) {
			return course.Course{}, course.ErrNameExists
		}
		return course.Course{}, dbErr(errors.Wrap(err, "creating course"), nil)
	}
	return crs, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id int) (course.Course, error) {
	ctx, cancel := deadline(ctx, repo.timeout)
	defer cancel()

	var crs course.Course
	if err := repo.db.GetContext(ctx, &crs, `SELECT * FROM courses WHERE id = $1`, id); err != nil {
		return course.Course{}, dbErr(err, course.ErrNotFound)
	}
	return crs, nil
}

func (repo *courseRepository) QueryAllCourses(ctx context.Context, offset, limit int) ([]course.Course, error) {
	ctx, cancel := deadline(ctx, repo.timeout)
	defer cancel()

	const query = `SELECT * FROM courses ORDER BY id OFFSET $1 LIMIT $2`
	courses := make([]course.Course, 0)
	if err := repo.db.SelectContext(ctx, &courses, query, offset, limit); err != nil {
		return nil, dbErr(errors.Wrap(err, "querying courses"), nil)
	}
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	ctx, cancel := deadline(ctx, repo.timeout)
	defer cancel()

	const query = `UPDATE courses SET name = $1, description = $2, status = $3 WHERE id = $4`
	res, err := repo.db.ExecContext(ctx, query, crs.Name, crs.Description, crs.Status, crs.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return course.Course{}, course.ErrNameExists
		}
		return course.Course{}, dbErr(errors.Wrap(err, "updating course"), nil)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return crs, nil
}

func (repo *courseRepository) SetCourseStatus(ctx context.Context, id int, status course.Status) (course.Course, error) {
	ctx, cancel := deadline(ctx, repo.timeout)
	defer cancel()

	var crs course.Course
	const query = `UPDATE courses SET status = $1 WHERE id = $2 RETURNING *`
	if err := repo.db.GetContext(ctx, &crs, query, status, id); err != nil {
		return course.Course{}, dbErr(err, course.ErrNotFound)
	}
	return crs, nil
}

func (repo *courseRepository) DeleteCourse(ctx context.Context, id int) error {
	ctx, cancel := deadline(ctx, repo.timeout)
	defer cancel()

	// tasks (and their journal rows) cascade via FK
	res, err := repo.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return dbErr(errors.Wrap(err, "deleting course"), nil)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return course.ErrNotFound
	}
	return nil
}

// Tasks

func (repo *courseRepository) CreateTask(ctx context.Context, tsk course.Task) (course.Task, error) {
	ctx, cancel := deadline(ctx, repo.timeout)
	defer cancel()

	const query = `
		INSERT INTO tasks (name, description, status, course_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	err := repo.db.QueryRowxContext(ctx, query, tsk.Name, tsk.Description, tsk.Status, tsk.CourseID).
		Scan(&tsk.ID)
	if err != nil {
		return course.Task{}, dbErr(errors.Wrap(err, "creating task"), nil)
	}
	return tsk, nil
}

func (repo *courseRepository) GetTaskByID(ctx context.Context, id int) (course.Task, error) {
	ctx, cancel := deadline(ctx, repo.timeout)
	defer cancel()

	var tsk course.Task
	if err := repo.db.GetContext(ctx, &tsk, `SELECT * FROM tasks WHERE id = $1`, id); err != nil {
		return course.Task{}, dbErr(err, course.ErrTaskNotFound)
	}
	return tsk, nil
}

func (repo *courseRepository) QueryTasksByCourseID(ctx context.Context, courseID int) ([]course.Task, error) {
	ctx, cancel := deadline(ctx, repo.timeout)
	defer cancel()

	const query = `SELECT * FROM tasks WHERE course_id = $1 ORDER BY id`
	tasks := make([]course.Task, 0)
	if err := repo.db.SelectContext(ctx, &tasks, query, courseID); err != nil {
		return nil, dbErr(errors.Wrap(err, "querying course tasks"), nil)
	}
	return tasks, nil
}

func (repo *courseRepository) QueryAllTasks(ctx context.Context, offset, limit int) ([]course.Task, error) {
	ctx, cancel := deadline(ctx, repo.timeout)
	defer cancel()

	const query = `SELECT * FROM tasks ORDER BY id OFFSET $1 LIMIT $2`
	tasks := make([]course.Task, 0)
	if err := repo.db.SelectContext(ctx, &tasks, query, offset, limit); err != nil {
		return nil, dbErr(errors.Wrap(err, "querying tasks"), nil)
	}
	return tasks, nil
}

func (repo *courseRepository) UpdateTask(ctx context.Context, tsk course.Task) (course.Task, error) {
	ctx, cancel := deadline(ctx, repo.timeout)
	defer cancel()

	const query = `UPDATE tasks SET name = $1, description = $2, status = $3, course_id = $4 WHERE id = $5`
	res, err := repo.db.ExecContext(ctx, query, tsk.Name, tsk.Description, tsk.Status, tsk.CourseID, tsk.ID)
	if err != nil {
		return course.Task{}, dbErr(errors.Wrap(err, "updating task"), nil)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return course.Task{}, course.ErrTaskNotFound
	}
	return tsk, nil
}

func (repo *courseRepository) SetTaskStatus(ctx context.Context, id int, status course.TaskStatus) (course.Task, error) {
	ctx, cancel := deadline(ctx, repo.timeout)
	defer cancel()

	var tsk course.Task
	const query = `UPDATE tasks SET status = $1 WHERE id = $2 RETURNING *`
	if err := repo.db.GetContext(ctx, &tsk, query, status, id); err != nil {
		return course.Task{}, dbErr(err, course.ErrTaskNotFound)
	}
	return tsk, nil
}

func (repo *courseRepository) DeleteTask(ctx context.Context, id int) error {
	ctx, cancel := deadline(ctx, repo.timeout)
	defer cancel()

	res, err := repo.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return dbErr(errors.Wrap(err, "deleting task"), nil)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return course.ErrTaskNotFound
	}
	return nil
}
