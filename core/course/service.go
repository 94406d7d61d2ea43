package course

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/qitc/core"
)

var (
	// errors
	ErrNotFound      = errors.New("course not found")
	ErrTaskNotFound  = errors.New("task not found")
	ErrNameExists    = errors.New("a course with this name already exists")
	ErrUnknownStatus = errors.New("unknown status")
	ErrNoChange      = errors.New("no changes provided")
)

type (
	Repository interface {
		CheckNameUniqueness(ctx context.Context, name string) error
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		GetCourseByID(ctx context.Context, id int) (Course, error)
		QueryAllCourses(ctx context.Context, offset, limit int) ([]Course, error)
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		SetCourseStatus(ctx context.Context, id int, status Status) (Course, error)
		DeleteCourse(ctx context.Context, id int) error // hard delete; cascades tasks

		CreateTask(ctx context.Context, tsk Task) (Task, error)
		GetTaskByID(ctx context.Context, id int) (Task, error)
		QueryTasksByCourseID(ctx context.Context, courseID int) ([]Task, error)
		QueryAllTasks(ctx context.Context, offset, limit int) ([]Task, error)
		UpdateTask(ctx context.Context, tsk Task) (Task, error)
		SetTaskStatus(ctx context.Context, id int, status TaskStatus) (Task, error)
		DeleteTask(ctx context.Context, id int) error
	}

	Service struct {
		repo Repository
		log  core.Logger
	}
)

func NewService(repo Repository, log core.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (svc *Service) checkNameUniqueness(ctx context.Context, name string) error {
	if err := svc.repo.CheckNameUniqueness(ctx, name); err != nil {
		if errors.Cause(err) == ErrNameExists {
			return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	crs := Course{
		Name:        nc.Name,
		Description: nc.Description,
		Status:      StatusActive,
	}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *Service) QueryAll(ctx context.Context, offset, limit int) ([]Course, error) {
	return svc.repo.QueryAllCourses(ctx, offset, limit)
}

// Update modifies a Course. It returns ErrNoChange when the provided values
// match the current ones; callers must not treat that as a missing course.
func (svc *Service) Update(ctx context.Context, id int, uc UpdateCourse) (Course, error) {
	crs, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Course{}, err
	}
	status := Status(uc.Status)
	if crs.Name == uc.Name && crs.Description == uc.Description && crs.Status == status {
		return crs, ErrNoChange
	}
	crs.Name = uc.Name
	crs.Description = uc.Description
	crs.Status = status
	return svc.repo.UpdateCourse(ctx, crs)
}

// SoftDelete marks a Course deleted without removing its row.
// Already-deleted courses report ErrNoChange.
func (svc *Service) SoftDelete(ctx context.Context, id int) (Course, error) {
	crs, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if crs.Status == StatusDeleted {
		return crs, ErrNoChange
	}
	return svc.repo.SetCourseStatus(ctx, id, StatusDeleted)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	if _, err := svc.repo.GetCourseByID(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteCourse(ctx, id)
}

// Tasks

func (svc *Service) CreateTask(ctx context.Context, nt NewTask) (Task, error) {
	if _, err := svc.repo.GetCourseByID(ctx, nt.CourseID); err != nil {
		return Task{}, err
	}
	tsk := Task{
		Name:        nt.Name,
		Description: nt.Description,
		Status:      TaskStatusClosed,
		CourseID:    nt.CourseID,
	}
	return svc.repo.CreateTask(ctx, tsk)
}

func (svc *Service) GetTaskByID(ctx context.Context, id int) (Task, error) {
	return svc.repo.GetTaskByID(ctx, id)
}

func (svc *Service) QueryTasksByCourseID(ctx context.Context, courseID int) ([]Task, error) {
	if _, err := svc.repo.GetCourseByID(ctx, courseID); err != nil {
		return nil, err
	}
	return svc.repo.QueryTasksByCourseID(ctx, courseID)
}

func (svc *Service) QueryAllTasks(ctx context.Context, offset, limit int) ([]Task, error) {
	return svc.repo.QueryAllTasks(ctx, offset, limit)
}

func (svc *Service) UpdateTask(ctx context.Context, id int, ut UpdateTask) (Task, error) {
	tsk, err := svc.repo.GetTaskByID(ctx, id)
	if err != nil {
		return Task{}, err
	}
	if _, err = svc.repo.GetCourseByID(ctx, ut.CourseID); err != nil {
		return Task{}, err
	}
	status := TaskStatus(ut.Status)
	if tsk.Name == ut.Name && tsk.Description == ut.Description && tsk.Status == status && tsk.CourseID == ut.CourseID {
		return tsk, ErrNoChange
	}
	tsk.Name = ut.Name
	tsk.Description = ut.Description
	tsk.Status = status
	tsk.CourseID = ut.CourseID
	return svc.repo.UpdateTask(ctx, tsk)
}

// SetTaskStatus transitions a Task's workflow status. Deletion is not a
// workflow transition: requesting `deleted` here reports ErrNoChange, same
// as requesting the current status.
func (svc *Service) SetTaskStatus(ctx context.Context, id int, status TaskStatus) (Task, error) {
	if !status.Valid() {
		return Task{}, ErrUnknownStatus
	}
	tsk, err := svc.repo.GetTaskByID(ctx, id)
	if err != nil {
		return Task{}, err
	}
	if tsk.Status == status || status == TaskStatusDeleted {
		return tsk, ErrNoChange
	}
	return svc.repo.SetTaskStatus(ctx, id, status)
}

// SoftDeleteTask marks a Task deleted without removing its row.
func (svc *Service) SoftDeleteTask(ctx context.Context, id int) (Task, error) {
	tsk, err := svc.repo.GetTaskByID(ctx, id)
	if err != nil {
		return Task{}, err
	}
	if tsk.Status == TaskStatusDeleted {
		return tsk, ErrNoChange
	}
	return svc.repo.SetTaskStatus(ctx, id, TaskStatusDeleted)
}

func (svc *Service) DeleteTask(ctx context.Context, id int) error {
	if _, err := svc.repo.GetTaskByID(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteTask(ctx, id)
}
