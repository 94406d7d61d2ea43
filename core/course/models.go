package course

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/qitc/core"
)

// Status is a closed set; soft deletion flips it to StatusDeleted without
// removing the row.
type Status string

const (
	StatusActive  Status = "active"
	StatusClosed  Status = "closed"
	StatusDeleted Status = "deleted"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusActive, StatusClosed, StatusDeleted:
		return st, nil
	}
	return "", ErrUnknownStatus
}

func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

type TaskStatus string

const (
	TaskStatusClosed    TaskStatus = "closed"
	TaskStatusInProcess TaskStatus = "inProcess"
	TaskStatusDone      TaskStatus = "done"
	TaskStatusDeleted   TaskStatus = "deleted"
)

func ParseTaskStatus(s string) (TaskStatus, error) {
	switch st := TaskStatus(s); st {
	case TaskStatusClosed, TaskStatusInProcess, TaskStatusDone, TaskStatusDeleted:
		return st, nil
	}
	return "", ErrUnknownStatus
}

func (s TaskStatus) Valid() bool {
	_, err := ParseTaskStatus(string(s))
	return err == nil
}

type Course struct {
	ID            int    `json:"id" db:"id"`
	Name          string `json:"name" db:"name"`
	Description   string `json:"description" db:"description"`
	StudentsCount int    `json:"students_count" db:"students_count"`
	Status        Status `json:"status" db:"status"`
}

// Task belongs to exactly one Course; deleting the Course cascades.
type Task struct {
	ID          int        `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	Status      TaskStatus `json:"status" db:"status"`
	CourseID    int        `json:"course_id" db:"course_id"`
}

type NewCourse struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (nc *NewCourse) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)

	if err := validate.Struct(nc); err != nil {
		return err
	}
	return svc.checkNameUniqueness(ctx, nc.Name)
}

type UpdateCourse struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Status      string `json:"status" validate:"required"`
}

func (uc *UpdateCourse) Validate(ctx context.Context, orig Course, validate *validator.Validate, svc *Service) error {
	uc.Name = core.CleanString(uc.Name)
	uc.Description = core.CleanString(uc.Description)

	if err := validate.Struct(uc); err != nil {
		return err
	}
	if _, err := ParseStatus(uc.Status); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "status", Error: err.Error()})
	}
	if uc.Name != orig.Name {
		return svc.checkNameUniqueness(ctx, uc.Name)
	}
	return nil
}

type NewTask struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	CourseID    int    `json:"course_id" validate:"required"`
}

func (nt *NewTask) Validate(validate *validator.Validate) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Description = core.CleanString(nt.Description)
	return validate.Struct(nt)
}

type UpdateTask struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Status      string `json:"status" validate:"required"`
	CourseID    int    `json:"course_id" validate:"required"`
}

func (ut *UpdateTask) Validate(validate *validator.Validate) error {
	ut.Name = core.CleanString(ut.Name)
	ut.Description = core.CleanString(ut.Description)

	if err := validate.Struct(ut); err != nil {
		return err
	}
	if _, err := ParseTaskStatus(ut.Status); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "status", Error: err.Error()})
	}
	return nil
}
