package application

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/qitc/core"
)

type Status string

const (
	StatusNew    Status = "new"
	StatusReaded Status = "readed"
)

// Application is a pre-enrollment inquiry submitted from the public site.
// It is independent of User; the referenced course id is informational and
// not enforced as a foreign key.
type Application struct {
	ID          int       `json:"id" db:"id"`
	UserName    string    `json:"user_name" db:"user_name"`
	PhoneNumber string    `json:"phone_number" db:"phone_number"`
	Email       string    `json:"email" db:"email"`
	CourseID    int       `json:"course_id" db:"course_id"`
	Status      Status    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
}

type NewApplication struct {
	UserName    string `json:"user_name" validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"required,e164"`
	Email       string `json:"email" validate:"required,email"`
	CourseID    int    `json:"course_id" validate:"required"`
}

func (na *NewApplication) Validate(validate *validator.Validate) error {
	na.UserName = core.CleanString(na.UserName)
	na.PhoneNumber = core.CleanString(na.PhoneNumber)
	na.Email = core.CleanString(na.Email, true /* lower */)
	return validate.Struct(na)
}
