package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/qitc/core/auth"
	"github.com/trezcool/qitc/core/enroll"
	"github.com/trezcool/qitc/core/user"
)

type groupApi struct {
	svc      *enroll.Service
	authSvc  *auth.Service
	validate *validator.Validate
}

func registerGroupAPI(g *echo.Group, deps *ServerDeps) {
	api := groupApi{
		svc:      deps.EnrollSvc,
		authSvc:  deps.AuthSvc,
		validate: deps.Validate,
	}

	// admin endpoints
	gg := g.Group("/group", authMiddleware(api.authSvc, user.RoleAdmin))
	gg.POST("/student/add", api.addStudent)
	gg.POST("/student/remove", api.removeStudent)
	gg.GET("/:courseID/students", api.students)
}

// Handlers

func (api *groupApi) addStudent(ctx echo.Context) error {
	var data EnrollmentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnrollmentRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	enr, err := api.svc.Enroll(ctx.Request().Context(), data.CourseID, data.UserID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, enr)
}

func (api *groupApi) removeStudent(ctx echo.Context) error {
	var data EnrollmentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnrollmentRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	if err := api.svc.Unenroll(ctx.Request().Context(), data.CourseID, data.UserID); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *groupApi) students(ctx echo.Context) error {
	courseID, err := pathID(ctx, "courseID")
	if err != nil {
		return err
	}
	students, err := api.svc.Students(ctx.Request().Context(), courseID)
	if err != nil {
		return err
	}
	profiles := make([]user.Profile, 0, len(students))
	for _, usr := range students {
		profiles = append(profiles, usr.Profile())
	}
	return ctx.JSON(http.StatusOK, profiles)
}

type EnrollmentRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	CourseID int    `json:"course_id" validate:"required"`
}
