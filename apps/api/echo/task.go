package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/qitc/core"
	"github.com/trezcool/qitc/core/auth"
	"github.com/trezcool/qitc/core/course"
	"github.com/trezcool/qitc/core/user"
)

type taskApi struct {
	svc      *course.Service
	authSvc  *auth.Service
	validate *validator.Validate
}

func registerTaskAPI(g *echo.Group, deps *ServerDeps) {
	api := taskApi{
		svc:      deps.CourseSvc,
		authSvc:  deps.AuthSvc,
		validate: deps.Validate,
	}

	tg := g.Group("/tasks")

	// public endpoints
	tg.GET("", api.query)
	tg.GET("/:id", api.retrieve)

	// admin endpoints
	adm := tg.Group("", authMiddleware(api.authSvc, user.RoleAdmin))
	adm.POST("", api.create)
	adm.PUT("/:id", api.update)
	adm.PUT("/:id/status", api.setStatus)
	adm.DELETE("/:id", api.destroy)
}

// Handlers

func (api *taskApi) create(ctx echo.Context) error {
	var data course.NewTask
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTask")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	tsk, err := api.svc.CreateTask(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, tsk)
}

func (api *taskApi) query(ctx echo.Context) error {
	page := new(Pagination)
	page.Bind(ctx)

	tasks, err := api.svc.QueryAllTasks(ctx.Request().Context(), page.Offset, page.Limit)
	if err != nil {
		return errors.Wrap(err, "querying tasks")
	}
	return ctx.JSON(http.StatusOK, tasks)
}

func (api *taskApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	tsk, err := api.svc.GetTaskByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tsk)
}

func (api *taskApi) update(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}

	var data course.UpdateTask
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTask")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	tsk, err := api.svc.UpdateTask(ctx.Request().Context(), id, data)
	if err != nil {
		if errors.Cause(err) == course.ErrNoChange {
			return ctx.JSON(http.StatusOK, SuccessResponse{Success: "no changes"})
		}
		return err
	}
	return ctx.JSON(http.StatusOK, tsk)
}

func (api *taskApi) setStatus(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}

	var data SetTaskStatusRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetTaskStatusRequest")
	}
	status, err := course.ParseTaskStatus(data.Status)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "status", Error: err.Error()})
	}

	tsk, err := api.svc.SetTaskStatus(ctx.Request().Context(), id, status)
	if err != nil {
		if errors.Cause(err) == course.ErrNoChange {
			return ctx.JSON(http.StatusOK, SuccessResponse{Success: "no changes"})
		}
		return err
	}
	return ctx.JSON(http.StatusOK, tsk)
}

// destroy soft-deletes by default; `?hard=true` removes the row.
func (api *taskApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}

	if ctx.QueryParam("hard") == "true" {
		if err = api.svc.DeleteTask(ctx.Request().Context(), id); err != nil {
			return err
		}
		return ctx.NoContent(http.StatusNoContent)
	}

	tsk, err := api.svc.SoftDeleteTask(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == course.ErrNoChange {
			return ctx.JSON(http.StatusOK, SuccessResponse{Success: "no changes"})
		}
		return err
	}
	return ctx.JSON(http.StatusOK, tsk)
}

type SetTaskStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
