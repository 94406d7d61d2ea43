package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/qitc/core/auth"
	"github.com/trezcool/qitc/core/course"
	"github.com/trezcool/qitc/core/user"
)

type courseApi struct {
	svc      *course.Service
	authSvc  *auth.Service
	validate *validator.Validate
}

func registerCourseAPI(g *echo.Group, deps *ServerDeps) {
	api := courseApi{
		svc:      deps.CourseSvc,
		authSvc:  deps.AuthSvc,
		validate: deps.Validate,
	}

	cg := g.Group("/courses")

	// public endpoints
	cg.GET("", api.query)
	cg.GET("/:id", api.retrieve)
	cg.GET("/:id/tasks", api.tasks)

	// admin endpoints
	adm := cg.Group("", authMiddleware(api.authSvc, user.RoleAdmin))
	adm.POST("", api.create)
	adm.PUT("/:id", api.update)
	adm.DELETE("/:id", api.destroy)
}

// Handlers

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	crs, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == course.ErrNameExists {
			return err
		}
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) query(ctx echo.Context) error {
	page := new(Pagination)
	page.Bind(ctx)

	courses, err := api.svc.QueryAll(ctx.Request().Context(), page.Offset, page.Limit)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	crs, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) tasks(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	tasks, err := api.svc.QueryTasksByCourseID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tasks)
}

func (api *courseApi) update(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	crs, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}

	var data course.UpdateCourse
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err = data.Validate(ctx.Request().Context(), crs, api.validate, api.svc); err != nil {
		return err
	}

	crs, err = api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		if errors.Cause(err) == course.ErrNoChange {
			return ctx.JSON(http.StatusOK, SuccessResponse{Success: "no changes"})
		}
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

// destroy soft-deletes by default; `?hard=true` removes the row and cascades
// its tasks and journal entries.
func (api *courseApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}

	if ctx.QueryParam("hard") == "true" {
		if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
			return err
		}
		return ctx.NoContent(http.StatusNoContent)
	}

	crs, err := api.svc.SoftDelete(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == course.ErrNoChange {
			return ctx.JSON(http.StatusOK, SuccessResponse{Success: "no changes"})
		}
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}
