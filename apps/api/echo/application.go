package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/qitc/core/application"
	"github.com/trezcool/qitc/core/auth"
	"github.com/trezcool/qitc/core/user"
)

type applicationApi struct {
	svc      *application.Service
	authSvc  *auth.Service
	validate *validator.Validate
}

func registerApplicationAPI(g *echo.Group, deps *ServerDeps) {
	api := applicationApi{
		svc:      deps.AppSvc,
		authSvc:  deps.AuthSvc,
		validate: deps.Validate,
	}

	ag := g.Group("/applications")

	// un-authed endpoint; the public site posts here
	ag.POST("", api.submit)

	// admin endpoints
	adm := ag.Group("", authMiddleware(api.authSvc, user.RoleAdmin))
	adm.GET("", api.query)
	adm.GET("/:id", api.retrieve)
	adm.PUT("/:id/read", api.markRead)
}

// Handlers

func (api *applicationApi) submit(ctx echo.Context) error {
	var data application.NewApplication
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewApplication")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	app, err := api.svc.Submit(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "submitting application")
	}
	return ctx.JSON(http.StatusCreated, app)
}

func (api *applicationApi) query(ctx echo.Context) error {
	page := new(Pagination)
	page.Bind(ctx)

	apps, err := api.svc.QueryAll(ctx.Request().Context(), page.Offset, page.Limit)
	if err != nil {
		return errors.Wrap(err, "querying applications")
	}
	return ctx.JSON(http.StatusOK, apps)
}

func (api *applicationApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	app, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, app)
}

func (api *applicationApi) markRead(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	app, err := api.svc.MarkRead(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == application.ErrNoChange {
			return ctx.JSON(http.StatusOK, SuccessResponse{Success: "no changes"})
		}
		return err
	}
	return ctx.JSON(http.StatusOK, app)
}
