package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/qitc/core"
	"github.com/trezcool/qitc/core/auth"
	"github.com/trezcool/qitc/core/enroll"
	"github.com/trezcool/qitc/core/user"
)

type userApi struct {
	svc       *user.Service
	authSvc   *auth.Service
	enrollSvc *enroll.Service
	validate  *validator.Validate
}

func registerUserAPI(g *echo.Group, deps *ServerDeps) {
	api := userApi{
		svc:       deps.UserSvc,
		authSvc:   deps.AuthSvc,
		enrollSvc: deps.EnrollSvc,
		validate:  deps.Validate,
	}

	ug := g.Group("/users")

	// un-authed endpoints
	ug.POST("/register", api.register)
	ug.POST("/login", api.login)

	// authed endpoints
	ag := ug.Group("", authMiddleware(api.authSvc))
	ag.POST("/logout", api.logout)
	ag.GET("/profile", api.profile)
	ag.PUT("/profile", api.updateProfile)
	ag.GET("/journal", api.journal)

	// admin endpoints
	adm := ug.Group("", authMiddleware(api.authSvc, user.RoleAdmin))
	adm.GET("", api.query)
	adm.PUT("/:id/role", api.setRole)
}

// Handlers

func (api *userApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	usr, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == user.ErrEmailExists {
			return err
		}
		return errors.Wrap(err, "registering user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		return err
	}
	token, err := api.authSvc.Issue(usr)
	if err != nil {
		return errors.Wrap(err, "issuing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

// logout revokes the presented token. A failed revocation write is an error:
// the token must not remain usable after a reported logout.
func (api *userApi) logout(ctx echo.Context) error {
	token, err := getContextToken(ctx)
	if err != nil {
		return err
	}
	if err = api.authSvc.Revoke(ctx.Request().Context(), token); err != nil {
		return errors.Wrap(err, "logging out")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "logged out"})
}

func (api *userApi) profile(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr.Profile())
}

func (api *userApi) updateProfile(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return err
	}

	var data user.UpdateUser
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}
	if err = data.Validate(ctx.Request().Context(), usr, api.validate, api.svc); err != nil {
		return err
	}

	usr, err = api.svc.Update(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		if errors.Cause(err) == user.ErrNoChange {
			return ctx.JSON(http.StatusOK, SuccessResponse{Success: "no changes"})
		}
		return err
	}
	return ctx.JSON(http.StatusOK, usr.Profile())
}

func (api *userApi) journal(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	entries, err := api.enrollSvc.Journal(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *userApi) query(ctx echo.Context) error {
	page := new(Pagination)
	page.Bind(ctx)

	users, err := api.svc.QueryAll(ctx.Request().Context(), page.Offset, page.Limit)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	profiles := make([]user.Profile, 0, len(users))
	for _, usr := range users {
		profiles = append(profiles, usr.Profile())
	}
	return ctx.JSON(http.StatusOK, profiles)
}

func (api *userApi) setRole(ctx echo.Context) error {
	var data SetRoleRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetRoleRequest")
	}
	role, err := user.ParseRole(data.Role)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "role", Error: err.Error()})
	}

	usr, err := api.svc.SetRole(ctx.Request().Context(), ctx.Param("id"), role)
	if err != nil {
		if errors.Cause(err) == user.ErrNoChange {
			return ctx.JSON(http.StatusOK, SuccessResponse{Success: "no changes"})
		}
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	SetRoleRequest struct {
		Role string `json:"role" validate:"required"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}
