package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/qitc/core"
	"github.com/trezcool/qitc/core/application"
	"github.com/trezcool/qitc/core/auth"
	"github.com/trezcool/qitc/core/course"
	"github.com/trezcool/qitc/core/enroll"
	"github.com/trezcool/qitc/core/user"
)

var errMissingToken = echo.NewHTTPError(http.StatusUnauthorized, "missing or malformed jwt")

// statusFor maps domain sentinels to HTTP status codes; 0 means unmapped.
func statusFor(err error) int {
	switch err {
	case auth.ErrInvalidToken, auth.ErrTokenExpired:
		return http.StatusUnauthorized
	case auth.ErrTokenRevoked, auth.ErrRoleNotAllowed:
		return http.StatusForbidden
	case user.ErrNotFound, course.ErrNotFound, course.ErrTaskNotFound,
		application.ErrNotFound, enroll.ErrNotEnrolled:
		return http.StatusNotFound
	case user.ErrEmailExists, course.ErrNameExists, enroll.ErrAlreadyEnrolled:
		return http.StatusConflict
	case user.ErrInvalidCredentials, user.ErrUnknownRole, course.ErrUnknownStatus,
		enroll.ErrNotAStudent:
		return http.StatusBadRequest
	case core.ErrUnavailable:
		return http.StatusServiceUnavailable
	}
	return 0
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how
// to handle our errors. signalShutdown is called in order to gracefully
// shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		if status := statusFor(cause); status != 0 {
			code = status
			message = cause.Error()
		} else {
			switch origErr := cause.(type) {
			case *echo.HTTPError:
				if origErr.Internal != nil {
					if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
						origErr = herr
					}
				}
				code = origErr.Code
				message = origErr.Message
			case validator.ValidationErrors:
				fldErrs := make(map[string]string, len(origErr))
				for _, vErr := range origErr {
					fldErrs[vErr.Field()] = vErr.Translate(translator)
				}
				code = http.StatusBadRequest
				message = fldErrs
			case *core.ValidationError:
				if origErr.Fields != nil {
					fldErrs := make(map[string]string, len(origErr.Fields))
					for _, fErr := range origErr.Fields {
						fldErrs[fErr.Field] = fErr.Error
					}
					message = fldErrs
				} else {
					message = origErr.Error()
				}
				code = http.StatusBadRequest
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg
				logger.Error(msg, "method", ctx.Request().Method, "path", ctx.Path(), "err", err)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead {
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
