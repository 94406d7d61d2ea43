package echoapi

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/qitc/core"
	"github.com/trezcool/qitc/core/auth"
	"github.com/trezcool/qitc/core/course"
	"github.com/trezcool/qitc/core/enroll"
	"github.com/trezcool/qitc/core/user"
	logsvc "github.com/trezcool/qitc/services/logger"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: auth.ErrInvalidToken, want: http.StatusUnauthorized},
		{err: auth.ErrTokenExpired, want: http.StatusUnauthorized},
		{err: auth.ErrTokenRevoked, want: http.StatusForbidden},
		{err: auth.ErrRoleNotAllowed, want: http.StatusForbidden},
		{err: user.ErrNotFound, want: http.StatusNotFound},
		{err: course.ErrNameExists, want: http.StatusConflict},
		{err: enroll.ErrAlreadyEnrolled, want: http.StatusConflict},
		{err: enroll.ErrNotAStudent, want: http.StatusBadRequest},
		// an unavailable store is never reported as a missing row
		{err: core.ErrUnavailable, want: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

// unavailableRevocationRepo simulates a revocation store that is down.
type unavailableRevocationRepo struct{}

func (unavailableRevocationRepo) RevokeToken(ctx context.Context, token string) error {
	return core.ErrUnavailable
}

func (unavailableRevocationRepo) IsTokenRevoked(ctx context.Context, token string) (bool, error) {
	return false, core.ErrUnavailable
}

func TestAPI_storeUnavailable(t *testing.T) {
	app := newTestApp(t)
	usr := app.seedUser(t, "Jane", user.RoleUser, "Sup3rS3cret!")
	token := app.getToken(t, usr)

	// same services, but the revocation store is down
	degraded := NewServer(ServerDeps{
		Conf:       app.conf,
		Logger:     logsvc.NewNopLogger(),
		AuthSvc:    auth.NewService(unavailableRevocationRepo{}, app.conf, logsvc.NewNopLogger()),
		UserSvc:    app.usrSvc,
		CourseSvc:  app.crsSvc,
		EnrollSvc:  app.enrSvc,
		AppSvc:     app.appSvc,
		Validate:   app.validate,
		Translator: app.translator,
	})

	req, rec := newAuthRequest(http.MethodGet, "/v1/users/profile", token)
	degraded.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), marshalObj(t, httpErr{Error: core.ErrUnavailable.Error()}))
	assert.NoError(t, err)
	assert.True(t, ok)
}
