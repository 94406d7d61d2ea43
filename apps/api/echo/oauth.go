package echoapi

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/yandex"

	"github.com/trezcool/qitc/core"
	"github.com/trezcool/qitc/core/auth"
	"github.com/trezcool/qitc/core/user"
)

const oauthStateCookie = "oauthstate"

var errOAuthStateMismatch = echo.NewHTTPError(http.StatusBadRequest, "oauth state mismatch")

type oauthApi struct {
	conf    *oauth2.Config
	svc     *user.Service
	authSvc *auth.Service
	log     core.Logger
}

func registerOAuthAPI(g *echo.Group, deps *ServerDeps) {
	api := oauthApi{
		conf: &oauth2.Config{
			ClientID:     deps.Conf.OAuth.YandexClientID,
			ClientSecret: deps.Conf.OAuth.YandexClientSecret,
			Endpoint:     yandex.Endpoint,
		},
		svc:     deps.UserSvc,
		authSvc: deps.AuthSvc,
		log:     deps.Logger,
	}

	ag := g.Group("/auth")
	ag.GET("/yandex", api.redirect)
	ag.GET("/yandex/callback", api.callback)
}

// redirect sends the client to the provider's consent page. The random state
// round-trips through a short-lived cookie and is checked on callback.
func (api *oauthApi) redirect(ctx echo.Context) error {
	state := base64.RawURLEncoding.EncodeToString([]byte(uuid.NewString()))
	ctx.SetCookie(&http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HttpOnly: true,
	})
	return ctx.Redirect(http.StatusTemporaryRedirect, api.conf.AuthCodeURL(state))
}

func (api *oauthApi) callback(ctx echo.Context) error {
	cookie, err := ctx.Cookie(oauthStateCookie)
	if err != nil || ctx.QueryParam("state") != cookie.Value {
		return errOAuthStateMismatch
	}

	tok, err := api.conf.Exchange(ctx.Request().Context(), ctx.QueryParam("code"))
	if err != nil {
		return errors.Wrap(err, "exchanging oauth code")
	}

	info, err := api.fetchUserInfo(ctx, tok)
	if err != nil {
		return errors.Wrap(err, "fetching oauth user info")
	}

	name := info.RealName
	if name == "" {
		name = info.Login
	}
	usr, err := api.svc.GetOrCreateByEmail(ctx.Request().Context(), name, info.DefaultEmail)
	if err != nil {
		return errors.Wrap(err, "resolving oauth user")
	}

	token, err := api.authSvc.Issue(usr)
	if err != nil {
		return errors.Wrap(err, "issuing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

type yandexUserInfo struct {
	Login        string `json:"login"`
	RealName     string `json:"real_name"`
	DefaultEmail string `json:"default_email"`
}

func (api *oauthApi) fetchUserInfo(ctx echo.Context, tok *oauth2.Token) (yandexUserInfo, error) {
	var info yandexUserInfo

	client := api.conf.Client(ctx.Request().Context(), tok)
	res, err := client.Get("https://login.yandex.ru/info?format=json")
	if err != nil {
		return info, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		return info, errors.Errorf("userinfo status %d", res.StatusCode)
	}
	if err = json.NewDecoder(res.Body).Decode(&info); err != nil {
		return info, err
	}
	if info.DefaultEmail == "" {
		return info, errors.New("userinfo missing email")
	}
	return info, nil
}
