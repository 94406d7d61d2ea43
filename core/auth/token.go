package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/trezcool/qitc/core"
	"github.com/trezcool/qitc/core/user"
)

var nowFunc = time.Now // mockable

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.RegisteredClaims
	Role user.Role `json:"role"`
}

func newClaims(usr user.User, conf *core.Config, now time.Time) *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    conf.AppName,
			Subject:   usr.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(conf.JWT.LifetimeMinutes) * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Role: usr.Role,
	}
}

// Issue generates a signed token string for usr: a pure function of the
// current time, the configured secret key and the user's id/role.
func (svc *Service) Issue(usr user.User) (string, error) {
	claims := newClaims(usr, svc.conf, nowFunc())
	token := jwt.NewWithClaims(svc.method, claims)
	ss, err := token.SignedString(svc.secretKey)
	if err != nil {
		return "", errSigningToken
	}
	return ss, nil
}

// Decode verifies the signature and expiry of a token string.
// Signature comparison is constant-time (HMAC verification in golang-jwt).
func (svc *Service) Decode(tokenStr string) (*Claims, error) {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (interface{}, error) { return svc.secretKey, nil },
		jwt.WithValidMethods([]string{svc.method.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return nowFunc() }),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
