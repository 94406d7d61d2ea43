package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/trezcool/qitc/core"
	"github.com/trezcool/qitc/core/user"
)

var (
	// errors
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenRevoked   = errors.New("token revoked")
	ErrRoleNotAllowed = errors.New("insufficient role")

	errSigningToken = errors.New("signing token")
)

type (
	// Repository is the durable revocation log. Tokens are tracked by raw
	// string value: re-issuing a token with identical claims at a later
	// instant produces a different string and is not revoked alongside it.
	Repository interface {
		RevokeToken(ctx context.Context, token string) error
		IsTokenRevoked(ctx context.Context, token string) (bool, error)
	}

	Service struct {
		conf      *core.Config
		secretKey []byte
		method    jwt.SigningMethod
		repo      Repository
		log       core.Logger
	}
)

func NewService(repo Repository, conf *core.Config, log core.Logger) *Service {
	return &Service{
		conf:      conf,
		secretKey: []byte(conf.SecretKey),
		method:    jwt.GetSigningMethod(conf.JWT.Algorithm),
		repo:      repo,
		log:       log,
	}
}

// Revoke durably records the raw token string in the revocation log.
// A failed write surfaces as an error: a logout must never look successful
// while the token is still accepted.
func (svc *Service) Revoke(ctx context.Context, token string) error {
	if err := svc.repo.RevokeToken(ctx, token); err != nil {
		return errors.Wrap(err, "revoking token")
	}
	return nil
}

func (svc *Service) IsRevoked(ctx context.Context, token string) (bool, error) {
	return svc.repo.IsTokenRevoked(ctx, token)
}

// Authorize is the per-request access check. The revocation lookup strictly
// precedes signature/expiry validation: an already-revoked, already-expired
// token is reported as revoked, not as expired. No state may be mutated by
// the caller before this returns.
func (svc *Service) Authorize(ctx context.Context, token string, roles ...user.Role) (*Claims, error) {
	revoked, err := svc.IsRevoked(ctx, token)
	if err != nil {
		return nil, errors.Wrap(err, "checking revocation log")
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	claims, err := svc.Decode(token)
	if err != nil {
		return nil, err
	}

	if len(roles) == 0 { // any authenticated role
		return claims, nil
	}
	for _, role := range roles {
		if claims.Role == role {
			return claims, nil
		}
	}
	return nil, ErrRoleNotAllowed
}
