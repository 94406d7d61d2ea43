package user

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/qitc/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrUnknownRole        = errors.New("unknown role")
	ErrNoChange           = errors.New("no changes provided")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		QueryAllUsers(ctx context.Context, offset, limit int) ([]User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		UpdateUserRole(ctx context.Context, id string, role Role) (User, error)
	}

	Service struct {
		repo Repository
		conf *core.Config
		log  core.Logger
	}
)

func NewService(repo Repository, conf *core.Config, log core.Logger) *Service {
	return &Service{repo: repo, conf: conf, log: log}
}

func (svc *Service) checkUniqueness(ctx context.Context, email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, exclUsers...); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Register creates a new User with the default `user` role.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	usr := User{
		ID:        uuid.NewString(),
		Name:      nu.Name,
		Email:     nu.Email,
		Role:      RoleUser,
		CreatedAt: time.Now().UTC(),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

// Authenticate verifies the email/password pair. Password hashing is the only
// CPU-heavy call on the request path; bcrypt keeps it intentionally slow.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "finding user by email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return usr, nil
}

// GetOrCreateByEmail backs OAuth logins: the delegated identity provider has
// already authenticated the subject, so a missing account is created with an
// unguessable throwaway password.
func (svc *Service) GetOrCreateByEmail(ctx context.Context, name, email string) (User, error) {
	email = core.CleanString(email, true /* lower */)
	usr, err := svc.repo.GetUserByEmail(ctx, email)
	if err == nil {
		return usr, nil
	}
	if errors.Cause(err) != ErrNotFound {
		return User{}, errors.Wrap(err, "finding user by email")
	}
	return svc.Register(ctx, NewUser{Name: name, Email: email, Password: uuid.NewString()})
}

func (svc *Service) QueryAll(ctx context.Context, offset, limit int) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx, offset, limit)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

// Update modifies a User's profile fields.
// It returns ErrNoChange when the provided values match the current ones.
func (svc *Service) Update(ctx context.Context, id string, uu UpdateUser) (User, error) {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if usr.Name == uu.Name && usr.Email == uu.Email {
		return usr, ErrNoChange
	}
	usr.Name = uu.Name
	usr.Email = uu.Email
	return svc.repo.UpdateUser(ctx, usr)
}

// SetRole changes a User's authorization tier (admin operation).
// It returns ErrNoChange when the role is already the requested one.
func (svc *Service) SetRole(ctx context.Context, id string, role Role) (User, error) {
	if !role.Valid() {
		return User{}, ErrUnknownRole
	}
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if usr.Role == role {
		return usr, ErrNoChange
	}
	return svc.repo.UpdateUserRole(ctx, id, role)
}
