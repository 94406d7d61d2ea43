package user

import (
	"context"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/qitc/core"
)

// Role is a closed set; illegal values are rejected at the deserialization
// boundary via ParseRole so downstream code never sees them.
type Role string

const (
	RoleUser    Role = "user"
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

var AllRoles = []Role{RoleUser, RoleStudent, RoleAdmin}

func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleUser, RoleStudent, RoleAdmin:
		return r, nil
	}
	return "", ErrUnknownRole
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) String() string { return string(r) }

type User struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Role         Role      `json:"role" db:"role"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
}

// SetPassword hashes pwd with bcrypt. The digest embeds the algorithm version
// and cost, so CheckPassword keeps verifying old digests after a cost change.
func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

func (u *User) IsStudent() bool { return u.Role == RoleStudent }

// Profile is the public projection of a User (no id, no hash).
type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (u User) Profile() Profile {
	return Profile{Name: u.Name, Email: u.Email, Role: u.Role}
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	if len(nu.Password) < svc.conf.MinPasswordLength {
		return core.NewValidationError(ErrPasswordTooShort,
			core.FieldError{Field: "password", Error: ErrPasswordTooShort.Error()})
	}
	return svc.checkUniqueness(ctx, nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"omitempty,email"`
}

func (uu *UpdateUser) Validate(ctx context.Context, origUsr User, validate *validator.Validate, svc *Service) error {
	if name := core.CleanString(uu.Name); name != "" {
		uu.Name = name
	} else {
		uu.Name = origUsr.Name
	}
	if email := core.CleanString(uu.Email, true /* lower */); email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}

	if err := validate.Struct(uu); err != nil {
		return err
	}
	return svc.checkUniqueness(ctx, uu.Email, origUsr)
}

// RegisterCustomValidators sets up user related translations.
func RegisterCustomValidators(validate *validator.Validate, translator ut.Translator) {
	core.RegisterCustomTranslation(validate, translator, "eqfield", "passwords do not match", true)
}
