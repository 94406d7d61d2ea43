package pgrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/qitc/core"
	"github.com/trezcool/qitc/core/user"
)

type userRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB, conf *core.Config) user.Repository {
	return &userRepository{db: db, timeout: conf.Database.Timeout}
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	ctx, cancel := deadline(ctx, repo.timeout)
	defer cancel()

	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`
	args := []interface{}{email}
	if len(excludedUsers) > 0 {
		excluded := make([]string, 0, len(excludedUsers))
		for _, usr := range excludedUsers {
			excluded = append(excluded, usr.ID)
		}
		query = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id::text <> ALL($2::text[]))`
		args = append(args, pq.Array(excluded))
	}

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, query, args...); err != nil {
		return dbErr(errors.Wrap(err, "checking email uniqueness"), nil)
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	ctx, cancel := deadline(ctx, repo.timeout)
	defer cancel()

	const query = `
		INSERT INTO users (id, name, email, password_hash, role, created_at)
		VALUES (:id, :name, :email, :password_hash, :role, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, usr); err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, dbErr(errors.Wrap(err, "creating user"), nil)
	}
	return usr, nil
}

func (repo *userRepository) QueryAllUsers(ctx context.Context, offset, limit int) ([]user.User, error) {
	ctx, cancel := deadline(ctx, repo.timeout)
	defer cancel()

	const query = `SELECT * FROM users ORDER BY created_at OFFSET $1 LIMIT $2`
	users := make([]user.User, 0)
	if err := repo.db.SelectContext(ctx, &users, query, offset, limit); err != nil {
		return nil, dbErr(errors.Wrap(err, "querying users"), nil)
	}
	return users, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	ctx, cancel := deadline(ctx, repo.timeout)
	defer cancel()

	var usr user.User
	if err := repo.db.GetContext(ctx, &usr, `SELECT * FROM users WHERE id = $1`, id); err != nil {
		return user.User{}, dbErr(err, user.ErrNotFound)
	}
	return usr, nil
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	ctx, cancel := deadline(ctx, repo.timeout)
	defer cancel()

	var usr user.User
	if err := repo.db.GetContext(ctx, &usr, `SELECT * FROM users WHERE email = $1`, email); err != nil {
		return user.User{}, dbErr(err, user.ErrNotFound)
	}
	return usr, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	ctx, cancel := deadline(ctx, repo.timeout)
	defer cancel()

	const query = `UPDATE users SET name = $1, email = $2, password_hash = $3 WHERE id = $4`
	res, err := repo.db.ExecContext(ctx, query, usr.Name, usr.Email, usr.PasswordHash, usr.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, dbErr(errors.Wrap(err, "updating user"), nil)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) UpdateUserRole(ctx context.Context, id string, role user.Role) (user.User, error) {
	ctx, cancel := deadline(ctx, repo.timeout)
	defer cancel()

	var usr user.User
	const query = `UPDATE users SET role = $1 WHERE id = $2 RETURNING *`
	if err := repo.db.GetContext(ctx, &usr, query, role, id); err != nil {
		return user.User{}, dbErr(err, user.ErrNotFound)
	}
	return usr, nil
}
