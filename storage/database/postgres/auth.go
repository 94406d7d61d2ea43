package pgrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/qitc/core"
	"github.com/trezcool/qitc/core/auth"
)

type revocationRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

var _ auth.Repository = (*revocationRepository)(nil) // interface compliance check

func NewRevocationRepository(db *sqlx.DB, conf *core.Config) auth.Repository {
	return &revocationRepository{db: db, timeout: conf.Database.Timeout}
}

func (repo *revocationRepository) RevokeToken(ctx context.Context, token string) error {
	ctx, cancel := deadline(ctx, repo.timeout)
	defer cancel()

	if _, err := repo.db.ExecContext(ctx, `INSERT INTO revoked_tokens (token) VALUES ($1)`, token); err != nil {
		return dbErr(errors.Wrap(err, "inserting revoked token"), nil)
	}
	return nil
}

func (repo *revocationRepository) IsTokenRevoked(ctx context.Context, token string) (bool, error) {
	ctx, cancel := deadline(ctx, repo.timeout)
	defer cancel()

	var revoked bool
	const query = `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE token = $1)`
	if err := repo.db.GetContext(ctx, &revoked, query, token); err != nil {
		return false, dbErr(errors.Wrap(err, "checking revoked token"), nil)
	}
	return revoked, nil
}
