package pgrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/qitc/core"
	"github.com/trezcool/qitc/core/application"
)

type applicationRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

var _ application.Repository = (*applicationRepository)(nil) // interface compliance check

func NewApplicationRepository(db *sqlx.DB, conf *core.Config) application.Repository {
	return &applicationRepository{db: db, timeout: conf.Database.Timeout}
}

func (repo *applicationRepository) CreateApplication(ctx context.Context, app application.Application) (application.Application, error) {
	ctx, cancel := deadline(ctx, repo.timeout)
	defer cancel()

	const query = `
		INSERT INTO applications (user_name, phone_number, email, course_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := repo.db.QueryRowxContext(
		ctx, query, app.UserName, app.PhoneNumber, app.Email, app.CourseID, app.Status, app.CreatedAt,
	).Scan(&app.ID)
	if err != nil {
		return application.Application{}, dbErr(errors.Wrap(err, "creating application"), nil)
	}
	return app, nil
}

func (repo *applicationRepository) GetApplicationByID(ctx context.Context, id int) (application.Application, error) {
	ctx, cancel := deadline(ctx, repo.timeout)
	defer cancel()

	var app application.Application
	if err := repo.db.GetContext(ctx, &app, `SELECT * FROM applications WHERE id = $1`, id); err != nil {
		return application.Application{}, dbErr(err, application.ErrNotFound)
	}
	return app, nil
}

func (repo *applicationRepository) QueryAllApplications(ctx context.Context, offset, limit int) ([]application.Application, error) {
	ctx, cancel := deadline(ctx, repo.timeout)
	defer cancel()

	const query = `SELECT * FROM applications ORDER BY created_at DESC OFFSET $1 LIMIT $2`
	apps := make([]application.Application, 0)
	if err := repo.db.SelectContext(ctx, &apps, query, offset, limit); err != nil {
		return nil, dbErr(errors.Wrap(err, "querying applications"), nil)
	}
	return apps, nil
}

func (repo *applicationRepository) SetApplicationStatus(ctx context.Context, id int, status application.Status) (application.Application, error) {
	ctx, cancel := deadline(ctx, repo.timeout)
	defer cancel()

	var app application.Application
	const query = `UPDATE applications SET status = $1 WHERE id = $2 RETURNING *`
	if err := repo.db.GetContext(ctx, &app, query, status, id); err != nil {
		return application.Application{}, dbErr(err, application.ErrNotFound)
	}
	return app, nil
}
