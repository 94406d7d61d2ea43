package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/qitc/core/application"
)

type applicationRepository struct {
	db *DB
}

var _ application.Repository = (*applicationRepository)(nil) // interface compliance check

func NewApplicationRepository(db *DB) application.Repository {
	return &applicationRepository{db: db}
}

func (repo *applicationRepository) CreateApplication(ctx context.Context, app application.Application) (application.Application, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.applicationSeq++
	app.ID = repo.db.applicationSeq
	repo.db.applications[app.ID] = &app
	return app, nil
}

func (repo *applicationRepository) GetApplicationByID(ctx context.Context, id int) (application.Application, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if app, ok := repo.db.applications[id]; ok {
		return *app, nil
	}
	return application.Application{}, application.ErrNotFound
}

func (repo *applicationRepository) QueryAllApplications(ctx context.Context, offset, limit int) ([]application.Application, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	apps := make([]application.Application, 0, len(repo.db.applications))
	for _, app := range repo.db.applications {
		apps = append(apps, *app)
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].CreatedAt.After(apps[j].CreatedAt) })
	return paginate(apps, offset, limit), nil
}

func (repo *applicationRepository) SetApplicationStatus(ctx context.Context, id int, status application.Status) (application.Application, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	app, ok := repo.db.applications[id]
	if !ok {
		return application.Application{}, application.ErrNotFound
	}
	app.Status = status
	return *app, nil
}
