package application

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/qitc/core"
)

var (
	// errors
	ErrNotFound = errors.New("application not found")
	ErrNoChange = errors.New("no changes provided")
)

type (
	Repository interface {
		CreateApplication(ctx context.Context, app Application) (Application, error)
		GetApplicationByID(ctx context.Context, id int) (Application, error)
		QueryAllApplications(ctx context.Context, offset, limit int) ([]Application, error)
		SetApplicationStatus(ctx context.Context, id int, status Status) (Application, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
		log     core.Logger
	}
)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config, log core.Logger) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, conf: conf, log: log}
}

// Submit records a new inquiry and notifies the admin mailbox out-of-band.
func (svc *Service) Submit(ctx context.Context, na NewApplication) (Application, error) {
	app := Application{
		UserName:    na.UserName,
		PhoneNumber: na.PhoneNumber,
		Email:       na.Email,
		CourseID:    na.CourseID,
		Status:      StatusNew,
		CreatedAt:   time.Now().UTC(),
	}
	app, err := svc.repo.CreateApplication(ctx, app)
	if err != nil {
		return Application{}, err
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{svc.conf.AdminEmail},
		Subject: "New course application",
		TextContent: fmt.Sprintf(
			"%s applied for course %d.\nPhone: %s\nEmail: %s",
			app.UserName, app.CourseID, app.PhoneNumber, app.Email,
		),
	})
	return app, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (Application, error) {
	return svc.repo.GetApplicationByID(ctx, id)
}

func (svc *Service) QueryAll(ctx context.Context, offset, limit int) ([]Application, error) {
	return svc.repo.QueryAllApplications(ctx, offset, limit)
}

// MarkRead flips an application to `readed`; ErrNoChange when it already is.
func (svc *Service) MarkRead(ctx context.Context, id int) (Application, error) {
	app, err := svc.repo.GetApplicationByID(ctx, id)
	if err != nil {
		return Application{}, err
	}
	if app.Status == StatusReaded {
		return app, ErrNoChange
	}
	return svc.repo.SetApplicationStatus(ctx, id, StatusReaded)
}
