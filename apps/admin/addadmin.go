package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/qitc/core"
	"github.com/trezcool/qitc/core/user"
)

// addAdmin creates an admin account, or promotes an existing account that
// already uses the given email. The password is reset either way.
func (cli *commandLine) addAdmin(name, email, pwd string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		usr = user.User{
			ID:        uuid.NewString(),
			Name:      name,
			Email:     email,
			Role:      user.RoleAdmin,
			CreatedAt: time.Now().UTC(),
		}
		if err = usr.SetPassword(pwd); err != nil {
			return err
		}
		_, err = cli.usrRepo.CreateUser(ctx, usr)
		return err
	}

	if err = usr.SetPassword(pwd); err != nil {
		return err
	}
	usr.Name = name
	if _, err = cli.usrRepo.UpdateUser(ctx, usr); err != nil {
		return err
	}
	_, err = cli.usrRepo.UpdateUserRole(ctx, usr.ID, user.RoleAdmin)
	return err
}
