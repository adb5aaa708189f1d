package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/user"
)

var errInvalidRole = errors.New("invalid role")

// addUser updates or creates an active user.User with `role`.
func (cli *commandLine) addUser(name, uname, email, pwd string, role user.Role) error {
	if !role.IsValid() {
		return errors.Wrap(errInvalidRole, string(role))
	}
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)
	if name = core.CleanString(name); name == "" {
		name = uname
	}

	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: uname})
	if err != nil && errors.Cause(err) != user.ErrNotFound {
		return err
	}
	exists := err == nil

	now := time.Now().UTC()
	if !exists {
		usr = user.User{Username: uname, CreatedAt: now}
	}
	usr.Name = name
	usr.Email = email
	usr.Role = role
	usr.IsActive = true
	usr.UpdatedAt = now
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}

	if exists {
		_, err = cli.usrRepo.UpdateUser(ctx, usr)
	} else {
		_, err = cli.usrRepo.CreateUser(ctx, usr)
	}
	return err
}
