package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/yash-1818/planemate/core"
	"github.com/yash-1818/planemate/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(name, email, pwd string, isAdmin bool) error {
	var usr user.User
	var err error
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)

	if usr, err = cli.usrRepo.GetUser(ctx, user.GetFilter{Email: email}); err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		usr = user.User{Email: email}
	}
	usr.Name = core.CleanString(name)

	roleName := user.RoleTeacher
	if isAdmin {
		roleName = user.RoleAdmin
	}
	role, err := cli.usrRepo.GetRoleByName(ctx, roleName)
	if err != nil {
		return err
	}
	usr.Role = user.RoleRef{Linked: &role}

	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.usrRepo.UpdateOrCreateUser(ctx, usr); err != nil {
		return err
	}
	return nil
}
