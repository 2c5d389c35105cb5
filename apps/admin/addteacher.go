package main

import (
	"context"
	"time"

	"github.com/newrise0410/piano-academy-app-sub002/core"
	"github.com/newrise0410/piano-academy-app-sub002/core/user"
)

func (cli *commandLine) addTeacher(email, name, academy, pwd string) error {
	ctx := context.Background()

	email = core.CleanString(email, true /* lower */)
	if err := cli.usrRepo.CheckEmailUniqueness(ctx, email); err != nil {
		return err
	}

	now := time.Now().UTC()
	usr := user.User{
		Name:        core.CleanString(name),
		Email:       email,
		Role:        user.RoleTeacher,
		IsActive:    true,
		AcademyName: core.CleanString(academy),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	_, err := cli.usrRepo.CreateUser(ctx, usr)
	return err
}
