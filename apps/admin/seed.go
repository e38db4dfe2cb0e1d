package main

import (
	"context"
	"time"

	"github.com/yash-1818/planemate/core/user"
)

type seedUser struct {
	name     string
	email    string
	role     string
	password string
}

// default accounts, inserted only when the user table is empty
var seedUsers = []seedUser{
	{name: "guru", email: "admin@gmail.com", role: user.RoleAdmin, password: "password123"},
	{name: "user", email: "siswa@gmail.com", role: user.RoleStudent, password: "1234567890"},
}

func (cli *commandLine) seed() error {
	ctx := context.Background()

	cnt, err := cli.usrRepo.CountUsers(ctx)
	if err != nil {
		return err
	}
	if cnt > 0 {
		logger.Println("seed: table already contains data, skipping insert")
		return nil
	}

	for _, su := range seedUsers {
		role, err := cli.usrRepo.GetRoleByName(ctx, su.role)
		if err != nil {
			logger.Printf("seed: failed to resolve role %q: %v", su.role, err)
			continue
		}
		now := time.Now().UTC()
		usr := user.User{
			Name:      su.name,
			Email:     su.email,
			Role:      user.RoleRef{Linked: &role},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := usr.SetPassword(su.password); err != nil {
			logger.Printf("seed: failed to hash password for %q: %v", su.email, err)
			continue
		}
		if _, err := cli.usrRepo.CreateUser(ctx, usr); err != nil {
			logger.Printf("seed: failed to insert %q: %v", su.email, err)
			continue
		}
	}
	logger.Println("seed: data inserted successfully")
	return nil
}
