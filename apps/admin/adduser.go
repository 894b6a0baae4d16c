package main

import (
	"time"

	"github.com/elevezen/elevezen/core"
	"github.com/elevezen/elevezen/core/user"
)

// addUser updates or creates a user.User. This is how super-admins are
// designated: there is no HTTP surface for it.
func (cli *commandLine) addUser(name, email, pwd, role string) error {
	valid := false
	for _, r := range user.AllRoles {
		if r == role {
			valid = true
			break
		}
	}
	if !valid {
		return user.ErrInvalidRole
	}

	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)
	now := time.Now().UTC()

	usr, err := cli.usrRepo.GetUserByEmail(email)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Name:      name,
			Email:     email,
			Role:      role,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := usr.SetPassword(pwd); err != nil {
			return err
		}
		_, err = cli.usrRepo.CreateUser(usr)
		return err
	}

	usr.Name = name
	usr.Role = role
	usr.UpdatedAt = now
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	isActive := true
	_, err = cli.usrRepo.UpdateUser(usr, &isActive)
	return err
}
