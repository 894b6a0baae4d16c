package user

import (
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/elevezen/elevezen/core"
)

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")
	ErrInvalidRole = errors.New("invalid role")
)

type (
	Repository interface {
		CheckEmailUniqueness(email string, excludedUsers ...User) error
		CreateUser(user User) (User, error)
		GetUserByID(id string) (User, error)
		GetUserByEmail(email string) (User, error)
		QueryUsersByRole(role string) ([]User, error)
		UpdateUser(user User, isActive *bool) (User, error)
	}

	Service interface {
		Create(nu NewUser) (User, error)
		GetByID(id string) (User, error)
		GetByEmail(email string) (User, error)
		GetRole(id string) string
		QueryByRole(role string) ([]User, error)
		Update(id string, uu UpdateUser) (User, error)
		SetRole(id, role string) (User, error)
		SetAvatarURL(id, url string) (User, error)
		SetLastLogin(usr User) (User, error)
		CheckEmailUniqueness(email string, exclUsers ...User) error
		RequestPasswordReset(email string) error
		ResetPassword(data ResetUserPassword) error
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService) Service {
	return &service{repo: repo, mailSvc: mailSvc}
}

func (svc *service) CheckEmailUniqueness(email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(email, exclUsers...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Name:      nu.Name,
		Email:     nu.Email,
		Role:      RoleUser,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	usr, err := svc.repo.CreateUser(usr)
	if err != nil {
		return User{}, err
	}
	svc.sendWelcomeMail(usr)
	return usr, nil
}

func (svc *service) GetByID(id string) (User, error) {
	return svc.repo.GetUserByID(id)
}

func (svc *service) GetByEmail(email string) (User, error) {
	return svc.repo.GetUserByEmail(core.CleanString(email, true /* lower */))
}

// GetRole returns the user's current role; it falls back to RoleUser when no
// record is found or the lookup fails.
func (svc *service) GetRole(id string) string {
	usr, err := svc.repo.GetUserByID(id)
	if err != nil || usr.Role == "" {
		return RoleUser
	}
	return usr.Role
}

func (svc *service) QueryByRole(role string) ([]User, error) {
	return svc.repo.QueryUsersByRole(role)
}

func (svc *service) Update(id string, uu UpdateUser) (User, error) {
	usr := User{
		ID:        id,
		Name:      uu.Name,
		Formation: uu.Formation,
		UpdatedAt: time.Now().UTC(),
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, err
		}
	}
	return svc.repo.UpdateUser(usr, nil)
}

func (svc *service) SetRole(id, role string) (User, error) {
	valid := false
	for _, r := range AllRoles {
		if r == role {
			valid = true
			break
		}
	}
	if !valid {
		return User{}, ErrInvalidRole
	}
	return svc.repo.UpdateUser(User{ID: id, Role: role, UpdatedAt: time.Now().UTC()}, nil)
}

func (svc *service) SetAvatarURL(id, url string) (User, error) {
	return svc.repo.UpdateUser(User{ID: id, AvatarURL: url, UpdatedAt: time.Now().UTC()}, nil)
}

func (svc *service) SetLastLogin(usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateUser(User{ID: usr.ID, LastLogin: usr.LastLogin}, nil)
}

func (svc *service) RequestPasswordReset(email string) error {
	usr, err := svc.GetByEmail(email)
	if err != nil {
		return err
	}
	svc.sendPasswordResetMail(usr)
	return nil
}

func (svc *service) ResetPassword(data ResetUserPassword) error {
	id, err := decodeUID(data.UID)
	if err != nil {
		return core.NewValidationError(errInvalidToken)
	}
	usr, err := svc.repo.GetUserByID(id)
	if err != nil {
		if err == ErrNotFound {
			return core.NewValidationError(errInvalidToken)
		}
		return errors.Wrap(err, "finding user by ID")
	}
	if err := verifyToken(usr, data.Token); err != nil {
		return core.NewValidationError(err)
	}
	if err := usr.SetPassword(data.Password); err != nil {
		return err
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateUser(usr, nil)
	return errors.Wrap(err, "updating user")
}

func (svc *service) sendWelcomeMail(usr User) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Welcome to " + core.Conf.AppName,
		TemplateName: "welcome",
		TemplateData: struct{ Name string }{usr.Name},
	})
}

func (svc *service) sendPasswordResetMail(usr User) {
	token, err := MakeToken(usr)
	if err != nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Password Reset",
		TemplateName: "passwordreset",
		TemplateData: struct {
			Name  string
			UID   string
			Token string
		}{usr.Name, EncodeUID(usr), token},
	})
}
