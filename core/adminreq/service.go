package adminreq

import (
	"net/mail"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/elevezen/elevezen/core"
	"github.com/elevezen/elevezen/core/user"
)

var (
	// errors
	ErrNotFound      = errors.New("admin request not found")
	ErrAlreadyAdmin  = errors.New("user is already an admin")
	ErrRequestExists = errors.New("an admin request is already in progress for this user")
	ErrNotPending    = errors.New("request is no longer pending")
	ErrNotApproved   = errors.New("no approved admin request found for this user")
	ErrCodeMismatch  = errors.New("incorrect validation code")
	ErrCodeExpired   = errors.New("the validation code has expired")
)

type (
	Repository interface {
		CreateRequest(req Request) (Request, error)
		GetRequestByID(id string) (Request, error)
		// GetRequestByUserID returns the user's latest request.
		GetRequestByUserID(userID string) (Request, error)
		QueryRequestsByStatus(status string) ([]Request, error)
		UpdateRequest(req Request) (Request, error)
	}

	Service interface {
		Submit(usr user.User) (Request, error)
		GetForUser(userID string) (Request, error)
		QueryPending() ([]Request, error)
		Approve(id string) (Request, error)
		Reject(id string) (Request, error)
		ValidateCode(usr user.User, code string) error
	}

	service struct {
		repo    Repository
		usrSvc  user.Service
		mailSvc core.EmailService
		log     core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrSvc user.Service, mailSvc core.EmailService, log core.Logger) Service {
	return &service{
		repo:    repo,
		usrSvc:  usrSvc,
		mailSvc: mailSvc,
		log:     log,
	}
}

// Submit creates a pending elevation request for the given user and notifies
// the super-admins. Notification is best-effort: a failure is logged but never
// rolls back the created request.
func (svc *service) Submit(usr user.User) (Request, error) {
	if usr.IsAdmin() {
		return Request{}, core.NewValidationError(ErrAlreadyAdmin)
	}

	if existing, err := svc.repo.GetRequestByUserID(usr.ID); err == nil && !existing.Terminal() {
		return Request{}, core.NewValidationError(ErrRequestExists)
	} else if err != nil && err != ErrNotFound {
		return Request{}, errors.Wrap(err, "checking existing request")
	}

	now := time.Now().UTC()
	req, err := svc.repo.CreateRequest(Request{
		UserID:    usr.ID,
		Email:     usr.Email,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return Request{}, errors.Wrap(err, "creating request")
	}

	svc.sendRequestNotification(usr, req)
	return req, nil
}

func (svc *service) GetForUser(userID string) (Request, error) {
	return svc.repo.GetRequestByUserID(userID)
}

func (svc *service) QueryPending() ([]Request, error) {
	return svc.repo.QueryRequestsByStatus(StatusPending)
}

// Approve transitions a pending request to approved: it generates a validation
// code, stamps its expiry and emails the code to the requester. The email is
// best-effort; the approval stands even if the send fails and the operator can
// resend manually.
func (svc *service) Approve(id string) (Request, error) {
	req, err := svc.repo.GetRequestByID(id)
	if err != nil {
		return Request{}, err
	}
	if req.Status != StatusPending {
		return Request{}, core.NewValidationError(ErrNotPending)
	}

	code, err := generateCode()
	if err != nil {
		return Request{}, errors.Wrap(err, "generating validation code")
	}

	now := time.Now().UTC()
	req.Status = StatusApproved
	req.ValidationCode = null.StringFrom(code)
	req.CodeExpiresAt = null.TimeFrom(now.Add(core.Conf.AdminRequestCodeExpiration))
	req.UpdatedAt = now

	req, err = svc.repo.UpdateRequest(req)
	if err != nil {
		return Request{}, errors.Wrap(err, "updating request")
	}

	svc.sendValidationCodeMail(req)
	return req, nil
}

// Reject transitions a pending request to rejected. No code is generated and
// no email is sent.
func (svc *service) Reject(id string) (Request, error) {
	req, err := svc.repo.GetRequestByID(id)
	if err != nil {
		return Request{}, err
	}
	if req.Status != StatusPending {
		return Request{}, core.NewValidationError(ErrNotPending)
	}

	req.Status = StatusRejected
	req.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateRequest(req)
}

// ValidateCode checks the submitted code against the user's approved request
// and, on success, grants the admin role then marks the request completed.
// Role-grant and request-completion are two separate writes: if the second
// fails after the first succeeded the inconsistency is logged but the
// operation still reports success, since the privilege was already granted.
func (svc *service) ValidateCode(usr user.User, code string) error {
	req, err := svc.repo.GetRequestByUserID(usr.ID)
	if err != nil {
		if err == ErrNotFound {
			return core.NewValidationError(ErrNotApproved)
		}
		return errors.Wrap(err, "finding request")
	}
	if req.Status != StatusApproved {
		return core.NewValidationError(ErrNotApproved)
	}

	code = strings.ToUpper(core.CleanString(code))
	if !req.ValidationCode.Valid || code != req.ValidationCode.String {
		return core.NewValidationError(ErrCodeMismatch)
	}
	if req.Expired() {
		return core.NewValidationError(ErrCodeExpired)
	}

	if _, err := svc.usrSvc.SetRole(usr.ID, user.RoleAdmin); err != nil {
		return errors.Wrap(err, "granting admin role")
	}

	req.Status = StatusCompleted
	req.UpdatedAt = time.Now().UTC()
	if _, err := svc.repo.UpdateRequest(req); err != nil {
		// the privilege is already granted; report success and leave the
		// request for manual reconciliation
		svc.log.Error("completing admin request after role grant", err, map[string]interface{}{"request_id": req.ID})
	}
	return nil
}

func (svc *service) sendRequestNotification(usr user.User, req Request) {
	admins, err := svc.usrSvc.QueryByRole(user.RoleSuperAdmin)
	if err != nil || len(admins) == 0 {
		svc.log.Warn("no super-admin to notify of new admin request", err, map[string]interface{}{"request_id": req.ID})
		return
	}

	to := make([]mail.Address, 0, len(admins))
	for _, a := range admins {
		to = append(to, mail.Address{Name: a.Name, Address: a.Email})
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           to,
		Subject:      "New admin request",
		TemplateName: "adminrequestnotify",
		TemplateData: struct {
			Name      string
			Email     string
			RequestID string
		}{usr.Name, usr.Email, req.ID},
	})
}

func (svc *service) sendValidationCodeMail(req Request) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Address: req.Email}},
		Subject:      "Your admin validation code",
		TemplateName: "adminrequestcode",
		TemplateData: struct {
			Code      string
			ExpiresAt string
		}{req.ValidationCode.String, req.CodeExpiresAt.Time.Local().Format("Monday, January 2, 2006 at 3:04 PM")},
	})
}
