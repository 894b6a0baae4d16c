package user

import (
	"github.com/elevezen/elevezen/core"
)

type serviceMock struct {
	service
}

// NewServiceMock returns a Service whose email side effects run synchronously,
// provided the mail service itself is a synchronous mock.
func NewServiceMock(repo Repository, mailSvc core.EmailService) Service {
	return &serviceMock{
		service: service{
			repo:    repo,
			mailSvc: mailSvc,
		},
	}
}
