package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/elevezen/elevezen/core"
	"github.com/elevezen/elevezen/core/adminreq"
	"github.com/elevezen/elevezen/core/user"
)

type adminRequestApi struct {
	svc    adminreq.Service
	usrSvc user.Service
}

func registerAdminRequestAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc adminreq.Service, usrSvc user.Service) {
	api := adminRequestApi{svc: svc, usrSvc: usrSvc}

	rg := g.Group("/admin-requests", jwt)
	rg.POST("", api.submit)
	rg.GET("/mine", api.mine)
	rg.POST("/validate-code", api.validateCode)

	// review endpoints
	sg := rg.Group("", superAdminMiddleware())
	sg.GET("", api.query)
	sg.POST("/:id/approve", api.approve)
	sg.POST("/:id/reject", api.reject)
}

// Handlers

func (api *adminRequestApi) submit(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	req, err := api.svc.Submit(usr)
	if err != nil {
		return api.trapWorkflowErr(ctx, err, "submitting request")
	}
	return ctx.JSON(http.StatusCreated, WorkflowResponse{
		Success: true,
		Message: "Your admin request has been submitted.",
		Request: newRequestView(req),
	})
}

func (api *adminRequestApi) mine(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	req, err := api.svc.GetForUser(claims.Subject)
	if err != nil {
		if errors.Cause(err) == adminreq.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting request")
	}
	return ctx.JSON(http.StatusOK, newRequestView(req))
}

func (api *adminRequestApi) validateCode(ctx echo.Context) error {
	var data adminreq.ValidateCodeInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ValidateCodeInput")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err := api.svc.ValidateCode(usr, data.Code); err != nil {
		return api.trapWorkflowErr(ctx, err, "validating code")
	}
	return ctx.JSON(http.StatusOK, WorkflowResponse{
		Success: true,
		Message: "Your account has been upgraded to admin.",
	})
}

func (api *adminRequestApi) query(ctx echo.Context) error {
	reqs, err := api.svc.QueryPending()
	if err != nil {
		return errors.Wrap(err, "querying pending requests")
	}
	views := make([]RequestView, 0, len(reqs))
	for _, req := range reqs {
		views = append(views, *newRequestView(req))
	}
	return ctx.JSON(http.StatusOK, views)
}

func (api *adminRequestApi) approve(ctx echo.Context) error {
	req, err := api.svc.Approve(ctx.Param("id"))
	if err != nil {
		return api.trapWorkflowErr(ctx, err, "approving request")
	}
	return ctx.JSON(http.StatusOK, WorkflowResponse{
		Success: true,
		Message: "Request approved; the validation code has been emailed to the requester.",
		Request: newRequestView(req),
	})
}

func (api *adminRequestApi) reject(ctx echo.Context) error {
	req, err := api.svc.Reject(ctx.Param("id"))
	if err != nil {
		return api.trapWorkflowErr(ctx, err, "rejecting request")
	}
	return ctx.JSON(http.StatusOK, WorkflowResponse{
		Success: true,
		Message: "Request rejected.",
		Request: newRequestView(req),
	})
}

// trapWorkflowErr renders domain rule violations in the workflow envelope;
// anything else goes through the app error handler.
func (api *adminRequestApi) trapWorkflowErr(ctx echo.Context, err error, msg string) error {
	switch origErr := errors.Cause(err).(type) {
	case *core.ValidationError:
		return ctx.JSON(http.StatusBadRequest, WorkflowResponse{Error: origErr.Error()})
	}
	if errors.Cause(err) == adminreq.ErrNotFound {
		return errHttpNotFound
	}
	return errors.Wrap(err, msg)
}

type (
	// WorkflowResponse is the uniform envelope returned by the admin-request
	// workflow endpoints.
	WorkflowResponse struct {
		Success bool         `json:"success"`
		Message string       `json:"message,omitempty"`
		Error   string       `json:"error,omitempty"`
		Request *RequestView `json:"request,omitempty"`
	}

	// RequestView is a Request as presented to clients: the stored status is
	// replaced by the display status and the code never leaves the server.
	RequestView struct {
		ID            string    `json:"id"`
		UserID        string    `json:"user_id"`
		Email         string    `json:"email"`
		Status        string    `json:"status"`
		CodeExpiresAt null.Time `json:"code_expires_at,omitempty"`
		CreatedAt     time.Time `json:"created_at"`
		UpdatedAt     time.Time `json:"updated_at"`
	}
)

func newRequestView(req adminreq.Request) *RequestView {
	return &RequestView{
		ID:            req.ID,
		UserID:        req.UserID,
		Email:         req.Email,
		Status:        req.DisplayStatus(),
		CodeExpiresAt: req.CodeExpiresAt,
		CreatedAt:     req.CreatedAt,
		UpdatedAt:     req.UpdatedAt,
	}
}
