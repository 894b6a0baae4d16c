package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/elevezen/elevezen/core"
	"github.com/elevezen/elevezen/core/student"
	"github.com/elevezen/elevezen/core/user"
)

type studentApi struct {
	svc     student.Service
	usrSvc  user.Service
	storage core.FileStorage
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc student.Service, usrSvc user.Service, storage core.FileStorage) {
	api := studentApi{svc: svc, usrSvc: usrSvc, storage: storage}

	sg := g.Group("/students", jwt)
	sg.GET("", api.query)
	sg.GET("/:id", api.retrieve)
	sg.GET("/:id/comments", api.comments)

	// writes are admin-only
	ag := sg.Group("", adminMiddleware())
	ag.POST("", api.create)
	ag.PUT("/:id", api.update)
	ag.DELETE("/:id", api.destroy)
	ag.POST("/:id/grades", api.addGrade)
	ag.DELETE("/:id/grades/:gid", api.deleteGrade)
	ag.POST("/:id/comments", api.addComment)
	ag.PUT("/:id/avatar", api.uploadAvatar)
}

// Handlers

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	st, err := api.svc.Create(ctxUsr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, st)
}

func (api *studentApi) query(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	students, err := api.svc.QueryAll(ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	detail, err := api.svc.GetDetail(ctx.Param("id"))
	if err != nil {
		return api.trapNotFoundErr(err, "getting student detail")
	}
	return ctx.JSON(http.StatusOK, detail)
}

func (api *studentApi) update(ctx echo.Context) error {
	st, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return api.trapNotFoundErr(err, "finding student by ID")
	}

	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(st); err != nil {
		return err
	}

	st, err = api.svc.Update(st.ID, data)
	if err != nil {
		return api.trapNotFoundErr(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	if _, err := api.svc.GetByID(ctx.Param("id")); err != nil {
		return api.trapNotFoundErr(err, "finding student by ID")
	}
	if err := api.svc.Delete(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) addGrade(ctx echo.Context) error {
	var data student.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	g, err := api.svc.AddGrade(ctx.Param("id"), data)
	if err != nil {
		return api.trapNotFoundErr(err, "adding grade")
	}
	return ctx.JSON(http.StatusCreated, g)
}

func (api *studentApi) deleteGrade(ctx echo.Context) error {
	if err := api.svc.DeleteGrade(ctx.Param("id"), ctx.Param("gid")); err != nil {
		return api.trapNotFoundErr(err, "deleting grade")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) comments(ctx echo.Context) error {
	if _, err := api.svc.GetByID(ctx.Param("id")); err != nil {
		return api.trapNotFoundErr(err, "finding student by ID")
	}

	comments, err := api.svc.Comments(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying comments")
	}
	if comments == nil {
		comments = []student.Comment{}
	}
	return ctx.JSON(http.StatusOK, comments)
}

func (api *studentApi) addComment(ctx echo.Context) error {
	var data student.NewComment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewComment")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	c, err := api.svc.AddComment(ctx.Param("id"), data)
	if err != nil {
		return api.trapNotFoundErr(err, "adding comment")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *studentApi) uploadAvatar(ctx echo.Context) error {
	st, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return api.trapNotFoundErr(err, "finding student by ID")
	}

	url, err := saveUploadedAvatar(ctx, api.storage, "students", st.ID)
	if err != nil {
		return err
	}
	st, err = api.svc.SetAvatarURL(st.ID, url)
	if err != nil {
		return errors.Wrap(err, "setting avatar URL")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *studentApi) trapNotFoundErr(err error, msg string) error {
	switch errors.Cause(err) {
	case student.ErrNotFound, student.ErrGradeNotFound:
		return errHttpNotFound
	}
	return errors.Wrap(err, msg)
}
