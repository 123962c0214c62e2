package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dentalearn/lms/core/course"
)

type courseApi struct {
	svc      course.ServiceInterface
	auth     *authenticator
	validate *validator.Validate
}

// registerCourseAPI registers the catalog endpoints on the authed `/courses` group.
func registerCourseAPI(
	g *echo.Group,
	auth *authenticator,
	svc course.ServiceInterface,
	validate *validator.Validate,
) {
	api := courseApi{
		svc:      svc,
		auth:     auth,
		validate: validate,
	}

	g.GET("", api.query)
	g.POST("", api.create, instructorMiddleware())
	g.GET("/enrollments", api.queryEnrollments)

	g.GET("/:id", api.retrieve)
	g.POST("/:id/enroll", api.enroll)

	// authoring endpoints
	author := courseAuthorMiddleware(auth, svc)
	g.DELETE("/:id", api.destroy, author)
	g.POST("/:id/modules", api.addModule, author)
	g.POST("/:id/modules/:moduleID/contents", api.addContent, author)
	g.POST("/:id/publish", api.publish, author)
}

// Handlers

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	c, err := api.svc.Create(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, c)
}

// query lists published courses; admins see every course and instructors also see their own drafts.
func (api *courseApi) query(ctx echo.Context) error {
	filter := new(course.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []course.Course{})
	}
	filter.Clean()

	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !usr.IsAdmin() && !(usr.IsInstructor() && filter.InstructorID == usr.ID) {
		published := true
		filter.IsPublished = &published
	}

	courses, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	c, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding course by ID")
	}
	// drafts are only visible to their authors
	if !c.IsPublished && c.InstructorID != usr.ID && !usr.IsAdmin() {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	c, err := contextCourse(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), c.ID); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) addModule(ctx echo.Context) error {
	c, err := contextCourse(ctx)
	if err != nil {
		return err
	}

	var data course.NewModule
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewModule")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	m, err := api.svc.AddModule(ctx.Request().Context(), c.ID, data)
	if err != nil {
		return errors.Wrap(err, "adding module")
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *courseApi) addContent(ctx echo.Context) error {
	c, err := contextCourse(ctx)
	if err != nil {
		return err
	}

	var data course.NewContent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewContent")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	item, err := api.svc.AddContent(ctx.Request().Context(), c.ID, ctx.Param("moduleID"), data)
	if err != nil {
		return errors.Wrap(err, "adding content")
	}
	return ctx.JSON(http.StatusCreated, item)
}

func (api *courseApi) publish(ctx echo.Context) error {
	c, err := contextCourse(ctx)
	if err != nil {
		return err
	}
	c, err = api.svc.Publish(ctx.Request().Context(), c.ID)
	if err != nil {
		return errors.Wrap(err, "publishing course")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseApi) enroll(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	e, err := api.svc.Enroll(ctx.Request().Context(), ctx.Param("id"), usr.ID)
	if err != nil {
		return errors.Wrap(err, "enrolling")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *courseApi) queryEnrollments(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	enrollments, err := api.svc.LearnerEnrollments(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	if enrollments == nil {
		enrollments = []course.Enrollment{}
	}
	return ctx.JSON(http.StatusOK, enrollments)
}
