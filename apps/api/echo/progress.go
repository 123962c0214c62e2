package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dentalearn/lms/core"
	"github.com/dentalearn/lms/core/course"
	"github.com/dentalearn/lms/core/progress"
)

type progressApi struct {
	svc      progress.ServiceInterface
	auth     *authenticator
	validate *validator.Validate
}

// registerProgressAPI registers the player endpoints on the authed `/courses` group.
func registerProgressAPI(
	g *echo.Group,
	auth *authenticator,
	courseSvc course.ServiceInterface,
	svc progress.ServiceInterface,
	validate *validator.Validate,
) {
	api := progressApi{
		svc:      svc,
		auth:     auth,
		validate: validate,
	}

	g.GET("/:id/progress", api.overview)
	g.POST("/:id/videos/:contentID/progress", api.recordVideoProgress)
	g.POST("/:id/quizzes/:contentID/submissions", api.submitQuiz)
	g.GET("/:id/contents/:contentID/unlocked", api.unlocked)
	g.GET("/:id/learners/:learnerID/progress", api.learnerOverview, courseAuthorMiddleware(auth, courseSvc))
}

// Handlers

func (api *progressApi) overview(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	ov, err := api.svc.Overview(ctx.Request().Context(), usr.ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting progress overview")
	}
	return ctx.JSON(http.StatusOK, ov)
}

func (api *progressApi) learnerOverview(ctx echo.Context) error {
	c, err := contextCourse(ctx)
	if err != nil {
		return err
	}
	ov, err := api.svc.Overview(ctx.Request().Context(), ctx.Param("learnerID"), c.ID)
	if err != nil {
		if errors.Cause(err) == course.ErrNotEnrolled {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting learner progress overview")
	}
	return ctx.JSON(http.StatusOK, ov)
}

func (api *progressApi) recordVideoProgress(ctx echo.Context) error {
	var data progress.VideoProgressUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to VideoProgressUpdate")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	vp, err := api.svc.RecordVideoProgress(
		ctx.Request().Context(), usr.ID, ctx.Param("id"), ctx.Param("contentID"), data,
	)
	if err != nil {
		return errors.Wrap(err, "recording video progress")
	}
	return ctx.JSON(http.StatusOK, vp)
}

func (api *progressApi) submitQuiz(ctx echo.Context) error {
	var data progress.QuizSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to QuizSubmission")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	res, err := api.svc.SubmitQuiz(ctx.Request().Context(), usr.ID, ctx.Param("id"), ctx.Param("contentID"), data)
	if err != nil {
		return errors.Wrap(err, "submitting quiz")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *progressApi) unlocked(ctx echo.Context) error {
	var data UnlockedRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UnlockedRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	ok, err := api.svc.IsUnlocked(
		ctx.Request().Context(), usr.ID, ctx.Param("id"), ctx.Param("contentID"), course.ContentType(data.Type),
	)
	if err != nil {
		return errors.Wrap(err, "checking content lock")
	}
	return ctx.JSON(http.StatusOK, UnlockedResponse{Unlocked: ok})
}

type (
	UnlockedRequest struct {
		Type string `query:"type" json:"type" validate:"required,oneof=video quiz"`
	}

	UnlockedResponse struct {
		Unlocked bool `json:"unlocked"`
	}
)

func (ur *UnlockedRequest) Validate(validate *validator.Validate) error {
	ur.Type = core.CleanString(ur.Type, true /* lower */)
	return validate.Struct(ur)
}
