package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/dentalearn/lms/core"
	"github.com/dentalearn/lms/core/certificate"
	"github.com/dentalearn/lms/core/course"
	"github.com/dentalearn/lms/core/progress"
	"github.com/dentalearn/lms/core/user"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired       = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// domainErrors maps domain sentinel errors to their HTTP status.
var domainErrors = []struct {
	err  error
	code int
}{
	{user.ErrNotFound, http.StatusNotFound},
	{course.ErrNotFound, http.StatusNotFound},
	{course.ErrModuleNotFound, http.StatusNotFound},
	{course.ErrNotPublished, http.StatusNotFound},
	{course.ErrNotEnrolled, http.StatusForbidden},
	{course.ErrEmptyCourse, http.StatusConflict},
	{course.ErrAlreadyPublished, http.StatusConflict},
	{progress.ErrInvalidArgument, http.StatusBadRequest},
	{progress.ErrUnknownContent, http.StatusNotFound},
	{progress.ErrContentLocked, http.StatusForbidden},
	{certificate.ErrNotFound, http.StatusNotFound},
	{certificate.ErrCourseIncomplete, http.StatusConflict},
	{certificate.ErrExists, http.StatusConflict},
}

func domainError(err error) (error, int, bool) {
	for _, de := range domainErrors {
		if errors.Is(err, de.err) {
			return de.err, de.code, true
		}
	}
	return nil, 0, false
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(
	logger core.Logger,
	translator ut.Translator,
	signalShutdown func(),
) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default:
			if sentinel, c, ok := domainError(err); ok {
				code = c
				message = sentinel.Error()
				break
			}
			if errors.Is(err, progress.ErrPersistence) {
				code = http.StatusServiceUnavailable
				message = progress.ErrPersistence.Error()
				logger.Error(message.(string), err, claimsUser(ctx))
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg
			logger.Error(msg, errors.Wrap(err, msg), claimsUser(ctx))

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		} else if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

// claimsUser identifies the authenticated user in error reports.
func claimsUser(ctx echo.Context) user.User {
	var usr user.User
	if claims, err := getContextClaims(ctx); err == nil {
		usr.ID = claims.Subject
		usr.Username = claims.Username
		usr.Email = claims.Email
	}
	return usr
}
