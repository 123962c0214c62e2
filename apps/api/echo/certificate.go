package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dentalearn/lms/core/certificate"
)

type certificateApi struct {
	svc  certificate.ServiceInterface
	auth *authenticator
}

func registerCertificateAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	auth *authenticator,
	svc certificate.ServiceInterface,
) {
	api := certificateApi{svc: svc, auth: auth}

	g.POST("/courses/:id/certificate", api.issue, jwt)

	cg := g.Group("/certificates")
	cg.GET("", api.query, jwt)
	cg.GET("/:number", api.verify) // public
}

// Handlers

func (api *certificateApi) issue(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	cert, err := api.svc.Issue(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "issuing certificate")
	}
	return ctx.JSON(http.StatusOK, cert)
}

// query lists the certificates of the current user; admins may ask for another learner's.
func (api *certificateApi) query(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	learnerID := usr.ID
	if lid := ctx.QueryParam("learner_id"); lid != "" && usr.IsAdmin() {
		learnerID = lid
	}

	certs, err := api.svc.ListForLearner(ctx.Request().Context(), learnerID)
	if err != nil {
		return errors.Wrap(err, "querying certificates")
	}
	if certs == nil {
		certs = []certificate.Certificate{}
	}
	return ctx.JSON(http.StatusOK, certs)
}

func (api *certificateApi) verify(ctx echo.Context) error {
	cert, err := api.svc.Verify(ctx.Request().Context(), ctx.Param("number"))
	if err != nil {
		return errors.Wrap(err, "verifying certificate")
	}
	return ctx.JSON(http.StatusOK, cert)
}
