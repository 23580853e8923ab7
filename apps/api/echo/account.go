package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/roshna21/DevOps-project/core"
	"github.com/roshna21/DevOps-project/core/account"
)

type accountApi struct {
	conf *core.Config
	svc  *account.Service
}

func registerAccountAPI(g *echo.Group, jwt echo.MiddlewareFunc, conf *core.Config, svc *account.Service) {
	api := accountApi{
		conf: conf,
		svc:  svc,
	}

	// un-authed endpoints
	ag := g.Group("/auth")
	ag.POST("/otp/verify", api.verifyOTP)
	ag.POST("/admin/login", api.loginAdmin)
	ag.POST("/token-refresh", api.refreshToken, jwt)

	pg := g.Group("/professors")
	pg.POST("/register", api.registerProfessor)
	pg.GET("/me/students", api.listMentees, jwt, roleMiddleware(account.RoleProfessor))

	g.POST("/parents", api.mapParent, jwt, adminMiddleware())
}

// Handlers

func (api *accountApi) respondWithToken(ctx echo.Context, ident account.Identity) error {
	token, err := GenerateToken(api.conf, GetIdentityClaims(api.conf, ident))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, Account: ident})
}

func (api *accountApi) verifyOTP(ctx echo.Context) error {
	var data account.OTPVerification
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to OTPVerification")
	}

	ident, err := api.svc.VerifyOTP(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "verifying otp")
	}
	return api.respondWithToken(ctx, ident)
}

func (api *accountApi) loginAdmin(ctx echo.Context) error {
	var data account.AdminLogin
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AdminLogin")
	}

	ident, err := api.svc.LoginAdmin(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "logging admin in")
	}
	return api.respondWithToken(ctx, ident)
}

func (api *accountApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.conf, api.svc)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, RefreshResponse{Token: token})
}

func (api *accountApi) registerProfessor(ctx echo.Context) error {
	var data account.NewProfessor
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProfessor")
	}

	p, err := api.svc.RegisterProfessor(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering professor")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *accountApi) listMentees(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	filter := new(account.MenteeFilter)
	if err := ctx.Bind(filter); err != nil {
		return core.NewValidationError(errors.New("invalid filter"))
	}

	page, err := api.svc.ListMentees(ctx.Request().Context(), claims.Subject, *filter)
	if err != nil {
		return errors.Wrap(err, "listing mentees")
	}
	return ctx.JSON(http.StatusOK, page)
}

func (api *accountApi) mapParent(ctx echo.Context) error {
	var data account.ParentMapping
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ParentMapping")
	}

	p, err := api.svc.MapParent(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "mapping parent")
	}
	return ctx.JSON(http.StatusCreated, p)
}

type (
	LoginResponse struct {
		Token   string           `json:"token"`
		Account account.Identity `json:"account"`
	}

	RefreshResponse struct {
		Token string `json:"token"`
	}
)
