package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/roshna21/DevOps-project/core/account"
	"github.com/roshna21/DevOps-project/core/student"
)

const contextUSNKey = "usn"

func roleMiddleware(roles ...account.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			for _, role := range roles {
				if claims.Role == role {
					return next(ctx)
				}
			}
			return errHttpForbidden
		}
	}
}

func adminMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(account.RoleAdmin)
}

// studentAccessMiddleware resolves the :usn path param and hides students the caller may not see.
func studentAccessMiddleware(accounts *account.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}

			usn := student.CleanUSN(ctx.Param("usn"))
			ok, err := accounts.CanAccessStudent(ctx.Request().Context(), claims.Role, claims.Subject, usn)
			if err != nil {
				return errors.Wrap(err, "checking student access")
			}
			if !ok {
				return errHttpNotFound
			}
			ctx.Set(contextUSNKey, usn)
			return next(ctx)
		}
	}
}

func contextUSN(ctx echo.Context) string {
	if usn, ok := ctx.Get(contextUSNKey).(string); ok {
		return usn
	}
	return student.CleanUSN(ctx.Param("usn"))
}

// parentMiddleware restricts a route to parents and resolves the student they are mapped to.
func parentMiddleware(accounts *account.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.Role != account.RoleParent {
				return errHttpForbidden
			}

			// the mapping may have changed since the token was issued
			ident, err := accounts.Identify(ctx.Request().Context(), claims.Role, claims.Subject)
			if err != nil {
				if errors.Cause(err) == account.ErrNotFound {
					return errUnauthorized
				}
				return errors.Wrap(err, "identifying parent")
			}
			ctx.Set(contextUSNKey, ident.StudentUSN)
			return next(ctx)
		}
	}
}
