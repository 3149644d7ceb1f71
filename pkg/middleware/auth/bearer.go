package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const (
	roleAdmin    = "admin"
	principalKey = "principal"
)

var ErrUserNotFound = errors.New("user not found")

// Principal is the stored view of the caller, reloaded on every request so
// deleted users and demoted admins lose access immediately.
type Principal struct {
	ID        uuid.UUID
	Role      string
	Confirmed bool
}

type UserLoader interface {
	LoadPrincipal(ctx context.Context, id uuid.UUID) (*Principal, error)
}

type AuthMiddleware struct {
	JWTSecret []byte
	Users     UserLoader
}

func NewAuthMiddleware(secret []byte, users UserLoader) *AuthMiddleware {
	return &AuthMiddleware{
		JWTSecret: secret,
		Users:     users,
	}
}

type ValidatorFunc func(claims *tokens.AccessClaims, p *Principal) error

func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil)
}

func (m *AuthMiddleware) RequireConfirmed(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, func(_ *tokens.AccessClaims, p *Principal) error {
		if !p.Confirmed {
			return echo.NewHTTPError(http.StatusForbidden, "Please confirm your email first")
		}
		return nil
	})
}

// RequireAdmin checks both the role claim and the stored role.
func (m *AuthMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, func(claims *tokens.AccessClaims, p *Principal) error {
		if claims.Role != roleAdmin || p.Role != roleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "Access denied. Admin only.")
		}
		return nil
	})
}

func (m *AuthMiddleware) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("middleware", "auth")

		raw := bearerToken(c.Request())
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, no token")
		}

		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err != nil {
			l.Warn("auth_failed", "status", 401, "reason", "invalid token", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, token failed")
		}

		id, err := uuid.Parse(claims.Subject)
		if err != nil {
			l.Warn("auth_failed", "status", 401, "reason", "bad subject")
			return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, token failed")
		}

		p, err := m.Users.LoadPrincipal(ctx, id)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				l.Warn("auth_failed", "status", 401, "reason", "user not found", "user_id", id)
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, user not found")
			}
			return err
		}

		if validator != nil {
			if validationErr := validator(claims, p); validationErr != nil {
				l.Warn("auth_forbidden", "status", 403, "user_id", id)
				return validationErr
			}
		}

		setUserContext(c, p)
		return next(c)
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get(echo.HeaderAuthorization)
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func setUserContext(c echo.Context, p *Principal) {
	c.Set("user_id", p.ID.String())
	c.Set("role", p.Role)
	c.Set(principalKey, p)
}

// PrincipalFrom returns the caller stored by one of the guards.
func PrincipalFrom(c echo.Context) (*Principal, bool) {
	p, ok := c.Get(principalKey).(*Principal)
	return p, ok && p != nil
}

func UserID(c echo.Context) (uuid.UUID, bool) {
	p, ok := PrincipalFrom(c)
	if !ok {
		return uuid.Nil, false
	}
	return p.ID, true
}
