package httpserver

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

// PrincipalLoader resolves bearer subjects against the user store.
type PrincipalLoader struct {
	Repo *repo.GormRepo
}

func (p PrincipalLoader) LoadPrincipal(ctx context.Context, id uuid.UUID) (*middleware.Principal, error) {
	u, err := p.Repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, middleware.ErrUserNotFound
		}
		return nil, err
	}
	return &middleware.Principal{ID: u.ID, Role: u.Role, Confirmed: u.IsEmailConfirmed}, nil
}

func GetID(c echo.Context) (uuid.UUID, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return uuid.Nil, service.ErrUnauthorized
	}
	return id, nil
}
