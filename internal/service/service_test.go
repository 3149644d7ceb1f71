package service

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

type testEnv struct {
	DB      *gorm.DB
	Repo    *repo.GormRepo
	Mailer  *testutil.Mailer
	Events  *testutil.Recorder
	Auth    *AuthService
	Catalog *CatalogService
	Cart    *CartService
	Admin   *AdminService
	now     time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	r := &repo.GormRepo{DB: db}
	env := &testEnv{
		DB:     db,
		Repo:   r,
		Mailer: &testutil.Mailer{},
		Events: &testutil.Recorder{},
		now:    time.Now().UTC(),
	}

	env.Auth = &AuthService{
		Repo:      r,
		Tokens:    tokens.NewIssuer([]byte("test-jwt-secret"), time.Hour),
		Mailer:    env.Mailer,
		Events:    env.Events,
		ClientURL: "http://localhost:4200",
		Now:       func() time.Time { return env.now },
	}
	env.Catalog = &CatalogService{Repo: r, Events: env.Events}
	env.Cart = &CartService{Repo: r, Events: env.Events}
	env.Admin = &AdminService{Repo: r, Auth: env.Auth, Catalog: env.Catalog, Events: env.Events}
	return env
}
