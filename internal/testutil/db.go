// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/db"
)

// NewDB opens a private migrated in-memory sqlite database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), db.Config())
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, repo.Migrate(context.Background(), gdb))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return gdb
}

func MustHash(t *testing.T, password string) string {
	t.Helper()
	h, err := hash.HashPassword(password)
	require.NoError(t, err)
	return h
}

func CreateUser(t *testing.T, gdb *gorm.DB, email, password, role string, confirmed bool) *models.User {
	t.Helper()
	u := &models.User{
		Name:             "User " + email,
		Email:            email,
		PasswordHash:     MustHash(t, password),
		Role:             role,
		IsEmailConfirmed: confirmed,
	}
	require.NoError(t, gdb.Create(u).Error)
	return u
}

type ProductOpt func(*models.Product)

func Inactive() ProductOpt { return func(p *models.Product) { p.IsActive = false } }

func WithCategory(c string) ProductOpt { return func(p *models.Product) { p.Category = c } }

func WithCreatedAt(ts time.Time) ProductOpt { return func(p *models.Product) { p.CreatedAt = ts } }

func WithCreator(id uuid.UUID) ProductOpt { return func(p *models.Product) { p.CreatedByID = id } }

func WithDescription(d string) ProductOpt { return func(p *models.Product) { p.Description = d } }

func CreateProduct(t *testing.T, gdb *gorm.DB, name string, price float64, qty int, opts ...ProductOpt) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:        name,
		Description: "Description of " + name,
		Price:       price,
		Quantity:    qty,
		Image:       "https://img.example.com/" + uuid.NewString() + ".png",
		Category:    models.CategoryElectronics,
		IsActive:    true,
	}
	for _, o := range opts {
		o(p)
	}
	require.NoError(t, gdb.Omit("CreatedBy").Create(p).Error)
	return p
}
