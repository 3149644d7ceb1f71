package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/testutil"
)

func TestAdminService_DashboardAndStats(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	testutil.CreateUser(t, env.DB, "admin@example.com", "secret1", models.RoleAdmin, true)
	u1 := testutil.CreateUser(t, env.DB, "a@example.com", "secret1", models.RoleUser, true)
	testutil.CreateUser(t, env.DB, "b@example.com", "secret1", models.RoleUser, false)
	testutil.CreateUser(t, env.DB, "c@example.com", "secret1", models.RoleUser, true)

	low := testutil.CreateProduct(t, env.DB, "Low", 1, 2)
	testutil.CreateProduct(t, env.DB, "Plenty", 1, 50)
	testutil.CreateProduct(t, env.DB, "Shirt", 1, 1, testutil.WithCategory(models.CategoryClothing), testutil.Inactive())

	_, err := env.Cart.Add(ctx, u1.ID, low.ID, 1)
	require.NoError(t, err)

	d, err := env.Admin.Dashboard(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, d.Stats.TotalUsers)
	assert.EqualValues(t, 3, d.Stats.TotalProducts)
	assert.EqualValues(t, 2, d.Stats.ActiveProducts)
	assert.EqualValues(t, 1, d.Stats.TotalCarts)
	require.Len(t, d.LowStockProducts, 1)
	assert.Equal(t, low.ID, d.LowStockProducts[0].ID)
	assert.Len(t, d.RecentUsers, 3)
	assert.Len(t, d.RecentProducts, 3)

	st, err := env.Admin.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, UserCounts{Total: 3, Confirmed: 2, Unconfirmed: 1}, st.Users)
	assert.Equal(t, ProductCounts{Total: 3, Active: 2, Inactive: 1}, st.Products)
	assert.EqualValues(t, 1, st.Carts)
	require.Len(t, st.ProductsByCategory, 2)
	assert.Equal(t, models.CategoryElectronics, st.ProductsByCategory[0].Category)
	assert.EqualValues(t, 2, st.ProductsByCategory[0].Count)
}

func TestAdminService_UsersAndCarts(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	for _, e := range []string{"ann@example.com", "bob@example.com", "cat@example.com"} {
		testutil.CreateUser(t, env.DB, e, "secret1", models.RoleUser, true)
	}
	admin := testutil.CreateUser(t, env.DB, "root@example.com", "secret1", models.RoleAdmin, true)

	page, err := env.Admin.Users(ctx, UserQuery{Page: 1, Limit: 2, Role: models.RoleUser})
	require.NoError(t, err)
	assert.Len(t, page.Users, 2)
	assert.EqualValues(t, 3, page.Pagination.Total)
	assert.EqualValues(t, 2, page.Pagination.Pages)

	page, err = env.Admin.Users(ctx, UserQuery{Search: "ROOT"})
	require.NoError(t, err)
	require.Len(t, page.Users, 1)
	assert.Equal(t, admin.ID, page.Users[0].ID)

	p := testutil.CreateProduct(t, env.DB, "Mug", 4.5, 10)
	_, err = env.Cart.Add(ctx, page.Users[0].ID, p.ID, 2)
	require.NoError(t, err)

	carts, err := env.Admin.Carts(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, carts.Carts, 1)
	require.NotNil(t, carts.Carts[0].User)
	assert.Equal(t, "root@example.com", carts.Carts[0].User.Email)
	assert.InDelta(t, 9, carts.Carts[0].Total, 0.001)
}

func TestAdminService_ProductsIncludesInactive(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	testutil.CreateProduct(t, env.DB, "On", 1, 1)
	testutil.CreateProduct(t, env.DB, "Off", 1, 1, testutil.Inactive())

	page, err := env.Admin.Products(ctx, ListQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Pagination.Total)
}

func TestAdminService_CreateAdmin(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	actor := uuid.New()

	u, err := env.Admin.CreateAdmin(ctx, actor, "Second Admin", "Second@Example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.True(t, u.IsEmailConfirmed)
	assert.Equal(t, "second@example.com", u.Email)

	res, err := env.Auth.AdminLogin(ctx, "second@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.User.ID)

	_, err = env.Admin.CreateAdmin(ctx, actor, "Again", "second@example.com", "secret1")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = env.Admin.CreateAdmin(ctx, actor, "X", "bad", "1")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.Admin.CreateAdmin(ctx, actor, "Long Pass", "long@example.com", strings.Repeat("a", 80))
	assert.ErrorIs(t, err, ErrValidation)

	events := env.Events.Events()
	require.Len(t, events, 1)
	assert.Equal(t, mykafka.TopicUsers, events[0].Topic)
	assert.Equal(t, "admin_created", events[0].Event.Type)
	assert.Equal(t, actor.String(), events[0].Event.UserID)
}

func TestAdminService_BulkDeleteProducts(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	a := testutil.CreateProduct(t, env.DB, "Alpha", 1, 1)

	n, err := env.Admin.BulkDeleteProducts(ctx, uuid.New(), []string{a.ID.String(), a.ID.String()})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
