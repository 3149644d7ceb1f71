package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/service/search"
	"github.com/Skotchmaster/storefront/internal/testutil"
)

type fakeIndex struct {
	indexed []uuid.UUID
	deleted []uuid.UUID
	hits    []uuid.UUID
	total   int64
	last    search.Query
	err     error
}

func (f *fakeIndex) IndexProduct(_ context.Context, p *models.Product) error {
	f.indexed = append(f.indexed, p.ID)
	return f.err
}

func (f *fakeIndex) DeleteProduct(_ context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeIndex) Search(_ context.Context, q search.Query) (int64, []uuid.UUID, error) {
	f.last = q
	return f.total, f.hits, f.err
}

func validInput() ProductInput {
	return ProductInput{
		Name:        "Mechanical keyboard",
		Description: "Tenkeyless board with brown switches",
		Price:       89.5,
		Quantity:    12,
		Image:       "https://img.example.com/kb.png",
		Category:    models.CategoryElectronics,
	}
}

func TestCatalogService_ListPagination(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 23; i++ {
		testutil.CreateProduct(t, env.DB, "Item", 1, 1, testutil.WithCreatedAt(base.Add(time.Duration(i)*time.Second)))
	}
	testutil.CreateProduct(t, env.DB, "Hidden", 1, 1, testutil.Inactive())

	active := true
	page, err := env.Catalog.List(ctx, ListQuery{Page: 3, Limit: 10, Active: &active})
	require.NoError(t, err)
	assert.Len(t, page.Products, 3)
	assert.Equal(t, 3, page.Pagination.Page)
	assert.Equal(t, 10, page.Pagination.Limit)
	assert.EqualValues(t, 23, page.Pagination.Total)
	assert.EqualValues(t, 3, page.Pagination.Pages)

	all, err := env.Catalog.List(ctx, ListQuery{Limit: 500})
	require.NoError(t, err)
	assert.Len(t, all.Products, 24)
	assert.Equal(t, 100, all.Pagination.Limit)

	far, err := env.Catalog.List(ctx, ListQuery{Page: math.MaxInt, Limit: 10, Active: &active})
	require.NoError(t, err)
	assert.Empty(t, far.Products)
	assert.Equal(t, math.MaxInt/10, far.Pagination.Page)
}

func TestCatalogService_ListSearchAndCategory(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	testutil.CreateProduct(t, env.DB, "Red Shirt", 10, 1, testutil.WithCategory(models.CategoryClothing))
	testutil.CreateProduct(t, env.DB, "Blue Phone", 10, 1, testutil.WithDescription("a shirt-pocket sized phone"))
	testutil.CreateProduct(t, env.DB, "Green Book", 10, 1, testutil.WithCategory(models.CategoryBooks))

	page, err := env.Catalog.List(ctx, ListQuery{Search: "  SHIRT "})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Pagination.Total)

	page, err = env.Catalog.List(ctx, ListQuery{Search: "shirt", Category: models.CategoryClothing})
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "Red Shirt", page.Products[0].Name)
}

func TestCatalogService_ListUsesIndexForText(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	a := testutil.CreateProduct(t, env.DB, "Alpha", 1, 1)
	b := testutil.CreateProduct(t, env.DB, "Beta", 1, 1)

	idx := &fakeIndex{hits: []uuid.UUID{b.ID, uuid.New(), a.ID}, total: 3}
	env.Catalog.Index = idx

	active := true
	page, err := env.Catalog.List(ctx, ListQuery{Page: 2, Limit: 2, Search: "alp", Category: models.CategoryElectronics, Active: &active})
	require.NoError(t, err)
	require.Len(t, page.Products, 2)
	assert.Equal(t, b.ID, page.Products[0].ID)
	assert.Equal(t, a.ID, page.Products[1].ID)
	assert.EqualValues(t, 3, page.Pagination.Total)

	assert.Equal(t, "alp", idx.last.Text)
	assert.Equal(t, 2, idx.last.From)
	assert.Equal(t, 2, idx.last.Size)
	assert.Equal(t, models.CategoryElectronics, idx.last.Category)

	idx.err = errors.New("cluster down")
	_, err = env.Catalog.List(ctx, ListQuery{Search: "alp"})
	assert.Error(t, err)

	_, err = env.Catalog.List(ctx, ListQuery{})
	assert.NoError(t, err)
}

func TestCatalogService_Get(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	live := testutil.CreateProduct(t, env.DB, "Live", 1, 1)
	hidden := testutil.CreateProduct(t, env.DB, "Hidden", 1, 1, testutil.Inactive())

	got, err := env.Catalog.Get(ctx, live.ID.String(), false)
	require.NoError(t, err)
	assert.Equal(t, live.ID, got.ID)

	_, err = env.Catalog.Get(ctx, hidden.ID.String(), false)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err = env.Catalog.Get(ctx, hidden.ID.String(), true)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	_, err = env.Catalog.Get(ctx, "not-a-uuid", true)
	assert.EqualError(t, err, "product not found")
}

func TestCatalogService_CreateValidation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		edit  func(*ProductInput)
		field string
	}{
		{name: "short name", edit: func(in *ProductInput) { in.Name = "K" }, field: "name"},
		{name: "short description", edit: func(in *ProductInput) { in.Description = "short" }, field: "description"},
		{name: "negative price", edit: func(in *ProductInput) { in.Price = -1 }, field: "price"},
		{name: "negative quantity", edit: func(in *ProductInput) { in.Quantity = -1 }, field: "quantity"},
		{name: "unknown category", edit: func(in *ProductInput) { in.Category = "Toys" }, field: "category"},
		{name: "missing image", edit: func(in *ProductInput) { in.Image = "  " }, field: "image"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.edit(&in)
			_, err := env.Catalog.Create(ctx, uuid.New(), in)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			fields := make([]string, 0, len(ve.Fields))
			for _, f := range ve.Fields {
				fields = append(fields, f.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestCatalogService_CreateUpdateDelete(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, env.DB, "admin@example.com", "secret1", models.RoleAdmin, true)
	idx := &fakeIndex{}
	env.Catalog.Index = idx

	p, err := env.Catalog.Create(ctx, admin.ID, validInput())
	require.NoError(t, err)
	assert.True(t, p.IsActive)
	require.NotNil(t, p.CreatedBy)
	assert.Equal(t, admin.Name, p.CreatedBy.Name)
	assert.Empty(t, p.CreatedBy.Email)

	price := 79.0
	off := false
	updated, err := env.Catalog.Update(ctx, admin.ID, p.ID.String(), ProductPatch{Price: &price, IsActive: &off})
	require.NoError(t, err)
	assert.Equal(t, 79.0, updated.Price)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "Mechanical keyboard", updated.Name)

	_, err = env.Catalog.UpdateQuantity(ctx, admin.ID, p.ID.String(), -2)
	assert.ErrorIs(t, err, ErrValidation)
	updated, err = env.Catalog.UpdateQuantity(ctx, admin.ID, p.ID.String(), 0)
	require.NoError(t, err)
	assert.Zero(t, updated.Quantity)

	require.NoError(t, env.Catalog.Delete(ctx, admin.ID, p.ID.String()))
	assert.ErrorIs(t, env.Catalog.Delete(ctx, admin.ID, p.ID.String()), ErrNotFound)
	assert.ErrorIs(t, env.Catalog.Delete(ctx, admin.ID, "nope"), ErrNotFound)

	assert.Equal(t, []uuid.UUID{p.ID, p.ID, p.ID}, idx.indexed)
	assert.Equal(t, []uuid.UUID{p.ID}, idx.deleted)
	assert.Equal(t, []string{"product_created", "product_updated", "product_updated", "product_deleted"},
		env.Events.Types(mykafka.TopicProducts))
}

func TestCatalogService_IndexFailureDoesNotFailWrite(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.Catalog.Index = &fakeIndex{err: errors.New("index unavailable")}

	p, err := env.Catalog.Create(ctx, uuid.New(), validInput())
	require.NoError(t, err)
	require.NoError(t, env.Catalog.Delete(ctx, uuid.New(), p.ID.String()))
}

func TestCatalogService_BulkDelete(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	a := testutil.CreateProduct(t, env.DB, "Alpha", 1, 1)
	b := testutil.CreateProduct(t, env.DB, "Beta", 1, 1)
	keep := testutil.CreateProduct(t, env.DB, "Keep", 1, 1)

	n, err := env.Catalog.BulkDelete(ctx, uuid.New(), []string{a.ID.String(), "junk", b.ID.String(), uuid.NewString()})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.Equal(t, []string{"product_deleted", "product_deleted"}, env.Events.Types(mykafka.TopicProducts))

	left, err := env.Repo.CountProducts(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, left)
	_, err = env.Catalog.Get(ctx, keep.ID.String(), false)
	assert.NoError(t, err)

	n, err = env.Catalog.BulkDelete(ctx, uuid.New(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
