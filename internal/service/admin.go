package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const (
	lowStockThreshold = 10
	recentLimit       = 5
)

type AdminService struct {
	Repo    *repo.GormRepo
	Auth    *AuthService
	Catalog *CatalogService
	Events  mykafka.Publisher
}

type DashboardCounts struct {
	TotalUsers     int64 `json:"totalUsers"`
	TotalProducts  int64 `json:"totalProducts"`
	ActiveProducts int64 `json:"activeProducts"`
	TotalCarts     int64 `json:"totalCarts"`
}

type Dashboard struct {
	Stats            DashboardCounts  `json:"stats"`
	LowStockProducts []repo.LowStock  `json:"lowStockProducts"`
	RecentUsers      []models.User    `json:"recentUsers"`
	RecentProducts   []models.Product `json:"recentProducts"`
}

type UserCounts struct {
	Total       int64 `json:"total"`
	Confirmed   int64 `json:"confirmed"`
	Unconfirmed int64 `json:"unconfirmed"`
}

type ProductCounts struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
}

type Stats struct {
	Users              UserCounts           `json:"users"`
	Products           ProductCounts        `json:"products"`
	Carts              int64                `json:"carts"`
	ProductsByCategory []repo.CategoryCount `json:"productsByCategory"`
	RecentUsers        []models.User        `json:"recentUsers"`
	RecentProducts     []models.Product     `json:"recentProducts"`
}

type UserQuery struct {
	Page   int
	Limit  int
	Search string
	Role   string
}

type UserPage struct {
	Users      []models.User   `json:"users"`
	Pagination util.Pagination `json:"pagination"`
}

type CartPage struct {
	Carts      []models.Cart   `json:"carts"`
	Pagination util.Pagination `json:"pagination"`
}

func ptr[T any](v T) *T { return &v }

func (s *AdminService) Dashboard(ctx context.Context) (*Dashboard, error) {
	var (
		d   Dashboard
		err error
	)
	if d.Stats.TotalUsers, err = s.Repo.CountUsers(ctx, models.RoleUser, nil); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if d.Stats.TotalProducts, err = s.Repo.CountProducts(ctx, nil); err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	if d.Stats.ActiveProducts, err = s.Repo.CountProducts(ctx, ptr(true)); err != nil {
		return nil, fmt.Errorf("count active products: %w", err)
	}
	if d.Stats.TotalCarts, err = s.Repo.CountCarts(ctx); err != nil {
		return nil, fmt.Errorf("count carts: %w", err)
	}
	if d.LowStockProducts, err = s.Repo.LowStockProducts(ctx, lowStockThreshold); err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	if d.RecentUsers, err = s.Repo.RecentUsers(ctx, models.RoleUser, recentLimit); err != nil {
		return nil, fmt.Errorf("recent users: %w", err)
	}
	if d.RecentProducts, err = s.Repo.RecentProducts(ctx, recentLimit); err != nil {
		return nil, fmt.Errorf("recent products: %w", err)
	}
	return &d, nil
}

func (s *AdminService) Stats(ctx context.Context) (*Stats, error) {
	var (
		st  Stats
		err error
	)
	if st.Users.Total, err = s.Repo.CountUsers(ctx, models.RoleUser, nil); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if st.Users.Confirmed, err = s.Repo.CountUsers(ctx, models.RoleUser, ptr(true)); err != nil {
		return nil, fmt.Errorf("count confirmed users: %w", err)
	}
	st.Users.Unconfirmed = st.Users.Total - st.Users.Confirmed

	if st.Products.Total, err = s.Repo.CountProducts(ctx, nil); err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	if st.Products.Active, err = s.Repo.CountProducts(ctx, ptr(true)); err != nil {
		return nil, fmt.Errorf("count active products: %w", err)
	}
	st.Products.Inactive = st.Products.Total - st.Products.Active

	if st.Carts, err = s.Repo.CountCarts(ctx); err != nil {
		return nil, fmt.Errorf("count carts: %w", err)
	}
	if st.ProductsByCategory, err = s.Repo.ProductsByCategory(ctx); err != nil {
		return nil, fmt.Errorf("products by category: %w", err)
	}
	if st.RecentUsers, err = s.Repo.RecentUsers(ctx, models.RoleUser, recentLimit); err != nil {
		return nil, fmt.Errorf("recent users: %w", err)
	}
	if st.RecentProducts, err = s.Repo.RecentProducts(ctx, recentLimit); err != nil {
		return nil, fmt.Errorf("recent products: %w", err)
	}
	return &st, nil
}

func (s *AdminService) Users(ctx context.Context, q UserQuery) (*UserPage, error) {
	page, offset, limit := util.Calculate(q.Page, q.Limit)
	total, users, err := s.Repo.ListUsers(ctx, repo.UserFilter{Search: q.Search, Role: q.Role}, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return &UserPage{Users: users, Pagination: util.NewPagination(page, limit, total)}, nil
}

// Products is the catalog listing without the active-only restriction.
func (s *AdminService) Products(ctx context.Context, q ListQuery) (*ProductPage, error) {
	return s.Catalog.List(ctx, q)
}

func (s *AdminService) Carts(ctx context.Context, page, limit int) (*CartPage, error) {
	page, offset, limit := util.Calculate(page, limit)
	total, carts, err := s.Repo.GetCarts(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list carts: %w", err)
	}
	return &CartPage{Carts: carts, Pagination: util.NewPagination(page, limit, total)}, nil
}

func (s *AdminService) CreateAdmin(ctx context.Context, actor uuid.UUID, name, emailAddr, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "admin.create_admin")

	user, err := s.Auth.CreateAccount(ctx, name, emailAddr, password, models.RoleAdmin)
	if err != nil {
		l.Warn("create_admin_error", "error", err)
		return nil, err
	}

	publish(ctx, s.Events, mykafka.TopicUsers, user.ID.String(), mykafka.Event{
		Type:   "admin_created",
		UserID: actor.String(),
		Email:  user.Email,
	})
	l.Info("admin_created", "user_id", user.ID)
	return user, nil
}

func (s *AdminService) BulkDeleteProducts(ctx context.Context, actor uuid.UUID, ids []string) (int64, error) {
	n, err := s.Catalog.BulkDelete(ctx, actor, ids)
	if err != nil {
		return 0, err
	}
	logging.FromContext(ctx).Info("bulk_delete_products", "requested", len(ids), "deleted", n)
	return n, nil
}
