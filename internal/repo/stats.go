package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
)

type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

type LowStock struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Quantity int       `json:"quantity"`
}

func (r *GormRepo) CountUsers(ctx context.Context, role string, confirmed *bool) (int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.User{})
	if role != "" {
		q = q.Where("role = ?", role)
	}
	if confirmed != nil {
		q = q.Where("is_email_confirmed = ?", *confirmed)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

func (r *GormRepo) CountProducts(ctx context.Context, active *bool) (int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{})
	if active != nil {
		q = q.Where("is_active = ?", *active)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

func (r *GormRepo) CountCarts(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Cart{}).Count(&n).Error
	return n, err
}

// LowStockProducts lists active products with quantity below threshold.
func (r *GormRepo) LowStockProducts(ctx context.Context, threshold int) ([]LowStock, error) {
	out := []LowStock{}
	err := r.DB.WithContext(ctx).Model(&models.Product{}).
		Select("id", "name", "quantity").
		Where("is_active = ? AND quantity < ?", true, threshold).
		Order("quantity ASC").
		Scan(&out).Error
	return out, err
}

func (r *GormRepo) RecentUsers(ctx context.Context, role string, n int) ([]models.User, error) {
	users := make([]models.User, 0, n)
	q := r.DB.WithContext(ctx).Order("created_at DESC").Limit(n)
	if role != "" {
		q = q.Where("role = ?", role)
	}
	err := q.Find(&users).Error
	return users, err
}

func (r *GormRepo) RecentProducts(ctx context.Context, n int) ([]models.Product, error) {
	items := make([]models.Product, 0, n)
	err := r.DB.WithContext(ctx).Scopes(withCreator).Order("created_at DESC").Limit(n).Find(&items).Error
	return items, err
}

func (r *GormRepo) ProductsByCategory(ctx context.Context) ([]CategoryCount, error) {
	out := []CategoryCount{}
	err := r.DB.WithContext(ctx).Model(&models.Product{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Order("count DESC").
		Scan(&out).Error
	return out, err
}
