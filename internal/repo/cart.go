package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/models"
)

func withLines(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Items.Product")
}

func (r *GormRepo) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	if err := r.DB.WithContext(ctx).Scopes(withLines).Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// SaveCart writes the cart row and replaces its lines in one transaction.
func (r *GormRepo) SaveCart(ctx context.Context, cart *models.Cart) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if cart.ID == uuid.Nil {
			if err := tx.Omit(clause.Associations).Create(cart).Error; err != nil {
				return err
			}
		} else if err := tx.Omit(clause.Associations).Save(cart).Error; err != nil {
			return err
		}

		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return nil
		}

		for i := range cart.Items {
			cart.Items[i].CartID = cart.ID
			cart.Items[i].Position = i
		}
		return tx.Omit(clause.Associations).Create(&cart.Items).Error
	})
}

func (r *GormRepo) GetCarts(ctx context.Context, offset, limit int) (int64, []models.Cart, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Cart{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	carts := make([]models.Cart, 0, limit)
	if err := r.DB.WithContext(ctx).
		Scopes(withLines, paginate(offset, limit)).
		Preload("User", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "email") }).
		Order("created_at DESC").
		Find(&carts).Error; err != nil {
		return 0, nil, err
	}
	return total, carts, nil
}
