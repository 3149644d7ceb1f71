package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

type ProductFilter struct {
	Category string
	Search   string
	// Active restricts by is_active when set.
	Active *bool
}

func (f ProductFilter) scope(db *gorm.DB) *gorm.DB {
	if f.Active != nil {
		db = db.Where("is_active = ?", *f.Active)
	}
	if f.Category != "" {
		db = db.Where("category = ?", f.Category)
	}
	if f.Search != "" {
		p := containsPattern(f.Search)
		db = db.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, p, p)
	}
	return db
}

func withCreator(db *gorm.DB) *gorm.DB {
	return db.Preload("CreatedBy", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name")
	})
}

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product := models.Product{}
	if err := r.DB.WithContext(ctx).Scopes(withCreator).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) GetProducts(ctx context.Context, f ProductFilter, offset, limit int) (int64, []models.Product, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Scopes(f.scope).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, limit)
	if err := r.DB.WithContext(ctx).
		Scopes(f.scope, withCreator, paginate(offset, limit)).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return 0, nil, err
	}

	return total, items, nil
}

// GetProductsByIDs keeps the order of ids and skips ids that no longer exist.
func (r *GormRepo) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	var found []models.Product
	if err := r.DB.WithContext(ctx).Scopes(withCreator).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	items := make([]models.Product, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			items = append(items, p)
		}
	}
	return items, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	return r.DB.WithContext(ctx).Omit("CreatedBy").Create(prod).Error
}

func (r *GormRepo) SaveProduct(ctx context.Context, prod *models.Product) error {
	return r.DB.WithContext(ctx).Omit("CreatedBy").Save(prod).Error
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *GormRepo) DeleteProducts(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.DB.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Product{})
	return res.RowsAffected, res.Error
}
