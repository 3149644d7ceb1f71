package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service/search"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

// ProductIndex is the optional full-text index kept in sync with product writes.
type ProductIndex interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, q search.Query) (int64, []uuid.UUID, error)
}

type CatalogService struct {
	Repo   *repo.GormRepo
	Index  ProductIndex
	Events mykafka.Publisher
}

type ListQuery struct {
	Page     int
	Limit    int
	Category string
	Search   string
	Active   *bool
}

type ProductPage struct {
	Products   []models.Product `json:"products"`
	Pagination util.Pagination  `json:"pagination"`
}

type ProductInput struct {
	Name        string
	Description string
	Price       float64
	Quantity    int
	Image       string
	Category    string
}

type ProductPatch struct {
	Name        *string
	Description *string
	Price       *float64
	Quantity    *int
	Image       *string
	Category    *string
	IsActive    *bool
}

func (s *CatalogService) List(ctx context.Context, q ListQuery) (*ProductPage, error) {
	page, offset, limit := util.Calculate(q.Page, q.Limit)
	text := strings.TrimSpace(q.Search)

	if text != "" && s.Index != nil {
		return s.searchIndex(ctx, q, text, page, offset, limit)
	}

	total, items, err := s.Repo.GetProducts(ctx, repo.ProductFilter{
		Category: q.Category,
		Search:   text,
		Active:   q.Active,
	}, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return &ProductPage{Products: items, Pagination: util.NewPagination(page, limit, total)}, nil
}

func (s *CatalogService) searchIndex(ctx context.Context, q ListQuery, text string, page, offset, limit int) (*ProductPage, error) {
	total, ids, err := s.Index.Search(ctx, search.Query{
		Text:     text,
		Category: q.Category,
		Active:   q.Active,
		From:     offset,
		Size:     limit,
	})
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}

	items, err := s.Repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load search hits: %w", err)
	}
	return &ProductPage{Products: items, Pagination: util.NewPagination(page, limit, total)}, nil
}

// Get hides inactive products unless includeInactive is set.
func (s *CatalogService) Get(ctx context.Context, rawID string, includeInactive bool) (*models.Product, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, notFound("product not found")
	}
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("product not found")
		}
		return nil, err
	}
	if !p.IsActive && !includeInactive {
		return nil, notFound("product not found")
	}
	return p, nil
}

func validateProduct(p *models.Product) error {
	var fields []FieldError
	if n := len([]rune(p.Name)); n < 2 || n > 100 {
		fields = append(fields, FieldError{Field: "name", Message: "Product name must be between 2 and 100 characters"})
	}
	if n := len([]rune(p.Description)); n < 10 || n > 500 {
		fields = append(fields, FieldError{Field: "description", Message: "Description must be between 10 and 500 characters"})
	}
	if p.Price < 0 {
		fields = append(fields, FieldError{Field: "price", Message: "Price must be a positive number"})
	}
	if p.Quantity < 0 {
		fields = append(fields, FieldError{Field: "quantity", Message: "Quantity must be a non-negative integer"})
	}
	if !models.ValidCategory(p.Category) {
		fields = append(fields, FieldError{Field: "category", Message: "Invalid category"})
	}
	if p.Image == "" {
		fields = append(fields, FieldError{Field: "image", Message: "Product image is required"})
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (s *CatalogService) Create(ctx context.Context, creatorID uuid.UUID, in ProductInput) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create")

	p := &models.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Quantity:    in.Quantity,
		Image:       strings.TrimSpace(in.Image),
		Category:    in.Category,
		IsActive:    true,
		CreatedByID: creatorID,
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		l.Error("product_create_error", "status", 500, "reason", "cannot add product to db", "error", err)
		return nil, fmt.Errorf("create product: %w", err)
	}

	created, err := s.Repo.GetProduct(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("reload product: %w", err)
	}
	s.afterWrite(ctx, created, "product_created", creatorID)
	return created, nil
}

func (s *CatalogService) Update(ctx context.Context, actor uuid.UUID, rawID string, patch ProductPatch) (*models.Product, error) {
	p, err := s.Get(ctx, rawID, true)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		p.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Quantity != nil {
		p.Quantity = *patch.Quantity
	}
	if patch.Image != nil {
		p.Image = strings.TrimSpace(*patch.Image)
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.IsActive != nil {
		p.IsActive = *patch.IsActive
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	if err := s.Repo.SaveProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	s.afterWrite(ctx, p, "product_updated", actor)
	return p, nil
}

func (s *CatalogService) UpdateQuantity(ctx context.Context, actor uuid.UUID, rawID string, qty int) (*models.Product, error) {
	if qty < 0 {
		return nil, invalid("quantity", "Quantity must be a non-negative integer")
	}
	return s.Update(ctx, actor, rawID, ProductPatch{Quantity: &qty})
}

func (s *CatalogService) Delete(ctx context.Context, actor uuid.UUID, rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return notFound("product not found")
	}
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("product not found")
		}
		return fmt.Errorf("delete product: %w", err)
	}
	s.afterDelete(ctx, []uuid.UUID{id}, actor)
	return nil
}

// BulkDelete skips ids that are not uuids and reports how many rows were removed.
func (s *CatalogService) BulkDelete(ctx context.Context, actor uuid.UUID, rawIDs []string) (int64, error) {
	ids := make([]uuid.UUID, 0, len(rawIDs))
	for _, raw := range rawIDs {
		if id, err := uuid.Parse(raw); err == nil {
			ids = append(ids, id)
		}
	}
	existing, err := s.Repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("bulk delete products: %w", err)
	}
	ids = ids[:0]
	for _, p := range existing {
		ids = append(ids, p.ID)
	}

	n, err := s.Repo.DeleteProducts(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("bulk delete products: %w", err)
	}
	s.afterDelete(ctx, ids, actor)
	return n, nil
}

func (s *CatalogService) afterWrite(ctx context.Context, p *models.Product, eventType string, actor uuid.UUID) {
	l := logging.FromContext(ctx).With("svc", "catalog.sync", "product_id", p.ID)
	if s.Index != nil {
		if err := s.Index.IndexProduct(ctx, p); err != nil {
			l.Error("search_index_error", "reason", "cannot index product", "error", err)
		}
	}
	publish(ctx, s.Events, mykafka.TopicProducts, p.ID.String(), mykafka.Event{
		Type:      eventType,
		UserID:    actor.String(),
		ProductID: p.ID.String(),
		Name:      p.Name,
		Quantity:  p.Quantity,
	})
}

func (s *CatalogService) afterDelete(ctx context.Context, ids []uuid.UUID, actor uuid.UUID) {
	l := logging.FromContext(ctx).With("svc", "catalog.sync")
	for _, id := range ids {
		if s.Index != nil {
			if err := s.Index.DeleteProduct(ctx, id); err != nil {
				l.Error("search_index_error", "reason", "cannot remove product", "product_id", id, "error", err)
			}
		}
		publish(ctx, s.Events, mykafka.TopicProducts, id.String(), mykafka.Event{
			Type:      "product_deleted",
			UserID:    actor.String(),
			ProductID: id.String(),
		})
	}
}
