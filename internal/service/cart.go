package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

// CartService validates every cart mutation against current stock.
// Stock is read and the cart written without a lock, so two concurrent adds
// can both pass the check. Nothing is reserved.
type CartService struct {
	Repo   *repo.GormRepo
	Events mykafka.Publisher
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func recompute(c *models.Cart) {
	var total float64
	for _, it := range c.Items {
		total += float64(it.Quantity) * it.Price
	}
	c.Total = roundCents(total)
}

func (s *CartService) find(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.Repo.GetCart(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("cart not found")
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return cart, nil
}

func (s *CartService) activeProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("product not found")
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	if !p.IsActive {
		return nil, notFound("product not found")
	}
	return p, nil
}

func (s *CartService) save(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	recompute(cart)
	if err := s.Repo.SaveCart(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return s.find(ctx, cart.UserID)
}

func (s *CartService) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.find(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	cart = &models.Cart{UserID: userID, Items: []models.CartItem{}}
	if err := s.Repo.SaveCart(ctx, cart); err != nil {
		// a concurrent request may have created it first
		if existing, findErr := s.find(ctx, userID); findErr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("create cart: %w", err)
	}
	return cart, nil
}

func (s *CartService) Add(ctx context.Context, userID, productID uuid.UUID, qty int) (*models.Cart, error) {
	l := logging.FromContext(ctx).With("svc", "cart.add", "product_id", productID)

	if qty < 1 {
		return nil, invalid("quantity", "Quantity must be at least 1")
	}

	product, err := s.activeProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Quantity < qty {
		l.Warn("add_to_cart_error", "status", 400, "reason", "insufficient stock", "available", product.Quantity)
		return nil, &StockError{Available: product.Quantity}
	}

	cart, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if i := cart.Line(productID); i >= 0 {
		next := cart.Items[i].Quantity + qty
		if next > product.Quantity {
			l.Warn("add_to_cart_error", "status", 400, "reason", "insufficient stock", "available", product.Quantity)
			return nil, &StockError{Available: product.Quantity}
		}
		cart.Items[i].Quantity = next
	} else {
		cart.Items = append(cart.Items, models.CartItem{
			ProductID: productID,
			Quantity:  qty,
			Price:     product.Price,
		})
	}

	saved, err := s.save(ctx, cart)
	if err != nil {
		l.Error("add_to_cart_error", "status", 500, "error", err)
		return nil, err
	}

	publish(ctx, s.Events, mykafka.TopicCarts, userID.String(), mykafka.Event{
		Type:      "cart_item_added",
		UserID:    userID.String(),
		ProductID: productID.String(),
		Quantity:  qty,
	})
	l.Info("item added successfully to cart")
	return saved, nil
}

func (s *CartService) Update(ctx context.Context, userID, productID uuid.UUID, qty int) (*models.Cart, error) {
	l := logging.FromContext(ctx).With("svc", "cart.update", "product_id", productID)

	if qty < 1 {
		return nil, invalid("quantity", "Quantity must be at least 1")
	}

	cart, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	i := cart.Line(productID)
	if i < 0 {
		return nil, notFound("item not found in cart")
	}

	product, err := s.activeProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if qty > product.Quantity {
		l.Warn("update_cart_error", "status", 400, "reason", "insufficient stock", "available", product.Quantity)
		return nil, &StockError{Available: product.Quantity}
	}

	cart.Items[i].Quantity = qty
	saved, err := s.save(ctx, cart)
	if err != nil {
		l.Error("update_cart_error", "status", 500, "error", err)
		return nil, err
	}

	publish(ctx, s.Events, mykafka.TopicCarts, userID.String(), mykafka.Event{
		Type:      "cart_item_updated",
		UserID:    userID.String(),
		ProductID: productID.String(),
		Quantity:  qty,
	})
	return saved, nil
}

func (s *CartService) Remove(ctx context.Context, userID, productID uuid.UUID) (*models.Cart, error) {
	cart, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	i := cart.Line(productID)
	if i < 0 {
		return nil, notFound("item not found in cart")
	}

	cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
	saved, err := s.save(ctx, cart)
	if err != nil {
		logging.FromContext(ctx).Error("remove_from_cart_error", "status", 500, "error", err)
		return nil, err
	}

	publish(ctx, s.Events, mykafka.TopicCarts, userID.String(), mykafka.Event{
		Type:      "cart_item_removed",
		UserID:    userID.String(),
		ProductID: productID.String(),
	})
	return saved, nil
}

func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart.Items = []models.CartItem{}
	saved, err := s.save(ctx, cart)
	if err != nil {
		logging.FromContext(ctx).Error("clear_cart_error", "status", 500, "error", err)
		return nil, err
	}

	publish(ctx, s.Events, mykafka.TopicCarts, userID.String(), mykafka.Event{
		Type:   "cart_cleared",
		UserID: userID.String(),
	})
	return saved, nil
}

// Total is the one read that tolerates a missing cart.
func (s *CartService) Total(ctx context.Context, userID uuid.UUID) (float64, int, error) {
	cart, err := s.find(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, 0, nil
		}
		return 0, 0, err
	}
	return cart.Total, cart.ItemCount(), nil
}
