package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/flicky/storefront-api/internal/dto"
	"github.com/flicky/storefront-api/internal/model"
	"github.com/flicky/storefront-api/internal/repository"
)

var ErrCartItemNotFound = errors.New("cart item not found")

type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

func (s *CartService) List(ctx context.Context, userID int64) ([]model.CartItem, error) {
	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	return items, nil
}

// AddItem puts a product in the cart, adding to the quantity of an existing
// line for the same product.
func (s *CartService) AddItem(ctx context.Context, userID int64, req dto.AddCartItemRequest) (*model.CartItem, error) {
	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	qty := req.Quantity
	if qty <= 0 {
		qty = 1
	}
	item := &model.CartItem{UserID: userID, ProductID: product.ID, Quantity: qty}
	if err := s.cartRepo.AddOrIncrement(ctx, item); err != nil {
		if errors.Is(err, repository.ErrUnknownProduct) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("add cart item: %w", err)
	}
	item.Product = product
	return item, nil
}

// RemoveItem deletes one of the caller's cart lines. A line owned by someone
// else is reported as not found.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID int64) error {
	if err := s.cartRepo.DeleteForUser(ctx, itemID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCartItemNotFound
		}
		return fmt.Errorf("delete cart item: %w", err)
	}
	return nil
}
