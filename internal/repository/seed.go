package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/flicky/storefront-api/internal/model"
)

// SampleProducts is the demo catalog. Localized text in package locale is
// keyed by the ids these rows receive in an empty database (1..6).
func SampleProducts() []model.Product {
	return []model.Product{
		{Name: "Wireless Headphones", Description: "High-quality wireless headphones with noise cancellation",
			Price: decimal.RequireFromString("199.99"), Category: "Electronics", StockQuantity: 50,
			ImageURL: "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=500&h=500&fit=crop"},
		{Name: "Smartphone", Description: "Latest model smartphone with advanced features",
			Price: decimal.RequireFromString("699.99"), Category: "Electronics", StockQuantity: 30,
			ImageURL: "https://images.unsplash.com/photo-1511707171634-5f897ff02aa9?w=500&h=500&fit=crop"},
		{Name: "Coffee Maker", Description: "Premium coffee maker for the perfect brew",
			Price: decimal.RequireFromString("149.99"), Category: "Kitchen", StockQuantity: 25,
			ImageURL: "https://images.unsplash.com/photo-1495474472287-4d71bcdd2085?w=500&h=500&fit=crop"},
		{Name: "Laptop Backpack", Description: "Durable laptop backpack with multiple compartments",
			Price: decimal.RequireFromString("79.99"), Category: "Accessories", StockQuantity: 40,
			ImageURL: "https://images.unsplash.com/photo-1553062407-98eeb64c6a62?w=500&h=500&fit=crop"},
		{Name: "Fitness Tracker", Description: "Advanced fitness tracker with heart rate monitor",
			Price: decimal.RequireFromString("249.99"), Category: "Electronics", StockQuantity: 35,
			ImageURL: "https://images.unsplash.com/photo-1575311373937-040b8e1fd5b6?w=500&h=500&fit=crop"},
		{Name: "Desk Lamp", Description: "Modern LED desk lamp with adjustable brightness",
			Price: decimal.RequireFromString("59.99"), Category: "Home", StockQuantity: 20,
			ImageURL: "https://images.unsplash.com/photo-1519710164239-da123dc03ef4?w=500&h=500&fit=crop"},
	}
}

type SeedResult struct {
	Products    int
	UserCreated bool
}

// Seed fills an empty catalog with SampleProducts and creates testUser when
// there are no users. Everything happens in one transaction.
func Seed(ctx context.Context, store Store, testUser *model.User) (SeedResult, error) {
	var res SeedResult
	err := store.InTx(ctx, func(tx Store) error {
		n, err := tx.Products().Count(ctx)
		if err != nil {
			return err
		}
		if n == 0 {
			for _, p := range SampleProducts() {
				p.IsActive = true
				if err := tx.Products().Create(ctx, &p); err != nil {
					return err
				}
				res.Products++
			}
		}

		if testUser == nil {
			return nil
		}
		users, err := tx.Users().Count(ctx)
		if err != nil {
			return err
		}
		if users == 0 {
			if err := tx.Users().Create(ctx, testUser); err != nil {
				return err
			}
			res.UserCreated = true
		}
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("seed: %w", err)
	}
	return res, nil
}
