package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/flicky/storefront-api/internal/dto"
	"github.com/flicky/storefront-api/internal/locale"
	"github.com/flicky/storefront-api/internal/logging"
	"github.com/flicky/storefront-api/internal/model"
	"github.com/flicky/storefront-api/internal/repository"
)

var ErrProductNotFound = errors.New("product not found")

const productCacheTTL = 60 * time.Second

// ProductService serves the catalog. Stored records are cached in Redis;
// localization happens on the way out so one cache entry serves every locale.
type ProductService struct {
	productRepo repository.ProductRepository
	redisClient *redis.Client
}

func NewProductService(productRepo repository.ProductRepository, redisClient *redis.Client) *ProductService {
	return &ProductService{productRepo: productRepo, redisClient: redisClient}
}

func (s *ProductService) Create(ctx context.Context, req dto.CreateProductRequest, loc locale.Locale) (*dto.ProductResponse, error) {
	product := &model.Product{
		Name:          req.Name,
		Description:   req.Description,
		Price:         amount(req.Price),
		ImageURL:      req.ImageURL,
		Category:      req.Category,
		StockQuantity: req.StockQuantity,
		IsActive:      true,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	resp := dto.NewProductResponse(product, loc)
	return &resp, nil
}

func (s *ProductService) GetByID(ctx context.Context, id int64, loc locale.Locale) (*dto.ProductResponse, error) {
	product, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewProductResponse(product, loc)
	return &resp, nil
}

func (s *ProductService) List(ctx context.Context, q dto.ListProductsQuery, loc locale.Locale) ([]dto.ProductResponse, error) {
	products, err := s.productRepo.List(ctx, q.Skip, q.Limit, q.Category)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, dto.NewProductResponse(&products[i], loc))
	}
	return items, nil
}

func (s *ProductService) get(ctx context.Context, id int64) (*model.Product, error) {
	cacheKey := "product:" + strconv.FormatInt(id, 10)

	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, cacheKey).Bytes(); err == nil {
			var p model.Product
			if json.Unmarshal(cached, &p) == nil {
				return &p, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			logging.FromContext(ctx).Warn("product cache read failed", "product_id", id, "error", err)
		}
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	if s.redisClient != nil {
		if data, err := json.Marshal(product); err == nil {
			if err := s.redisClient.Set(ctx, cacheKey, data, productCacheTTL).Err(); err != nil {
				logging.FromContext(ctx).Warn("product cache write failed", "product_id", id, "error", err)
			}
		}
	}
	return product, nil
}
