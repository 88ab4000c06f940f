package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/flicky/storefront-api/internal/dto"
	"github.com/flicky/storefront-api/internal/model"
)

const (
	analyticsTotalsKey    = "analytics:totals"
	analyticsProductsKey  = "analytics:products"
	analyticsProcessedTTL = 7 * 24 * time.Hour
)

// AnalyticsService keeps running sales aggregates in Redis. Amounts are
// stored as integer cents so HINCRBY stays exact.
type AnalyticsService struct {
	redisClient *redis.Client
}

func NewAnalyticsService(redisClient *redis.Client) *AnalyticsService {
	return &AnalyticsService{redisClient: redisClient}
}

// Record folds a paid-order event into the aggregates. It reports false for
// events it does not count and for events already recorded.
func (s *AnalyticsService) Record(ctx context.Context, ev model.OrderEvent) (bool, error) {
	if ev.Type != model.EventOrderPaymentSucceeded {
		return false, nil
	}
	processedKey := "analytics:processed:" + ev.ID.String()

	ok, err := s.redisClient.SetNX(ctx, processedKey, "1", analyticsProcessedTTL).Result()
	if err != nil {
		return false, fmt.Errorf("mark event: %w", err)
	}
	if !ok {
		return false, nil
	}

	userKey := "analytics:user:" + strconv.FormatInt(ev.UserID, 10)
	total := model.MinorUnits(ev.TotalAmount)
	_, err = s.redisClient.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HIncrBy(ctx, analyticsTotalsKey, "orders", 1)
		p.HIncrBy(ctx, analyticsTotalsKey, "revenue_cents", total)
		p.HIncrBy(ctx, userKey, "orders", 1)
		p.HIncrBy(ctx, userKey, "revenue_cents", total)
		for _, it := range ev.Items {
			id := strconv.FormatInt(it.ProductID, 10)
			key := "analytics:product:" + id
			p.SAdd(ctx, analyticsProductsKey, id)
			p.HIncrBy(ctx, key, "quantity", int64(it.Quantity))
			p.HIncrBy(ctx, key, "revenue_cents", model.MinorUnits(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))))
			p.HIncrBy(ctx, key, "orders", 1)
		}
		return nil
	})
	if err != nil {
		// Unmark so a replay from the dead-letter queue is counted.
		s.redisClient.Del(ctx, processedKey)
		return false, fmt.Errorf("update aggregates: %w", err)
	}
	return true, nil
}

// Sales returns the totals and per-product figures, best sellers first.
func (s *AnalyticsService) Sales(ctx context.Context) (*dto.SalesResponse, error) {
	totals, err := s.redisClient.HGetAll(ctx, analyticsTotalsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("read totals: %w", err)
	}
	resp := &dto.SalesResponse{
		TotalOrders:       parseInt(totals["orders"]),
		TotalRevenue:      cents(parseInt(totals["revenue_cents"])),
		AverageOrderValue: decimal.Zero,
		Products:          []dto.ProductSalesStats{},
	}
	if resp.TotalOrders > 0 {
		resp.AverageOrderValue = resp.TotalRevenue.Div(decimal.NewFromInt(resp.TotalOrders)).Round(2)
	}

	ids, err := s.redisClient.SMembers(ctx, analyticsProductsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("read products: %w", err)
	}
	for _, id := range ids {
		productID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			continue
		}
		h, err := s.redisClient.HGetAll(ctx, "analytics:product:"+id).Result()
		if err != nil {
			return nil, fmt.Errorf("read product %s: %w", id, err)
		}
		resp.Products = append(resp.Products, dto.ProductSalesStats{
			ProductID:  productID,
			Quantity:   parseInt(h["quantity"]),
			Revenue:    cents(parseInt(h["revenue_cents"])),
			OrderCount: parseInt(h["orders"]),
		})
	}
	sort.Slice(resp.Products, func(i, j int) bool {
		a, b := resp.Products[i], resp.Products[j]
		if c := a.Revenue.Cmp(b.Revenue); c != 0 {
			return c > 0
		}
		return a.ProductID < b.ProductID
	})
	return resp, nil
}

func parseInt(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func cents(n int64) decimal.Decimal { return decimal.New(n, -2) }
