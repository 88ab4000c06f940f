package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/flicky/storefront-api/internal/locale"
	"github.com/flicky/storefront-api/internal/model"
)

// --- Auth ---

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        UserResponse `json:"user"`
}

type UserResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
}

// --- Product ---

// Money fields are pointers so binding can tell a missing value from zero.
type CreateProductRequest struct {
	Name          string           `json:"name" binding:"required"`
	Description   string           `json:"description"`
	Price         *decimal.Decimal `json:"price" binding:"required"`
	ImageURL      string           `json:"image_url"`
	Category      string           `json:"category"`
	StockQuantity int              `json:"stock_quantity" binding:"min=0"`
}

type ListProductsQuery struct {
	Skip     int    `form:"skip,default=0" binding:"min=0"`
	Limit    int    `form:"limit,default=20" binding:"min=1,max=100"`
	Category string `form:"category"`
}

type ProductResponse struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	ImageURL      string          `json:"image_url"`
	Category      string          `json:"category"`
	StockQuantity int             `json:"stock_quantity"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewProductResponse renders p with its name and description in l.
func NewProductResponse(p *model.Product, l locale.Locale) ProductResponse {
	text := locale.ProductText(l, p.ID, p.Name, p.Description)
	return ProductResponse{
		ID:            p.ID,
		Name:          text.Name,
		Description:   text.Description,
		Price:         p.Price,
		ImageURL:      p.ImageURL,
		Category:      p.Category,
		StockQuantity: p.StockQuantity,
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt,
	}
}

// --- Cart ---

type AddCartItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	// Quantity defaults to 1 when omitted.
	Quantity int `json:"quantity" binding:"omitempty,min=1"`
}

type CartItemResponse struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id"`
	ProductID int64            `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Product   *ProductResponse `json:"product"`
	CreatedAt time.Time        `json:"created_at"`
}

func NewCartItemResponse(item *model.CartItem, l locale.Locale) CartItemResponse {
	resp := CartItemResponse{
		ID: item.ID, UserID: item.UserID, ProductID: item.ProductID,
		Quantity: item.Quantity, CreatedAt: item.CreatedAt,
	}
	if item.Product != nil {
		p := NewProductResponse(item.Product, l)
		resp.Product = &p
	}
	return resp
}

// --- Order ---

type CreateOrderRequest struct {
	TotalAmount     *decimal.Decimal   `json:"total_amount" binding:"required"`
	ShippingAddress string             `json:"shipping_address" binding:"required"`
	Items           []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type OrderItemRequest struct {
	ProductID int64            `json:"product_id" binding:"required"`
	Quantity  int              `json:"quantity" binding:"required,min=1"`
	Price     *decimal.Decimal `json:"price" binding:"required"`
}

type OrderResponse struct {
	ID              int64               `json:"id"`
	UserID          int64               `json:"user_id"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	ShippingAddress string              `json:"shipping_address"`
	Status          model.OrderStatus   `json:"status"`
	PaymentStatus   model.PaymentStatus `json:"payment_status"`
	PaymentIntentID *string             `json:"payment_intent_id"`
	OrderItems      []OrderItemResponse `json:"order_items"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

type OrderItemResponse struct {
	ID        int64            `json:"id"`
	ProductID int64            `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Price     decimal.Decimal  `json:"price"`
	Product   *ProductResponse `json:"product,omitempty"`
}

func NewOrderResponse(o *model.Order, l locale.Locale) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for i := range o.Items {
		it := &o.Items[i]
		item := OrderItemResponse{ID: it.ID, ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price}
		if it.Product != nil {
			p := NewProductResponse(it.Product, l)
			item.Product = &p
		}
		items = append(items, item)
	}
	resp := OrderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		TotalAmount:     o.TotalAmount,
		ShippingAddress: o.ShippingAddress,
		Status:          o.Status,
		PaymentStatus:   o.PaymentStatus,
		OrderItems:      items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	if o.PaymentIntentID != "" {
		id := o.PaymentIntentID
		resp.PaymentIntentID = &id
	}
	return resp
}

// --- Payment ---

type CreatePaymentIntentRequest struct {
	OrderID int64 `json:"order_id"`
}

type PaymentIntentResponse struct {
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
}

type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id"`
}

type ConfirmPaymentResponse struct {
	OrderID       int64               `json:"order_id"`
	PaymentStatus model.PaymentStatus `json:"payment_status"`
	OrderStatus   model.OrderStatus   `json:"order_status"`
}

type MockPaymentRequest struct {
	OrderID    int64  `json:"order_id"`
	CardNumber string `json:"card_number"`
}

type MockPaymentResponse struct {
	Status  model.PaymentStatus `json:"status"`
	OrderID int64               `json:"order_id,omitempty"`
	Message string              `json:"message"`
}

// --- Analytics ---

type SalesResponse struct {
	TotalOrders       int64               `json:"total_orders"`
	TotalRevenue      decimal.Decimal     `json:"total_revenue"`
	AverageOrderValue decimal.Decimal     `json:"average_order_value"`
	Products          []ProductSalesStats `json:"products"`
}

type ProductSalesStats struct {
	ProductID  int64           `json:"product_id"`
	Quantity   int64           `json:"quantity"`
	Revenue    decimal.Decimal `json:"revenue"`
	OrderCount int64           `json:"order_count"`
}
