package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/flicky/storefront-api/internal/model"
	"github.com/flicky/storefront-api/internal/repository"
)

// memStore is an in-memory repository.Store. InTx restores a snapshot when
// fn fails, so rollbacks are observable.
type memStore struct {
	mu       sync.Mutex
	nextID   int64
	users    map[int64]model.User
	products map[int64]model.Product
	cart     map[int64]model.CartItem
	orders   map[int64]model.Order

	// interfere, when set, runs once inside UpdatePaymentState before the
	// state check, standing in for a concurrent committed writer. Its change
	// survives a rollback of the caller's transaction.
	interfere func(o *model.Order)
	external  map[int64]model.Order
	// staleUpdates forces that many UpdatePaymentState calls to fail.
	staleUpdates int
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[int64]model.User),
		products: make(map[int64]model.Product),
		cart:     make(map[int64]model.CartItem),
		orders:   make(map[int64]model.Order),
		external: make(map[int64]model.Order),
	}
}

func (s *memStore) Users() repository.UserRepository       { return memUsers{s} }
func (s *memStore) Products() repository.ProductRepository { return memProducts{s} }
func (s *memStore) Cart() repository.CartRepository        { return memCart{s} }
func (s *memStore) Orders() repository.OrderRepository     { return memOrders{s} }

func (s *memStore) InTx(_ context.Context, fn func(repository.Store) error) error {
	s.mu.Lock()
	users, cart, orders := cloneMap(s.users), cloneMap(s.cart), cloneMap(s.orders)
	s.mu.Unlock()

	err := fn(s)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.users, s.cart, s.orders = users, cart, orders
		for id, o := range s.external {
			s.orders[id] = o
		}
	}
	s.external = make(map[int64]model.Order)
	return err
}

func cloneMap[V any](m map[int64]V) map[int64]V {
	out := make(map[int64]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

// helpers for test setup

func (s *memStore) addUser(email string) *model.User {
	u := &model.User{Email: email, Name: "Test User", PasswordHash: "x"}
	_ = s.Users().Create(context.Background(), u)
	return u
}

func (s *memStore) addProduct(p model.Product) *model.Product {
	_ = s.Products().Create(context.Background(), &p)
	return &p
}

func (s *memStore) addOrder(o model.Order) *model.Order {
	if o.Status == "" {
		o.Status = model.OrderStatusPending
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = model.PaymentStatusPending
	}
	_ = s.Orders().Create(context.Background(), &o)
	return &o
}

func (s *memStore) order(id int64) model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders[id]
}

func (s *memStore) cartSize(userID int64) int {
	items, _ := s.Cart().ListByUser(context.Background(), userID)
	return len(items)
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	u.ID = r.s.id()
	u.CreatedAt = time.Now()
	r.s.users[u.ID] = *u
	return nil
}

func (r memUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r memUsers) SetPaymentCustomerID(_ context.Context, id int64, customerID string) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return "", repository.ErrNotFound
	}
	if u.PaymentCustomerID == "" {
		u.PaymentCustomerID = customerID
		r.s.users[id] = u
	}
	return u.PaymentCustomerID, nil
}

func (r memUsers) Count(context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.users), nil
}

type memProducts struct{ s *memStore }

func (r memProducts) Create(_ context.Context, p *model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.ID == 0 {
		p.ID = r.s.id()
	}
	p.CreatedAt = time.Now()
	r.s.products[p.ID] = *p
	return nil
}

func (r memProducts) GetByID(_ context.Context, id int64) (*model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r memProducts) List(_ context.Context, offset, limit int, category string) ([]model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Product
	for _, p := range r.s.products {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memProducts) Count(context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.products), nil
}

type memCart struct{ s *memStore }

func (r memCart) ListByUser(_ context.Context, userID int64) ([]model.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.CartItem
	for _, it := range r.s.cart {
		if it.UserID == userID {
			if p, ok := r.s.products[it.ProductID]; ok {
				it.Product = &p
			}
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memCart) AddOrIncrement(_ context.Context, item *model.CartItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[item.ProductID]; !ok {
		return repository.ErrUnknownProduct
	}
	for id, it := range r.s.cart {
		if it.UserID == item.UserID && it.ProductID == item.ProductID {
			it.Quantity += item.Quantity
			r.s.cart[id] = it
			item.ID, item.Quantity, item.CreatedAt = it.ID, it.Quantity, it.CreatedAt
			return nil
		}
	}
	item.ID = r.s.id()
	item.CreatedAt = time.Now()
	r.s.cart[item.ID] = *item
	return nil
}

func (r memCart) DeleteForUser(_ context.Context, id, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.cart[id]
	if !ok || it.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.s.cart, id)
	return nil
}

func (r memCart) ClearForUser(_ context.Context, userID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, it := range r.s.cart {
		if it.UserID == userID {
			delete(r.s.cart, id)
			n++
		}
	}
	return n, nil
}

type memOrders struct{ s *memStore }

func (r memOrders) Create(_ context.Context, o *model.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range o.Items {
		if _, ok := r.s.products[o.Items[i].ProductID]; !ok {
			return repository.ErrUnknownProduct
		}
	}
	o.ID = r.s.id()
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	for i := range o.Items {
		o.Items[i].ID = r.s.id()
		o.Items[i].OrderID = o.ID
	}
	r.s.orders[o.ID] = *o
	return nil
}

func (r memOrders) find(match func(model.Order) bool) (*model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.orders {
		if match(o) {
			return &o, nil
		}
	}
	return nil, nil
}

func (r memOrders) GetForUser(_ context.Context, id, userID int64) (*model.Order, error) {
	return r.find(func(o model.Order) bool { return o.ID == id && o.UserID == userID })
}

func (r memOrders) GetByPaymentIntent(_ context.Context, intentID string) (*model.Order, error) {
	return r.find(func(o model.Order) bool { return o.PaymentIntentID == intentID })
}

func (r memOrders) GetByPaymentIntentForUser(_ context.Context, intentID string, userID int64) (*model.Order, error) {
	return r.find(func(o model.Order) bool { return o.PaymentIntentID == intentID && o.UserID == userID })
}

func (r memOrders) ListByUser(_ context.Context, userID int64) ([]model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Order
	for _, o := range r.s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r memOrders) AttachPaymentIntent(_ context.Context, id int64, intentID, customerID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.PaymentIntentID, o.PaymentCustomerID = intentID, customerID
	r.s.orders[id] = o
	return nil
}

func (r memOrders) UpdatePaymentState(_ context.Context, id int64, from, to model.PaymentState, intentID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return repository.ErrStaleOrder
	}
	if r.s.staleUpdates > 0 {
		r.s.staleUpdates--
		return repository.ErrStaleOrder
	}
	if fn := r.s.interfere; fn != nil {
		r.s.interfere = nil
		fn(&o)
		r.s.orders[id] = o
		r.s.external[id] = o
	}
	if o.State() != from {
		return repository.ErrStaleOrder
	}
	o.Status, o.PaymentStatus = to.Status, to.Payment
	if intentID != "" {
		o.PaymentIntentID = intentID
	}
	o.UpdatedAt = time.Now()
	r.s.orders[id] = o
	return nil
}
