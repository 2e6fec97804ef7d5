package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"shop_service/internal/domain"

	"github.com/google/uuid"
)

var errInjected = errors.New("injected storage failure")

// memStore is an in-memory stand-in for the database. A checkout holds mu for
// its whole duration, which mirrors the row locks taken by the SQL version.
type memStore struct {
	mu         sync.Mutex
	users      map[uuid.UUID]domain.User
	carts      map[uuid.UUID]uuid.UUID // user id -> cart id
	items      map[uuid.UUID]domain.CartItem
	categories map[uuid.UUID]domain.Category
	products   map[uuid.UUID]domain.Product
	orders     map[uuid.UUID]domain.Order
	seq        int

	// failOn names a checkout step that returns errInjected.
	failOn string
	// stockBonus inflates the stock seen by the checkout pre-check so that the
	// floor-checked decrement is the one that rejects the order.
	stockBonus int
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[uuid.UUID]domain.User{},
		carts:      map[uuid.UUID]uuid.UUID{},
		items:      map[uuid.UUID]domain.CartItem{},
		categories: map[uuid.UUID]domain.Category{},
		products:   map[uuid.UUID]domain.Product{},
		orders:     map[uuid.UUID]domain.Order{},
	}
}

// tick returns strictly increasing timestamps so "newest first" is stable.
func (s *memStore) tick() time.Time {
	s.seq++
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(s.seq) * time.Second)
}

func (s *memStore) addUser(email string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.users[id] = domain.User{ID: id, Email: email, Role: domain.RoleCustomer}
	s.carts[id] = uuid.New()
	return id
}

func (s *memStore) addCategory(name string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	now := s.tick()
	s.categories[id] = domain.Category{ID: id, Name: name, CreatedAt: now, UpdatedAt: now}
	return id
}

func (s *memStore) addProduct(categoryID uuid.UUID, name string, price float64, stock int) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	now := s.tick()
	s.products[id] = domain.Product{ID: id, Name: name, Price: price, Stock: stock, CategoryID: categoryID, CreatedAt: now, UpdatedAt: now}
	return id
}

func (s *memStore) putInCart(userID, productID uuid.UUID, quantity int, price float64) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	now := s.tick()
	s.items[id] = domain.CartItem{ID: id, CartID: s.carts[userID], ProductID: productID, Quantity: quantity, PriceAtAddition: price, CreatedAt: now, UpdatedAt: now}
	return id
}

func (s *memStore) stock(productID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[productID].Stock
}

func (s *memStore) cartSize(userID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, item := range s.items {
		if item.CartID == s.carts[userID] {
			n++
		}
	}
	return n
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

type snapshot struct {
	items    map[uuid.UUID]domain.CartItem
	products map[uuid.UUID]domain.Product
	orders   map[uuid.UUID]domain.Order
}

func (s *memStore) snapshot() snapshot {
	snap := snapshot{
		items:    make(map[uuid.UUID]domain.CartItem, len(s.items)),
		products: make(map[uuid.UUID]domain.Product, len(s.products)),
		orders:   make(map[uuid.UUID]domain.Order, len(s.orders)),
	}
	for k, v := range s.items {
		snap.items[k] = v
	}
	for k, v := range s.products {
		snap.products[k] = v
	}
	for k, v := range s.orders {
		snap.orders[k] = v
	}
	return snap
}

func (s *memStore) restore(snap snapshot) {
	s.items = snap.items
	s.products = snap.products
	s.orders = snap.orders
}

func (s *memStore) cartOf(userID uuid.UUID) (*domain.Cart, error) {
	cartID, ok := s.carts[userID]
	if !ok {
		return nil, domain.NewNotFoundError("Cart not found")
	}
	cart := &domain.Cart{ID: cartID, UserID: userID, Items: []domain.CartItem{}}
	for _, item := range s.items {
		if item.CartID != cartID {
			continue
		}
		p := s.products[item.ProductID]
		item.Product = &domain.CartProduct{ID: p.ID, Name: p.Name, ImageURL: p.ImageURL, Stock: p.Stock}
		cart.Items = append(cart.Items, item)
	}
	sort.Slice(cart.Items, func(i, j int) bool { return cart.Items[i].CreatedAt.Before(cart.Items[j].CreatedAt) })
	cart.ComputeTotal()
	return cart, nil
}

// memUsers implements domain.UserRepository.
type memUsers struct{ *memStore }

func (r memUsers) CreateWithCart(ctx context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.NewConflictError("User already exists with this email")
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = r.tick()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = *user
	r.carts[user.ID] = uuid.New()
	return user, nil
}

func (r memUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.NewNotFoundError("User not found")
}

func (r memUsers) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.NewNotFoundError("User not found")
	}
	return &u, nil
}

// memCategories implements domain.CategoryRepository.
type memCategories struct{ *memStore }

func (r memCategories) Create(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.categories {
		if existing.Name == c.Name {
			return nil, domain.NewConflictError("Category with this name already exists")
		}
	}
	c.ID = uuid.New()
	c.CreatedAt = r.tick()
	c.UpdatedAt = c.CreatedAt
	c.Products = []domain.ProductSummary{}
	r.categories[c.ID] = *c
	return c, nil
}

func (r memCategories) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, domain.NewNotFoundError("Category not found")
	}
	c.Products = []domain.ProductSummary{}
	for _, p := range r.products {
		if p.CategoryID == id {
			c.Products = append(c.Products, domain.ProductSummary{ID: p.ID, Name: p.Name, Price: p.Price, Stock: p.Stock})
		}
	}
	return &c, nil
}

func (r memCategories) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.categories[id]
	return ok, nil
}

func (r memCategories) Update(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[c.ID]; !ok {
		return nil, domain.NewNotFoundError("Category not found")
	}
	for _, existing := range r.categories {
		if existing.Name == c.Name && existing.ID != c.ID {
			return nil, domain.NewConflictError("Category with this name already exists")
		}
	}
	c.UpdatedAt = r.tick()
	r.categories[c.ID] = *c
	return c, nil
}

func (r memCategories) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return domain.NewNotFoundError("Category not found")
	}
	delete(r.categories, id)
	return nil
}

func (r memCategories) List(ctx context.Context) ([]domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Category{}
	for _, c := range r.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memCategories) CountProducts(ctx context.Context, id uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.products {
		if p.CategoryID == id {
			n++
		}
	}
	return n, nil
}

// memProducts implements domain.ProductRepository.
type memProducts struct {
	*memStore
	failWrites bool
}

func (r memProducts) withCategory(p domain.Product) *domain.Product {
	c := r.categories[p.CategoryID]
	p.Category = &domain.CategoryRef{ID: c.ID, Name: c.Name, Description: c.Description}
	return &p
}

func (r memProducts) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrites {
		return nil, errInjected
	}
	p.ID = uuid.New()
	p.CreatedAt = r.tick()
	p.UpdatedAt = p.CreatedAt
	r.products[p.ID] = *p
	return r.withCategory(*p), nil
}

func (r memProducts) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, domain.NewNotFoundError("Product not found")
	}
	return r.withCategory(p), nil
}

func (r memProducts) Update(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrites {
		return nil, errInjected
	}
	if _, ok := r.products[p.ID]; !ok {
		return nil, domain.NewNotFoundError("Product not found")
	}
	stored := *p
	stored.Category = nil
	stored.UpdatedAt = r.tick()
	r.products[p.ID] = stored
	return r.withCategory(stored), nil
}

func (r memProducts) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return domain.NewNotFoundError("Product not found")
	}
	delete(r.products, id)
	for itemID, item := range r.items {
		if item.ProductID == id {
			delete(r.items, itemID)
		}
	}
	return nil
}

func (r memProducts) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := []domain.Product{}
	for _, p := range r.products {
		if f.Category != "" && r.categories[p.CategoryID].Name != f.Category {
			continue
		}
		if f.MinPrice != nil && p.Price < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && p.Price > *f.MaxPrice {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
			continue
		}
		matched = append(matched, *r.withCategory(p))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := len(matched)
	start := f.Page.Offset()
	if start > total {
		start = total
	}
	end := start + f.Page.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// memCarts implements domain.CartRepository.
type memCarts struct{ *memStore }

func (r memCarts) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cartOf(userID)
}

func (r memCarts) GetCartID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.carts[userID]
	if !ok {
		return uuid.Nil, domain.NewNotFoundError("Cart not found")
	}
	return id, nil
}

func (r memCarts) UpsertItem(ctx context.Context, cartID, productID uuid.UUID, quantity int, price float64) (*domain.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, item := range r.items {
		if item.CartID == cartID && item.ProductID == productID {
			item.Quantity += quantity
			item.UpdatedAt = r.tick()
			r.items[id] = item
			return &item, nil
		}
	}
	now := r.tick()
	item := domain.CartItem{ID: uuid.New(), CartID: cartID, ProductID: productID, Quantity: quantity, PriceAtAddition: price, CreatedAt: now, UpdatedAt: now}
	r.items[item.ID] = item
	return &item, nil
}

func (r memCarts) ownedItem(userID, itemID uuid.UUID) (domain.CartItem, bool) {
	item, ok := r.items[itemID]
	if !ok || item.CartID != r.carts[userID] {
		return domain.CartItem{}, false
	}
	return item, true
}

func (r memCarts) GetItemForUser(ctx context.Context, userID, itemID uuid.UUID) (*domain.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.ownedItem(userID, itemID)
	if !ok {
		return nil, domain.NewNotFoundError("Cart item not found")
	}
	p := r.products[item.ProductID]
	item.Product = &domain.CartProduct{ID: p.ID, Name: p.Name, Stock: p.Stock}
	return &item, nil
}

func (r memCarts) UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.ownedItem(userID, itemID)
	if !ok {
		return domain.NewNotFoundError("Cart item not found")
	}
	item.Quantity = quantity
	r.items[itemID] = item
	return nil
}

func (r memCarts) DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ownedItem(userID, itemID); !ok {
		return domain.NewNotFoundError("Cart item not found")
	}
	delete(r.items, itemID)
	return nil
}

func (r memCarts) Clear(ctx context.Context, cartID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, item := range r.items {
		if item.CartID == cartID {
			delete(r.items, id)
		}
	}
	return nil
}

// memOrders implements domain.OrderRepository and domain.CheckoutTx.
type memOrders struct{ *memStore }

func (r memOrders) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx domain.CheckoutTx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := r.snapshot()
	if err := fn(ctx, memCheckoutTx{r.memStore}); err != nil {
		r.restore(snap)
		return err
	}
	return nil
}

func (r memOrders) ListByUserID(ctx context.Context, userID uuid.UUID, page domain.PageRequest) ([]domain.Order, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mine := []domain.Order{}
	for _, o := range r.orders {
		if o.UserID == userID {
			mine = append(mine, o)
		}
	}
	sort.Slice(mine, func(i, j int) bool { return mine[i].CreatedAt.After(mine[j].CreatedAt) })
	total := len(mine)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.Limit
	if end > total {
		end = total
	}
	return mine[start:end], total, nil
}

func (r memOrders) GetByIDForUser(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok || o.UserID != userID {
		return nil, domain.NewNotFoundError("Order not found")
	}
	return &o, nil
}

// memCheckoutTx runs with memStore.mu already held.
type memCheckoutTx struct{ *memStore }

func (t memCheckoutTx) fail(step string) error {
	if t.failOn == step {
		return fmt.Errorf("%s: %w", step, errInjected)
	}
	return nil
}

func (t memCheckoutTx) LockCartForCheckout(ctx context.Context, userID uuid.UUID) (*domain.LockedCart, error) {
	if err := t.fail("lock"); err != nil {
		return nil, err
	}
	cartID, ok := t.carts[userID]
	if !ok {
		return &domain.LockedCart{}, nil
	}
	locked := &domain.LockedCart{CartID: cartID}
	for _, item := range t.items {
		if item.CartID != cartID {
			continue
		}
		p := t.products[item.ProductID]
		locked.Lines = append(locked.Lines, domain.CheckoutLine{
			CartItemID:      item.ID,
			ProductID:       p.ID,
			ProductName:     p.Name,
			Quantity:        item.Quantity,
			PriceAtAddition: item.PriceAtAddition,
			Stock:           p.Stock + t.stockBonus,
		})
	}
	sort.Slice(locked.Lines, func(i, j int) bool {
		return bytes.Compare(locked.Lines[i].ProductID[:], locked.Lines[j].ProductID[:]) < 0
	})
	return locked, nil
}

func (t memCheckoutTx) InsertOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := t.fail("insert_order"); err != nil {
		return nil, err
	}
	order.ID = uuid.New()
	order.CreatedAt = t.tick()
	order.UpdatedAt = order.CreatedAt
	for i := range order.Items {
		order.Items[i].ID = uuid.New()
		order.Items[i].OrderID = order.ID
		order.Items[i].CreatedAt = order.CreatedAt
	}
	stored := *order
	stored.Items = append([]domain.OrderItem(nil), order.Items...)
	t.orders[order.ID] = stored
	return order, nil
}

func (t memCheckoutTx) DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) (bool, error) {
	if err := t.fail("decrement"); err != nil {
		return false, err
	}
	p, ok := t.products[productID]
	if !ok || p.Stock < quantity {
		return false, nil
	}
	p.Stock -= quantity
	t.products[productID] = p
	return true, nil
}

func (t memCheckoutTx) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	if err := t.fail("clear"); err != nil {
		return err
	}
	for id, item := range t.items {
		if item.CartID == cartID {
			delete(t.items, id)
		}
	}
	return nil
}

// fakeAssets implements domain.AssetStorage.
type fakeAssets struct {
	mu        sync.Mutex
	uploaded  []string
	deleted   []string
	failSave  bool
	failClean bool
}

func (a *fakeAssets) Upload(ctx context.Context, file *domain.Upload) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failSave {
		return "", errInjected
	}
	if _, err := io.Copy(io.Discard, file.Body); err != nil {
		return "", err
	}
	url := fmt.Sprintf("https://cdn.example/ecommerce/%d-%s", len(a.uploaded)+1, file.Filename)
	a.uploaded = append(a.uploaded, url)
	return url, nil
}

func (a *fakeAssets) Delete(ctx context.Context, url string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.deleted = append(a.deleted, url)
	if a.failClean {
		return errInjected
	}
	return nil
}

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (fakeHasher) Compare(hash, password string) (bool, error) {
	return hash == "hashed:"+password, nil
}

type fakeTokens struct{}

func (fakeTokens) Issue(user *domain.User) (string, error) { return "token-for-" + user.ID.String(), nil }

type recordingMetrics struct {
	mu       sync.Mutex
	placed   int
	failures map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{failures: map[string]int{}}
}

func (m *recordingMetrics) OrderPlaced() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.placed++
}

func (m *recordingMetrics) CheckoutFailed(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[reason]++
}
