package usecase_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"techgear/internal/domain/model"
	repo "techgear/internal/repository"
)

// =====================
// メモリ上のストア（WithinTxは直列、エラーなら巻き戻す）
// =====================

type fakeState struct {
	users       map[int64]model.User
	products    map[int64]model.Product
	carts       map[int64]model.Cart
	items       map[int64]model.CartItem
	orders      map[int64]model.Order
	adjustments []model.InventoryAdjustment
	nextID      int64
}

func (s fakeState) clone() fakeState {
	c := fakeState{
		users:       make(map[int64]model.User, len(s.users)),
		products:    make(map[int64]model.Product, len(s.products)),
		carts:       make(map[int64]model.Cart, len(s.carts)),
		items:       make(map[int64]model.CartItem, len(s.items)),
		orders:      make(map[int64]model.Order, len(s.orders)),
		adjustments: append([]model.InventoryAdjustment(nil), s.adjustments...),
		nextID:      s.nextID,
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.carts {
		c.carts[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.orders {
		v.Items = append([]model.OrderItem(nil), v.Items...)
		c.orders[k] = v
	}
	return c
}

type fakeStore struct {
	mu sync.Mutex
	st fakeState

	// メソッド名 => 返すエラー
	failOn map[string]error
	calls  map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		st: fakeState{
			users:    map[int64]model.User{},
			products: map[int64]model.Product{},
			carts:    map[int64]model.Cart{},
			items:    map[int64]model.CartItem{},
			orders:   map[int64]model.Order{},
			nextID:   100,
		},
		failOn: map[string]error{},
		calls:  map[string]int{},
	}
}

func (f *fakeStore) id() int64 {
	f.st.nextID++
	return f.st.nextID
}

func (f *fakeStore) hit(name string) error {
	f.calls[name]++
	return f.failOn[name]
}

func (f *fakeStore) addUser(id int64, admin bool) model.Identity {
	f.st.users[id] = model.User{ID: id, Email: "u@example.com", IsActive: true, IsAdmin: admin}
	return model.Identity{UserID: id, IsAdmin: admin}
}

func (f *fakeStore) addProduct(id int64, name string, price int64, stock int64) {
	f.addProductIn(id, name, price, stock, model.DefaultCurrency)
}

func (f *fakeStore) addProductIn(id int64, name string, price int64, stock int64, currency string) {
	f.st.products[id] = model.Product{ID: id, Name: name, PriceCents: price, Stock: stock, Currency: currency}
}

func (f *fakeStore) stock(id int64) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.st.products[id].Stock
}

func (f *fakeStore) setPrice(id int64, price int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.st.products[id]
	p.PriceCents = price
	f.st.products[id] = p
}

func (f *fakeStore) setStock(id int64, stock int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.st.products[id]
	p.Stock = stock
	f.st.products[id] = p
}

func (f *fakeStore) orderCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.st.orders)
}

func (f *fakeStore) activeCarts(userID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.st.carts {
		if c.UserID == userID && c.Status == model.CartStatusActive {
			n++
		}
	}
	return n
}

func (f *fakeStore) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return repo.ErrBusy
	}
	if err := f.hit("WithinTx"); err != nil {
		return err
	}

	snap := f.st.clone()
	if err := fn(fakeTx{f}); err != nil {
		f.st = snap
		return err
	}
	return nil
}

type fakeTx struct{ f *fakeStore }

func (t fakeTx) Users() repo.UserRepository          { return fakeUsers{t.f} }
func (t fakeTx) Products() repo.ProductRepository    { return fakeProducts{t.f} }
func (t fakeTx) Inventory() repo.InventoryRepository { return fakeInventory{t.f} }
func (t fakeTx) Carts() repo.CartRepository          { return fakeCarts{t.f} }
func (t fakeTx) Orders() repo.OrderRepository        { return fakeOrders{t.f} }

// ---- users

type fakeUsers struct{ f *fakeStore }

func (r fakeUsers) Create(ctx context.Context, u *model.User) error {
	for _, existing := range r.f.st.users {
		if existing.Email == u.Email {
			return repo.ErrConflict
		}
	}
	u.ID = r.f.id()
	r.f.st.users[u.ID] = *u
	return nil
}

func (r fakeUsers) FindByID(ctx context.Context, id int64) (model.User, error) {
	u, ok := r.f.st.users[id]
	if !ok {
		return model.User{}, repo.ErrNotFound
	}
	return u, nil
}

func (r fakeUsers) FindByEmail(ctx context.Context, email string) (model.User, error) {
	for _, u := range r.f.st.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repo.ErrNotFound
}

func (r fakeUsers) LockByID(ctx context.Context, id int64) (model.User, error) {
	if err := r.f.hit("LockByID"); err != nil {
		return model.User{}, err
	}
	return r.FindByID(ctx, id)
}

// ---- products

type fakeProducts struct{ f *fakeStore }

func (r fakeProducts) List(ctx context.Context) ([]model.Product, error) {
	out := make([]model.Product, 0, len(r.f.st.products))
	for _, p := range r.f.st.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r fakeProducts) FindByID(ctx context.Context, id int64) (model.Product, error) {
	p, ok := r.f.st.products[id]
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (r fakeProducts) FindByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	out := map[int64]model.Product{}
	for _, id := range ids {
		if p, ok := r.f.st.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (r fakeProducts) Create(ctx context.Context, p model.Product) (model.Product, error) {
	p.ID = r.f.id()
	r.f.st.products[p.ID] = p
	return p, nil
}

// ---- inventory

type fakeInventory struct{ f *fakeStore }

func (r fakeInventory) FindForShare(ctx context.Context, id int64) (model.Product, error) {
	return fakeProducts(r).FindByID(ctx, id)
}

func (r fakeInventory) LockForUpdate(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	if err := r.f.hit("LockForUpdate"); err != nil {
		return nil, err
	}
	return fakeProducts(r).FindByIDs(ctx, ids)
}

func (r fakeInventory) DecreaseStockIfEnough(ctx context.Context, id int64, qty int64) (bool, error) {
	if err := r.f.hit("DecreaseStockIfEnough"); err != nil {
		return false, err
	}
	p, ok := r.f.st.products[id]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	r.f.st.products[id] = p
	return true, nil
}

func (r fakeInventory) SetStock(ctx context.Context, id int64, stock int64) error {
	p, ok := r.f.st.products[id]
	if !ok {
		return repo.ErrNotFound
	}
	p.Stock = stock
	r.f.st.products[id] = p
	return nil
}

func (r fakeInventory) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	if err := r.f.hit("CreateAdjustment"); err != nil {
		return err
	}
	r.f.st.adjustments = append(r.f.st.adjustments, adj)
	return nil
}

// ---- carts

type fakeCarts struct{ f *fakeStore }

func (r fakeCarts) FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	for _, c := range r.f.st.carts {
		if c.UserID == userID && c.Status == model.CartStatusActive {
			items, _ := r.ListItems(ctx, c.ID)
			c.Items = items
			return c, nil
		}
	}
	return model.Cart{}, repo.ErrNotFound
}

func (r fakeCarts) CreateActive(ctx context.Context, userID int64) (model.Cart, error) {
	c := model.Cart{ID: r.f.id(), UserID: userID, Status: model.CartStatusActive, CreatedAt: time.Now()}
	r.f.st.carts[c.ID] = c
	c.Items = []model.CartItem{}
	return c, nil
}

func (r fakeCarts) ListItems(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	out := []model.CartItem{}
	for _, it := range r.f.st.items {
		if it.CartID == cartID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeCarts) SaveItem(ctx context.Context, cartID int64, productID int64, qty int64) error {
	if err := r.f.hit("SaveItem"); err != nil {
		return err
	}
	if qty <= 0 {
		return errors.New("invalid quantity")
	}
	for id, it := range r.f.st.items {
		if it.CartID == cartID && it.ProductID == productID {
			it.Quantity = qty
			r.f.st.items[id] = it
			return nil
		}
	}
	id := r.f.id()
	r.f.st.items[id] = model.CartItem{ID: id, CartID: cartID, ProductID: productID, Quantity: qty}
	return nil
}

func (r fakeCarts) DeleteItem(ctx context.Context, cartID int64, productID int64) error {
	for id, it := range r.f.st.items {
		if it.CartID == cartID && it.ProductID == productID {
			delete(r.f.st.items, id)
			return nil
		}
	}
	return repo.ErrNotFound
}

func (r fakeCarts) MarkCheckedOut(ctx context.Context, cartID int64) error {
	if err := r.f.hit("MarkCheckedOut"); err != nil {
		return err
	}
	c, ok := r.f.st.carts[cartID]
	if !ok || c.Status != model.CartStatusActive {
		return repo.ErrNotFound
	}
	c.Status = model.CartStatusCheckedOut
	r.f.st.carts[cartID] = c
	return nil
}

// ---- orders

type fakeOrders struct{ f *fakeStore }

func (r fakeOrders) Create(ctx context.Context, o model.Order, items []model.OrderItem) (model.Order, error) {
	if err := r.f.hit("Orders.Create"); err != nil {
		return model.Order{}, err
	}
	o.ID = r.f.id()
	o.Items = make([]model.OrderItem, len(items))
	for i, it := range items {
		it.ID = r.f.id()
		it.OrderID = o.ID
		o.Items[i] = it
	}
	r.f.st.orders[o.ID] = o
	return o, nil
}

func (r fakeOrders) ListByUserID(ctx context.Context, userID int64) ([]model.Order, error) {
	out := []model.Order{}
	for _, o := range r.f.st.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r fakeOrders) FindByID(ctx context.Context, id int64) (model.Order, error) {
	o, ok := r.f.st.orders[id]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}
