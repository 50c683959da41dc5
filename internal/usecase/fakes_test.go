package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/DRSN-tech/catalog-backend/internal/domain"
	"github.com/DRSN-tech/catalog-backend/pkg/e"
	"github.com/DRSN-tech/catalog-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

// memStore — хранилище в памяти с транзакциями через снимок состояния.
type memStore struct {
	mu         sync.Mutex
	nextID     int64
	products   map[int64]domain.Product
	categories map[int64]domain.Category
	links      map[int64]map[int64]struct{} // product -> categories
	orders     map[int64]domain.Order
	outbox     []*OutboxEvent

	productLookups  int
	saleLineQueries int
	commits         int
	rollbacks       int
	failStockUpdate error
}

func newMemStore() *memStore {
	return &memStore{
		nextID:     100,
		products:   make(map[int64]domain.Product),
		categories: make(map[int64]domain.Category),
		links:      make(map[int64]map[int64]struct{}),
		orders:     make(map[int64]domain.Order),
	}
}

type snapshot struct {
	nextID     int64
	products   map[int64]domain.Product
	categories map[int64]domain.Category
	links      map[int64]map[int64]struct{}
	orders     map[int64]domain.Order
	outbox     []*OutboxEvent
}

func (s *memStore) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := snapshot{
		nextID:     s.nextID,
		products:   make(map[int64]domain.Product, len(s.products)),
		categories: make(map[int64]domain.Category, len(s.categories)),
		links:      make(map[int64]map[int64]struct{}, len(s.links)),
		orders:     make(map[int64]domain.Order, len(s.orders)),
		outbox:     append([]*OutboxEvent(nil), s.outbox...),
	}
	for k, v := range s.products {
		snap.products[k] = v
	}
	for k, v := range s.categories {
		snap.categories[k] = v
	}
	for k, v := range s.links {
		inner := make(map[int64]struct{}, len(v))
		for c := range v {
			inner[c] = struct{}{}
		}
		snap.links[k] = inner
	}
	for k, v := range s.orders {
		snap.orders[k] = cloneOrder(v)
	}
	return snap
}

func (s *memStore) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID = snap.nextID
	s.products = snap.products
	s.categories = snap.categories
	s.links = snap.links
	s.orders = snap.orders
	s.outbox = snap.outbox
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func cloneOrder(o domain.Order) domain.Order {
	o.Items = append([]domain.OrderItem(nil), o.Items...)
	return o
}

// seedProduct добавляет товар напрямую, минуя use case.
func (s *memStore) seedProduct(id int64, name, price string, stock int, categoryIDs ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products[id] = domain.Product{
		ID:            id,
		Name:          name,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
	}
	s.links[id] = make(map[int64]struct{})
	for _, c := range categoryIDs {
		s.links[id][c] = struct{}{}
	}
}

func (s *memStore) seedCategory(id int64, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[id] = domain.Category{ID: id, Name: name}
}

func (s *memStore) seedOrder(o domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = cloneOrder(o)
}

func (s *memStore) stock(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].StockQuantity
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *memStore) events() []*OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*OutboxEvent(nil), s.outbox...)
}

func (s *memStore) lookups() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.productLookups
}

// fakeTxManager откатывает состояние memStore, если fn вернула ошибку.
type fakeTxManager struct {
	s *memStore
}

func (f fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := f.s.snapshot()
	if err := fn(ctx); err != nil {
		f.s.restore(snap)
		f.s.mu.Lock()
		f.s.rollbacks++
		f.s.mu.Unlock()
		return err
	}
	f.s.mu.Lock()
	f.s.commits++
	f.s.mu.Unlock()
	return nil
}

type fakeProductRepo struct {
	s *memStore
}

func (r fakeProductRepo) withCategories(p domain.Product) *domain.Product {
	ids := make([]int64, 0, len(r.s.links[p.ID]))
	for id := range r.s.links[p.ID] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	p.Categories = nil
	for _, id := range ids {
		if c, ok := r.s.categories[id]; ok {
			p.Categories = append(p.Categories, c)
		}
	}
	return &p
}

func (r fakeProductRepo) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored := *p
	stored.ID = r.s.id()
	stored.Categories = nil
	r.s.products[stored.ID] = stored
	r.s.links[stored.ID] = make(map[int64]struct{})
	for _, c := range p.Categories {
		r.s.links[stored.ID][c.ID] = struct{}{}
	}
	return r.withCategories(stored), nil
}

func (r fakeProductRepo) Update(_ context.Context, p *domain.Product) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[p.ID]; !ok {
		return nil, e.Wrap("fakeProductRepo.Update", e.ErrProductNotFound)
	}
	stored := *p
	stored.Categories = nil
	r.s.products[p.ID] = stored
	r.s.links[p.ID] = make(map[int64]struct{})
	for _, c := range p.Categories {
		r.s.links[p.ID][c.ID] = struct{}{}
	}
	return r.withCategories(stored), nil
}

func (r fakeProductRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, e.Wrap("fakeProductRepo.GetByID", e.ErrProductNotFound)
	}
	return r.withCategories(p), nil
}

func (r fakeProductRepo) GetForUpdate(_ context.Context, id int64) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.productLookups++
	p, ok := r.s.products[id]
	if !ok {
		return nil, e.Wrap("fakeProductRepo.GetForUpdate", e.ErrProductNotFound)
	}
	return &p, nil
}

func (r fakeProductRepo) sorted(filter func(domain.Product) bool) []domain.Product {
	result := make([]domain.Product, 0)
	for _, p := range r.s.products {
		if filter(p) {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (r fakeProductRepo) List(_ context.Context) ([]domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sorted(func(domain.Product) bool { return true }), nil
}

func (r fakeProductRepo) ListByIDs(_ context.Context, ids []int64) ([]domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	return r.sorted(func(p domain.Product) bool {
		_, ok := want[p.ID]
		return ok
	}), nil
}

func (r fakeProductRepo) ListByCategory(_ context.Context, categoryID int64) ([]domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.sorted(func(p domain.Product) bool {
		_, ok := r.s.links[p.ID][categoryID]
		return ok
	}), nil
}

func (r fakeProductRepo) Names(_ context.Context, ids []int64) (map[int64]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	names := make(map[int64]string)
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			names[id] = p.Name
		}
	}
	return names, nil
}

func (r fakeProductRepo) UpdateStock(_ context.Context, id int64, stock int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.failStockUpdate != nil {
		return r.s.failStockUpdate
	}
	if stock < 0 {
		return errors.New("violates check constraint products_stock_quantity_check")
	}
	p, ok := r.s.products[id]
	if !ok {
		return e.Wrap("fakeProductRepo.UpdateStock", e.ErrProductNotFound)
	}
	p.StockQuantity = stock
	r.s.products[id] = p
	return nil
}

func (r fakeProductRepo) Delete(_ context.Context, id int64) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, e.Wrap("fakeProductRepo.Delete", e.ErrProductNotFound)
	}
	deleted := r.withCategories(p)
	delete(r.s.products, id)
	delete(r.s.links, id)
	return deleted, nil
}

type fakeCategoryRepo struct {
	s *memStore
}

func (r fakeCategoryRepo) withProducts(c domain.Category) *domain.Category {
	c.Products = nil
	ids := make([]int64, 0)
	for pid, cats := range r.s.links {
		if _, ok := cats[c.ID]; ok {
			ids = append(ids, pid)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			c.Products = append(c.Products, p)
		}
	}
	return &c
}

func (r fakeCategoryRepo) setProducts(categoryID int64, products []domain.Product) {
	for _, cats := range r.s.links {
		delete(cats, categoryID)
	}
	for _, p := range products {
		if r.s.links[p.ID] == nil {
			r.s.links[p.ID] = make(map[int64]struct{})
		}
		r.s.links[p.ID][categoryID] = struct{}{}
	}
}

func (r fakeCategoryRepo) Create(_ context.Context, c *domain.Category) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored := *c
	stored.ID = r.s.id()
	stored.Products = nil
	r.s.categories[stored.ID] = stored
	r.setProducts(stored.ID, c.Products)
	return r.withProducts(stored), nil
}

func (r fakeCategoryRepo) Update(_ context.Context, c *domain.Category) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.categories[c.ID]; !ok {
		return nil, e.Wrap("fakeCategoryRepo.Update", e.ErrCategoryNotFound)
	}
	stored := *c
	stored.Products = nil
	r.s.categories[c.ID] = stored
	r.setProducts(c.ID, c.Products)
	return r.withProducts(stored), nil
}

func (r fakeCategoryRepo) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.categories[id]
	if !ok {
		return nil, e.Wrap("fakeCategoryRepo.GetByID", e.ErrCategoryNotFound)
	}
	return r.withProducts(c), nil
}

func (r fakeCategoryRepo) List(_ context.Context) ([]domain.Category, error) {
	return r.ListByIDs(context.Background(), nil)
}

func (r fakeCategoryRepo) ListByIDs(_ context.Context, ids []int64) ([]domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	result := make([]domain.Category, 0)
	for id, c := range r.s.categories {
		if _, ok := want[id]; ok || ids == nil {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r fakeCategoryRepo) Delete(_ context.Context, id int64) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.categories[id]
	if !ok {
		return nil, e.Wrap("fakeCategoryRepo.Delete", e.ErrCategoryNotFound)
	}
	deleted := r.withProducts(c)
	delete(r.s.categories, id)
	for _, cats := range r.s.links {
		delete(cats, id)
	}
	return deleted, nil
}

type fakeOrderRepo struct {
	s *memStore
}

func (r fakeOrderRepo) Create(_ context.Context, o *domain.Order) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored := cloneOrder(*o)
	stored.ID = r.s.id()
	for i := range stored.Items {
		stored.Items[i].ID = r.s.id()
		stored.Items[i].OrderID = stored.ID
	}
	r.s.orders[stored.ID] = stored

	created := cloneOrder(stored)
	return &created, nil
}

func (r fakeOrderRepo) Update(_ context.Context, o *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.orders[o.ID]; !ok {
		return e.Wrap("fakeOrderRepo.Update", e.ErrOrderNotFound)
	}
	r.s.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (r fakeOrderRepo) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, e.Wrap("fakeOrderRepo.GetByID", e.ErrOrderNotFound)
	}
	found := cloneOrder(o)
	return &found, nil
}

func (r fakeOrderRepo) GetForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	return r.GetByID(ctx, id)
}

func (r fakeOrderRepo) List(ctx context.Context) ([]domain.Order, error) {
	return r.ListSince(ctx, time.Time{})
}

func (r fakeOrderRepo) ListSince(_ context.Context, since time.Time) ([]domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]domain.Order, 0)
	for _, o := range r.s.orders {
		if !o.OrderDate.Before(since) {
			result = append(result, cloneOrder(o))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r fakeOrderRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.orders[id]; !ok {
		return e.Wrap("fakeOrderRepo.Delete", e.ErrOrderNotFound)
	}
	delete(r.s.orders, id)
	return nil
}

type fakeSalesRepo struct {
	s *memStore
}

func (r fakeSalesRepo) SaleLines(_ context.Context) ([]domain.SaleLine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.saleLineQueries++
	lines := make([]domain.SaleLine, 0)
	for _, o := range r.s.orders {
		for _, it := range o.Items {
			lines = append(lines, domain.SaleLine{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
		}
	}
	return lines, nil
}

type fakeOutboxRepo struct {
	s *memStore
}

func (r fakeOutboxRepo) Create(_ context.Context, event *OutboxEvent) (*OutboxEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored := *event
	stored.ID = r.s.id()
	r.s.outbox = append(r.s.outbox, &stored)
	return &stored, nil
}

func (r fakeOutboxRepo) GetAndMarkAsProcessing(_ context.Context, limit int) ([]*OutboxEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var batch []*OutboxEvent
	for _, ev := range r.s.outbox {
		if len(batch) == limit {
			break
		}
		if ev.Status == Pending {
			ev.Status = Processing
			batch = append(batch, ev)
		}
	}
	return batch, nil
}

func (r fakeOutboxRepo) MarkAsProcessed(_ context.Context, id int64) error {
	return r.setStatus(id, Processed)
}

func (r fakeOutboxRepo) MarkAsPending(_ context.Context, id int64) error {
	return r.setStatus(id, Pending)
}

func (r fakeOutboxRepo) setStatus(id int64, status OutboxStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, ev := range r.s.outbox {
		if ev.ID == id {
			ev.Status = status
		}
	}
	return nil
}

// fakeCache — кэш отчётов в памяти. Запись идёт из фоновых горутин, поэтому под мьютексом.
// Если задан gate, запись ждёт его закрытия.
type fakeCache struct {
	mu            sync.Mutex
	gen           int64
	totals        map[int64]decimal.Decimal
	ranking       []domain.ProductSales
	invalidations int
	err           error
	gate          chan struct{}
	stored        chan struct{}
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		stored: make(chan struct{}, 16),
	}
}

func (c *fakeCache) ReportGeneration(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	return c.gen, nil
}

func (c *fakeCache) GetSalesTotals(context.Context) (map[int64]decimal.Decimal, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, false, c.err
	}
	return c.totals, c.totals != nil, nil
}

func (c *fakeCache) SetSalesTotals(_ context.Context, gen int64, totals map[int64]decimal.Decimal) error {
	c.wait()
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.notify()
	if c.err != nil {
		return c.err
	}
	if gen == c.gen {
		c.totals = totals
	}
	return nil
}

func (c *fakeCache) GetSalesRanking(context.Context) ([]domain.ProductSales, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, false, c.err
	}
	return c.ranking, c.ranking != nil, nil
}

func (c *fakeCache) SetSalesRanking(_ context.Context, gen int64, ranking []domain.ProductSales) error {
	c.wait()
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.notify()
	if c.err != nil {
		return c.err
	}
	if gen == c.gen {
		c.ranking = ranking
	}
	return nil
}

func (c *fakeCache) InvalidateReports(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidations++
	if c.err != nil {
		return c.err
	}
	c.gen++
	c.totals = nil
	c.ranking = nil
	return nil
}

func (c *fakeCache) wait() {
	if c.gate != nil {
		<-c.gate
	}
}

func (c *fakeCache) notify() {
	select {
	case c.stored <- struct{}{}:
	default:
	}
}

func (c *fakeCache) invalidated() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidations
}

type fakeArchive struct {
	reports []*SalesReport
	err     error
}

func (a *fakeArchive) Save(_ context.Context, report *SalesReport) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.reports = append(a.reports, report)
	return "reports/sales/test.json", nil
}

type fixture struct {
	store    *memStore
	cache    *fakeCache
	archive  *fakeArchive
	orders   *OrderUseCase
	products *ProductUseCase
	cats     *CategoryUseCase
	reports  *ReportUseCase
}

func newFixture(policy StockPolicy) *fixture {
	s := newMemStore()
	cache := newFakeCache()
	archive := &fakeArchive{}
	tx := fakeTxManager{s: s}
	log := logger.Nop{}

	productRepo := fakeProductRepo{s: s}
	categoryRepo := fakeCategoryRepo{s: s}

	return &fixture{
		store:    s,
		cache:    cache,
		archive:  archive,
		orders:   NewOrderUC(fakeOrderRepo{s: s}, productRepo, fakeOutboxRepo{s: s}, cache, tx, log, policy),
		products: NewProductUC(productRepo, categoryRepo, cache, tx, log),
		cats:     NewCategoryUC(categoryRepo, productRepo, tx, log),
		reports:  NewReportUC(fakeSalesRepo{s: s}, productRepo, cache, archive, log),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
