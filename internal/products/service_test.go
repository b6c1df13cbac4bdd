package products

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boutique-shop/boutique-shop/internal/auth"
	"github.com/boutique-shop/boutique-shop/internal/shared"
)

type mockProductRepo struct {
	mu       sync.Mutex
	products map[int64]*Product
	nextID   int64
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{products: make(map[int64]*Product), nextID: 1}
}

func (m *mockProductRepo) Insert(ctx context.Context, product *Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.ShopifyID == product.ShopifyID {
			return shared.ErrDuplicate
		}
	}
	product.ID = m.nextID
	m.nextID++
	product.CreatedAt = time.Now().UTC()
	product.UpdatedAt = product.CreatedAt
	copied := *product
	m.products[copied.ID] = &copied
	return nil
}

func (m *mockProductRepo) GetByID(ctx context.Context, id int64) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *mockProductRepo) FindByShopifyID(ctx context.Context, shopifyID string) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.ShopifyID == shopifyID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockProductRepo) List(ctx context.Context) ([]Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockProductRepo) ListByCreator(ctx context.Context, userID int64) ([]Product, error) {
	all, _ := m.List(ctx)
	var out []Product
	for _, p := range all {
		if p.CreatedBy == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProductRepo) BestsellersByCreator(ctx context.Context, userID int64) ([]Product, error) {
	out, _ := m.ListByCreator(ctx, userID)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SalesCount > out[j].SalesCount })
	return out, nil
}

func (m *mockProductRepo) AddSales(ctx context.Context, productID int64, quantity int, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[productID]
	if !ok {
		return shared.ErrNotFound
	}
	p.SalesCount += quantity
	p.UpdatedAt = at
	return nil
}

var _ Repository = (*mockProductRepo)(nil)

type mockShopify struct {
	nextID  string
	created []string
	err     error
}

func (m *mockShopify) CreateProduct(ctx context.Context, title string, price float64) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.created = append(m.created, title)
	return m.nextID, nil
}

func newTestService(t *testing.T) (*Service, *mockProductRepo, *mockShopify) {
	t.Helper()
	repo := newMockProductRepo()
	remote := &mockShopify{nextID: "900001"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(logger, repo, remote), repo, remote
}

func TestCreateWithoutShopifyIDCreatesRemoteProduct(t *testing.T) {
	service, _, remote := newTestService(t)

	product, err := service.Create(context.Background(), CreateInput{Title: "Tote Bag", Price: 29.90}, 1, false)
	require.NoError(t, err)
	assert.Equal(t, "900001", product.ShopifyID)
	assert.Equal(t, []string{"Tote Bag"}, remote.created)
	assert.Equal(t, int64(1), product.CreatedBy)
}

func TestCreateWithExistingShopifyIDSkipsRemoteCall(t *testing.T) {
	service, _, remote := newTestService(t)

	product, err := service.Create(context.Background(), CreateInput{Title: "Tote Bag", Price: 29.90, ShopifyID: "123"}, 1, false)
	require.NoError(t, err)
	assert.Equal(t, "123", product.ShopifyID)
	assert.Empty(t, remote.created)
}

func TestCreateImageRequiresPermission(t *testing.T) {
	service, _, _ := newTestService(t)
	input := CreateInput{Title: "Tote Bag", Price: 29.90, ImageURL: "https://cdn.example.com/tote.png"}

	_, err := service.Create(context.Background(), input, 1, false)
	require.ErrorIs(t, err, shared.ErrPermissionDenied)
	assert.Contains(t, err.Error(), auth.PermPostProductWithImage)

	product, err := service.Create(context.Background(), input, 1, true)
	require.NoError(t, err)
	require.NotNil(t, product.ImageURL)
	assert.Equal(t, input.ImageURL, *product.ImageURL)
}

func TestCreatePropagatesRemoteFailure(t *testing.T) {
	service, repo, remote := newTestService(t)
	remote.err = errors.New("shopify down")

	_, err := service.Create(context.Background(), CreateInput{Title: "Tote Bag", Price: 29.90}, 1, false)
	require.Error(t, err)

	all, _ := repo.List(context.Background())
	assert.Empty(t, all)
}

func TestCreateDuplicateShopifyID(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.Create(context.Background(), CreateInput{Title: "A", Price: 1, ShopifyID: "123"}, 1, false)
	require.NoError(t, err)

	_, err = service.Create(context.Background(), CreateInput{Title: "B", Price: 2, ShopifyID: "123"}, 1, false)
	assert.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestBestsellersOrderedBySales(t *testing.T) {
	service, repo, _ := newTestService(t)

	for i, shopifyID := range []string{"a", "b", "c"} {
		_, err := service.Create(context.Background(), CreateInput{Title: shopifyID, Price: 1, ShopifyID: shopifyID}, 1, false)
		require.NoError(t, err)
		require.NoError(t, repo.AddSales(context.Background(), int64(i+1), i*5, time.Now()))
	}

	best, err := service.Bestsellers(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, best, 3)
	assert.Equal(t, "c", best[0].ShopifyID)
	assert.Equal(t, 10, best[0].SalesCount)
	assert.Equal(t, "a", best[2].ShopifyID)
}

func TestRecordSale(t *testing.T) {
	service, repo, _ := newTestService(t)
	_, err := service.Create(context.Background(), CreateInput{Title: "A", Price: 1, ShopifyID: "123"}, 1, false)
	require.NoError(t, err)

	require.NoError(t, service.RecordSale(context.Background(), "123", 3))
	// Non-positive quantities count as a single unit.
	require.NoError(t, service.RecordSale(context.Background(), "123", 0))

	product, err := repo.FindByShopifyID(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, 4, product.SalesCount)
}

func TestSalesServiceRecordsSalesButCannotCreate(t *testing.T) {
	repo := newMockProductRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	full, _, _ := newTestService(t)

	_, err := full.Create(context.Background(), CreateInput{Title: "A", Price: 1, ShopifyID: "123"}, 1, false)
	require.NoError(t, err)

	sales := NewSalesService(logger, repo)
	_, err = sales.Create(context.Background(), CreateInput{Title: "B", Price: 2}, 1, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no shopify client")

	require.NoError(t, repo.Insert(context.Background(), &Product{ShopifyID: "456", CreatedBy: 1}))
	require.NoError(t, sales.RecordSale(context.Background(), "456", 2))
	product, err := repo.FindByShopifyID(context.Background(), "456")
	require.NoError(t, err)
	assert.Equal(t, 2, product.SalesCount)
}

func TestRecordSaleUnknownProduct(t *testing.T) {
	service, _, _ := newTestService(t)
	err := service.RecordSale(context.Background(), "999", 1)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
