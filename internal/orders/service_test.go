package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/luestilo/estilo-backend/internal/products"
	"github.com/luestilo/estilo-backend/pkg/db"
	"github.com/luestilo/estilo-backend/pkg/db/models"
	"github.com/luestilo/estilo-backend/pkg/enums"
	pkgerrors "github.com/luestilo/estilo-backend/pkg/errors"
	"github.com/luestilo/estilo-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	productsTable := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL,
  price NUMERIC NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0,
  category TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	ordersTable := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  total_amount NUMERIC NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItemsTable := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  total_price NUMERIC NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, conn.Exec(productsTable).Error)
	require.NoError(t, conn.Exec(ordersTable).Error)
	require.NoError(t, conn.Exec(orderItemsTable).Error)
	return conn
}

func newTestService(t *testing.T, conn *gorm.DB) *Service {
	t.Helper()

	svc, err := NewService(db.FromGorm(conn))
	require.NoError(t, err)
	return svc
}

func seedProduct(t *testing.T, conn *gorm.DB, name, priceStr string, stock int) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:          uuid.New(),
		Name:        name,
		Description: name + " description",
		Price:       decimal.RequireFromString(priceStr),
		Stock:       stock,
		Category:    "vestidos",
		IsActive:    true,
	}
	require.NoError(t, conn.Create(product).Error)
	return product
}

func productStock(t *testing.T, conn *gorm.DB, id uuid.UUID) int {
	t.Helper()

	repo := products.NewRepository(conn)
	product, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	return product.Stock
}

func TestCreateOrderDecrementsStockAndComputesTotal(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newTestService(t, conn)
	product := seedProduct(t, conn, "Vestido Floral", "99.99", 10)
	userID := uuid.New()

	order, err := svc.Create(context.Background(), userID, CreateOrderRequest{
		Items: []CreateOrderItem{{ProductID: product.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	assert.Equal(t, userID, order.UserID)
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("199.98")),
		"total was %s", order.TotalAmount)

	require.Len(t, order.Items, 1)
	item := order.Items[0]
	assert.True(t, item.UnitPrice.Equal(decimal.RequireFromString("99.99")))
	assert.True(t, item.TotalPrice.Equal(decimal.RequireFromString("199.98")))
	assert.Equal(t, 2, item.Quantity)

	assert.Equal(t, 8, productStock(t, conn, product.ID))
}

func TestCreateOrderTotalEqualsItemSum(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newTestService(t, conn)
	dress := seedProduct(t, conn, "Vestido", "120.50", 5)
	blouse := seedProduct(t, conn, "Blusa", "59.90", 5)

	order, err := svc.Create(context.Background(), uuid.New(), CreateOrderRequest{
		Items: []CreateOrderItem{
			{ProductID: dress.ID, Quantity: 2},
			{ProductID: blouse.ID, Quantity: 3},
		},
	})
	require.NoError(t, err)

	sum := decimal.Zero
	for _, item := range order.Items {
		sum = sum.Add(item.TotalPrice)
	}
	assert.True(t, order.TotalAmount.Equal(sum))
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("420.70")))
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newTestService(t, conn)
	product := seedProduct(t, conn, "Vestido Floral", "99.99", 1)

	_, err := svc.Create(context.Background(), uuid.New(), CreateOrderRequest{
		Items: []CreateOrderItem{{ProductID: product.ID, Quantity: 2}},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDomain))
	assert.Contains(t, pkgerrors.As(err).Message(), "Vestido Floral")

	assert.Equal(t, 1, productStock(t, conn, product.ID))
	assertNoOrders(t, conn)
}

func TestCreateOrderMissingProductRollsBackEverything(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newTestService(t, conn)
	product := seedProduct(t, conn, "Vestido Floral", "99.99", 10)
	missing := uuid.New()

	_, err := svc.Create(context.Background(), uuid.New(), CreateOrderRequest{
		Items: []CreateOrderItem{
			{ProductID: product.ID, Quantity: 2},
			{ProductID: missing, Quantity: 1},
		},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDomain))
	assert.Contains(t, pkgerrors.As(err).Message(), missing.String())

	assert.Equal(t, 10, productStock(t, conn, product.ID))
	assertNoOrders(t, conn)
}

func TestCreateOrderRejectsEmptyItems(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newTestService(t, conn)

	_, err := svc.Create(context.Background(), uuid.New(), CreateOrderRequest{})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCreateOrderRejectsNonPositiveQuantity(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newTestService(t, conn)
	product := seedProduct(t, conn, "Vestido", "99.99", 10)

	_, err := svc.Create(context.Background(), uuid.New(), CreateOrderRequest{
		Items: []CreateOrderItem{{ProductID: product.ID, Quantity: 0}},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCreateOrderDuplicateLinesShareStock(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newTestService(t, conn)
	product := seedProduct(t, conn, "Vestido", "10.00", 3)

	_, err := svc.Create(context.Background(), uuid.New(), CreateOrderRequest{
		Items: []CreateOrderItem{
			{ProductID: product.ID, Quantity: 2},
			{ProductID: product.ID, Quantity: 2},
		},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDomain))
	assert.Equal(t, 3, productStock(t, conn, product.ID))
}

func TestDeleteOrderRestoresStock(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newTestService(t, conn)
	product := seedProduct(t, conn, "Vestido Floral", "99.99", 10)
	owner := uuid.New()

	order, err := svc.Create(context.Background(), owner, CreateOrderRequest{
		Items: []CreateOrderItem{{ProductID: product.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	require.Equal(t, 8, productStock(t, conn, product.ID))

	removed, err := svc.Delete(context.Background(), Caller{UserID: owner}, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, removed.ID)

	assert.Equal(t, 10, productStock(t, conn, product.ID))
	assertNoOrders(t, conn)
}

func TestDeleteOrderNotFound(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newTestService(t, conn)

	_, err := svc.Delete(context.Background(), Caller{UserID: uuid.New()}, uuid.New())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestGetOrderForbiddenForNonOwner(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newTestService(t, conn)
	product := seedProduct(t, conn, "Vestido", "10.00", 5)
	owner := uuid.New()

	order, err := svc.Create(context.Background(), owner, CreateOrderRequest{
		Items: []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), Caller{UserID: uuid.New()}, order.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = svc.Get(context.Background(), Caller{UserID: owner}, order.ID)
	assert.NoError(t, err)
}

func TestUpdateOrderForbiddenForNonOwner(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newTestService(t, conn)
	product := seedProduct(t, conn, "Vestido", "10.00", 5)
	owner := uuid.New()

	order, err := svc.Create(context.Background(), owner, CreateOrderRequest{
		Items: []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	confirmed := enums.OrderStatusConfirmed
	_, err = svc.Update(context.Background(), Caller{UserID: uuid.New()}, order.ID, UpdateOrderRequest{Status: &confirmed})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	kept, err := svc.Get(context.Background(), Caller{UserID: owner}, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPending, kept.Status)
}

func TestDeleteOrderForbiddenForNonOwner(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newTestService(t, conn)
	product := seedProduct(t, conn, "Vestido", "10.00", 5)
	owner := uuid.New()

	order, err := svc.Create(context.Background(), owner, CreateOrderRequest{
		Items: []CreateOrderItem{{ProductID: product.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	require.Equal(t, 3, productStock(t, conn, product.ID))

	_, err = svc.Delete(context.Background(), Caller{UserID: uuid.New()}, order.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	assert.Equal(t, 3, productStock(t, conn, product.ID))
	_, err = svc.Get(context.Background(), Caller{UserID: owner}, order.ID)
	assert.NoError(t, err)
}

func TestSuperuserMayManageAnyOrder(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newTestService(t, conn)
	product := seedProduct(t, conn, "Vestido", "10.00", 5)
	admin := Caller{UserID: uuid.New(), IsSuperuser: true}

	order, err := svc.Create(context.Background(), uuid.New(), CreateOrderRequest{
		Items: []CreateOrderItem{{ProductID: product.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), admin, order.ID)
	require.NoError(t, err)

	_, err = svc.Delete(context.Background(), admin, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, productStock(t, conn, product.ID))
	assertNoOrders(t, conn)
}

func TestUpdateOrderStatus(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newTestService(t, conn)
	product := seedProduct(t, conn, "Vestido", "10.00", 5)
	owner := uuid.New()

	order, err := svc.Create(context.Background(), owner, CreateOrderRequest{
		Items: []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	confirmed := enums.OrderStatusConfirmed
	updated, err := svc.Update(context.Background(), Caller{UserID: owner}, order.ID, UpdateOrderRequest{Status: &confirmed})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusConfirmed, updated.Status)

	assert.Equal(t, 4, productStock(t, conn, product.ID))
}

func TestUpdateOrderRejectsUnknownStatus(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newTestService(t, conn)
	product := seedProduct(t, conn, "Vestido", "10.00", 5)
	owner := uuid.New()

	order, err := svc.Create(context.Background(), owner, CreateOrderRequest{
		Items: []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	bogus := enums.OrderStatus("shipped-to-mars")
	_, err = svc.Update(context.Background(), Caller{UserID: owner}, order.ID, UpdateOrderRequest{Status: &bogus})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestListOrdersScopedToUser(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newTestService(t, conn)
	product := seedProduct(t, conn, "Vestido", "10.00", 50)
	alice := uuid.New()
	bob := uuid.New()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(context.Background(), alice, CreateOrderRequest{
			Items: []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
		})
		require.NoError(t, err)
	}
	_, err := svc.Create(context.Background(), bob, CreateOrderRequest{
		Items: []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	envelope, err := svc.List(context.Background(), alice, pagination.Params{}, ListFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), envelope.Metadata.Total)

	items, ok := envelope.Items.([]OrderDTO)
	require.True(t, ok)
	for _, order := range items {
		assert.Equal(t, alice, order.UserID)
	}
}

func TestListOrdersStatusFilter(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newTestService(t, conn)
	product := seedProduct(t, conn, "Vestido", "10.00", 50)
	userID := uuid.New()

	first, err := svc.Create(context.Background(), userID, CreateOrderRequest{
		Items: []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), userID, CreateOrderRequest{
		Items: []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	cancelled := enums.OrderStatusCancelled
	_, err = svc.Update(context.Background(), Caller{UserID: userID}, first.ID, UpdateOrderRequest{Status: &cancelled})
	require.NoError(t, err)

	envelope, err := svc.List(context.Background(), userID, pagination.Params{}, ListFilters{Status: &cancelled})
	require.NoError(t, err)
	assert.Equal(t, int64(1), envelope.Metadata.Total)
}

func assertNoOrders(t *testing.T, conn *gorm.DB) {
	t.Helper()

	var orderCount int64
	require.NoError(t, conn.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Zero(t, orderCount)

	var itemCount int64
	require.NoError(t, conn.Model(&models.OrderItem{}).Count(&itemCount).Error)
	assert.Zero(t, itemCount)
}
