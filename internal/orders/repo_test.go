package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfconnect/sfconnect-backend/pkg/db/models"
	"github.com/sfconnect/sfconnect-backend/pkg/enums"
	"github.com/sfconnect/sfconnect-backend/pkg/pagination"
)

func TestRepositoryCreateAndFindOrder(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	vendor := mustCreateUser(t, conn, enums.UserRoleVendor)
	supplier := mustCreateUser(t, conn, enums.UserRoleSupplier)
	product := mustCreateStockedProduct(t, conn, supplier.ID, "Basmati Rice", 62.50, 100, 1)

	order := &models.Order{
		ID:              uuid.New(),
		VendorID:        vendor.ID,
		SupplierID:      supplier.ID,
		TotalAmount:     decimal.NewFromFloat(125.00),
		Status:          enums.OrderStatusPending,
		OrderType:       enums.OrderTypeIndividual,
		DeliveryAddress: "Stall 14, Night Market",
		Items: []models.OrderItem{
			{
				ID:         uuid.New(),
				ProductID:  product.ID,
				Quantity:   2,
				UnitPrice:  product.UnitPrice,
				TotalPrice: product.UnitPrice.Mul(decimal.NewFromInt(2)),
				Position:   0,
			},
		},
	}

	created, err := repo.CreateOrder(ctx, order)
	require.NoError(t, err)
	require.NotNil(t, created)

	found, err := repo.FindOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, vendor.ID, found.VendorID)
	assert.Equal(t, supplier.ID, found.SupplierID)
	assert.Equal(t, enums.OrderStatusPending, found.Status)
	require.Len(t, found.Items, 1)
	assert.Equal(t, product.ID, found.Items[0].ProductID)
	assert.True(t, found.TotalAmount.Equal(decimal.NewFromFloat(125.00)))
}

func TestRepositoryFindOrderDetailPreloadsParties(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	vendor := mustCreateUser(t, conn, enums.UserRoleVendor)
	supplier := mustCreateUser(t, conn, enums.UserRoleSupplier)
	product := mustCreateStockedProduct(t, conn, supplier.ID, "Peanut Oil", 180.00, 40, 1)

	order := &models.Order{
		ID:              uuid.New(),
		VendorID:        vendor.ID,
		SupplierID:      supplier.ID,
		TotalAmount:     decimal.NewFromFloat(180.00),
		Status:          enums.OrderStatusConfirmed,
		OrderType:       enums.OrderTypeIndividual,
		DeliveryAddress: "Stall 3",
		Items: []models.OrderItem{
			{
				ID:         uuid.New(),
				ProductID:  product.ID,
				Quantity:   1,
				UnitPrice:  product.UnitPrice,
				TotalPrice: product.UnitPrice,
				Position:   0,
			},
		},
	}
	_, err := repo.CreateOrder(ctx, order)
	require.NoError(t, err)

	detail, err := repo.FindOrderDetail(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Vendor)
	require.NotNil(t, detail.Supplier)
	assert.Equal(t, vendor.Email, detail.Vendor.Email)
	assert.Equal(t, supplier.Email, detail.Supplier.Email)
	require.Len(t, detail.Items, 1)
	require.NotNil(t, detail.Items[0].Product)
	assert.Equal(t, "Peanut Oil", detail.Items[0].Product.Name)
}

func TestRepositoryUpdateOrderStatus(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	vendor := mustCreateUser(t, conn, enums.UserRoleVendor)
	supplier := mustCreateUser(t, conn, enums.UserRoleSupplier)

	order := &models.Order{
		ID:              uuid.New(),
		VendorID:        vendor.ID,
		SupplierID:      supplier.ID,
		TotalAmount:     decimal.NewFromFloat(40.00),
		Status:          enums.OrderStatusPending,
		OrderType:       enums.OrderTypeIndividual,
		DeliveryAddress: "Stall 9",
	}
	_, err := repo.CreateOrder(ctx, order)
	require.NoError(t, err)

	require.NoError(t, repo.UpdateOrderStatus(ctx, order.ID, enums.OrderStatusConfirmed))

	found, err := repo.FindOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusConfirmed, found.Status)
}

func TestRepositoryListVendorOrdersPaginatesAndFilters(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	vendor := mustCreateUser(t, conn, enums.UserRoleVendor)
	supplier := mustCreateUser(t, conn, enums.UserRoleSupplier)

	base := time.Now().Add(-time.Hour)
	statuses := []enums.OrderStatus{
		enums.OrderStatusPending,
		enums.OrderStatusConfirmed,
		enums.OrderStatusPending,
		enums.OrderStatusDelivered,
		enums.OrderStatusPending,
	}
	for i, status := range statuses {
		order := &models.Order{
			ID:              uuid.New(),
			VendorID:        vendor.ID,
			SupplierID:      supplier.ID,
			TotalAmount:     decimal.NewFromFloat(10.00),
			Status:          status,
			OrderType:       enums.OrderTypeIndividual,
			DeliveryAddress: "Stall 1",
			CreatedAt:       base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, conn.Create(order).Error)
	}

	page1, err := repo.ListVendorOrders(ctx, vendor.ID, pagination.Params{Limit: 2}, OrderListFilters{})
	require.NoError(t, err)
	require.Len(t, page1.Orders, 2)
	require.NotEmpty(t, page1.NextCursor)

	page2, err := repo.ListVendorOrders(ctx, vendor.ID, pagination.Params{Limit: 2, Cursor: page1.NextCursor}, OrderListFilters{})
	require.NoError(t, err)
	require.Len(t, page2.Orders, 2)
	for _, newer := range page1.Orders {
		for _, older := range page2.Orders {
			assert.NotEqual(t, newer.ID, older.ID)
		}
	}

	pending := enums.OrderStatusPending
	filtered, err := repo.ListVendorOrders(ctx, vendor.ID, pagination.Params{}, OrderListFilters{Status: &pending})
	require.NoError(t, err)
	require.Len(t, filtered.Orders, 3)
	for _, dto := range filtered.Orders {
		assert.Equal(t, enums.OrderStatusPending, dto.Status)
	}
}

func TestRepositoryListSupplierOrdersScopesToSupplier(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	vendor := mustCreateUser(t, conn, enums.UserRoleVendor)
	supplierA := mustCreateUser(t, conn, enums.UserRoleSupplier)
	supplierB := mustCreateUser(t, conn, enums.UserRoleSupplier)

	for _, supplierID := range []uuid.UUID{supplierA.ID, supplierA.ID, supplierB.ID} {
		order := &models.Order{
			ID:              uuid.New(),
			VendorID:        vendor.ID,
			SupplierID:      supplierID,
			TotalAmount:     decimal.NewFromFloat(15.00),
			Status:          enums.OrderStatusPending,
			OrderType:       enums.OrderTypeIndividual,
			DeliveryAddress: "Stall 2",
		}
		require.NoError(t, conn.Create(order).Error)
	}

	result, err := repo.ListSupplierOrders(ctx, supplierA.ID, pagination.Params{}, OrderListFilters{})
	require.NoError(t, err)
	require.Len(t, result.Orders, 2)
	for _, dto := range result.Orders {
		assert.Equal(t, supplierA.ID, dto.SupplierID)
	}
}
