package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sfconnect/sfconnect-backend/pkg/db/models"
	"github.com/sfconnect/sfconnect-backend/pkg/enums"
	"github.com/sfconnect/sfconnect-backend/pkg/pagination"
)

// Repository defines persistence operations for order tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindOrderDetail(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	FindSupplier(ctx context.Context, supplierID uuid.UUID) (*models.User, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error
	ListVendorOrders(ctx context.Context, vendorID uuid.UUID, params pagination.Params, filters OrderListFilters) (*OrderListResult, error)
	ListSupplierOrders(ctx context.Context, supplierID uuid.UUID, params pagination.Params, filters OrderListFilters) (*OrderListResult, error)
}
