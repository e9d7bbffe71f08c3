package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sfconnect/sfconnect-backend/internal/catalog"
	"github.com/sfconnect/sfconnect-backend/pkg/config"
	"github.com/sfconnect/sfconnect-backend/pkg/db/models"
	"github.com/sfconnect/sfconnect-backend/pkg/enums"
	pkgerrors "github.com/sfconnect/sfconnect-backend/pkg/errors"
	"github.com/sfconnect/sfconnect-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// InventoryReserver guards product stock mutations inside order transactions.
type InventoryReserver interface {
	Reserve(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) (bool, error)
	Release(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
}

// Service defines the order lifecycle operations.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderDTO, error)
	GetOrder(ctx context.Context, callerID, orderID uuid.UUID) (*OrderDTO, error)
	ListOrders(ctx context.Context, callerID uuid.UUID, role enums.UserRole, input ListOrdersInput) (*OrderListResult, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	inventory InventoryReserver
	metrics   *metrics.MarketplaceMetrics
	cfg       config.OrdersConfig
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, tx txRunner, inventory InventoryReserver, m *metrics.MarketplaceMetrics, cfg config.OrdersConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if inventory == nil {
		return nil, fmt.Errorf("inventory reserver required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		inventory: inventory,
		metrics:   m,
		cfg:       cfg,
	}, nil
}

// CreateOrder validates, prices, and persists an order while reserving stock.
// Pricing always uses the stored product price, never client-supplied values.
func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderDTO, error) {
	start := time.Now()

	if input.VendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.SupplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}
	if input.DeliveryAddress == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	maxItems := s.cfg.MaxItemsPerOrder
	if maxItems > 0 && len(input.Items) > maxItems {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("order cannot exceed %d items", maxItems))
	}
	seen := make(map[uuid.UUID]struct{}, len(input.Items))
	for _, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item product id required")
		}
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		if _, ok := seen[item.ProductID]; ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate product in order items")
		}
		seen[item.ProductID] = struct{}{}
	}

	var orderID uuid.UUID
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		supplier, err := repo.FindSupplier(ctx, input.SupplierID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
		}
		if supplier.Role != enums.UserRoleSupplier {
			return pkgerrors.New(pkgerrors.CodeValidation, "target user is not a supplier")
		}

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(input.Items))
		for i, item := range input.Items {
			product, err := repo.FindProduct(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
			}
			if product.SupplierID != input.SupplierID {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %q does not belong to supplier", product.Name))
			}
			if item.Quantity < product.MinimumOrder {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %q requires a minimum order of %d", product.Name, product.MinimumOrder))
			}

			reserved, err := s.inventory.Reserve(ctx, tx, product.ID, item.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve stock")
			}
			if !reserved {
				return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("insufficient stock for %q", product.Name))
			}

			lineTotal := product.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
			total = total.Add(lineTotal)
			items = append(items, models.OrderItem{
				ProductID:  product.ID,
				Quantity:   item.Quantity,
				UnitPrice:  product.UnitPrice,
				TotalPrice: lineTotal,
				Position:   i,
			})
		}

		order := &models.Order{
			VendorID:        input.VendorID,
			SupplierID:      input.SupplierID,
			TotalAmount:     total,
			Status:          enums.OrderStatusPending,
			OrderType:       enums.OrderTypeIndividual,
			DeliveryAddress: input.DeliveryAddress,
			Notes:           input.Notes,
			Items:           items,
		}
		created, err := repo.CreateOrder(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order")
		}
		orderID = created.ID
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	detail, err := s.repo.FindOrderDetail(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order detail")
	}

	s.metrics.ObserveOrderCreate(enums.OrderTypeIndividual.String(), time.Since(start))
	s.metrics.IncOrderCreated(enums.OrderTypeIndividual.String())
	return NewOrderDTO(detail), nil
}

// UpdateStatus advances an order along the status chain. Only the order's
// supplier may change status, and terminal states are immutable.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderDTO, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.NextStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	var from enums.OrderStatus
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.SupplierID != input.ActorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to supplier")
		}
		if !order.Status.CanTransitionTo(input.NextStatus) {
			return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("cannot transition order from %s to %s", order.Status, input.NextStatus))
		}

		if input.NextStatus == enums.OrderStatusCancelled {
			for _, item := range order.Items {
				if err := s.inventory.Release(ctx, tx, item.ProductID, item.Quantity); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release stock")
				}
			}
		}

		if err := repo.UpdateOrderStatus(ctx, order.ID, input.NextStatus); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		from = order.Status
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update status")
	}

	detail, err := s.repo.FindOrderDetail(ctx, input.OrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order detail")
	}

	s.metrics.IncOrderTransition(from.String(), input.NextStatus.String())
	return NewOrderDTO(detail), nil
}

// GetOrder returns the enriched order for either party of the trade.
func (s *service) GetOrder(ctx context.Context, callerID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindOrderDetail(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.VendorID != callerID && order.SupplierID != callerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to caller")
	}
	return NewOrderDTO(order), nil
}

// ListOrders returns the caller's side of the order book, newest first.
func (s *service) ListOrders(ctx context.Context, callerID uuid.UUID, role enums.UserRole, input ListOrdersInput) (*OrderListResult, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Pagination.Limit <= 0 {
		input.Pagination.Limit = s.cfg.ListPageSize
	}

	var (
		result *OrderListResult
		err    error
	)
	switch role {
	case enums.UserRoleVendor:
		result, err = s.repo.ListVendorOrders(ctx, callerID, input.Pagination, input.Filters)
	case enums.UserRoleSupplier:
		result, err = s.repo.ListSupplierOrders(ctx, callerID, input.Pagination, input.Filters)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "unsupported role")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return result, nil
}

type inventoryReserverImpl struct{}

// NewInventoryReserver exposes the default stock reservation implementation
// backed by the catalog tables.
func NewInventoryReserver() InventoryReserver {
	return inventoryReserverImpl{}
}

func (inventoryReserverImpl) Reserve(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) (bool, error) {
	if tx == nil {
		return false, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock reservation")
	}
	return catalog.NewRepository(tx).ReserveQuantity(ctx, productID, qty)
}

func (inventoryReserverImpl) Release(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return nil
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock release")
	}
	return catalog.NewRepository(tx).ReleaseQuantity(ctx, productID, qty)
}
