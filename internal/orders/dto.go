package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sfconnect/sfconnect-backend/internal/users"
	"github.com/sfconnect/sfconnect-backend/pkg/db/models"
	"github.com/sfconnect/sfconnect-backend/pkg/enums"
	"github.com/sfconnect/sfconnect-backend/pkg/pagination"
)

// OrderItemInput is a single requested line before validation and pricing.
type OrderItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateOrderInput captures the payload to place a supply order.
type CreateOrderInput struct {
	VendorID        uuid.UUID
	SupplierID      uuid.UUID
	Items           []OrderItemInput
	DeliveryAddress string
	Notes           *string
}

// UpdateStatusInput carries a requested status change plus the acting user.
type UpdateStatusInput struct {
	OrderID    uuid.UUID
	ActorID    uuid.UUID
	NextStatus enums.OrderStatus
}

// OrderItemDTO is the priced line snapshot returned to clients.
type OrderItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Unit        string          `json:"unit,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// OrderDTO is the enriched order payload returned to clients.
type OrderDTO struct {
	ID              uuid.UUID              `json:"id"`
	VendorID        uuid.UUID              `json:"vendor_id"`
	SupplierID      uuid.UUID              `json:"supplier_id"`
	TotalAmount     decimal.Decimal        `json:"total_amount"`
	Status          enums.OrderStatus      `json:"status"`
	OrderType       enums.OrderType        `json:"order_type"`
	GroupOrderID    *uuid.UUID             `json:"group_order_id,omitempty"`
	DeliveryAddress string                 `json:"delivery_address"`
	Notes           *string                `json:"notes,omitempty"`
	Items           []OrderItemDTO         `json:"items"`
	Vendor          *users.VendorSummary   `json:"vendor,omitempty"`
	Supplier        *users.SupplierSummary `json:"supplier,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// NewOrderDTO builds a DTO from the persisted order with whatever
// associations were loaded.
func NewOrderDTO(order *models.Order) *OrderDTO {
	if order == nil {
		return nil
	}

	items := make([]OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		dto := OrderItemDTO{
			ID:         item.ID,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
		}
		if item.Product != nil {
			dto.ProductName = item.Product.Name
			dto.Unit = item.Product.Unit
		}
		items = append(items, dto)
	}

	return &OrderDTO{
		ID:              order.ID,
		VendorID:        order.VendorID,
		SupplierID:      order.SupplierID,
		TotalAmount:     order.TotalAmount,
		Status:          order.Status,
		OrderType:       order.OrderType,
		GroupOrderID:    order.GroupOrderID,
		DeliveryAddress: order.DeliveryAddress,
		Notes:           order.Notes,
		Items:           items,
		Vendor:          users.VendorSummaryFromModel(order.Vendor),
		Supplier:        users.SummaryFromModel(order.Supplier),
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

// OrderListFilters narrows order listings.
type OrderListFilters struct {
	Status *enums.OrderStatus
}

// ListOrdersInput carries pagination plus filters for a party's orders.
type ListOrdersInput struct {
	Pagination pagination.Params
	Filters    OrderListFilters
}

// OrderListResult carries an order page plus the cursor for the next one.
type OrderListResult struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}
