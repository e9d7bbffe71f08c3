package grouporders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sfconnect/sfconnect-backend/internal/catalog"
	"github.com/sfconnect/sfconnect-backend/internal/users"
	"github.com/sfconnect/sfconnect-backend/pkg/db/models"
	"github.com/sfconnect/sfconnect-backend/pkg/enums"
	"github.com/sfconnect/sfconnect-backend/pkg/pagination"
)

// CreateGroupOrderInput captures the payload to open a group buy.
type CreateGroupOrderInput struct {
	CreatorID       uuid.UUID
	SupplierID      uuid.UUID
	ProductID       uuid.UUID
	TargetQuantity  int
	DiscountPrice   decimal.Decimal
	Deadline        time.Time
	DeliveryAddress string
}

// JoinGroupOrderInput captures a vendor's stake request.
type JoinGroupOrderInput struct {
	GroupOrderID uuid.UUID
	VendorID     uuid.UUID
	Quantity     int
}

// ParticipantDTO is one vendor's stake within a group order.
type ParticipantDTO struct {
	ID       uuid.UUID            `json:"id"`
	VendorID uuid.UUID            `json:"vendor_id"`
	Quantity int                  `json:"quantity"`
	Vendor   *users.VendorSummary `json:"vendor,omitempty"`
	JoinedAt time.Time            `json:"joined_at"`
}

// GroupOrderDTO is the enriched group order payload returned to clients.
type GroupOrderDTO struct {
	ID              uuid.UUID              `json:"id"`
	CreatorID       uuid.UUID              `json:"creator_id"`
	SupplierID      uuid.UUID              `json:"supplier_id"`
	ProductID       uuid.UUID              `json:"product_id"`
	TargetQuantity  int                    `json:"target_quantity"`
	CurrentQuantity int                    `json:"current_quantity"`
	UnitPrice       decimal.Decimal        `json:"unit_price"`
	DiscountPrice   decimal.Decimal        `json:"discount_price"`
	Status          enums.GroupOrderStatus `json:"status"`
	Deadline        time.Time              `json:"deadline"`
	DeliveryAddress string                 `json:"delivery_address"`
	Participants    []ParticipantDTO       `json:"participants"`
	Creator         *users.VendorSummary   `json:"creator,omitempty"`
	Supplier        *users.SupplierSummary `json:"supplier,omitempty"`
	Product         *catalog.ProductDTO    `json:"product,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// NewGroupOrderDTO builds a DTO from the persisted group order with whatever
// associations were loaded.
func NewGroupOrderDTO(group *models.GroupOrder) *GroupOrderDTO {
	if group == nil {
		return nil
	}

	participants := make([]ParticipantDTO, 0, len(group.Participants))
	for _, p := range group.Participants {
		participants = append(participants, ParticipantDTO{
			ID:       p.ID,
			VendorID: p.VendorID,
			Quantity: p.Quantity,
			Vendor:   users.VendorSummaryFromModel(p.Vendor),
			JoinedAt: p.JoinedAt,
		})
	}

	return &GroupOrderDTO{
		ID:              group.ID,
		CreatorID:       group.CreatorID,
		SupplierID:      group.SupplierID,
		ProductID:       group.ProductID,
		TargetQuantity:  group.TargetQuantity,
		CurrentQuantity: group.CurrentQuantity,
		UnitPrice:       group.UnitPrice,
		DiscountPrice:   group.DiscountPrice,
		Status:          group.Status,
		Deadline:        group.Deadline,
		DeliveryAddress: group.DeliveryAddress,
		Participants:    participants,
		Creator:         users.VendorSummaryFromModel(group.Creator),
		Supplier:        users.SummaryFromModel(group.Supplier),
		Product:         catalog.NewProductDTO(group.Product),
		CreatedAt:       group.CreatedAt,
		UpdatedAt:       group.UpdatedAt,
	}
}

// GroupOrderListFilters narrows group order listings.
type GroupOrderListFilters struct {
	Status     *enums.GroupOrderStatus
	SupplierID *uuid.UUID
}

// ListGroupOrdersInput carries pagination plus the listing filters.
type ListGroupOrdersInput struct {
	Pagination pagination.Params
	Filters    GroupOrderListFilters
}

// GroupOrderListResult carries a page plus the cursor for the next one.
type GroupOrderListResult struct {
	GroupOrders []GroupOrderDTO `json:"group_orders"`
	NextCursor  string          `json:"next_cursor,omitempty"`
}
