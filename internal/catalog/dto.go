package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sfconnect/sfconnect-backend/internal/users"
	"github.com/sfconnect/sfconnect-backend/pkg/db/models"
)

// ProductDTO represents the ingredient listing payload returned to clients.
type ProductDTO struct {
	ID                uuid.UUID              `json:"id"`
	SupplierID        uuid.UUID              `json:"supplier_id"`
	Name              string                 `json:"name"`
	Category          string                 `json:"category"`
	Description       *string                `json:"description,omitempty"`
	UnitPrice         decimal.Decimal        `json:"unit_price"`
	Unit              string                 `json:"unit"`
	AvailableQuantity int                    `json:"available_quantity"`
	MinimumOrder      int                    `json:"minimum_order"`
	ExpiryDate        *time.Time             `json:"expiry_date,omitempty"`
	ImageURL          *string                `json:"image_url,omitempty"`
	Supplier          *users.SupplierSummary `json:"supplier,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

// NewProductDTO builds a DTO from the persisted model. The supplier summary
// is included when the association was loaded.
func NewProductDTO(product *models.Product) *ProductDTO {
	if product == nil {
		return nil
	}
	return &ProductDTO{
		ID:                product.ID,
		SupplierID:        product.SupplierID,
		Name:              product.Name,
		Category:          product.Category,
		Description:       product.Description,
		UnitPrice:         product.UnitPrice,
		Unit:              product.Unit,
		AvailableQuantity: product.AvailableQuantity,
		MinimumOrder:      product.MinimumOrder,
		ExpiryDate:        product.ExpiryDate,
		ImageURL:          product.ImageURL,
		Supplier:          users.SummaryFromModel(product.Supplier),
		CreatedAt:         product.CreatedAt,
		UpdatedAt:         product.UpdatedAt,
	}
}

// CreateProductInput holds the validated payload to create a listing.
type CreateProductInput struct {
	Name              string
	Category          string
	Description       *string
	UnitPrice         decimal.Decimal
	Unit              string
	AvailableQuantity int
	MinimumOrder      int
	ExpiryDate        *time.Time
	ImageURL          *string
}

// UpdateProductInput holds optional mutation values for a listing.
type UpdateProductInput struct {
	Name              *string
	Category          *string
	Description       *string
	UnitPrice         *decimal.Decimal
	Unit              *string
	AvailableQuantity *int
	MinimumOrder      *int
	ExpiryDate        *time.Time
	ImageURL          *string
}

// ProductListFilters narrows the public catalog listing.
type ProductListFilters struct {
	SupplierID *uuid.UUID
	Category   string
	Query      string
}

// ProductListResult carries a catalog page plus the cursor for the next one.
type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}
