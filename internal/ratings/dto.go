package ratings

import (
	"time"

	"github.com/google/uuid"

	"github.com/sfconnect/sfconnect-backend/internal/users"
	"github.com/sfconnect/sfconnect-backend/pkg/db/models"
	"github.com/sfconnect/sfconnect-backend/pkg/pagination"
)

// CreateRatingInput captures a vendor's review of a delivered order.
type CreateRatingInput struct {
	VendorID   uuid.UUID
	SupplierID uuid.UUID
	OrderID    uuid.UUID
	Rating     int
	Comment    *string
}

// RatingDTO is the review payload returned to clients.
type RatingDTO struct {
	ID         uuid.UUID            `json:"id"`
	VendorID   uuid.UUID            `json:"vendor_id"`
	SupplierID uuid.UUID            `json:"supplier_id"`
	OrderID    uuid.UUID            `json:"order_id"`
	Rating     int                  `json:"rating"`
	Comment    *string              `json:"comment,omitempty"`
	Vendor     *users.VendorSummary `json:"vendor,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
}

// NewRatingDTO builds a DTO from the persisted rating.
func NewRatingDTO(rating *models.Rating) *RatingDTO {
	if rating == nil {
		return nil
	}
	return &RatingDTO{
		ID:         rating.ID,
		VendorID:   rating.VendorID,
		SupplierID: rating.SupplierID,
		OrderID:    rating.OrderID,
		Rating:     rating.Rating,
		Comment:    rating.Comment,
		Vendor:     users.VendorSummaryFromModel(rating.Vendor),
		CreatedAt:  rating.CreatedAt,
	}
}

// ListRatingsInput carries pagination for rating listings.
type ListRatingsInput struct {
	Pagination pagination.Params
}

// RatingListResult carries a rating page plus the cursor for the next one.
type RatingListResult struct {
	Ratings    []RatingDTO `json:"ratings"`
	NextCursor string      `json:"next_cursor,omitempty"`
}
