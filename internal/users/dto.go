package users

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sfconnect/sfconnect-backend/pkg/db/models"
	"github.com/sfconnect/sfconnect-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID           uuid.UUID           `json:"id"`
	Email        string              `json:"email"`
	Name         string              `json:"name"`
	Phone        *string             `json:"phone,omitempty"`
	Location     *string             `json:"location,omitempty"`
	Role         enums.UserRole      `json:"role"`
	StallName    *string             `json:"stall_name,omitempty"`
	BusinessType *enums.BusinessType `json:"business_type,omitempty"`
	Rating       *decimal.Decimal    `json:"rating,omitempty"`
	TotalRatings int                 `json:"total_ratings"`
	LastLoginAt  *time.Time          `json:"last_login_at,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	Name         string
	Phone        *string
	Location     *string
	Role         enums.UserRole
	StallName    *string
	BusinessType *enums.BusinessType
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Phone:        u.Phone,
		Location:     u.Location,
		Role:         u.Role,
		StallName:    u.StallName,
		BusinessType: u.BusinessType,
		Rating:       u.Rating,
		TotalRatings: u.TotalRatings,
		LastLoginAt:  u.LastLoginAt,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		Name:         c.Name,
		Phone:        c.Phone,
		Location:     c.Location,
		Role:         c.Role,
		StallName:    c.StallName,
		BusinessType: c.BusinessType,
	}
}

// SupplierSummary is the short supplier shape embedded in catalog and order
// responses.
type SupplierSummary struct {
	ID           uuid.UUID           `json:"id"`
	Name         string              `json:"name"`
	BusinessType *enums.BusinessType `json:"business_type,omitempty"`
	Location     *string             `json:"location,omitempty"`
	Rating       *decimal.Decimal    `json:"rating,omitempty"`
	TotalRatings int                 `json:"total_ratings"`
}

// VendorSummary is the short vendor shape embedded in order and group order
// responses.
type VendorSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	StallName *string   `json:"stall_name,omitempty"`
	Location  *string   `json:"location,omitempty"`
}

// VendorSummaryFromModel builds the embedded vendor shape from a user row.
func VendorSummaryFromModel(u *models.User) *VendorSummary {
	if u == nil {
		return nil
	}
	return &VendorSummary{
		ID:        u.ID,
		Name:      u.Name,
		StallName: u.StallName,
		Location:  u.Location,
	}
}

// SummaryFromModel builds the embedded supplier shape from a user row.
func SummaryFromModel(u *models.User) *SupplierSummary {
	if u == nil {
		return nil
	}
	return &SupplierSummary{
		ID:           u.ID,
		Name:         u.Name,
		BusinessType: u.BusinessType,
		Location:     u.Location,
		Rating:       u.Rating,
		TotalRatings: u.TotalRatings,
	}
}
