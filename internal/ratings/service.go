package ratings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sfconnect/sfconnect-backend/internal/users"
	"github.com/sfconnect/sfconnect-backend/pkg/db/models"
	"github.com/sfconnect/sfconnect-backend/pkg/enums"
	pkgerrors "github.com/sfconnect/sfconnect-backend/pkg/errors"
	"github.com/sfconnect/sfconnect-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SupplierAggregateWriter persists a supplier's recomputed rating columns
// inside the rating transaction.
type SupplierAggregateWriter interface {
	UpdateSupplierRating(ctx context.Context, tx *gorm.DB, supplierID uuid.UUID, rating decimal.Decimal, totalRatings int) error
}

// Service defines the supplier review operations.
type Service interface {
	CreateRating(ctx context.Context, role enums.UserRole, input CreateRatingInput) (*RatingDTO, error)
	ListBySupplier(ctx context.Context, supplierID uuid.UUID, input ListRatingsInput) (*RatingListResult, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID, input ListRatingsInput) (*RatingListResult, error)
}

type service struct {
	repo      *Repository
	tx        txRunner
	aggregate SupplierAggregateWriter
	metrics   *metrics.MarketplaceMetrics
}

// NewService builds a rating service with the required dependencies.
func NewService(repo *Repository, tx txRunner, aggregate SupplierAggregateWriter, m *metrics.MarketplaceMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ratings repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if aggregate == nil {
		return nil, fmt.Errorf("supplier aggregate writer required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		aggregate: aggregate,
		metrics:   m,
	}, nil
}

// CreateRating records a review of a delivered order and recomputes the
// supplier's aggregate in the same transaction.
func (s *service) CreateRating(ctx context.Context, role enums.UserRole, input CreateRatingInput) (*RatingDTO, error) {
	if role != enums.UserRoleVendor {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only vendors can rate suppliers")
	}
	if input.VendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var ratingID uuid.UUID
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.VendorID != input.VendorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to vendor")
		}
		if order.SupplierID != input.SupplierID {
			return pkgerrors.New(pkgerrors.CodeValidation, "order does not target this supplier")
		}
		if order.Status != enums.OrderStatusDelivered {
			return pkgerrors.New(pkgerrors.CodeConflict, "only delivered orders can be rated")
		}

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

		created, err := repo.Create(ctx, &models.Rating{
			VendorID:   input.VendorID,
			SupplierID: input.SupplierID,
			OrderID:    input.OrderID,
			Rating:     input.Rating,
			Comment:    input.Comment,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert rating")
		}
		ratingID = created.ID

		mean, total, err := repo.AggregateForSupplier(ctx, input.SupplierID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recompute supplier rating")
		}
		if err := s.aggregate.UpdateSupplierRating(ctx, tx, input.SupplierID, mean, total); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update supplier rating")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create rating")
	}

	rating, err := s.repo.FindByID(ctx, ratingID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rating")
	}

	s.metrics.ObserveRating(enums.UserRoleVendor.String(), input.Rating)
	return NewRatingDTO(rating), nil
}

// ListBySupplier returns the supplier's reviews, newest first. Public.
func (s *service) ListBySupplier(ctx context.Context, supplierID uuid.UUID, input ListRatingsInput) (*RatingListResult, error) {
	result, err := s.repo.ListBySupplier(ctx, supplierID, input.Pagination)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list supplier ratings")
	}
	return result, nil
}

// ListByVendor returns the reviews the vendor wrote, newest first.
func (s *service) ListByVendor(ctx context.Context, vendorID uuid.UUID, input ListRatingsInput) (*RatingListResult, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	result, err := s.repo.ListByVendor(ctx, vendorID, input.Pagination)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vendor ratings")
	}
	return result, nil
}

type supplierAggregateWriterImpl struct{}

// NewSupplierAggregateWriter exposes the default aggregate writer backed by
// the users table.
func NewSupplierAggregateWriter() SupplierAggregateWriter {
	return supplierAggregateWriterImpl{}
}

func (supplierAggregateWriterImpl) UpdateSupplierRating(ctx context.Context, tx *gorm.DB, supplierID uuid.UUID, rating decimal.Decimal, totalRatings int) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for aggregate update")
	}
	return users.NewRepository(tx).UpdateSupplierRating(ctx, supplierID, rating, totalRatings)
}
