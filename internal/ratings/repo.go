package ratings

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sfconnect/sfconnect-backend/pkg/db/models"
	"github.com/sfconnect/sfconnect-backend/pkg/pagination"
)

// Repository wires together rating persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a rating row.
func (r *Repository) Create(ctx context.Context, rating *models.Rating) (*models.Rating, error) {
	if err := r.db.WithContext(ctx).Create(rating).Error; err != nil {
		return nil, err
	}
	return rating, nil
}

// FindByID loads a rating with the reviewing vendor preloaded.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Rating, error) {
	var rating models.Rating
	err := r.db.WithContext(ctx).
		Preload("Vendor").
		First(&rating, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

// FindOrder loads the order a rating refers to.
func (r *Repository) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindSupplier loads the rated supplier.
func (r *Repository) FindSupplier(ctx context.Context, supplierID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", supplierID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// AggregateForSupplier computes the mean rating rounded to one decimal plus
// the rating count across all reviews of the supplier.
func (r *Repository) AggregateForSupplier(ctx context.Context, supplierID uuid.UUID) (decimal.Decimal, int, error) {
	var row struct {
		Avg   float64
		Total int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Rating{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS total").
		Where("supplier_id = ?", supplierID).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, 0, err
	}
	return decimal.NewFromFloat(row.Avg).Round(1), int(row.Total), nil
}

// ListBySupplier returns a cursor page of the supplier's reviews.
func (r *Repository) ListBySupplier(ctx context.Context, supplierID uuid.UUID, params pagination.Params) (*RatingListResult, error) {
	return r.listRatings(ctx, "supplier_id = ?", supplierID, params)
}

// ListByVendor returns a cursor page of the reviews a vendor wrote.
func (r *Repository) ListByVendor(ctx context.Context, vendorID uuid.UUID, params pagination.Params) (*RatingListResult, error) {
	return r.listRatings(ctx, "vendor_id = ?", vendorID, params)
}

func (r *Repository) listRatings(ctx context.Context, partyClause string, partyID uuid.UUID, params pagination.Params) (*RatingListResult, error) {
	pageSize := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)
	if limitWithBuffer <= pageSize {
		limitWithBuffer = pageSize + 1
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).
		Model(&models.Rating{}).
		Preload("Vendor").
		Where(partyClause, partyID)

	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Rating
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error; err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	ratings := make([]RatingDTO, 0, len(rows))
	for i := range rows {
		ratings = append(ratings, *NewRatingDTO(&rows[i]))
	}

	return &RatingListResult{
		Ratings:    ratings,
		NextCursor: nextCursor,
	}, nil
}
