package grouporders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sfconnect/sfconnect-backend/pkg/db/models"
	"github.com/sfconnect/sfconnect-backend/pkg/enums"
	"github.com/sfconnect/sfconnect-backend/pkg/pagination"
)

// Repository wires together group order persistence.
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

// Create inserts a new group order row.
func (r *Repository) Create(ctx context.Context, group *models.GroupOrder) (*models.GroupOrder, error) {
	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		return nil, err
	}
	return group, nil
}

// FindByID loads the group order without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.GroupOrder, error) {
	var group models.GroupOrder
	if err := r.db.WithContext(ctx).First(&group, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// GetDetail fetches a group order with participants and party summaries.
func (r *Repository) GetDetail(ctx context.Context, id uuid.UUID) (*models.GroupOrder, error) {
	var group models.GroupOrder
	err := r.db.WithContext(ctx).
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("joined_at ASC")
		}).
		Preload("Participants.Vendor").
		Preload("Creator").
		Preload("Supplier").
		Preload("Product").
		First(&group, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// FindProduct loads the product backing a group order.
func (r *Repository) FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", productID).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindSupplier loads the supplier user backing a group order.
func (r *Repository) FindSupplier(ctx context.Context, supplierID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", supplierID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// HasParticipant reports whether the vendor already joined the group order.
func (r *Repository) HasParticipant(ctx context.Context, groupOrderID, vendorID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.GroupOrderParticipant{}).
		Where("group_order_id = ? AND vendor_id = ?", groupOrderID, vendorID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AddParticipant inserts one vendor's stake.
func (r *Repository) AddParticipant(ctx context.Context, participant *models.GroupOrderParticipant) error {
	return r.db.WithContext(ctx).Create(participant).Error
}

// AddQuantity increments current_quantity only while the group order is open
// and the result stays within capacity. Reports false when the guard fails.
func (r *Repository) AddQuantity(ctx context.Context, groupOrderID uuid.UUID, qty, capacity int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.GroupOrder{}).
		Where("id = ? AND status = ? AND current_quantity + ? <= ?", groupOrderID, enums.GroupOrderStatusOpen, qty, capacity).
		UpdateColumn("current_quantity", gorm.Expr("current_quantity + ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// CloseIfOpen flips an open group order to the provided terminal status.
// Reports false when the row was not open anymore.
func (r *Repository) CloseIfOpen(ctx context.Context, groupOrderID uuid.UUID, status enums.GroupOrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.GroupOrder{}).
		Where("id = ? AND status = ?", groupOrderID, enums.GroupOrderStatusOpen).
		Update("status", status)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

type groupOrderListQuery struct {
	Pagination pagination.Params
	Filters    GroupOrderListFilters
	VendorID   *uuid.UUID
}

// ListGroupOrders returns a cursor page of enriched group orders.
func (r *Repository) ListGroupOrders(ctx context.Context, query groupOrderListQuery) (*GroupOrderListResult, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)
	if limitWithBuffer <= pageSize {
		limitWithBuffer = pageSize + 1
	}

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).
		Model(&models.GroupOrder{}).
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("joined_at ASC")
		}).
		Preload("Participants.Vendor").
		Preload("Creator").
		Preload("Supplier").
		Preload("Product")

	if query.Filters.Status != nil {
		qb = qb.Where("status = ?", *query.Filters.Status)
	}
	if query.Filters.SupplierID != nil {
		qb = qb.Where("supplier_id = ?", *query.Filters.SupplierID)
	}
	if query.VendorID != nil {
		qb = qb.Where(
			"creator_id = ? OR id IN (SELECT group_order_id FROM group_order_participants WHERE vendor_id = ?)",
			*query.VendorID, *query.VendorID,
		)
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.GroupOrder
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error; err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	groups := make([]GroupOrderDTO, 0, len(rows))
	for i := range rows {
		groups = append(groups, *NewGroupOrderDTO(&rows[i]))
	}

	return &GroupOrderListResult{
		GroupOrders: groups,
		NextCursor:  nextCursor,
	}, nil
}
