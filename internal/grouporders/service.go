package grouporders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sfconnect/sfconnect-backend/pkg/config"
	"github.com/sfconnect/sfconnect-backend/pkg/db"
	"github.com/sfconnect/sfconnect-backend/pkg/db/models"
	"github.com/sfconnect/sfconnect-backend/pkg/enums"
	pkgerrors "github.com/sfconnect/sfconnect-backend/pkg/errors"
	"github.com/sfconnect/sfconnect-backend/pkg/metrics"
)

const (
	closeReasonTargetReached   = "target_reached"
	closeReasonDeadlineExpired = "deadline_expired"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines the group order lifecycle operations.
type Service interface {
	CreateGroupOrder(ctx context.Context, role enums.UserRole, input CreateGroupOrderInput) (*GroupOrderDTO, error)
	JoinGroupOrder(ctx context.Context, role enums.UserRole, input JoinGroupOrderInput) (*GroupOrderDTO, error)
	GetGroupOrder(ctx context.Context, groupOrderID uuid.UUID) (*GroupOrderDTO, error)
	ListGroupOrders(ctx context.Context, input ListGroupOrdersInput) (*GroupOrderListResult, error)
	ListForVendor(ctx context.Context, vendorID uuid.UUID, input ListGroupOrdersInput) (*GroupOrderListResult, error)
}

type service struct {
	repo    *Repository
	tx      txRunner
	metrics *metrics.MarketplaceMetrics
	cfg     config.GroupOrdersConfig
	now     func() time.Time
}

// NewService builds a group order service with the required dependencies.
func NewService(repo *Repository, tx txRunner, m *metrics.MarketplaceMetrics, cfg config.GroupOrdersConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("group orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		metrics: m,
		cfg:     cfg,
		now:     time.Now,
	}, nil
}

// CreateGroupOrder opens a group buy with the product's price snapshotted.
func (s *service) CreateGroupOrder(ctx context.Context, role enums.UserRole, input CreateGroupOrderInput) (*GroupOrderDTO, error) {
	if role != enums.UserRoleVendor {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only vendors can open group orders")
	}
	if input.CreatorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.TargetQuantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "target_quantity must be positive")
	}
	if input.DeliveryAddress == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address required")
	}

	now := s.now()
	if !input.Deadline.After(now) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deadline must be in the future")
	}
	if s.cfg.MaxDeadline > 0 && input.Deadline.After(now.Add(s.cfg.MaxDeadline)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("deadline cannot be more than %s away", s.cfg.MaxDeadline))
	}

	supplier, err := s.repo.FindSupplier(ctx, input.SupplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}
	if supplier.Role != enums.UserRoleSupplier {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "target user is not a supplier")
	}

	product, err := s.repo.FindProduct(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.SupplierID != input.SupplierID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product does not belong to supplier")
	}
	if !input.DiscountPrice.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount_price must be positive")
	}
	if !input.DiscountPrice.LessThan(product.UnitPrice) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount_price must be below the current unit price")
	}

	group := &models.GroupOrder{
		CreatorID:       input.CreatorID,
		SupplierID:      input.SupplierID,
		ProductID:       input.ProductID,
		TargetQuantity:  input.TargetQuantity,
		CurrentQuantity: 0,
		UnitPrice:       product.UnitPrice,
		DiscountPrice:   input.DiscountPrice,
		Status:          enums.GroupOrderStatusOpen,
		Deadline:        input.Deadline,
		DeliveryAddress: input.DeliveryAddress,
	}
	created, err := s.repo.Create(ctx, group)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert group order")
	}

	return s.loadDetail(ctx, created.ID)
}

// JoinGroupOrder adds a vendor's stake. A deadline that already passed
// closes the group order before the caller gets the expiry failure, so the
// closed state survives the rejected join.
func (s *service) JoinGroupOrder(ctx context.Context, role enums.UserRole, input JoinGroupOrderInput) (*GroupOrderDTO, error) {
	if role != enums.UserRoleVendor {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only vendors can join group orders")
	}
	if input.VendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	group, err := s.repo.FindByID(ctx, input.GroupOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "group order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load group order")
	}
	if group.Status != enums.GroupOrderStatusOpen {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "group order is not open")
	}
	if !group.Deadline.After(s.now()) {
		closed, err := s.repo.CloseIfOpen(ctx, group.ID, enums.GroupOrderStatusClosed)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close expired group order")
		}
		// a concurrent caller may have closed it first; count the close once
		if closed {
			s.metrics.IncGroupOrderClosed(closeReasonDeadlineExpired)
		}
		return nil, pkgerrors.New(pkgerrors.CodeExpired, "group order deadline has passed")
	}

	targetReached := false
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		joined, err := repo.HasParticipant(ctx, group.ID, input.VendorID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check participant")
		}
		if joined {
			return pkgerrors.New(pkgerrors.CodeConflict, "vendor already joined this group order")
		}

		product, err := repo.FindProduct(ctx, group.ProductID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}

		added, err := repo.AddQuantity(ctx, group.ID, input.Quantity, product.AvailableQuantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add quantity")
		}
		if !added {
			return pkgerrors.New(pkgerrors.CodeConflict, "group order cannot accept this quantity")
		}

		if err := repo.AddParticipant(ctx, &models.GroupOrderParticipant{
			GroupOrderID: group.ID,
			VendorID:     input.VendorID,
			Quantity:     input.Quantity,
		}); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "vendor already joined this group order")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert participant")
		}

		updated, err := repo.FindByID(ctx, group.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload group order")
		}
		if updated.CurrentQuantity >= updated.TargetQuantity {
			completed, err := repo.CloseIfOpen(ctx, group.ID, enums.GroupOrderStatusCompleted)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete group order")
			}
			targetReached = completed
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "join group order")
	}

	s.metrics.IncGroupOrderJoin()
	if targetReached {
		s.metrics.IncGroupOrderClosed(closeReasonTargetReached)
	}
	return s.loadDetail(ctx, group.ID)
}

// GetGroupOrder returns the enriched group order including participants.
func (s *service) GetGroupOrder(ctx context.Context, groupOrderID uuid.UUID) (*GroupOrderDTO, error) {
	return s.loadDetail(ctx, groupOrderID)
}

// ListGroupOrders returns a page of group orders, open ones by default.
func (s *service) ListGroupOrders(ctx context.Context, input ListGroupOrdersInput) (*GroupOrderListResult, error) {
	if input.Filters.Status == nil {
		open := enums.GroupOrderStatusOpen
		input.Filters.Status = &open
	}
	result, err := s.repo.ListGroupOrders(ctx, groupOrderListQuery{
		Pagination: input.Pagination,
		Filters:    input.Filters,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list group orders")
	}
	return result, nil
}

// ListForVendor returns group orders the vendor created or joined.
func (s *service) ListForVendor(ctx context.Context, vendorID uuid.UUID, input ListGroupOrdersInput) (*GroupOrderListResult, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	result, err := s.repo.ListGroupOrders(ctx, groupOrderListQuery{
		Pagination: input.Pagination,
		Filters:    input.Filters,
		VendorID:   &vendorID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vendor group orders")
	}
	return result, nil
}

func (s *service) loadDetail(ctx context.Context, groupOrderID uuid.UUID) (*GroupOrderDTO, error) {
	group, err := s.repo.GetDetail(ctx, groupOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "group order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load group order detail")
	}
	return NewGroupOrderDTO(group), nil
}
