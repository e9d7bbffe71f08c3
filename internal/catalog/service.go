package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sfconnect/sfconnect-backend/pkg/db/models"
	"github.com/sfconnect/sfconnect-backend/pkg/enums"
	pkgerrors "github.com/sfconnect/sfconnect-backend/pkg/errors"
	"github.com/sfconnect/sfconnect-backend/pkg/pagination"
)

// Service exposes supplier ingredient catalog operations.
type Service interface {
	CreateProduct(ctx context.Context, supplierID uuid.UUID, role enums.UserRole, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, supplierID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, supplierID, productID uuid.UUID) error
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
	ListOwnProducts(ctx context.Context, supplierID uuid.UUID) ([]ProductDTO, error)
}

// ListProductsInput carries pagination plus the public catalog filters.
type ListProductsInput struct {
	Pagination pagination.Params
	Filters    ProductListFilters
}

// service implements the catalog service.
type service struct {
	repo *Repository
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

// CreateProduct creates a listing owned by the calling supplier.
func (s *service) CreateProduct(ctx context.Context, supplierID uuid.UUID, role enums.UserRole, input CreateProductInput) (*ProductDTO, error) {
	if role != enums.UserRoleSupplier {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only suppliers can list products")
	}
	product := input.toModel(supplierID)
	if err := validateListingValues(product.UnitPrice, product.AvailableQuantity, product.MinimumOrder); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}

	detail, err := s.repo.GetDetail(ctx, created.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product detail")
	}
	return NewProductDTO(detail), nil
}

// UpdateProduct merges the provided fields into an existing listing.
func (s *service) UpdateProduct(ctx context.Context, supplierID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.loadOwned(ctx, supplierID, productID)
	if err != nil {
		return nil, err
	}

	applyUpdate(product, input)
	if err := validateListingValues(product.UnitPrice, product.AvailableQuantity, product.MinimumOrder); err != nil {
		return nil, err
	}

	if _, err := s.repo.Update(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
	}

	detail, err := s.repo.GetDetail(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product detail")
	}
	return NewProductDTO(detail), nil
}

// DeleteProduct removes a listing owned by the calling supplier.
func (s *service) DeleteProduct(ctx context.Context, supplierID, productID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, supplierID, productID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

// GetProduct returns a single listing with its supplier summary. Public.
func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.GetDetail(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return NewProductDTO(product), nil
}

// ListProducts returns a filtered catalog page. Public.
func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	result, err := s.repo.ListProducts(ctx, productListQuery{
		Pagination: input.Pagination,
		Filters:    input.Filters,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return result, nil
}

// ListOwnProducts returns every listing owned by the calling supplier.
func (s *service) ListOwnProducts(ctx context.Context, supplierID uuid.UUID) ([]ProductDTO, error) {
	rows, err := s.repo.ListBySupplier(ctx, supplierID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list supplier products")
	}
	products := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		products = append(products, *NewProductDTO(&rows[i]))
	}
	return products, nil
}

func (s *service) loadOwned(ctx context.Context, supplierID, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.SupplierID != supplierID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product does not belong to supplier")
	}
	return product, nil
}

func validateListingValues(unitPrice decimal.Decimal, availableQuantity, minimumOrder int) error {
	if !unitPrice.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit_price must be positive")
	}
	if availableQuantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "available_quantity must be non-negative")
	}
	if minimumOrder < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "minimum_order must be at least 1")
	}
	return nil
}

func (c CreateProductInput) toModel(supplierID uuid.UUID) *models.Product {
	minimumOrder := c.MinimumOrder
	if minimumOrder == 0 {
		minimumOrder = 1
	}
	return &models.Product{
		SupplierID:        supplierID,
		Name:              strings.TrimSpace(c.Name),
		Category:          strings.TrimSpace(c.Category),
		Description:       c.Description,
		UnitPrice:         c.UnitPrice,
		Unit:              strings.TrimSpace(c.Unit),
		AvailableQuantity: c.AvailableQuantity,
		MinimumOrder:      minimumOrder,
		ExpiryDate:        c.ExpiryDate,
		ImageURL:          c.ImageURL,
	}
}

func applyUpdate(product *models.Product, input UpdateProductInput) {
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Category != nil {
		product.Category = strings.TrimSpace(*input.Category)
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.UnitPrice != nil {
		product.UnitPrice = *input.UnitPrice
	}
	if input.Unit != nil {
		product.Unit = strings.TrimSpace(*input.Unit)
	}
	if input.AvailableQuantity != nil {
		product.AvailableQuantity = *input.AvailableQuantity
	}
	if input.MinimumOrder != nil {
		product.MinimumOrder = *input.MinimumOrder
	}
	if input.ExpiryDate != nil {
		product.ExpiryDate = input.ExpiryDate
	}
	if input.ImageURL != nil {
		product.ImageURL = input.ImageURL
	}
}
