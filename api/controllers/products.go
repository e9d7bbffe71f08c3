package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sfconnect/sfconnect-backend/api/responses"
	"github.com/sfconnect/sfconnect-backend/api/validators"
	"github.com/sfconnect/sfconnect-backend/internal/catalog"
	pkgerrors "github.com/sfconnect/sfconnect-backend/pkg/errors"
	"github.com/sfconnect/sfconnect-backend/pkg/logger"
)

// SupplierCreateProduct handles listing creation for suppliers.
func SupplierCreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		supplierID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), supplierID, actorRole(r), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

type createProductRequest struct {
	Name              string  `json:"name" validate:"required"`
	Category          string  `json:"category" validate:"required"`
	Description       *string `json:"description,omitempty"`
	UnitPrice         string  `json:"unit_price" validate:"required"`
	Unit              string  `json:"unit" validate:"required"`
	AvailableQuantity int     `json:"available_quantity" validate:"min=0"`
	MinimumOrder      int     `json:"minimum_order,omitempty" validate:"omitempty,min=1"`
	ExpiryDate        *string `json:"expiry_date,omitempty"`
	ImageURL          *string `json:"image_url,omitempty"`
}

func (p createProductRequest) toCreateInput() (catalog.CreateProductInput, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(p.UnitPrice))
	if err != nil {
		return catalog.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit price")
	}

	expiry, err := parseOptionalDate(p.ExpiryDate)
	if err != nil {
		return catalog.CreateProductInput{}, err
	}

	return catalog.CreateProductInput{
		Name:              strings.TrimSpace(p.Name),
		Category:          strings.TrimSpace(p.Category),
		Description:       p.Description,
		UnitPrice:         price,
		Unit:              strings.TrimSpace(p.Unit),
		AvailableQuantity: p.AvailableQuantity,
		MinimumOrder:      p.MinimumOrder,
		ExpiryDate:        expiry,
		ImageURL:          p.ImageURL,
	}, nil
}

// SupplierUpdateProduct applies a partial update to an owned listing.
func SupplierUpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		supplierID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := validators.ParseURLUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), supplierID, productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

type updateProductRequest struct {
	Name              *string `json:"name,omitempty"`
	Category          *string `json:"category,omitempty"`
	Description       *string `json:"description,omitempty"`
	UnitPrice         *string `json:"unit_price,omitempty"`
	Unit              *string `json:"unit,omitempty"`
	AvailableQuantity *int    `json:"available_quantity,omitempty" validate:"omitempty,min=0"`
	MinimumOrder      *int    `json:"minimum_order,omitempty" validate:"omitempty,min=1"`
	ExpiryDate        *string `json:"expiry_date,omitempty"`
	ImageURL          *string `json:"image_url,omitempty"`
}

func (p updateProductRequest) toUpdateInput() (catalog.UpdateProductInput, error) {
	input := catalog.UpdateProductInput{
		Name:              p.Name,
		Category:          p.Category,
		Description:       p.Description,
		Unit:              p.Unit,
		AvailableQuantity: p.AvailableQuantity,
		MinimumOrder:      p.MinimumOrder,
		ImageURL:          p.ImageURL,
	}

	if p.UnitPrice != nil {
		price, err := decimal.NewFromString(strings.TrimSpace(*p.UnitPrice))
		if err != nil {
			return catalog.UpdateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit price")
		}
		input.UnitPrice = &price
	}

	expiry, err := parseOptionalDate(p.ExpiryDate)
	if err != nil {
		return catalog.UpdateProductInput{}, err
	}
	input.ExpiryDate = expiry

	return input, nil
}

// SupplierDeleteProduct removes an owned listing.
func SupplierDeleteProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		supplierID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := validators.ParseURLUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), supplierID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// SupplierListOwnProducts returns the caller's full catalog, newest first.
func SupplierListOwnProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		supplierID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, err := svc.ListOwnProducts(r.Context(), supplierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, products)
	}
}

// PublicGetProduct returns one listing with its supplier summary.
func PublicGetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID, err := validators.ParseURLUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// PublicListProducts serves the browsable catalog with filters and cursors.
func PublicListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		params, err := parsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		supplierID, err := validators.ParseQueryUUID(r, "supplier_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListProducts(r.Context(), catalog.ListProductsInput{
			Pagination: params,
			Filters: catalog.ProductListFilters{
				SupplierID: supplierID,
				Category:   strings.TrimSpace(r.URL.Query().Get("category")),
				Query:      strings.TrimSpace(r.URL.Query().Get("q")),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func parseOptionalDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*raw)
	parsed, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		parsed, err = time.Parse("2006-01-02", trimmed)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date")
	}
	return &parsed, nil
}
