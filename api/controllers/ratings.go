package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/sfconnect/sfconnect-backend/api/responses"
	"github.com/sfconnect/sfconnect-backend/api/validators"
	"github.com/sfconnect/sfconnect-backend/internal/ratings"
	pkgerrors "github.com/sfconnect/sfconnect-backend/pkg/errors"
	"github.com/sfconnect/sfconnect-backend/pkg/logger"
)

// VendorCreateRating records a review of a delivered order's supplier.
func VendorCreateRating(svc ratings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rating service unavailable"))
			return
		}

		vendorID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createRatingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput(vendorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rating, err := svc.CreateRating(r.Context(), actorRole(r), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, rating)
	}
}

type createRatingRequest struct {
	SupplierID string  `json:"supplier_id" validate:"required,uuid"`
	OrderID    string  `json:"order_id" validate:"required,uuid"`
	Rating     int     `json:"rating" validate:"required,min=1,max=5"`
	Comment    *string `json:"comment,omitempty"`
}

func (p createRatingRequest) toCreateInput(vendorID uuid.UUID) (ratings.CreateRatingInput, error) {
	supplierID, err := uuid.Parse(p.SupplierID)
	if err != nil {
		return ratings.CreateRatingInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid supplier id")
	}
	orderID, err := uuid.Parse(p.OrderID)
	if err != nil {
		return ratings.CreateRatingInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}

	return ratings.CreateRatingInput{
		VendorID:   vendorID,
		SupplierID: supplierID,
		OrderID:    orderID,
		Rating:     p.Rating,
		Comment:    p.Comment,
	}, nil
}

// PublicListSupplierRatings returns reviews left for one supplier.
func PublicListSupplierRatings(svc ratings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rating service unavailable"))
			return
		}

		supplierID, err := validators.ParseURLUUID(r, "supplierID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := parsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListBySupplier(r.Context(), supplierID, ratings.ListRatingsInput{Pagination: params})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// VendorListOwnRatings returns the reviews the caller has written.
func VendorListOwnRatings(svc ratings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rating service unavailable"))
			return
		}

		vendorID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := parsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListByVendor(r.Context(), vendorID, ratings.ListRatingsInput{Pagination: params})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
