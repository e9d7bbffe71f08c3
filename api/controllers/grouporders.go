package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sfconnect/sfconnect-backend/api/responses"
	"github.com/sfconnect/sfconnect-backend/api/validators"
	"github.com/sfconnect/sfconnect-backend/internal/grouporders"
	"github.com/sfconnect/sfconnect-backend/pkg/enums"
	pkgerrors "github.com/sfconnect/sfconnect-backend/pkg/errors"
	"github.com/sfconnect/sfconnect-backend/pkg/logger"
)

// VendorCreateGroupOrder opens a pooled buy against one supplier product.
func VendorCreateGroupOrder(svc grouporders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "group order service unavailable"))
			return
		}

		creatorID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createGroupOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput(creatorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		groupOrder, err := svc.CreateGroupOrder(r.Context(), actorRole(r), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, groupOrder)
	}
}

type createGroupOrderRequest struct {
	SupplierID      string `json:"supplier_id" validate:"required,uuid"`
	ProductID       string `json:"product_id" validate:"required,uuid"`
	TargetQuantity  int    `json:"target_quantity" validate:"required,min=1"`
	DiscountPrice   string `json:"discount_price" validate:"required"`
	Deadline        string `json:"deadline" validate:"required"`
	DeliveryAddress string `json:"delivery_address" validate:"required"`
}

func (p createGroupOrderRequest) toCreateInput(creatorID uuid.UUID) (grouporders.CreateGroupOrderInput, error) {
	supplierID, err := uuid.Parse(p.SupplierID)
	if err != nil {
		return grouporders.CreateGroupOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid supplier id")
	}
	productID, err := uuid.Parse(p.ProductID)
	if err != nil {
		return grouporders.CreateGroupOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
	}
	discount, err := decimal.NewFromString(strings.TrimSpace(p.DiscountPrice))
	if err != nil {
		return grouporders.CreateGroupOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount price")
	}
	deadline, err := time.Parse(time.RFC3339, strings.TrimSpace(p.Deadline))
	if err != nil {
		return grouporders.CreateGroupOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid deadline")
	}

	return grouporders.CreateGroupOrderInput{
		CreatorID:       creatorID,
		SupplierID:      supplierID,
		ProductID:       productID,
		TargetQuantity:  p.TargetQuantity,
		DiscountPrice:   discount,
		Deadline:        deadline,
		DeliveryAddress: strings.TrimSpace(p.DeliveryAddress),
	}, nil
}

// VendorJoinGroupOrder stakes a quantity in an open group order.
func VendorJoinGroupOrder(svc grouporders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "group order service unavailable"))
			return
		}

		vendorID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		groupOrderID, err := validators.ParseURLUUID(r, "groupOrderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload joinGroupOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		groupOrder, err := svc.JoinGroupOrder(r.Context(), actorRole(r), grouporders.JoinGroupOrderInput{
			GroupOrderID: groupOrderID,
			VendorID:     vendorID,
			Quantity:     payload.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, groupOrder)
	}
}

type joinGroupOrderRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// GetGroupOrder returns one group order with participants.
func GetGroupOrder(svc grouporders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "group order service unavailable"))
			return
		}

		groupOrderID, err := validators.ParseURLUUID(r, "groupOrderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		groupOrder, err := svc.GetGroupOrder(r.Context(), groupOrderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, groupOrder)
	}
}

// ListGroupOrders serves the discoverable group orders, open ones by default.
func ListGroupOrders(svc grouporders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "group order service unavailable"))
			return
		}

		input, err := parseGroupOrderListInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListGroupOrders(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// ListOwnGroupOrders returns group orders the caller created or joined.
func ListOwnGroupOrders(svc grouporders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "group order service unavailable"))
			return
		}

		vendorID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := parseGroupOrderListInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListForVendor(r.Context(), vendorID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func parseGroupOrderListInput(r *http.Request) (grouporders.ListGroupOrdersInput, error) {
	params, err := parsePagination(r)
	if err != nil {
		return grouporders.ListGroupOrdersInput{}, err
	}

	var filters grouporders.GroupOrderListFilters
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status := enums.GroupOrderStatus(raw)
		if !status.IsValid() {
			return grouporders.ListGroupOrdersInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid group order status").WithDetails(map[string]any{"status": raw})
		}
		filters.Status = &status
	}

	supplierID, err := validators.ParseQueryUUID(r, "supplier_id")
	if err != nil {
		return grouporders.ListGroupOrdersInput{}, err
	}
	filters.SupplierID = supplierID

	return grouporders.ListGroupOrdersInput{
		Pagination: params,
		Filters:    filters,
	}, nil
}
