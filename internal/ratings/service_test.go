package ratings

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sfconnect/sfconnect-backend/pkg/enums"
	pkgerrors "github.com/sfconnect/sfconnect-backend/pkg/errors"
)

func buildTestService(t *testing.T) (Service, *gorm.DB, context.Context) {
	t.Helper()
	client, conn := newTestClient(t)
	svc, err := NewService(NewRepository(conn), client, NewSupplierAggregateWriter(), nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, conn, context.Background()
}

func mustRate(t *testing.T, svc Service, ctx context.Context, vendorID, supplierID, orderID uuid.UUID, stars int) *RatingDTO {
	t.Helper()
	rating, err := svc.CreateRating(ctx, enums.UserRoleVendor, CreateRatingInput{
		VendorID:   vendorID,
		SupplierID: supplierID,
		OrderID:    orderID,
		Rating:     stars,
	})
	if err != nil {
		t.Fatalf("create rating: %v", err)
	}
	return rating
}

func TestCreateRatingRecomputesSupplierAggregate(t *testing.T) {
	svc, conn, ctx := buildTestService(t)
	vendorA := mustCreateUser(t, conn, enums.UserRoleVendor)
	vendorB := mustCreateUser(t, conn, enums.UserRoleVendor)
	supplier := mustCreateUser(t, conn, enums.UserRoleSupplier)
	orderA := mustCreateOrderWithStatus(t, conn, vendorA.ID, supplier.ID, enums.OrderStatusDelivered)
	orderB := mustCreateOrderWithStatus(t, conn, vendorB.ID, supplier.ID, enums.OrderStatusDelivered)

	first := mustRate(t, svc, ctx, vendorA.ID, supplier.ID, orderA.ID, 4)
	if first.Vendor == nil || first.Vendor.ID != vendorA.ID {
		t.Fatal("expected vendor summary embedded")
	}

	mean, total := supplierAggregate(t, conn, supplier.ID)
	if mean == nil || !mean.Equal(decimal.NewFromFloat(4.0)) {
		t.Fatalf("expected aggregate 4.0, got %v", mean)
	}
	if total != 1 {
		t.Fatalf("expected one rating counted, got %d", total)
	}

	mustRate(t, svc, ctx, vendorB.ID, supplier.ID, orderB.ID, 5)

	mean, total = supplierAggregate(t, conn, supplier.ID)
	if mean == nil || !mean.Equal(decimal.NewFromFloat(4.5)) {
		t.Fatalf("expected aggregate 4.5, got %v", mean)
	}
	if total != 2 {
		t.Fatalf("expected two ratings counted, got %d", total)
	}
}

func TestCreateRatingRoundsToOneDecimal(t *testing.T) {
	svc, conn, ctx := buildTestService(t)
	supplier := mustCreateUser(t, conn, enums.UserRoleSupplier)

	stars := []int{4, 4, 5}
	for _, s := range stars {
		vendor := mustCreateUser(t, conn, enums.UserRoleVendor)
		order := mustCreateOrderWithStatus(t, conn, vendor.ID, supplier.ID, enums.OrderStatusDelivered)
		mustRate(t, svc, ctx, vendor.ID, supplier.ID, order.ID, s)
	}

	mean, total := supplierAggregate(t, conn, supplier.ID)
	if mean == nil || !mean.Equal(decimal.NewFromFloat(4.3)) {
		t.Fatalf("expected aggregate 4.3, got %v", mean)
	}
	if total != 3 {
		t.Fatalf("expected three ratings counted, got %d", total)
	}
}

func TestCreateRatingEligibility(t *testing.T) {
	svc, conn, ctx := buildTestService(t)
	vendor := mustCreateUser(t, conn, enums.UserRoleVendor)
	otherVendor := mustCreateUser(t, conn, enums.UserRoleVendor)
	supplier := mustCreateUser(t, conn, enums.UserRoleSupplier)
	otherSupplier := mustCreateUser(t, conn, enums.UserRoleSupplier)
	pending := mustCreateOrderWithStatus(t, conn, vendor.ID, supplier.ID, enums.OrderStatusPending)
	delivered := mustCreateOrderWithStatus(t, conn, vendor.ID, supplier.ID, enums.OrderStatusDelivered)

	cases := []struct {
		name  string
		role  enums.UserRole
		input CreateRatingInput
		code  pkgerrors.Code
	}{
		{
			"supplierRole",
			enums.UserRoleSupplier,
			CreateRatingInput{VendorID: vendor.ID, SupplierID: supplier.ID, OrderID: delivered.ID, Rating: 5},
			pkgerrors.CodeForbidden,
		},
		{
			"starsOutOfRange",
			enums.UserRoleVendor,
			CreateRatingInput{VendorID: vendor.ID, SupplierID: supplier.ID, OrderID: delivered.ID, Rating: 6},
			pkgerrors.CodeValidation,
		},
		{
			"unknownOrder",
			enums.UserRoleVendor,
			CreateRatingInput{VendorID: vendor.ID, SupplierID: supplier.ID, OrderID: uuid.New(), Rating: 3},
			pkgerrors.CodeNotFound,
		},
		{
			"foreignOrder",
			enums.UserRoleVendor,
			CreateRatingInput{VendorID: otherVendor.ID, SupplierID: supplier.ID, OrderID: delivered.ID, Rating: 3},
			pkgerrors.CodeForbidden,
		},
		{
			"wrongSupplier",
			enums.UserRoleVendor,
			CreateRatingInput{VendorID: vendor.ID, SupplierID: otherSupplier.ID, OrderID: delivered.ID, Rating: 3},
			pkgerrors.CodeValidation,
		},
		{
			"orderNotDelivered",
			enums.UserRoleVendor,
			CreateRatingInput{VendorID: vendor.ID, SupplierID: supplier.ID, OrderID: pending.ID, Rating: 3},
			pkgerrors.CodeConflict,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateRating(ctx, tc.role, tc.input)
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != tc.code {
				t.Fatalf("expected %s error, got %v", tc.code, err)
			}
		})
	}

	mean, total := supplierAggregate(t, conn, supplier.ID)
	if mean != nil || total != 0 {
		t.Fatalf("expected untouched aggregate, got %v / %d", mean, total)
	}
}

func TestCreateRatingAllowsRepeatOnSameOrder(t *testing.T) {
	svc, conn, ctx := buildTestService(t)
	vendor := mustCreateUser(t, conn, enums.UserRoleVendor)
	supplier := mustCreateUser(t, conn, enums.UserRoleSupplier)
	order := mustCreateOrderWithStatus(t, conn, vendor.ID, supplier.ID, enums.OrderStatusDelivered)

	mustRate(t, svc, ctx, vendor.ID, supplier.ID, order.ID, 2)
	mustRate(t, svc, ctx, vendor.ID, supplier.ID, order.ID, 4)

	mean, total := supplierAggregate(t, conn, supplier.ID)
	if mean == nil || !mean.Equal(decimal.NewFromFloat(3.0)) {
		t.Fatalf("expected aggregate 3.0, got %v", mean)
	}
	if total != 2 {
		t.Fatalf("expected two ratings counted, got %d", total)
	}
}

func TestListRatings(t *testing.T) {
	svc, conn, ctx := buildTestService(t)
	vendor := mustCreateUser(t, conn, enums.UserRoleVendor)
	supplierA := mustCreateUser(t, conn, enums.UserRoleSupplier)
	supplierB := mustCreateUser(t, conn, enums.UserRoleSupplier)
	orderA := mustCreateOrderWithStatus(t, conn, vendor.ID, supplierA.ID, enums.OrderStatusDelivered)
	orderB := mustCreateOrderWithStatus(t, conn, vendor.ID, supplierB.ID, enums.OrderStatusDelivered)

	mustRate(t, svc, ctx, vendor.ID, supplierA.ID, orderA.ID, 5)
	mustRate(t, svc, ctx, vendor.ID, supplierB.ID, orderB.ID, 3)

	bySupplier, err := svc.ListBySupplier(ctx, supplierA.ID, ListRatingsInput{})
	if err != nil {
		t.Fatalf("list by supplier: %v", err)
	}
	if len(bySupplier.Ratings) != 1 || bySupplier.Ratings[0].SupplierID != supplierA.ID {
		t.Fatalf("expected one rating for supplier A, got %d", len(bySupplier.Ratings))
	}
	if bySupplier.Ratings[0].Vendor == nil {
		t.Fatal("expected vendor summary embedded")
	}

	byVendor, err := svc.ListByVendor(ctx, vendor.ID, ListRatingsInput{})
	if err != nil {
		t.Fatalf("list by vendor: %v", err)
	}
	if len(byVendor.Ratings) != 2 {
		t.Fatalf("expected two ratings by vendor, got %d", len(byVendor.Ratings))
	}
}
