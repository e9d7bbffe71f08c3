package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sfconnect/sfconnect-backend/pkg/enums"
	pkgerrors "github.com/sfconnect/sfconnect-backend/pkg/errors"
)

func buildTestService(t *testing.T) (Service, *Repository, context.Context) {
	t.Helper()
	conn := openTestDB(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo, context.Background()
}

func TestServiceCreateProduct(t *testing.T) {
	svc, repo, ctx := buildTestService(t)
	supplier := mustCreateSupplier(t, repo.db)

	created, err := svc.CreateProduct(ctx, supplier.ID, enums.UserRoleSupplier, CreateProductInput{
		Name:              "  Turmeric Powder ",
		Category:          "spices",
		UnitPrice:         decimal.NewFromFloat(180.00),
		Unit:              "kg",
		AvailableQuantity: 25,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatal("expected generated product id")
	}
	if created.Name != "Turmeric Powder" {
		t.Fatalf("expected trimmed name, got %q", created.Name)
	}
	if created.SupplierID != supplier.ID {
		t.Fatalf("expected supplier id forced to caller, got %s", created.SupplierID)
	}
	if created.MinimumOrder != 1 {
		t.Fatalf("expected minimum_order default 1, got %d", created.MinimumOrder)
	}
	if created.Supplier == nil || created.Supplier.ID != supplier.ID {
		t.Fatal("expected supplier summary embedded")
	}
}

func TestServiceCreateProductRejectsVendors(t *testing.T) {
	svc, _, ctx := buildTestService(t)

	_, err := svc.CreateProduct(ctx, uuid.New(), enums.UserRoleVendor, CreateProductInput{
		Name:      "Coriander",
		Category:  "herbs",
		UnitPrice: decimal.NewFromInt(40),
		Unit:      "bunch",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestServiceCreateProductValidatesValues(t *testing.T) {
	svc, repo, ctx := buildTestService(t)
	supplier := mustCreateSupplier(t, repo.db)

	cases := []struct {
		name  string
		input CreateProductInput
	}{
		{"zeroPrice", CreateProductInput{Name: "Salt", Category: "spices", Unit: "kg", UnitPrice: decimal.Zero}},
		{"negativeQuantity", CreateProductInput{Name: "Salt", Category: "spices", Unit: "kg", UnitPrice: decimal.NewFromInt(10), AvailableQuantity: -1}},
		{"negativeMinimumOrder", CreateProductInput{Name: "Salt", Category: "spices", Unit: "kg", UnitPrice: decimal.NewFromInt(10), MinimumOrder: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateProduct(ctx, supplier.ID, enums.UserRoleSupplier, tc.input)
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestServiceUpdateProductMergesFields(t *testing.T) {
	svc, repo, ctx := buildTestService(t)
	supplier := mustCreateSupplier(t, repo.db)
	product := mustCreateProduct(t, repo.db, supplier.ID, "Paneer", "dairy")

	newPrice := decimal.NewFromFloat(320.00)
	newQty := 12
	updated, err := svc.UpdateProduct(ctx, supplier.ID, product.ID, UpdateProductInput{
		UnitPrice:         &newPrice,
		AvailableQuantity: &newQty,
	})
	if err != nil {
		t.Fatalf("update product: %v", err)
	}
	if !updated.UnitPrice.Equal(newPrice) {
		t.Fatalf("expected price %s, got %s", newPrice, updated.UnitPrice)
	}
	if updated.AvailableQuantity != newQty {
		t.Fatalf("expected quantity %d, got %d", newQty, updated.AvailableQuantity)
	}
	if updated.Name != "Paneer" {
		t.Fatalf("expected untouched name, got %q", updated.Name)
	}
	if updated.Category != "dairy" {
		t.Fatalf("expected untouched category, got %q", updated.Category)
	}
}

func TestServiceUpdateProductOwnership(t *testing.T) {
	svc, repo, ctx := buildTestService(t)
	owner := mustCreateSupplier(t, repo.db)
	other := mustCreateSupplier(t, repo.db)
	product := mustCreateProduct(t, repo.db, owner.ID, "Ghee", "dairy")

	name := "Pure Ghee"
	_, err := svc.UpdateProduct(ctx, other.ID, product.ID, UpdateProductInput{Name: &name})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}

	_, err = svc.UpdateProduct(ctx, owner.ID, uuid.New(), UpdateProductInput{Name: &name})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestServiceDeleteProduct(t *testing.T) {
	svc, repo, ctx := buildTestService(t)
	owner := mustCreateSupplier(t, repo.db)
	other := mustCreateSupplier(t, repo.db)
	product := mustCreateProduct(t, repo.db, owner.ID, "Mustard Oil", "oils")

	err := svc.DeleteProduct(ctx, other.ID, product.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}

	if err := svc.DeleteProduct(ctx, owner.ID, product.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}

	_, err = svc.GetProduct(ctx, product.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestServiceListOwnProducts(t *testing.T) {
	svc, repo, ctx := buildTestService(t)
	supplier := mustCreateSupplier(t, repo.db)
	mustCreateProduct(t, repo.db, supplier.ID, "Potatoes", "vegetables")
	mustCreateProduct(t, repo.db, supplier.ID, "Onions", "vegetables")
	mustCreateProduct(t, repo.db, mustCreateSupplier(t, repo.db).ID, "Garlic", "vegetables")

	products, err := svc.ListOwnProducts(ctx, supplier.ID)
	if err != nil {
		t.Fatalf("list own products: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
}
