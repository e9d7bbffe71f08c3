package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sfconnect/sfconnect-backend/internal/auth"
	"github.com/sfconnect/sfconnect-backend/internal/catalog"
	"github.com/sfconnect/sfconnect-backend/internal/grouporders"
	"github.com/sfconnect/sfconnect-backend/internal/orders"
	"github.com/sfconnect/sfconnect-backend/internal/ratings"
	"github.com/sfconnect/sfconnect-backend/internal/users"
	pkgAuth "github.com/sfconnect/sfconnect-backend/pkg/auth"
	"github.com/sfconnect/sfconnect-backend/pkg/config"
	"github.com/sfconnect/sfconnect-backend/pkg/enums"
	"github.com/sfconnect/sfconnect-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionManager struct{}

func (stubSessionManager) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

func (stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	return "", "", nil
}

func (stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	return nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.AuthResponse, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubAuthService) Refresh(ctx context.Context, req auth.RefreshRequest) (*auth.AuthResponse, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubAuthService) Logout(ctx context.Context, accessID string) error {
	return nil
}

func (stubAuthService) Profile(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	return &users.UserDTO{ID: userID}, nil
}

type stubRegisterService struct{}

func (stubRegisterService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.AuthResponse, error) {
	return &auth.AuthResponse{}, nil
}

type stubCatalogService struct{}

func (stubCatalogService) CreateProduct(ctx context.Context, supplierID uuid.UUID, role enums.UserRole, input catalog.CreateProductInput) (*catalog.ProductDTO, error) {
	return &catalog.ProductDTO{}, nil
}

func (stubCatalogService) UpdateProduct(ctx context.Context, supplierID, productID uuid.UUID, input catalog.UpdateProductInput) (*catalog.ProductDTO, error) {
	return &catalog.ProductDTO{}, nil
}

func (stubCatalogService) DeleteProduct(ctx context.Context, supplierID, productID uuid.UUID) error {
	return nil
}

func (stubCatalogService) GetProduct(ctx context.Context, productID uuid.UUID) (*catalog.ProductDTO, error) {
	return &catalog.ProductDTO{ID: productID}, nil
}

func (stubCatalogService) ListProducts(ctx context.Context, input catalog.ListProductsInput) (*catalog.ProductListResult, error) {
	return &catalog.ProductListResult{}, nil
}

func (stubCatalogService) ListOwnProducts(ctx context.Context, supplierID uuid.UUID) ([]catalog.ProductDTO, error) {
	return nil, nil
}

type stubOrderService struct{}

func (stubOrderService) CreateOrder(ctx context.Context, input orders.CreateOrderInput) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{}, nil
}

func (stubOrderService) UpdateStatus(ctx context.Context, input orders.UpdateStatusInput) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{}, nil
}

func (stubOrderService) GetOrder(ctx context.Context, callerID, orderID uuid.UUID) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{ID: orderID}, nil
}

func (stubOrderService) ListOrders(ctx context.Context, callerID uuid.UUID, role enums.UserRole, input orders.ListOrdersInput) (*orders.OrderListResult, error) {
	return &orders.OrderListResult{}, nil
}

type stubGroupOrderService struct{}

func (stubGroupOrderService) CreateGroupOrder(ctx context.Context, role enums.UserRole, input grouporders.CreateGroupOrderInput) (*grouporders.GroupOrderDTO, error) {
	return &grouporders.GroupOrderDTO{}, nil
}

func (stubGroupOrderService) JoinGroupOrder(ctx context.Context, role enums.UserRole, input grouporders.JoinGroupOrderInput) (*grouporders.GroupOrderDTO, error) {
	return &grouporders.GroupOrderDTO{}, nil
}

func (stubGroupOrderService) GetGroupOrder(ctx context.Context, groupOrderID uuid.UUID) (*grouporders.GroupOrderDTO, error) {
	return &grouporders.GroupOrderDTO{ID: groupOrderID}, nil
}

func (stubGroupOrderService) ListGroupOrders(ctx context.Context, input grouporders.ListGroupOrdersInput) (*grouporders.GroupOrderListResult, error) {
	return &grouporders.GroupOrderListResult{}, nil
}

func (stubGroupOrderService) ListForVendor(ctx context.Context, vendorID uuid.UUID, input grouporders.ListGroupOrdersInput) (*grouporders.GroupOrderListResult, error) {
	return &grouporders.GroupOrderListResult{}, nil
}

type stubRatingService struct{}

func (stubRatingService) CreateRating(ctx context.Context, role enums.UserRole, input ratings.CreateRatingInput) (*ratings.RatingDTO, error) {
	return &ratings.RatingDTO{}, nil
}

func (stubRatingService) ListBySupplier(ctx context.Context, supplierID uuid.UUID, input ratings.ListRatingsInput) (*ratings.RatingListResult, error) {
	return &ratings.RatingListResult{}, nil
}

func (stubRatingService) ListByVendor(ctx context.Context, vendorID uuid.UUID, input ratings.ListRatingsInput) (*ratings.RatingListResult, error) {
	return &ratings.RatingListResult{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(Deps{
		Config:          cfg,
		Logger:          logg,
		DB:              stubPinger{},
		Redis:           nil,
		SessionManager:  stubSessionManager{},
		AuthService:     stubAuthService{},
		RegisterService: stubRegisterService{},
		CatalogService:  stubCatalogService{},
		OrderService:    stubOrderService{},
		GroupService:    stubGroupOrderService{},
		RatingService:   stubRatingService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestPublicRoutesNeedNoToken(t *testing.T) {
	router := newTestRouter(testConfig())

	for _, path := range []string{"/health/live", "/health/ready", "/api/public/ping", "/api/public/products", "/api/public/group-orders"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s got %d", path, resp.Code)
		}
	}
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleVendor))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for private ping got %d", resp.Code)
	}
}

func TestSupplierGroupRequiresSupplierRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	vendor := httptest.NewRequest(http.MethodGet, "/api/v1/supplier/products", nil)
	vendor.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleVendor))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, vendor)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for vendor got %d", resp.Code)
	}

	supplier := httptest.NewRequest(http.MethodGet, "/api/v1/supplier/products", nil)
	supplier.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleSupplier))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, supplier)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for supplier got %d", resp.Code)
	}
}

func TestVendorGroupRequiresVendorRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	supplier := httptest.NewRequest(http.MethodGet, "/api/v1/vendor/ratings", nil)
	supplier.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleSupplier))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, supplier)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for supplier got %d", resp.Code)
	}

	vendor := httptest.NewRequest(http.MethodGet, "/api/v1/vendor/ratings", nil)
	vendor.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleVendor))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, vendor)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for vendor got %d", resp.Code)
	}
}

func TestProfileRequiresToken(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	anon := httptest.NewRequest(http.MethodGet, "/api/v1/auth/profile", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, anon)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}

	authed := httptest.NewRequest(http.MethodGet, "/api/v1/auth/profile", nil)
	authed.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleVendor))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, authed)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for profile got %d", resp.Code)
	}
}

func TestSharedOrderRoutesAcceptEitherRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	for _, role := range []enums.UserRole{enums.UserRoleVendor, enums.UserRoleSupplier} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
		req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, role))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s orders got %d", role, resp.Code)
		}
	}
}
