package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sfconnect/sfconnect-backend/api/controllers"
	"github.com/sfconnect/sfconnect-backend/api/middleware"
	"github.com/sfconnect/sfconnect-backend/internal/auth"
	"github.com/sfconnect/sfconnect-backend/internal/catalog"
	"github.com/sfconnect/sfconnect-backend/internal/grouporders"
	"github.com/sfconnect/sfconnect-backend/internal/orders"
	"github.com/sfconnect/sfconnect-backend/internal/ratings"
	"github.com/sfconnect/sfconnect-backend/pkg/auth/session"
	"github.com/sfconnect/sfconnect-backend/pkg/config"
	"github.com/sfconnect/sfconnect-backend/pkg/db"
	"github.com/sfconnect/sfconnect-backend/pkg/enums"
	"github.com/sfconnect/sfconnect-backend/pkg/logger"
	"github.com/sfconnect/sfconnect-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              db.Pinger
	Redis           *redis.Client
	SessionManager  sessionManager
	AuthService     auth.Service
	RegisterService auth.RegisterService
	CatalogService  catalog.Service
	OrderService    orders.Service
	GroupService    grouporders.Service
	RatingService   ratings.Service
	Gatherer        prometheus.Gatherer
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins...),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	var cache redis.Pinger
	if deps.Redis != nil {
		cache = deps.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, cache, logg))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Get("/products", controllers.PublicListProducts(deps.CatalogService, logg))
		r.Get("/products/{productID}", controllers.PublicGetProduct(deps.CatalogService, logg))
		r.Get("/suppliers/{supplierID}/ratings", controllers.PublicListSupplierRatings(deps.RatingService, logg))
		r.Get("/group-orders", controllers.ListGroupOrders(deps.GroupService, logg))
		r.Get("/group-orders/{groupOrderID}", controllers.GetGroupOrder(deps.GroupService, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.RegisterService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		r.With(middleware.Auth(cfg.JWT, deps.SessionManager, logg)).Get("/profile", controllers.AuthProfile(deps.AuthService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/supplier", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.UserRoleSupplier), logg))

			r.Post("/products", controllers.SupplierCreateProduct(deps.CatalogService, logg))
			r.Get("/products", controllers.SupplierListOwnProducts(deps.CatalogService, logg))
			r.Patch("/products/{productID}", controllers.SupplierUpdateProduct(deps.CatalogService, logg))
			r.Delete("/products/{productID}", controllers.SupplierDeleteProduct(deps.CatalogService, logg))
			r.Patch("/orders/{orderID}/status", controllers.SupplierUpdateOrderStatus(deps.OrderService, logg))
		})

		r.Route("/vendor", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.UserRoleVendor), logg))

			r.Post("/orders", controllers.VendorCreateOrder(deps.OrderService, logg))
			r.Post("/group-orders", controllers.VendorCreateGroupOrder(deps.GroupService, logg))
			r.Post("/group-orders/{groupOrderID}/join", controllers.VendorJoinGroupOrder(deps.GroupService, logg))
			r.Get("/group-orders", controllers.ListOwnGroupOrders(deps.GroupService, logg))
			r.Post("/ratings", controllers.VendorCreateRating(deps.RatingService, logg))
			r.Get("/ratings", controllers.VendorListOwnRatings(deps.RatingService, logg))
		})

		r.Get("/orders", controllers.ListOrders(deps.OrderService, logg))
		r.Get("/orders/{orderID}", controllers.GetOrder(deps.OrderService, logg))
	})

	return r
}
