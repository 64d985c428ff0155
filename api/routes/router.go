package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brandhaus/storefront-backend/api/controllers"
	"github.com/brandhaus/storefront-backend/api/middleware"
	"github.com/brandhaus/storefront-backend/internal/catalog"
	checkoutsvc "github.com/brandhaus/storefront-backend/internal/checkout"
	"github.com/brandhaus/storefront-backend/internal/clients"
	"github.com/brandhaus/storefront-backend/internal/coupons"
	"github.com/brandhaus/storefront-backend/internal/messages"
	"github.com/brandhaus/storefront-backend/internal/orders"
	"github.com/brandhaus/storefront-backend/internal/resellers"
	"github.com/brandhaus/storefront-backend/pkg/config"
	"github.com/brandhaus/storefront-backend/pkg/db"
	"github.com/brandhaus/storefront-backend/pkg/logger"
	"github.com/brandhaus/storefront-backend/pkg/metrics"
	pkgredis "github.com/brandhaus/storefront-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Cfg         *config.Config
	Logg        *logger.Logger
	DBPinger    db.Pinger
	RedisPinger pkgredis.Pinger
	IdemStore   pkgredis.IdempotencyStore
	Registry    *prometheus.Registry
	HTTPMetrics *metrics.HTTPMetrics

	Catalog   catalog.Service
	Coupons   coupons.Service
	Checkout  checkoutsvc.Service
	Orders    orders.Service
	Clients   clients.Service
	Resellers resellers.Service
	Messages  messages.Service
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(d.Logg),
		middleware.RequestID(d.Logg),
		middleware.Logging(d.Logg, d.HTTPMetrics),
		middleware.CORS(),
		middleware.Identity(d.Logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(d.Cfg))
		r.Get("/ready", controllers.HealthReady(d.Cfg, d.Logg, d.DBPinger, d.RedisPinger))
	})

	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(d.IdemStore, d.Logg))

		// storefront surface, no identity required
		r.Get("/products", controllers.ListProducts(d.Catalog, d.Logg))
		r.Get("/products/{productID}", controllers.GetProduct(d.Catalog, d.Logg))
		r.Get("/coupons/lookup", controllers.LookupCoupon(d.Coupons, d.Logg))
		r.Post("/cart/quote", controllers.QuoteCart(d.Checkout, d.Logg))
		r.Post("/checkout", controllers.Checkout(d.Checkout, d.Logg))

		// back office
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(d.Logg, middleware.RoleAdmin))

			r.Post("/products", controllers.CreateProduct(d.Catalog, d.Logg))
			r.Patch("/products/{productID}", controllers.UpdateProduct(d.Catalog, d.Logg))
			r.Delete("/products/{productID}", controllers.DeleteProduct(d.Catalog, d.Logg))
			r.Post("/products/{productID}/restock", controllers.RestockProduct(d.Catalog, d.Logg))

			r.Get("/coupons", controllers.ListCoupons(d.Coupons, d.Logg))
			r.Post("/coupons", controllers.CreateCoupon(d.Coupons, d.Logg))
			r.Patch("/coupons/{couponID}", controllers.UpdateCoupon(d.Coupons, d.Logg))
			r.Delete("/coupons/{couponID}", controllers.DeleteCoupon(d.Coupons, d.Logg))

			r.Get("/orders", controllers.ListOrders(d.Orders, d.Logg))
			r.Get("/orders/{orderID}", controllers.GetOrder(d.Orders, d.Logg))
			r.Get("/orders/{orderID}/summary", controllers.GetOrderSummary(d.Orders, d.Logg))
			r.Post("/orders/{orderID}/status", controllers.AdvanceOrderStatus(d.Orders, d.Logg))
			r.Post("/orders/{orderID}/settle", controllers.SettleOrder(d.Orders, d.Logg))
			r.Delete("/orders/{orderID}", controllers.DeleteOrder(d.Orders, d.Logg))

			r.Get("/clients", controllers.ListClients(d.Clients, d.Logg))
			r.Post("/clients", controllers.CreateClient(d.Clients, d.Logg))
			r.Get("/clients/{clientID}", controllers.GetClient(d.Clients, d.Logg))
			r.Patch("/clients/{clientID}", controllers.UpdateClient(d.Clients, d.Logg))
			r.Delete("/clients/{clientID}", controllers.DeleteClient(d.Clients, d.Logg))
			r.Post("/clients/{clientID}/payments", controllers.RecordClientPayment(d.Clients, d.Logg))

			r.Get("/resellers", controllers.ListResellers(d.Resellers, d.Logg))
			r.Post("/resellers", controllers.CreateReseller(d.Resellers, d.Logg))
			r.Patch("/resellers/{resellerID}", controllers.UpdateReseller(d.Resellers, d.Logg))
			r.Delete("/resellers/{resellerID}", controllers.DeleteReseller(d.Resellers, d.Logg))
			r.Post("/resellers/points/reset", controllers.ResetResellerPoints(d.Resellers, d.Logg))
		})

		// shared by back office and reseller portal
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(d.Logg, middleware.RoleAdmin, middleware.RoleReseller))

			r.Get("/resellers/ranking", controllers.ResellerRanking(d.Resellers, d.Logg))
			r.Get("/resellers/{resellerID}", controllers.GetReseller(d.Resellers, d.Logg))
			r.Get("/resellers/{resellerID}/stock", controllers.GetResellerStock(d.Resellers, d.Logg))
			r.Get("/resellers/{resellerID}/sales", controllers.ListResellerSales(d.Resellers, d.Logg))
			r.Post("/resellers/{resellerID}/sales", controllers.RecordResellerSale(d.Resellers, d.Logg))

			r.Get("/resellers/{resellerID}/messages", controllers.GetThread(d.Messages, d.Logg))
			r.Post("/resellers/{resellerID}/messages", controllers.SendMessage(d.Messages, d.Logg))
			r.Get("/resellers/{resellerID}/messages/unread", controllers.GetUnreadCount(d.Messages, d.Logg))
		})
	})

	return r
}
