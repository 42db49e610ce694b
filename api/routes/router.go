package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lucasmarchena/partsmarket-backend/api/controllers"
	"github.com/lucasmarchena/partsmarket-backend/api/middleware"
	"github.com/lucasmarchena/partsmarket-backend/internal/logistics"
	"github.com/lucasmarchena/partsmarket-backend/internal/notifications"
	"github.com/lucasmarchena/partsmarket-backend/internal/orders"
	"github.com/lucasmarchena/partsmarket-backend/internal/payments"
	"github.com/lucasmarchena/partsmarket-backend/internal/reconcile"
	"github.com/lucasmarchena/partsmarket-backend/internal/wallet"
	"github.com/lucasmarchena/partsmarket-backend/pkg/config"
	"github.com/lucasmarchena/partsmarket-backend/pkg/db"
	"github.com/lucasmarchena/partsmarket-backend/pkg/logger"
	"github.com/lucasmarchena/partsmarket-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	ordersService orders.Service,
	paymentsService payments.Service,
	walletService wallet.Service,
	notificationsService notifications.Service,
	logisticsService logistics.Service,
	projection *reconcile.Projection,
	metricsRegistry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	// A typed-nil *redis.Client must not reach the interface params below.
	var idemStore redis.IdempotencyStore
	var limiter middleware.RateLimitStore
	var cacheP db.Pinger
	if redisClient != nil {
		idemStore = redisClient
		limiter = redisClient
		cacheP = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, cacheP))
	})

	if metricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Get("/tracking/{trackingNumber}", controllers.PublicTracking(logisticsService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idemStore, logg))
		r.Use(middleware.RateLimit(cfg.RateLimit, limiter, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.CreateOrder(ordersService, logg))
			r.Get("/", controllers.ListOrders(ordersService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(ordersService, logg))
			r.Post("/{orderId}/cancel", controllers.CancelOrder(ordersService, logg))
			r.Post("/{orderId}/payments", controllers.AttemptPayment(paymentsService, logg))
		})

		r.Get("/payments/methods", controllers.PaymentMethods(paymentsService, logg))

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/", controllers.WalletBalance(walletService, logg))
			r.Get("/transactions", controllers.WalletTransactions(walletService, logg))
			r.Post("/deposits", controllers.WalletDeposit(walletService, logg))
			r.Post("/withdrawals", controllers.WalletWithdraw(walletService, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Get("/unread-count", controllers.UnreadNotificationCount(notificationsService, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
		})

		r.Route("/partner", func(r chi.Router) {
			r.Use(middleware.RequireRole("partner", logg))
			r.Get("/orders", controllers.ListOrders(ordersService, logg))
			r.Post("/orders/{orderId}/ship", controllers.PartnerShipOrder(ordersService, logg))
			r.Post("/orders/{orderId}/deliver", controllers.PartnerDeliverOrder(ordersService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole("admin", logg))
		r.Use(middleware.Idempotency(idemStore, logg))
		r.Use(middleware.RateLimit(cfg.RateLimit, limiter, logg))

		r.Get("/ping", controllers.AdminPing())

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminListOrders(ordersService, logg))
			r.Get("/{orderId}", controllers.AdminOrderDetail(ordersService, logg))
			r.Post("/{orderId}/confirm", controllers.AdminConfirmOrder(ordersService, logg))
			r.Post("/{orderId}/status", controllers.AdminUpdateOrderStatus(ordersService, logg))
			r.Post("/{orderId}/assign", controllers.AdminAssignPartner(ordersService, logg))
			r.Post("/{orderId}/ship", controllers.AdminShipOrder(ordersService, logg))
			r.Post("/{orderId}/deliver", controllers.AdminDeliverOrder(ordersService, logg))
			r.Post("/{orderId}/cancel", controllers.AdminCancelOrder(ordersService, logg))
			r.Post("/{orderId}/complete", controllers.AdminCompleteOrder(ordersService, logg))
			r.Delete("/{orderId}", controllers.AdminDeleteOrder(ordersService, logg))
			r.Get("/{orderId}/payments", controllers.AdminOrderPayments(paymentsService, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Get("/pending", controllers.AdminPendingPayments(paymentsService, logg))
			r.Post("/{paymentId}/verify", controllers.AdminVerifyPayment(paymentsService, logg))
			r.Post("/{paymentId}/reject", controllers.AdminRejectPayment(paymentsService, logg))
			r.Post("/{paymentId}/refresh", controllers.AdminRefreshPayment(paymentsService, logg))
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Post("/transactions/{transactionId}/confirm", controllers.AdminConfirmWalletTransaction(walletService, logg))
			r.Post("/transactions/{transactionId}/reject", controllers.AdminRejectWalletTransaction(walletService, logg))
			r.Post("/{userId}/replay", controllers.AdminReplayWallet(walletService, logg))
		})

		r.Route("/reconcile", func(r chi.Router) {
			r.Get("/views", controllers.AdminReconcileViews(projection, logg))
			r.Get("/views/{orderId}", controllers.AdminReconcileView(projection, logg))
		})
	})

	return r
}
