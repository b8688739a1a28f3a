package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/luestilo/estilo-backend/api/controllers"
	"github.com/luestilo/estilo-backend/api/middleware"
	"github.com/luestilo/estilo-backend/internal/auth"
	"github.com/luestilo/estilo-backend/internal/clients"
	"github.com/luestilo/estilo-backend/internal/notifications"
	"github.com/luestilo/estilo-backend/internal/orders"
	"github.com/luestilo/estilo-backend/internal/products"
	"github.com/luestilo/estilo-backend/pkg/config"
	"github.com/luestilo/estilo-backend/pkg/db"
	"github.com/luestilo/estilo-backend/pkg/logger"
	"github.com/luestilo/estilo-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	authService auth.Service,
	clientService *clients.Service,
	productService *products.Service,
	orderService *orders.Service,
	notificationService *notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
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

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(rateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.With(rateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(authService, logg))
		r.Post("/refresh-token", controllers.AuthRefresh(authService, logg))
		r.With(middleware.Auth(authService, logg)).Post("/logout", controllers.AuthLogout(authService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(authService, logg))

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", controllers.ClientsList(clientService, logg))
			r.Post("/", controllers.ClientsCreate(clientService, logg))
			r.Get("/{id}", controllers.ClientsGet(clientService, logg))
			r.Put("/{id}", controllers.ClientsUpdate(clientService, logg))
			r.Delete("/{id}", controllers.ClientsDelete(clientService, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(productService, logg))
			r.Post("/", controllers.ProductsCreate(productService, logg))
			r.Get("/{id}", controllers.ProductsGet(productService, logg))
			r.Put("/{id}", controllers.ProductsUpdate(productService, logg))
			r.Delete("/{id}", controllers.ProductsDelete(productService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(orderService, logg))
			r.Post("/", controllers.OrdersCreate(orderService, logg))
			r.Get("/{id}", controllers.OrdersGet(orderService, logg))
			r.Put("/{id}", controllers.OrdersUpdate(orderService, logg))
			r.Delete("/{id}", controllers.OrdersDelete(orderService, logg))
		})

		r.Route("/whatsapp", func(r chi.Router) {
			r.Use(middleware.RequireSuperuser(logg))

			r.Post("/send", controllers.WhatsAppSend(notificationService, clientService, logg))
			r.Post("/send-template", controllers.WhatsAppSendTemplate(notificationService, clientService, logg))
			r.Post("/notify-order", controllers.WhatsAppNotifyOrder(notificationService, clientService, logg))
			r.Post("/notify-payment", controllers.WhatsAppNotifyPayment(notificationService, clientService, logg))
			r.Post("/notify-shipping", controllers.WhatsAppNotifyShipping(notificationService, clientService, logg))
			r.Post("/notify-promotion", controllers.WhatsAppNotifyPromotion(notificationService, clientService, logg))
		})
	})

	return r
}

func rateLimit(policy middleware.AuthRateLimitPolicy, limiter *redis.Client, logg *logger.Logger) func(http.Handler) http.Handler {
	if limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.AuthRateLimit(policy, limiter, logg)
}
