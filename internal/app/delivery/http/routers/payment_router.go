package routers

import (
	"telehealth-service/internal/app/config"
	"telehealth-service/internal/app/delivery/http/controllers"
	"telehealth-service/internal/app/delivery/http/middlewares"
	"time"

	"github.com/go-chi/chi/v5"
)

func attachPaymentRoutes(
	router chi.Router,
	internalConfig *config.InternalConfig,
	middlewareInstance *middlewares.Middlewares,
	paymentController *controllers.PaymentController,
	webhookController *controllers.WebhookController,
) {
	webhookLimiter := middlewares.NewRateLimiter(
		middlewareInstance.Log,
		internalConfig.Webhook.RateLimitPerSecond,
		internalConfig.Webhook.RateLimitBurst,
		time.Duration(internalConfig.Webhook.RateLimitBlockDuration)*time.Second,
	)
	router.With(webhookLimiter.Limit).Post("/webhook", webhookController.HandlePayPal)

	router.Group(func(r chi.Router) {
		r.Use(middlewareInstance.Authenticate)
		r.Use(middlewareInstance.Authorize)

		r.Post("/create-order", paymentController.CreateOrder)
		r.Post("/capture/{orderId}", paymentController.Capture)
		r.Get("/history", paymentController.History)
		r.Get("/analytics", paymentController.Analytics)
		r.Get("/refunds", paymentController.Refunds)
		r.Get("/pending", paymentController.Pending)
		r.Get("/{paymentId}", paymentController.GetByID)
	})
}
