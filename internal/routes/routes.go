package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/lesson-scheduler/internal/app"
	"github.com/BruksfildServices01/lesson-scheduler/internal/config"
	"github.com/BruksfildServices01/lesson-scheduler/internal/handlers"
	"github.com/BruksfildServices01/lesson-scheduler/internal/middleware"
)

func RegisterRoutes(
	r *gin.Engine,
	svc *app.Services,
	checks map[string]func(ctx context.Context) error,
	cfg *config.Config,
	logger *zap.Logger,
) {

	// ======================================================
	// 🌍 MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	slotsHandler := handlers.NewSlotsHandler(svc.GetSlots)

	bookingHandler := handlers.NewBookingHandler(
		svc.CreateBooking,
		svc.DecideBooking,
		svc.CancelBooking,
		svc.ListBookings,
	)

	availabilityHandler := handlers.NewAvailabilityHandler(
		svc.UpsertRule,
		svc.ListRules,
		svc.UpsertException,
		svc.DeleteException,
	)

	pingers := make(map[string]handlers.Pinger, len(checks))
	for name, check := range checks {
		pingers[name] = check
	}
	healthHandler := handlers.NewHealthHandler(pingers)

	r.GET("/health", healthHandler.Health)

	// ======================================================
	// 🌐 API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// 🌐 API PÚBLICA (jogador)
		// ------------------------------
		publicAPI := api.Group("/public")
		{
			publicAPI.GET("/clubs/:club_id/trainers/:trainer_id/slots", slotsHandler.List)
			publicAPI.POST("/clubs/:club_id/trainers/:trainer_id/bookings", bookingHandler.Create)
			publicAPI.POST("/bookings/:id/cancel", bookingHandler.CancelByToken)
		}

		// ------------------------------
		// 💳 GATEWAY
		// ------------------------------
		if svc.Payments != nil {
			webhookHandler := handlers.NewWebhookHandler(svc.Payments, logger)
			api.POST("/payments/webhook", webhookHandler.Handle)
		}

		// ------------------------------
		// 🔐 API PRIVADA (treinador)
		// ------------------------------
		secured := api.Group("/me")
		secured.Use(middleware.AuthMiddleware(cfg.JWTSecret))
		{
			secured.GET("/bookings", bookingHandler.List)
			secured.POST("/bookings/:id/decision", bookingHandler.Decide)
			secured.POST("/bookings/:id/cancel", bookingHandler.Cancel)

			secured.GET("/availability/rules", availabilityHandler.ListRules)
			secured.PUT("/availability/rules/:weekday", availabilityHandler.UpsertRule)
			secured.PUT("/availability/exceptions/:date", availabilityHandler.UpsertException)
			secured.DELETE("/availability/exceptions/:date", availabilityHandler.DeleteException)
		}
	}
}
