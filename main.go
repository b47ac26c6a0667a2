package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"temple-system/config"
	"temple-system/handlers"
	_ "temple-system/migrations"
	"temple-system/security"
	"temple-system/services"
	"temple-system/utils"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go"
)

func main() {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()

	// Initialize PubNub
	pnConfig := pubnub.NewConfig()
	pnConfig.PublishKey = cfg.PubNubPublishKey
	pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
	pnConfig.SecretKey = cfg.PubNubSecretKey

	pn := pubnub.NewPubNub(pnConfig)

	// Initialize stores and services
	store := services.NewRecordStore(app)
	notificationService := services.NewNotificationService(cfg)
	queueService := services.NewQueueService(store, store, store, redisClient, pn, cfg)
	bookingService := services.NewBookingService(store, store, queueService, notificationService, store, cfg)
	emergencyService := services.NewEmergencyService(store, notificationService, store, pn, cfg.ResponderPhone)
	crowdService := services.NewCrowdService(store, emergencyService, redisClient, pn, cfg)
	parkingService := services.NewParkingService(store)
	expiryService := services.NewExpiryService(store, cfg)

	// Initialize handlers
	bookingHandler := handlers.NewBookingHandler(bookingService)
	queueHandler := handlers.NewQueueHandler(queueService)
	templeHandler := handlers.NewTempleHandler(store, queueService)
	crowdHandler := handlers.NewCrowdHandler(crowdService)
	emergencyHandler := handlers.NewEmergencyHandler(emergencyService)
	parkingHandler := handlers.NewParkingHandler(parkingService)
	adminHandler := handlers.NewAdminHandler(store)
	guardHandler := handlers.NewGuardHandler(bookingService)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	// Expiry sweeper runs for the lifetime of the server
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		expiryService.Start()
		return se.Next()
	})

	go handleShutdown(expiryService)

	if cfg.EnableMetrics {
		go serveMetrics(cfg.MetricsPort)
	}

	// Register routes
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// Temple endpoints
		se.Router.GET("/api/temples", templeHandler.ListTemples)
		se.Router.GET("/api/temples/{id}", templeHandler.GetTemple)

		// Booking endpoints
		se.Router.POST("/api/bookings", bookingHandler.CreateBooking).Bind(apis.RequireAuth())
		se.Router.GET("/api/bookings", bookingHandler.MyBookings).Bind(apis.RequireAuth())
		se.Router.GET("/api/bookings/{id}", bookingHandler.GetBooking).Bind(apis.RequireAuth())
		se.Router.DELETE("/api/bookings/{id}", bookingHandler.CancelBooking).Bind(apis.RequireAuth())

		// Queue endpoints
		se.Router.GET("/api/queue/{templeId}", queueHandler.GetQueueStatus)
		se.Router.POST("/api/queue/join", queueHandler.JoinQueue).Bind(apis.RequireAuth())
		se.Router.GET("/api/queue/position", queueHandler.MyPosition).Bind(apis.RequireAuth())
		se.Router.POST("/api/queue/{templeId}/advance", queueHandler.AdvanceQueue).Bind(apis.RequireAuth())
		se.Router.POST("/api/queue/leave", queueHandler.LeaveQueue).Bind(apis.RequireAuth())
		se.Router.POST("/api/queue/rejoin", queueHandler.RejoinQueue).Bind(apis.RequireAuth())

		// Crowd endpoints; ingest comes from cameras, throttled not authed
		se.Router.POST("/api/crowd/heatmap", crowdHandler.IngestHeatmap).
			BindFunc(security.RateLimit(redisClient, "crowd", 120, time.Minute))
		se.Router.GET("/api/crowd/heatmap", crowdHandler.CurrentHeatmap)
		se.Router.GET("/api/crowd/zones/{zoneId}/history", crowdHandler.ZoneHistory).Bind(apis.RequireAuth())
		se.Router.GET("/api/crowd/analytics", crowdHandler.Analytics).Bind(apis.RequireAuth())
		se.Router.PUT("/api/crowd/zones/{zoneId}/thresholds", crowdHandler.ConfigureThresholds).Bind(apis.RequireAuth())

		// Emergency endpoints
		se.Router.POST("/api/emergencies", emergencyHandler.CreateEmergency).Bind(apis.RequireAuth())
		se.Router.GET("/api/emergencies/pending", emergencyHandler.PendingEmergencies).Bind(apis.RequireAuth())
		se.Router.POST("/api/emergencies/{id}/assign", emergencyHandler.AssignEmergency).Bind(apis.RequireAuth())
		se.Router.POST("/api/emergencies/{id}/resolve", emergencyHandler.ResolveEmergency).Bind(apis.RequireAuth())
		se.Router.GET("/api/emergencies/stats", emergencyHandler.EmergencyStats).Bind(apis.RequireAuth())

		// Parking endpoints
		se.Router.POST("/api/parking/slots", parkingHandler.CreateSlot).Bind(apis.RequireAuth())
		se.Router.GET("/api/parking/slots", parkingHandler.ListSlots)
		se.Router.PATCH("/api/parking/slots/{id}", parkingHandler.UpdateSlot).Bind(apis.RequireAuth())
		se.Router.POST("/api/parking/bulk-update", parkingHandler.BulkUpdate).
			BindFunc(security.RateLimit(redisClient, "parking", 60, time.Minute))
		se.Router.GET("/api/parking/occupancy", parkingHandler.Occupancy)

		// Admin endpoints
		se.Router.GET("/api/admin/dashboard", adminHandler.Dashboard).Bind(apis.RequireAuth())

		// Guard endpoints
		se.Router.POST("/api/guard/verify-qr", guardHandler.VerifyQR).Bind(apis.RequireAuth())
		se.Router.POST("/api/guard/verify-token", guardHandler.VerifyToken).Bind(apis.RequireAuth())

		// Health check
		se.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(200, map[string]string{"status": "healthy"})
		})

		log.Println("Server routes registered")

		return se.Next()
	})

	// Start server
	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}

// serveMetrics exposes Prometheus metrics on a separate port.
func serveMetrics(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	log.Printf("Metrics server listening on :%s", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Printf("Metrics server stopped: %v", err)
	}
}

// handleShutdown stops background workers on SIGINT/SIGTERM.
func handleShutdown(expiryService *services.ExpiryService) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
	expiryService.Shutdown()
}
