package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restaurant-api/appstate"
	"restaurant-api/checkout"
	"restaurant-api/config"
	"restaurant-api/events"
	"restaurant-api/feed"
	"restaurant-api/handlers"
	"restaurant-api/middleware"
	"restaurant-api/notify"
	"restaurant-api/orders"
	"restaurant-api/payment"
	"restaurant-api/repository"
	"restaurant-api/routes"
	"restaurant-api/telemetry"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

const serviceName = "restaurant-api"

func main() {
	// Set Gin mode
	mode := os.Getenv("GIN_MODE")
	if mode == "" {
		gin.SetMode(gin.DebugMode)
	}

	settings, err := config.Load()
	if err != nil {
		log.Fatal("❌ Failed to load configuration:", err)
	}

	// Initialize database
	config.InitDB(settings)

	shutdownTracing, err := telemetry.Setup(serviceName, settings.OTelStdout)
	if err != nil {
		log.Fatal("❌ Failed to set up tracing:", err)
	}

	// Payment gateway
	var gateway payment.Gateway
	if settings.StripeSecretKey != "" {
		gateway = payment.NewStripeGateway(settings.StripeSecretKey)
		log.Println("💳 Using Stripe payment gateway")
	} else {
		gateway = payment.NewFakeGateway()
		log.Println("⚠️  STRIPE_SECRET_KEY not set, using the in-memory payment gateway")
	}

	// Client state: Redis when configured, otherwise process memory
	var storage appstate.Storage
	if settings.RedisURL != "" {
		rs, err := appstate.NewRedisStorage(settings.RedisURL, serviceName, settings.StateTTL)
		if err != nil {
			log.Fatal("❌ Failed to connect to Redis:", err)
		}
		defer rs.Close()
		storage = rs
		log.Println("🧠 Client state stored in Redis")
	} else {
		storage = appstate.NewMemoryStorage()
		log.Println("🧠 Client state stored in memory")
	}

	// Order status events
	var publisher events.Publisher = events.NopPublisher{}
	if settings.KafkaBrokers != "" {
		publisher = events.NewKafkaPublisher(events.NewKafkaWriter(settings.KafkaBrokers, settings.KafkaTopic))
		log.Printf("📨 Publishing order events to Kafka topic %s", settings.KafkaTopic)
	}
	defer publisher.Close()

	var mailer notify.Mailer
	if settings.EmailJS.ServiceID != "" {
		mailer = notify.NewEmailJSMailer(notify.EmailJSConfig{
			ServiceID:   settings.EmailJS.ServiceID,
			PublicKey:   settings.EmailJS.PublicKey,
			AccessToken: settings.EmailJS.AccessToken,
			Templates: map[string]string{
				notify.TemplateOrderStatus:  settings.EmailJS.StatusTemplateID,
				notify.TemplateInquiryReply: settings.EmailJS.InquiryReplyTemplate,
			},
		})
	} else {
		log.Println("⚠️  EmailJS not configured, emails are disabled")
	}

	hub := feed.NewHub()
	repo := repository.New(config.DB)
	state := appstate.NewStore(storage)
	dispatcher := notify.NewDispatcher(repo, hub, mailer, publisher)

	handlers.Setup(handlers.Dependencies{
		Repo:     repo,
		State:    state,
		Checkout: checkout.NewService(gateway, repo, state, hub).WithCurrency(settings.Currency),
		Orders:   orders.NewService(repo, dispatcher),
		Notifier: dispatcher,
		Feed:     hub,
	})

	// Create Gin router with default middleware (logger + recovery)
	r := gin.Default()

	// CORS middleware for frontend integration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     settings.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.ClientIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Restaurant Ordering API",
			"version": "1.0.0",
		})
	})

	// Welcome
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "🍽️ Welcome to the Restaurant Ordering API",
			"docs":    "/api/state-machine",
			"health":  "/health",
			"roles":   []string{"user", "admin"},
		})
	})

	// Register all routes
	inquiryLimiter := middleware.NewRateLimiter(rate.Limit(settings.InquiryRate/60), settings.InquiryBurst, 10*time.Minute)
	routes.SetupRoutes(r, inquiryLimiter.Handler())

	srv := &http.Server{
		Addr:    ":" + settings.Port,
		Handler: otelhttp.NewHandler(r, serviceName),
	}

	go func() {
		log.Printf("🚀 Server running on http://localhost:%s", settings.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		log.Printf("Tracer shutdown: %v", err)
	}
	log.Println("👋 Server exited")
}
