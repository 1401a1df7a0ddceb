package routes

import (
	"restaurant-api/handlers"
	"restaurant-api/middleware"
	"restaurant-api/models"

	"github.com/gin-gonic/gin"
)

// SetupRoutes registers every endpoint. inquiryLimit guards the public contact form.
func SetupRoutes(r *gin.Engine, inquiryLimit gin.HandlerFunc) {
	// ── Payment relay ──────────────────────────────────────────────
	r.POST("/api/create-payment-intent", middleware.OptionalAuth(), handlers.CreatePaymentIntent)
	r.POST("/save-card-details", handlers.SaveCardDetails)

	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		// Auth
		public.POST("/auth/register", handlers.Register)
		public.POST("/auth/login", handlers.Login)

		// Menu (no auth needed)
		public.GET("/menu", handlers.ListMenu)
		public.GET("/menu/categories", handlers.ListCategories)
		public.GET("/menu/:id", handlers.GetMenuItem)

		public.POST("/inquiries", inquiryLimit, handlers.SubmitInquiry)

		// State machine info
		public.GET("/state-machine", handlers.GetStateMachineInfo)

		// Live feeds; the handler checks who may follow which topic
		public.GET("/feed/:topic", middleware.OptionalAuth(), handlers.StreamFeed)
	}

	// ── Client state (guests and signed-in users) ──────────────────
	client := r.Group("/api")
	client.Use(middleware.OptionalAuth(), middleware.ClientRequired())
	{
		client.GET("/cart", handlers.GetCart)
		client.POST("/cart/items", handlers.AddCartItem)
		client.PUT("/cart/items/:itemId", handlers.UpdateCartItem)
		client.POST("/cart/items/:itemId/increment", handlers.IncrementCartItem)
		client.POST("/cart/items/:itemId/decrement", handlers.DecrementCartItem)
		client.DELETE("/cart/items/:itemId", handlers.RemoveCartItem)

		client.GET("/preferences/theme", handlers.GetTheme)
		client.PUT("/preferences/theme", handlers.SetTheme)
		client.GET("/preferences/photo-permission", handlers.GetPhotoPermission)
		client.PUT("/preferences/photo-permission", handlers.SetPhotoPermission)

		client.POST("/checkout/begin", handlers.BeginCheckout)
	}

	// ── Authenticated routes ───────────────────────────────────────
	auth := r.Group("/api")
	auth.Use(middleware.AuthRequired())
	{
		auth.GET("/profile", handlers.GetProfile)
		auth.PUT("/profile", handlers.UpdateProfile)

		auth.POST("/checkout/prepare", handlers.PrepareCheckout)
		auth.POST("/checkout/complete", handlers.CompleteCheckout)

		auth.GET("/orders", handlers.GetMyOrders)
		auth.GET("/notifications", handlers.GetMyNotifications)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/orders", handlers.AdminGetOrders)
		admin.PUT("/orders/:id/advance", handlers.AdminAdvanceOrder)

		admin.POST("/menu", handlers.AdminCreateMenuItem)
		admin.PUT("/menu/:id", handlers.AdminUpdateMenuItem)
		admin.DELETE("/menu/:id", handlers.AdminDeleteMenuItem)

		admin.GET("/analytics", handlers.AdminAnalytics)
		admin.GET("/analytics/export", handlers.AdminExportAnalytics)

		admin.GET("/users", handlers.AdminGetUsers)
		admin.POST("/users", handlers.AdminCreateUser)

		admin.GET("/inquiries", handlers.AdminGetInquiries)
		admin.POST("/inquiries/:id/reply", handlers.AdminReplyInquiry)
	}
}
