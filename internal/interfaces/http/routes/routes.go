// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/goldentier/storefront-backend/internal/config"
	"github.com/goldentier/storefront-backend/internal/domain/identity"
	"github.com/goldentier/storefront-backend/internal/interfaces/http/handlers"
	"github.com/goldentier/storefront-backend/internal/interfaces/http/middleware"
)

// SetupRoutes wires every API route group
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	SetupAuthRoutes(rg, db, redisClient, cfg)
	SetupProductRoutes(rg, db, cfg)
	SetupCartRoutes(rg, db, redisClient, cfg)
	SetupOrderRoutes(rg, db, redisClient, cfg)
	SetupInvitationRoutes(rg, db, cfg)
	SetupSettingsRoutes(rg, db, cfg)
	SetupAdminRoutes(rg, db, redisClient, cfg)
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db, redisClient, cfg)

	auth := rg.Group("/auth")
	{
		// Public auth endpoints
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)

		// Protected auth endpoints
		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.GET("/profile", authHandler.GetProfile)
			protected.PUT("/profile", authHandler.UpdateProfile)
			protected.PUT("/password", authHandler.ChangePassword)
		}
	}
}

// SetupProductRoutes sets up catalog routes
func SetupProductRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	productHandler := handlers.NewProductHandler(db, cfg)

	products := rg.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/categories", productHandler.GetCategories)
		products.GET("/sku/:sku", productHandler.GetProductBySKU)
		products.GET("/:id", productHandler.GetProduct)
	}
}

// SetupCartRoutes sets up shopping cart routes. Optional auth lets
// guests keep a session cart.
func SetupCartRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	cartHandler := handlers.NewCartHandler(db, redisClient, cfg)

	carts := rg.Group("/cart")
	carts.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		carts.GET("", cartHandler.GetCart)
		carts.POST("/items", cartHandler.AddItem)
		carts.PUT("/items/:productId", cartHandler.UpdateItem)
		carts.DELETE("/items/:productId", cartHandler.RemoveItem)
		carts.DELETE("", cartHandler.ClearCart)
		carts.PUT("/visibility", cartHandler.SetVisibility)
	}
}

// SetupOrderRoutes sets up checkout and order routes
func SetupOrderRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	orderHandler := handlers.NewOrderHandler(db, redisClient, cfg)
	noteHandler := handlers.NewNoteHandler(db, cfg)

	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(cfg))
	{
		orders.POST("/checkout", orderHandler.Checkout)
		orders.GET("", orderHandler.GetMyOrders)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.GET("/:id/tracking", orderHandler.GetOrderTracking)
		orders.POST("/:id/cancel", orderHandler.CancelOrder)
		orders.GET("/:id/notes", noteHandler.List)
	}
}

// SetupInvitationRoutes sets up invitation code routes
func SetupInvitationRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	invitationHandler := handlers.NewInvitationHandler(db, cfg)

	invitations := rg.Group("/invitations")
	{
		// Public: registration form validates codes before submitting
		invitations.GET("/validate/:code", invitationHandler.Validate)

		// Partners and admins issue and manage codes
		protected := invitations.Group("")
		protected.Use(middleware.AuthMiddleware(cfg), middleware.RequireRole(identity.RolePartner, identity.RoleAdmin))
		{
			protected.POST("", invitationHandler.Create)
			protected.GET("", invitationHandler.List)
			protected.DELETE("/:id", invitationHandler.Deactivate)
		}
	}
}

// SetupSettingsRoutes sets up site settings routes
func SetupSettingsRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	settingsHandler := handlers.NewSettingsHandler(db, cfg)

	rg.GET("/settings", settingsHandler.Get)
}

// SetupAdminRoutes sets up the admin route group
func SetupAdminRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	productHandler := handlers.NewProductHandler(db, cfg)
	orderHandler := handlers.NewOrderHandler(db, redisClient, cfg)
	noteHandler := handlers.NewNoteHandler(db, cfg)
	settingsHandler := handlers.NewSettingsHandler(db, cfg)
	userAdminHandler := handlers.NewUserAdminHandler(db, cfg)

	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.AdminMiddleware())
	{
		// Catalog management
		admin.POST("/products", productHandler.AdminCreateProduct)
		admin.PUT("/products/:id", productHandler.AdminUpdateProduct)
		admin.DELETE("/products/:id", productHandler.AdminDeleteProduct)
		admin.POST("/products/:id/stock", productHandler.AdminAdjustStock)
		admin.GET("/products/low-stock", productHandler.AdminLowStock)

		// Order management
		admin.GET("/orders", orderHandler.AdminListOrders)
		admin.PUT("/orders/:id/status", orderHandler.AdminUpdateStatus)
		admin.POST("/orders/:id/notes", noteHandler.Create)
		admin.DELETE("/orders/:id/notes/:noteId", noteHandler.Delete)

		// User management
		admin.GET("/users", userAdminHandler.ListUsers)
		admin.PUT("/users/:id/discount", userAdminHandler.SetDiscountRate)
		admin.PUT("/users/:id/status", userAdminHandler.SetActive)

		// Site settings
		admin.PUT("/settings", settingsHandler.Update)
	}
}
