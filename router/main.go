package router

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/trawers/trawers-api/config"
	"github.com/trawers/trawers-api/database"
	"github.com/trawers/trawers-api/handlers"
	admin_handlers "github.com/trawers/trawers-api/handlers/admin"
	auth_handlers "github.com/trawers/trawers-api/handlers/auth"
	course_handlers "github.com/trawers/trawers-api/handlers/course"
	document_handlers "github.com/trawers/trawers-api/handlers/document"
	order_handlers "github.com/trawers/trawers-api/handlers/order"
	payment_handlers "github.com/trawers/trawers-api/handlers/payment"
	paymentsvc "github.com/trawers/trawers-api/services/payment"
	"github.com/trawers/trawers-api/services/storage"
	"github.com/trawers/trawers-api/utils/auth"
	"github.com/trawers/trawers-api/utils/cache"
	"github.com/trawers/trawers-api/utils/middleware"
)

// SetupRoutes wires middleware, handlers and the route table
func SetupRoutes(app *fiber.App, store database.Storage, cfg *config.Config) {
	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret: cfg.JWT_SECRET,
		Expiry: auth.TokenExpiry,
		Issuer: cfg.JWT_ISSUER,
	})

	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Redis backs login brute force protection; everything else works
	// without it
	var bruteForceProtection *middleware.BruteForceProtection
	if cfg.REDIS_URL != "" {
		redisCache, err := cache.NewRedisCache(cfg.REDIS_URL)
		if err != nil {
			log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
		} else {
			bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
		}
	}

	spacesClient, err := storage.NewSpacesClientFromConfig(cfg)
	if err != nil {
		log.Printf("Warning: %v. File uploads will be disabled.", err)
	}

	sessionGate := middleware.NewSessionGate(jwtManager, cfg.IsProduction())

	paymentService := paymentsvc.NewService(db, cfg)

	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, sessionGate, bruteForceProtection)
	courseHandler := course_handlers.NewCourseHandler(db, spacesClient)
	orderHandler := order_handlers.NewOrderHandler(db)
	paymentHandler := payment_handlers.NewPaymentHandler(paymentService, cfg)
	documentHandler := document_handlers.NewDocumentHandler(db, spacesClient)
	adminHandler := admin_handlers.NewAdminHandler(db)

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    cfg.APP_URL,
		RateLimitRequests: 100,
		RateLimitWindow:   1 * time.Minute,
	})

	// Health check endpoint (public)
	app.Get("/ping", handlers.HandleCheckHealth(store))

	// Browser page prefixes behind the redirecting gate
	for _, prefix := range []string{"/dashboard", "/admin", "/profile", "/orders"} {
		app.Use(prefix, sessionGate.Pages())
	}

	api := app.Group("/api")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}
	authGroup.Post("/logout", authHandler.Logout)
	authGroup.Get("/me", sessionGate.Required(), authHandler.Me)

	// Course catalog (public reads, admin writes)
	api.Get("/courses", courseHandler.ListCourses)
	api.Get("/courses/:id", courseHandler.GetCourse)
	api.Post("/courses", sessionGate.RequireAdmin(), courseHandler.CreateCourse)
	api.Put("/courses/:id", sessionGate.RequireAdmin(), courseHandler.UpdateCourse)
	api.Delete("/courses/:id", sessionGate.RequireAdmin(), courseHandler.DeleteCourse)
	api.Post("/courses/:id/media", sessionGate.RequireAdmin(), courseHandler.UploadCourseMedia)

	// Payments. The webhook authenticates by signature, not session.
	api.Post("/create-checkout-session", sessionGate.Required(), paymentHandler.CreateCheckoutSession)
	api.Post("/webhook", paymentHandler.Webhook)

	// Orders
	api.Get("/orders/me", sessionGate.Required(), orderHandler.ListMyOrders)
	api.Get("/orders", sessionGate.RequireAdmin(), orderHandler.ListOrders)

	// Profile
	api.Get("/profile", sessionGate.Required(), authHandler.GetProfile)
	api.Put("/profile", sessionGate.Required(), authHandler.UpdateProfile)

	// Documents
	api.Get("/documents", sessionGate.Required(), documentHandler.ListMyDocuments)
	api.Post("/documents", sessionGate.Required(), documentHandler.UploadDocument)
	api.Get("/documents/:userId", sessionGate.RequireAdmin(), documentHandler.ListUserDocuments)

	// Admin user management and dashboard
	api.Get("/users", sessionGate.RequireAdmin(), adminHandler.ListUsers)
	api.Get("/users/:id", sessionGate.RequireAdmin(), adminHandler.GetUser)
	api.Put("/users/:id", sessionGate.RequireAdmin(), adminHandler.UpdateUser)
	api.Delete("/users/:id", sessionGate.RequireAdmin(), adminHandler.DeleteUser)
	api.Get("/admin/stats", sessionGate.RequireAdmin(), adminHandler.GetStats)
}
