package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	jwtware "github.com/gofiber/jwt/v2"

	"github.com/ichiba-dev/ichiba-backend/internal/address"
	"github.com/ichiba-dev/ichiba-backend/internal/cart"
	"github.com/ichiba-dev/ichiba-backend/internal/category"
	"github.com/ichiba-dev/ichiba-backend/internal/checkout"
	"github.com/ichiba-dev/ichiba-backend/internal/config"
	"github.com/ichiba-dev/ichiba-backend/internal/database"
	"github.com/ichiba-dev/ichiba-backend/internal/notification"
	"github.com/ichiba-dev/ichiba-backend/internal/order"
	"github.com/ichiba-dev/ichiba-backend/internal/payment"
	"github.com/ichiba-dev/ichiba-backend/internal/product"
	"github.com/ichiba-dev/ichiba-backend/internal/recommended"
	"github.com/ichiba-dev/ichiba-backend/internal/review"
	"github.com/ichiba-dev/ichiba-backend/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer db.Close()

	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())
	setupCORS(app)

	userService := user.NewService(user.NewPostgresRepository(db))
	userHandler := user.NewHandler(userService, cfg.JWTSecret)

	productService := product.NewService(product.NewPostgresRepository(db))
	productHandler := product.NewHandler(productService, userService)

	cartService := cart.NewService(cart.NewPostgresRepository(db))
	cartHandler := cart.NewHandler(cartService)

	addressService := address.NewService(address.NewPostgresRepository(db))
	addressHandler := address.NewHandler(addressService)

	orderRepo := order.NewPostgresRepository(db)
	orderHandler := order.NewHandler(order.NewService(orderRepo))

	categoryHandler := category.NewHandler(category.NewService(category.NewPostgresRepository(db)))
	reviewHandler := review.NewHandler(review.NewService(review.NewPostgresRepository(db)))
	recommendedHandler := recommended.NewHandler(recommended.NewService(recommended.NewPostgresRepository(db)))

	var notifier notification.Sender = notification.NopSender{}
	if cfg.Email.Enabled {
		notifier = notification.NewSMTPSender(&cfg.Email)
	}

	gateway := payment.NewStripeClient(cfg.Stripe.SecretKey, cfg.Stripe.BaseAPIURL)
	checkoutService := checkout.NewService(
		cartService, productService, addressService, userService,
		orderRepo, gateway, notifier, cfg.FrontendURL,
	)
	checkoutHandler := checkout.NewHandler(checkoutService, cfg.Stripe.WebhookSecret)

	userHandler.RegisterPublicRoutes(app)
	categoryHandler.RegisterPublicRoutes(app)
	reviewHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)

	// the gateway authenticates webhooks with its signature, never a JWT,
	// so this route must come before the middleware
	checkoutHandler.RegisterPublicRoutes(app)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
	}))

	userHandler.RegisterProtectedRoutes(app)
	productHandler.RegisterProtectedRoutes(app)
	cartHandler.RegisterProtectedRoutes(app)
	addressHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)
	reviewHandler.RegisterProtectedRoutes(app)
	recommendedHandler.RegisterProtectedRoutes(app)
	checkoutHandler.RegisterProtectedRoutes(app)

	log.Printf("listening on %s", cfg.Addr())
	if err := app.Listen(cfg.Addr()); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, Stripe-Signature",
	}))
}
