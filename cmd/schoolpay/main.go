package main

import (
	"context"
	"log"
	"net/http"

	"github.com/Akshaygupta0409/school-payments-microservice/config"
	"github.com/Akshaygupta0409/school-payments-microservice/internal/auth"
	"github.com/Akshaygupta0409/school-payments-microservice/internal/gateway"
	handler "github.com/Akshaygupta0409/school-payments-microservice/internal/handler/http"
	"github.com/Akshaygupta0409/school-payments-microservice/internal/logger"
	"github.com/Akshaygupta0409/school-payments-microservice/internal/middleware"
	"github.com/Akshaygupta0409/school-payments-microservice/internal/repository"
	"github.com/Akshaygupta0409/school-payments-microservice/internal/repository/postgres"
	"github.com/Akshaygupta0409/school-payments-microservice/internal/service"
	"github.com/Akshaygupta0409/school-payments-microservice/internal/worker"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func main() {

	// create new config
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// initialize logger
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Log.Sync()

	// create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// initialize database
	db, err := postgres.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Log.Fatal("Error initializing database", zap.Error(err))
	}
	defer db.Close()

	// migrate database
	if err := db.Migrate(); err != nil {
		logger.Log.Fatal("Error migrating database", zap.Error(err))
	}

	token := auth.NewAuthToken([]byte(cfg.AuthTokenKey))

	// gateway client
	gw := gateway.NewClient(cfg.GatewayBaseURL, cfg.GatewaySignKey, cfg.GatewayAPIKey, cfg.SchoolID)

	// dependency injection
	// user
	userRepo := repository.NewUserRepository(db)
	userService := service.NewUserService(userRepo)
	userHandler := handler.NewUserHandler(userService)

	// auth
	authService := service.NewAuthService(userRepo, token)
	authHandler := handler.NewAuthHandler(authService)

	// order
	orderRepo := repository.NewOrderRepository(db)
	orderService := service.NewOrderService(orderRepo)
	orderHandler := handler.NewOrderHandler(orderService)

	// payment
	statusRepo := repository.NewStatusRepository(db)
	webhookRepo := repository.NewWebhookLogRepository(db)
	paymentService := service.NewPaymentService(orderRepo, statusRepo, gw, webhookRepo, cfg)
	paymentHandler := handler.NewPaymentHandler(paymentService, gw, cfg.FrontendURL)

	// transactions
	transactionRepo := repository.NewTransactionRepository(db)
	transactionService := service.NewTransactionService(transactionRepo)
	transactionHandler := handler.NewTransactionHandler(transactionService)

	router := chi.NewRouter()

	router.Use(middleware.Logging(logger.Log))

	router.Post("/api/users/register", userHandler.RegisterUser())
	router.Post("/api/users/login", authHandler.LoginUser())
	router.Get("/api/payments/callback", paymentHandler.PaymentCallback())
	router.Post("/api/payments/webhook", paymentHandler.PaymentWebhook())
	router.Get("/api/payments/transaction-status/{custom_order_id}", paymentHandler.TransactionStatus())

	// routes that require authentication
	router.Group(func(group chi.Router) {
		group.Use(handler.AuthMiddleware(token))
		group.Post("/api/payments/create-payment", paymentHandler.CreatePayment())
		group.Get("/api/payments/status/{id}", paymentHandler.CheckPaymentStatus())
		group.Get("/api/transactions", transactionHandler.ListTransactions())
		group.Get("/api/transactions/school/{schoolId}", transactionHandler.ListSchoolTransactions())
		group.Post("/api/orders", orderHandler.CreateOrder())
		group.Get("/api/orders", orderHandler.ListOrders())
		group.Get("/api/orders/{id}", orderHandler.GetOrder())
		group.Put("/api/orders/{id}", orderHandler.UpdateOrder())
		group.Delete("/api/orders/{id}", orderHandler.DeleteOrder())
	})

	// background settlement refresh for pending collect requests
	statusProcessor := worker.NewStatusProcessor(paymentService)
	go statusProcessor.ProcessStatuses(ctx)

	logger.Log.Info("Running server", zap.String("addr", cfg.ServerAddr))

	if err := http.ListenAndServe(cfg.ServerAddr, router); err != nil {
		logger.Log.Fatal("Error starting server", zap.Error(err))
	}
}
