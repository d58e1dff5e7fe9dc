// Package routes wires repositories, services and handlers into the Fiber
// application and declares every HTTP route.
package routes

import (
	"paylink/internal/config"
	"paylink/internal/handlers"
	"paylink/internal/middleware"
	"paylink/internal/repositories"
	"paylink/internal/repositories/cache"
	"paylink/internal/services/admin"
	"paylink/internal/services/audit"
	"paylink/internal/services/auth"
	"paylink/internal/services/bankaccount"
	"paylink/internal/services/fraud"
	"paylink/internal/services/transaction"
	"paylink/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Services bundles the long-lived services so main can manage their
// lifecycle (the audit sink needs an explicit Close on shutdown).
type Services struct {
	Audit  audit.Service
	Wallet wallet.Service
}

// SetupRoutes builds the full dependency graph and registers all routes.
// cacheSvc may be nil when Redis is unavailable; everything degrades to
// database-only operation.
func SetupRoutes(app *fiber.App, db *gorm.DB, cacheSvc *cache.Service) *Services {
	store := repositories.NewStore(db)

	auditSvc := audit.NewService(store.AuditLogs())
	fraudSvc := fraud.NewService(store.Transactions(), fraud.DefaultConfig(), nil)

	dailyLimit := config.GetDecimalEnv("WALLET_DAILY_LIMIT", "100000.00")
	authSvc := auth.NewService(store, auditSvc, dailyLimit)
	walletSvc := wallet.NewService(store, cacheSvc)
	bankSvc := bankaccount.NewService(store, auditSvc)
	adminSvc := admin.NewService(store, auditSvc, nil)
	txnSvc := transaction.NewService(store, fraudSvc, auditSvc, cacheSvc, transaction.Config{
		MinAmount:         config.GetDecimalEnv("TXN_MIN_AMOUNT", "1.00"),
		MaxTransferAmount: config.GetDecimalEnv("TXN_MAX_TRANSFER", "50000.00"),
		MaxDepositAmount:  config.GetDecimalEnv("TXN_MAX_DEPOSIT", "100000.00"),
	}, nil)

	authHandler := handlers.NewAuthHandler(authSvc)
	walletHandler := handlers.NewWalletHandler(walletSvc)
	bankHandler := handlers.NewBankAccountHandler(bankSvc)
	txnHandler := handlers.NewTransactionHandler(txnSvc)
	adminHandler := handlers.NewAdminHandler(adminSvc)
	healthHandler := handlers.NewHealthHandler(db, cacheSvc)

	authMiddleware := middleware.NewAuthMiddleware(store.Users())

	app.Get("/health", healthHandler.Check)

	api := app.Group("/api")

	// Public endpoints
	api.Post("/register", authHandler.Register)
	api.Post("/login", authHandler.Login)
	api.Post("/refresh", authHandler.Refresh)

	// Authenticated endpoints
	protected := api.Use(authMiddleware.Handler)

	protected.Post("/upi-pin", authHandler.SetUpiPin)
	protected.Get("/wallet", walletHandler.GetWallet)

	protected.Post("/bank-accounts", bankHandler.Link)
	protected.Get("/bank-accounts", bankHandler.List)
	protected.Delete("/bank-accounts/:id", bankHandler.Remove)

	txns := protected.Group("/transactions")
	txns.Post("/transfer", txnHandler.Transfer)
	txns.Post("/deposit", txnHandler.Deposit)
	txns.Get("/", txnHandler.History)
	txns.Get("/:reference", txnHandler.GetByReference)

	// Admin endpoints
	adminGroup := app.Group("/api/admin", authMiddleware.Handler, middleware.AdminOnly)
	adminGroup.Get("/dashboard", adminHandler.Dashboard)
	adminGroup.Get("/users", adminHandler.ListUsers)
	adminGroup.Post("/users/:id/freeze", adminHandler.FreezeUser)
	adminGroup.Post("/users/:id/unfreeze", adminHandler.UnfreezeUser)
	adminGroup.Get("/transactions/flagged", adminHandler.ListFlagged)

	return &Services{Audit: auditSvc, Wallet: walletSvc}
}
