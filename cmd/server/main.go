package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"coldstore-backend/internal/auth"
	"coldstore-backend/internal/cache"
	"coldstore-backend/internal/config"
	"coldstore-backend/internal/database"
	"coldstore-backend/internal/db"
	"coldstore-backend/internal/handlers"
	"coldstore-backend/internal/health"
	h "coldstore-backend/internal/http"
	"coldstore-backend/internal/middleware"
	"coldstore-backend/internal/repositories"
	"coldstore-backend/internal/services"
	"coldstore-backend/migrations"
)

func main() {
	cfg := config.Load()

	pool := db.Connect(cfg)
	defer pool.Close()

	// Redis is optional; reference data lookups fall back to Postgres
	if err := cache.Init(); err != nil {
		log.Printf("[Redis] Cache unavailable: %v (reference data served from database)", err)
	} else {
		log.Println("[Redis] Cache connected successfully")
	}

	log.Println("Running database migrations...")
	migrator := database.NewMigrator(pool, migrations.FS, ".")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migrator.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	healthChecker := health.NewHealthChecker(pool)
	jwtManager := auth.NewJWTManager(cfg)

	// Repositories
	userRepo := repositories.NewUserRepository(pool)
	customerRepo := repositories.NewCustomerRepository(pool)
	entryRepo := repositories.NewEntryRepository(pool)
	clearanceRepo := repositories.NewClearanceRepository(pool)
	ledgerRepo := repositories.NewLedgerRepository(pool)
	expenseRepo := repositories.NewExpenseRepository(pool)
	cashBookRepo := repositories.NewCashBookRepository(pool)
	refDataRepo := repositories.NewRefDataRepository(pool)

	// Services
	refDataService := services.NewRefDataService(refDataRepo)
	userService := services.NewUserService(userRepo, jwtManager)
	customerService := services.NewCustomerService(customerRepo, ledgerRepo)
	entryService := services.NewEntryService(entryRepo, refDataService)
	clearanceService := services.NewClearanceService(entryRepo, clearanceRepo)
	ledgerService := services.NewLedgerService(ledgerRepo)
	expenseService := services.NewExpenseService(expenseRepo, refDataService)
	cashBookService := services.NewCashBookService(clearanceRepo, ledgerRepo, expenseRepo, cashBookRepo, cfg.SignificantChangeThreshold())
	reportService := services.NewReportService(pool, customerRepo, ledgerRepo, expenseRepo, cashBookService)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	userHandler := handlers.NewUserHandler(userService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	entryHandler := handlers.NewEntryHandler(entryService)
	clearanceHandler := handlers.NewClearanceHandler(clearanceService)
	ledgerHandler := handlers.NewLedgerHandler(ledgerService)
	cashBookHandler := handlers.NewCashBookHandler(cashBookService)
	expenseHandler := handlers.NewExpenseHandler(expenseService)
	refDataHandler := handlers.NewRefDataHandler(refDataService)
	reportHandler := handlers.NewReportHandler(reportService)
	healthHandler := handlers.NewHealthHandler(healthChecker)

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)
	corsMiddleware := middleware.NewCORS(cfg)

	router := h.NewRouter(
		authHandler,
		userHandler,
		customerHandler,
		entryHandler,
		clearanceHandler,
		ledgerHandler,
		cashBookHandler,
		expenseHandler,
		refDataHandler,
		reportHandler,
		healthHandler,
		authMiddleware,
	)

	handler := middleware.PanicRecovery(middleware.MetricsMiddleware(corsMiddleware(router)))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server running on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
