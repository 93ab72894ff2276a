package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"coldstore-backend/internal/handlers"
	"coldstore-backend/internal/middleware"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	customerHandler *handlers.CustomerHandler,
	entryHandler *handlers.EntryHandler,
	clearanceHandler *handlers.ClearanceHandler,
	ledgerHandler *handlers.LedgerHandler,
	cashBookHandler *handlers.CashBookHandler,
	expenseHandler *handlers.ExpenseHandler,
	refDataHandler *handlers.RefDataHandler,
	reportHandler *handlers.ReportHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	// Public API routes - Authentication
	r.HandleFunc("/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected API routes - Users (admin only)
	usersAPI := r.PathPrefix("/api/users").Subrouter()
	usersAPI.Use(authMiddleware.Authenticate)
	usersAPI.HandleFunc("", authMiddleware.RequireRole("admin")(http.HandlerFunc(userHandler.ListUsers)).ServeHTTP).Methods("GET")
	usersAPI.HandleFunc("", authMiddleware.RequireRole("admin")(http.HandlerFunc(userHandler.CreateUser)).ServeHTTP).Methods("POST")
	usersAPI.HandleFunc("/{id}", authMiddleware.RequireRole("admin")(http.HandlerFunc(userHandler.GetUser)).ServeHTTP).Methods("GET")
	usersAPI.HandleFunc("/{id}", authMiddleware.RequireRole("admin")(http.HandlerFunc(userHandler.UpdateUser)).ServeHTTP).Methods("PUT")
	usersAPI.HandleFunc("/{id}", authMiddleware.RequireRole("admin")(http.HandlerFunc(userHandler.DeleteUser)).ServeHTTP).Methods("DELETE")

	// Protected API routes - Customers
	customersAPI := r.PathPrefix("/api/customers").Subrouter()
	customersAPI.Use(authMiddleware.Authenticate)
	customersAPI.HandleFunc("", customerHandler.ListCustomers).Methods("GET")
	customersAPI.HandleFunc("", customerHandler.CreateCustomer).Methods("POST")
	customersAPI.HandleFunc("/{id}", customerHandler.GetCustomer).Methods("GET")
	customersAPI.HandleFunc("/{id}", customerHandler.UpdateCustomer).Methods("PUT")
	customersAPI.HandleFunc("/{id}", authMiddleware.RequireRole("admin")(http.HandlerFunc(customerHandler.DeleteCustomer)).ServeHTTP).Methods("DELETE")
	customersAPI.HandleFunc("/{customerId}/balance", ledgerHandler.GetBalance).Methods("GET")
	customersAPI.HandleFunc("/{customerId}/statement.pdf", reportHandler.CustomerStatementPDF).Methods("GET")

	// Protected API routes - Entry receipts
	entriesAPI := r.PathPrefix("/api/entries").Subrouter()
	entriesAPI.Use(authMiddleware.Authenticate)
	entriesAPI.HandleFunc("", entryHandler.ListEntries).Methods("GET")
	entriesAPI.HandleFunc("", authMiddleware.RequireRole("employee", "admin")(http.HandlerFunc(entryHandler.CreateEntry)).ServeHTTP).Methods("POST")
	entriesAPI.HandleFunc("/{id}", entryHandler.GetEntry).Methods("GET")
	entriesAPI.HandleFunc("/items/{id}/remaining", entryHandler.GetItemRemaining).Methods("GET")
	entriesAPI.HandleFunc("/items/{id}/editable", entryHandler.GetItemEditable).Methods("GET")
	entriesAPI.HandleFunc("/items/{id}", authMiddleware.RequireRole("employee", "admin")(http.HandlerFunc(entryHandler.UpdateItem)).ServeHTTP).Methods("PUT")

	// Receipt-number lookup used by the clearance desk
	entryLookupAPI := r.PathPrefix("/api/entry").Subrouter()
	entryLookupAPI.Use(authMiddleware.Authenticate)
	entryLookupAPI.HandleFunc("/by-receipt-no/{receiptNo}", entryHandler.GetEntryByReceiptNumber).Methods("GET")

	// Protected API routes - Clearances
	clearanceAPI := r.PathPrefix("/api/clearance").Subrouter()
	clearanceAPI.Use(authMiddleware.Authenticate)
	clearanceAPI.HandleFunc("", authMiddleware.RequireRole("employee", "admin")(http.HandlerFunc(clearanceHandler.CreateClearance)).ServeHTTP).Methods("POST")
	clearanceAPI.HandleFunc("/preview", clearanceHandler.PreviewClearance).Methods("POST")

	clearancesAPI := r.PathPrefix("/api/clearances").Subrouter()
	clearancesAPI.Use(authMiddleware.Authenticate)
	clearancesAPI.HandleFunc("", clearanceHandler.ListClearances).Methods("GET")
	clearancesAPI.HandleFunc("/{id}", clearanceHandler.GetClearance).Methods("GET")

	// Protected API routes - Ledger
	ledgerAPI := r.PathPrefix("/api/ledger").Subrouter()
	ledgerAPI.Use(authMiddleware.Authenticate)
	ledgerAPI.HandleFunc("", ledgerHandler.ListEntries).Methods("GET")
	ledgerAPI.HandleFunc("", authMiddleware.RequireRole("accountant", "admin")(http.HandlerFunc(ledgerHandler.CreateEntry)).ServeHTTP).Methods("POST")
	ledgerAPI.HandleFunc("/balances", ledgerHandler.ListBalances).Methods("GET")
	ledgerAPI.HandleFunc("/debtors", ledgerHandler.ListDebtors).Methods("GET")
	ledgerAPI.HandleFunc("/balance/{customerId}", ledgerHandler.GetBalance).Methods("GET")
	ledgerAPI.HandleFunc("/{id}", authMiddleware.RequireRole("accountant", "admin")(http.HandlerFunc(ledgerHandler.DeleteEntry)).ServeHTTP).Methods("DELETE")

	// Protected API routes - Cash book
	cashBookAPI := r.PathPrefix("/api/cash-book").Subrouter()
	cashBookAPI.Use(authMiddleware.Authenticate)
	cashBookAPI.HandleFunc("", cashBookHandler.ListEntries).Methods("GET")
	cashBookAPI.HandleFunc("", authMiddleware.RequireRole("accountant", "admin")(http.HandlerFunc(cashBookHandler.CreateManual)).ServeHTTP).Methods("POST")
	cashBookAPI.HandleFunc("/summary", cashBookHandler.GetSummary).Methods("GET")
	cashBookAPI.HandleFunc("/summary", authMiddleware.RequireRole("accountant", "admin")(http.HandlerFunc(cashBookHandler.SetOpeningBalance)).ServeHTTP).Methods("POST")
	cashBookAPI.HandleFunc("/summary/reconcile", authMiddleware.RequireRole("accountant", "admin")(http.HandlerFunc(cashBookHandler.Reconcile)).ServeHTTP).Methods("POST")
	cashBookAPI.HandleFunc("/summary/audits", authMiddleware.RequireRole("admin")(http.HandlerFunc(cashBookHandler.ListAudits)).ServeHTTP).Methods("GET")
	cashBookAPI.HandleFunc("/{id}", authMiddleware.RequireRole("accountant", "admin")(http.HandlerFunc(cashBookHandler.UpdateManual)).ServeHTTP).Methods("PUT", "PATCH")
	cashBookAPI.HandleFunc("/{id}", authMiddleware.RequireRole("accountant", "admin")(http.HandlerFunc(cashBookHandler.DeleteManual)).ServeHTTP).Methods("DELETE")

	// Protected API routes - Expenses
	expensesAPI := r.PathPrefix("/api/expenses").Subrouter()
	expensesAPI.Use(authMiddleware.Authenticate)
	expensesAPI.HandleFunc("", expenseHandler.ListExpenses).Methods("GET")
	expensesAPI.HandleFunc("", authMiddleware.RequireRole("accountant", "admin")(http.HandlerFunc(expenseHandler.CreateExpense)).ServeHTTP).Methods("POST")
	expensesAPI.HandleFunc("/{id}", expenseHandler.GetExpense).Methods("GET")
	expensesAPI.HandleFunc("/{id}", authMiddleware.RequireRole("accountant", "admin")(http.HandlerFunc(expenseHandler.UpdateExpense)).ServeHTTP).Methods("PUT")
	expensesAPI.HandleFunc("/{id}", authMiddleware.RequireRole("accountant", "admin")(http.HandlerFunc(expenseHandler.DeleteExpense)).ServeHTTP).Methods("DELETE")

	// Protected API routes - Reference data
	refDataAPI := r.PathPrefix("/api/reference-data").Subrouter()
	refDataAPI.Use(authMiddleware.Authenticate)
	refDataAPI.HandleFunc("", refDataHandler.GetReferenceData).Methods("GET")
	refDataAPI.HandleFunc("/{key}", authMiddleware.RequireRole("admin")(http.HandlerFunc(refDataHandler.UpdateReferenceData)).ServeHTTP).Methods("PUT")

	// Protected API routes - Reports
	reportsAPI := r.PathPrefix("/api/reports").Subrouter()
	reportsAPI.Use(authMiddleware.Authenticate)
	reportsAPI.HandleFunc("/dashboard", reportHandler.Dashboard).Methods("GET")
	reportsAPI.HandleFunc("/cash-book.xlsx", reportHandler.CashBookExcel).Methods("GET")
	reportsAPI.HandleFunc("/daily-summary.csv", reportHandler.DailySummaryCSV).Methods("GET")

	// Health endpoint (no auth required - for probes)
	r.HandleFunc("/health", healthHandler.Health).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
