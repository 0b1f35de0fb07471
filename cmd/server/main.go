package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"finance_navigator/internal/assistant"
	"finance_navigator/internal/auth"
	"finance_navigator/internal/config"
	"finance_navigator/internal/database"
	"finance_navigator/internal/demo"
	"finance_navigator/internal/events"
	"finance_navigator/internal/handlers"
	"finance_navigator/internal/middleware"
	"finance_navigator/internal/mirror"
	"finance_navigator/internal/repository"
	"finance_navigator/internal/services"
)

// App holds the application dependencies.
type App struct {
	config         *config.Config
	db             *database.DB
	router         *chi.Mux
	authMiddleware *middleware.AuthMiddleware

	authHandler      *handlers.AuthHandler
	accountsHandler  *handlers.AccountsHandler
	cashflowHandler  *handlers.CashflowHandler
	budgetsHandler   *handlers.BudgetsHandler
	goalsHandler     *handlers.GoalsHandler
	settingsHandler  *handlers.SettingsHandler
	dashboardHandler *handlers.DashboardHandler
	reportsHandler   *handlers.ReportsHandler
	assistantHandler *handlers.AssistantHandler
	eventsHandler    *handlers.EventsHandler
	exportHandler    *handlers.ExportHandler
}

func main() {
	cfg := config.New()

	db, err := database.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	if cfg.DemoMode {
		seeder := demo.NewSeeder(db)
		if err := seeder.SeedIfEmpty(); err != nil {
			log.Fatalf("Failed to seed demo data: %v", err)
		}
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	cashflowRepo := repository.NewCashflowRepository(db)
	budgetRepo := repository.NewBudgetRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	rateRepo := repository.NewRateRepository(db)

	// Services
	fxService := services.NewFXService(rateRepo, cfg.USDTWDFallback)
	recurringService := services.NewRecurringService(cashflowRepo, settingsRepo)
	assistantService := assistant.NewService(assistant.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel))
	hub := events.NewHub()

	var ghMirror *mirror.GitHubMirror
	if cfg.MirrorEnabled() {
		ghMirror = mirror.NewGitHubMirror(cfg.GitHubToken, cfg.GitHubRepo, cfg.GitHubFile, cfg.GitHubBranch)
		log.Printf("GitHub mirror enabled for %s/%s", cfg.GitHubRepo, cfg.GitHubFile)
	}

	// Session manager and middleware
	sessionManager := auth.NewSessionManager(db)
	authMiddleware := middleware.NewAuthMiddleware(sessionManager, userRepo)

	secureCookies := !cfg.IsDevelopment
	app := &App{
		config:           cfg,
		db:               db,
		authMiddleware:   authMiddleware,
		authHandler:      handlers.NewAuthHandler(userRepo, sessionManager, cfg.SessionMaxAge, secureCookies),
		accountsHandler:  handlers.NewAccountsHandler(accountRepo, settingsRepo, fxService, hub),
		cashflowHandler:  handlers.NewCashflowHandler(cashflowRepo, settingsRepo, accountRepo, recurringService, hub),
		budgetsHandler:   handlers.NewBudgetsHandler(budgetRepo, settingsRepo, hub),
		goalsHandler:     handlers.NewGoalsHandler(goalRepo, hub),
		settingsHandler:  handlers.NewSettingsHandler(settingsRepo, hub),
		dashboardHandler: handlers.NewDashboardHandler(accountRepo, cashflowRepo, settingsRepo, fxService),
		reportsHandler:   handlers.NewReportsHandler(accountRepo, cashflowRepo, settingsRepo, fxService),
		assistantHandler: handlers.NewAssistantHandler(assistantService, accountRepo, cashflowRepo, goalRepo, settingsRepo, fxService),
		eventsHandler:    handlers.NewEventsHandler(hub),
		exportHandler:    handlers.NewExportHandler(accountRepo, cashflowRepo, budgetRepo, goalRepo, settingsRepo, fxService, ghMirror),
	}

	app.setupRouter()

	// Expired sessions pile up otherwise; sweep them hourly.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if n, err := sessionManager.CleanExpired(); err != nil {
				log.Printf("Session cleanup failed: %v", err)
			} else if n > 0 {
				log.Printf("Cleaned %d expired sessions", n)
			}
		}
	}()

	server := &http.Server{
		Addr:         cfg.Address(),
		Handler:      app.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // SSE connections stay open
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://%s", cfg.Address())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func (app *App) setupRouter() {
	r := chi.NewRouter()

	// Chi middleware (aliased as chimw to avoid conflict with our middleware package)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(chimw.Compress(5))

	r.Use(middleware.SecurityHeaders)
	r.Use(app.authMiddleware.LoadUser)

	r.Get("/health", app.handleHealth)

	r.Route("/api", func(r chi.Router) {
		// Public auth routes, rate limited against brute force
		r.Group(func(r chi.Router) {
			r.Use(middleware.LimitAuth)
			r.Post("/register", app.authHandler.Register)
			r.Post("/login", app.authHandler.Login)
		})

		// Everything below requires a session
		r.Group(func(r chi.Router) {
			r.Use(app.authMiddleware.RequireAuth)

			r.Post("/logout", app.authHandler.Logout)
			r.Get("/me", app.authHandler.Me)

			r.Get("/accounts", app.accountsHandler.List)
			r.Post("/accounts", app.accountsHandler.Create)
			r.Put("/accounts/{id}", app.accountsHandler.Update)
			r.Delete("/accounts/{id}", app.accountsHandler.Delete)
			r.Post("/accounts/{id}/assets", app.accountsHandler.CreateAsset)
			r.Put("/assets/{id}", app.accountsHandler.UpdateAsset)
			r.Delete("/assets/{id}", app.accountsHandler.DeleteAsset)

			r.Get("/cashflow", app.cashflowHandler.List)
			r.Post("/cashflow", app.cashflowHandler.Create)
			r.Put("/cashflow/{id}", app.cashflowHandler.Update)
			r.Delete("/cashflow/{id}", app.cashflowHandler.Delete)
			r.Post("/cashflow/recurring/check", app.cashflowHandler.RecurringCheck)

			r.Get("/budgets", app.budgetsHandler.List)
			r.Put("/budgets", app.budgetsHandler.Upsert)
			r.Delete("/budgets/{id}", app.budgetsHandler.Delete)

			r.Get("/goals", app.goalsHandler.List)
			r.Post("/goals", app.goalsHandler.Create)
			r.Put("/goals/{id}", app.goalsHandler.Update)
			r.Delete("/goals/{id}", app.goalsHandler.Delete)

			r.Get("/settings", app.settingsHandler.Get)
			r.Put("/settings", app.settingsHandler.Update)

			r.Get("/dashboard", app.dashboardHandler.Get)

			r.Get("/reports/trend", app.reportsHandler.Trend)
			r.Get("/reports/expenses", app.reportsHandler.Expenses)
			r.Get("/reports/pnl", app.reportsHandler.PNL)
			r.Get("/reports/networth-trend", app.reportsHandler.NetWorthTrend)

			r.Group(func(r chi.Router) {
				r.Use(middleware.LimitAssistant)
				r.Post("/assistant/chat", app.assistantHandler.Chat)
			})

			r.Get("/events", app.eventsHandler.Stream)

			r.Get("/export", app.exportHandler.Export)
			r.Post("/mirror", app.exportHandler.Mirror)
		})
	})

	app.router = r
}

func (app *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := app.db.Ping(); err != nil {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("ok"))
}
