package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/mybankuml/banking-portal/internal/api/handler"
	"github.com/mybankuml/banking-portal/internal/api/middleware"
	"github.com/mybankuml/banking-portal/internal/core/domain"
	"github.com/mybankuml/banking-portal/internal/core/ports"
	"github.com/mybankuml/banking-portal/internal/core/service"
)

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	Log      zerolog.Logger
	API      ports.BankAPI
	Sessions *service.Registry
	Session  middleware.SessionConfig

	Guard     handler.SubmissionGuard
	Notifier  ports.Notifier
	Readiness map[string]handler.Pinger

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "portal",
		Registerer: d.Registerer,
	}))

	// --- Infrastructure (no session) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Readiness)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Dependencies ---
	sessionCfg := d.Session
	sessionCfg.Sessions = d.Sessions

	authHandler := handler.NewAuthHandler(d.API, d.Sessions, d.Log)
	accountHandler := handler.NewAccountHandler(d.API, d.Log)
	txHandler := handler.NewTransactionHandler(d.API, d.Guard, d.Notifier, d.Log)
	loanHandler := handler.NewLoanHandler(d.API, d.Log)
	bankerHandler := handler.NewBankerHandler(d.API, d.Log)
	mgmtHandler := handler.NewManagementHandler(d.API, d.Log)
	adminHandler := handler.NewAdminHandler(d.API, d.Log)

	app := e.Group("", middleware.Session(sessionCfg))

	// --- Auth routes ---
	app.POST("/login", authHandler.Login)
	app.POST("/register", authHandler.Register)
	app.POST("/logout", authHandler.Logout)
	app.GET("/session", authHandler.Session)

	// --- Customer pages ---
	customerOnly := middleware.Gate(domain.FamilyCustomer)
	app.GET("/dashboard", accountHandler.Dashboard, customerOnly)
	app.GET("/accounts", accountHandler.List, customerOnly)
	app.POST("/accounts", accountHandler.Create, customerOnly)
	app.GET("/accounts/:accountID", accountHandler.Details, customerOnly)
	app.POST("/statements", accountHandler.Statement, customerOnly)
	app.POST("/transfer", txHandler.Transfer, customerOnly)
	app.POST("/etransfer", txHandler.ETransfer, customerOnly)
	app.GET("/receipt", txHandler.Receipt, customerOnly)
	app.POST("/loans", loanHandler.Request, customerOnly)

	// --- Banker pages ---
	bankerOnly := middleware.Gate(domain.FamilyBanker)
	app.GET("/banker/customers", bankerHandler.SearchCustomers, bankerOnly)
	app.GET("/banker/customers/:customerID", bankerHandler.CustomerDetails, bankerOnly)
	app.GET("/banker/transactions", bankerHandler.Transactions, bankerOnly)
	app.POST("/banker/reversals", bankerHandler.Reverse, bankerOnly)

	// --- Bank manager pages ---
	managerOnly := middleware.Gate(domain.FamilyManager)
	app.GET("/banker/branch", bankerHandler.Branch, managerOnly)
	app.GET("/loans/pending", loanHandler.Pending, managerOnly)
	app.POST("/loans/:loanID/approve", loanHandler.Approve, managerOnly)
	app.POST("/loans/:loanID/reject", loanHandler.Reject, managerOnly)

	// --- Management dashboard ---
	app.GET("/dash", mgmtHandler.Dashboard, middleware.Gate(domain.FamilyManagement))

	// --- Admin pages ---
	adminOnly := middleware.Gate(domain.FamilyAdmin)
	app.GET("/admin/stats", adminHandler.Stats, adminOnly)
	app.GET("/admin/users", adminHandler.SearchUsers, adminOnly)
	app.GET("/admin/users/:userID", adminHandler.UserDetails, adminOnly)
	app.POST("/admin/users/:userID/role", adminHandler.AssignRole, adminOnly)

	return e
}

// requestLogger logs every request through zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
