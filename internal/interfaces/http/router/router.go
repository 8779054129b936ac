// Package router assembles the gin engine: global middleware, the /api/v1
// group behind JWT authentication and the role-gated domain route groups.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stockflow/backend/internal/application/workflow"
	"github.com/stockflow/backend/internal/infrastructure/auth"
	"github.com/stockflow/backend/internal/infrastructure/logger"
	"github.com/stockflow/backend/internal/interfaces/http/handler"
	"github.com/stockflow/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Route is one endpoint of a domain group. Roles empty means any
// authenticated caller.
type Route struct {
	Method  string
	Path    string
	Roles   []workflow.Role
	Handler gin.HandlerFunc
}

// DomainGroup collects the routes of one resource under a prefix
type DomainGroup struct {
	name   string
	prefix string
	routes []Route
}

// NewDomainGroup creates a new domain-specific route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Handle adds a route restricted to roles
func (dg *DomainGroup) Handle(method, path string, h gin.HandlerFunc, roles ...workflow.Role) *DomainGroup {
	dg.routes = append(dg.routes, Route{Method: method, Path: path, Roles: roles, Handler: h})
	return dg
}

// Routes returns the registered routes in registration order
func (dg *DomainGroup) Routes() []Route {
	return dg.routes
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// RegisterRoutes mounts the group on rg
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)
	for _, route := range dg.routes {
		handlers := make([]gin.HandlerFunc, 0, 2)
		if len(route.Roles) > 0 {
			handlers = append(handlers, middleware.RequireRole(route.Roles...))
		}
		handlers = append(handlers, route.Handler)
		group.Handle(route.Method, route.Path, handlers...)
	}
}

// Handlers are the HTTP handlers mounted by New
type Handlers struct {
	Report    *handler.ReportHandler
	Shipment  *handler.ShipmentHandler
	Expense   *handler.ExpenseHandler
	File      *handler.FileHandler
	Inventory *handler.InventoryHandler
	Health    *handler.HealthHandler
}

// Config holds the engine level settings
type Config struct {
	JWTService     *auth.JWTService
	Logger         *zap.Logger
	CORS           middleware.CORSConfig
	Tracing        middleware.TracingConfig
	MaxBodySize    int64
	TrustedProxies []string
}

const (
	admin  = workflow.RoleAdmin
	worker = workflow.RoleWorker
)

// New builds the engine with every route of the API
func New(cfg Config, h Handlers) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// order matters: request id feeds logging and tracing, recovery wraps the rest
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Tracing(cfg.Tracing)...)
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(cfg.CORS))
	engine.Use(middleware.BodyLimit(cfg.MaxBodySize))

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   gin.H{"code": "NOT_FOUND", "message": "Route not found"},
		})
	})

	if h.Health != nil {
		engine.GET("/health", h.Health.Health)
	}

	api := engine.Group("/api/v1")
	if h.Health != nil {
		api.GET("/health", h.Health.Health)
	}
	api.Use(middleware.JWTAuth(cfg.JWTService, log))
	api.Use(middleware.TracingAttributeInjector())

	for _, group := range DomainGroups(h) {
		group.RegisterRoutes(api)
	}
	return engine
}

// DomainGroups lists every role-gated route group of the API
func DomainGroups(h Handlers) []*DomainGroup {
	var groups []*DomainGroup

	if h.Report != nil {
		groups = append(groups, NewDomainGroup("report", "/report").
			Handle(http.MethodPost, "", h.Report.Create, worker).
			Handle(http.MethodPut, "/:id/update-requested", h.Report.UpdateRequested, worker).
			Handle(http.MethodPatch, "/:id/request-changes", h.Report.RequestChanges, admin).
			Handle(http.MethodPatch, "/:id/accept-level-one", h.Report.AcceptLevelOne, admin).
			Handle(http.MethodPatch, "/:id/submit-deposit", h.Report.SubmitDeposit, worker).
			Handle(http.MethodPatch, "/:id/request-changes-at-deposit", h.Report.RequestChangesAtDeposit, admin).
			Handle(http.MethodPatch, "/:id/final-acceptance", h.Report.FinalAccept, admin).
			Handle(http.MethodGet, "", h.Report.List, admin, worker).
			Handle(http.MethodGet, "/statistics", h.Report.Statistics, admin, worker).
			Handle(http.MethodGet, "/:id", h.Report.GetByID, admin, worker))
	}

	if h.Shipment != nil {
		groups = append(groups, NewDomainGroup("shipment", "/shipments").
			Handle(http.MethodPost, "", h.Shipment.Create, admin).
			Handle(http.MethodPatch, "/:id", h.Shipment.Update, admin).
			Handle(http.MethodPatch, "/:id/request-update", h.Shipment.RequestUpdate, admin).
			Handle(http.MethodPatch, "/:id/accept", h.Shipment.Accept, admin).
			Handle(http.MethodPost, "/:id/submit-for-review", h.Shipment.SubmitForReview, worker).
			Handle(http.MethodGet, "", h.Shipment.List, admin, worker).
			Handle(http.MethodGet, "/count", h.Shipment.Count, admin, worker).
			Handle(http.MethodGet, "/:id", h.Shipment.GetByID, admin, worker))
	}

	if h.Expense != nil {
		groups = append(groups, NewDomainGroup("expense", "/expenses").
			Handle(http.MethodPost, "", h.Expense.Create, admin, worker).
			Handle(http.MethodGet, "", h.Expense.List, admin, worker).
			Handle(http.MethodGet, "/:id", h.Expense.GetByID, admin, worker).
			Handle(http.MethodPut, "/:id", h.Expense.Update, admin, worker).
			Handle(http.MethodDelete, "/:id", h.Expense.Delete, admin, worker))
	}

	if h.File != nil {
		groups = append(groups, NewDomainGroup("file", "/files").
			Handle(http.MethodPost, "/deposit-receipts", h.File.InitiateDepositReceipt, worker).
			Handle(http.MethodPost, "/:id/confirm", h.File.ConfirmUpload, worker).
			Handle(http.MethodGet, "/:id", h.File.GetByID, admin, worker))
	}

	if h.Inventory != nil {
		groups = append(groups, NewDomainGroup("inventory", "/inventories").
			Handle(http.MethodGet, "/:id/balance", h.Inventory.GetBalance, admin, worker).
			Handle(http.MethodGet, "/:id/product-units", h.Inventory.ListProductUnits, admin, worker))
	}

	return groups
}
