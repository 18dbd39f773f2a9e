package http

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"inventory-api/internal/metrics"
	"inventory-api/internal/service"
)

const defaultCookieName = "inventory_session"

// Backend mounts one inventory store under a URL prefix.
type Backend struct {
	// Name labels metrics and export keys, e.g. "relational".
	Name   string
	Prefix string
	Items  service.InventoryService
}

// Config carries the optional collaborators and cookie settings of a Handler.
type Config struct {
	CookieName   string
	CookieSecure bool
	// AllowedOrigins lists browser origins that may call the API with credentials.
	AllowedOrigins []string
	// Exports is nil when object storage is not configured.
	Exports service.ExportService
	Metrics *metrics.Metrics
	Logger  logrus.FieldLogger
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users    service.UserService
	sessions service.SessionService
	backends []Backend
	exports  service.ExportService
	metrics  *metrics.Metrics
	logger   logrus.FieldLogger
	cfg      Config
}

func NewHandler(users service.UserService, sessions service.SessionService, cfg Config, backends ...Backend) *Handler {
	if cfg.CookieName == "" {
		cfg.CookieName = defaultCookieName
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return &Handler{
		users:    users,
		sessions: sessions,
		backends: backends,
		exports:  cfg.Exports,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		cfg:      cfg,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(h.requestLogger(), corsMiddleware(h.cfg.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})
	router.GET("/metrics", gin.WrapH(h.metrics.Handler()))

	router.POST("/register", h.register)
	router.POST("/login", h.login)

	authed := router.Group("/", h.requireSession())
	authed.POST("/logout", h.logout)

	for _, b := range h.backends {
		routes := &inventoryRoutes{h: h, backend: b}
		inv := authed.Group(b.Prefix)
		{
			inv.POST("", routes.create)
			inv.GET("", routes.list)
			inv.GET("/:id", routes.get)
			inv.PUT("/:id", routes.update)
			inv.DELETE("/:id", routes.delete)
			if h.exports != nil {
				inv.POST("/export", routes.export)
				inv.GET("/exports", routes.listExports)
			}
		}
	}
}

func corsMiddleware(allowed []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" || !slices.ContainsFunc(allowed, func(o string) bool { return strings.EqualFold(o, origin) }) {
			c.Next()
			return
		}

		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
		c.Writer.Header().Add("Vary", "Origin")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
