// Package gateway is the HTTP surface the view layer talks to. Handlers
// resolve the caller's session into an explicit principal and hand it to the
// data-access endpoints.
package gateway

import (
	"context"
	"errors"
	"net/http"
	"time"

	_ "github.com/example/homecook/docs"
	"github.com/example/homecook/pkg/api"
	"github.com/example/homecook/pkg/auth"
	"github.com/example/homecook/pkg/config"
	"github.com/example/homecook/pkg/connectivity"
	"github.com/example/homecook/pkg/notify"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Notifications serves the recent transient notifications.
type Notifications interface {
	Recent(limit int) ([]notify.Notification, error)
}

// StatusFunc reports the backend's last known connectivity.
type StatusFunc func() connectivity.Status

type Gateway struct {
	config        *config.Config
	api           *api.Endpoints
	auth          *auth.Service
	notifications Notifications
	status        StatusFunc
	logger        *zap.Logger
	router        *gin.Engine
	server        *http.Server
}

func NewGateway(cfg *config.Config, logger *zap.Logger, endpoints *api.Endpoints, authSvc *auth.Service, notes Notifications, status StatusFunc) *Gateway {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(loggerMiddleware(logger))

	if status == nil {
		status = func() connectivity.Status { return connectivity.Unknown }
	}

	return &Gateway{
		config:        cfg,
		api:           endpoints,
		auth:          authSvc,
		notifications: notes,
		status:        status,
		logger:        logger.Named("gateway"),
		router:        router,
		server: &http.Server{
			Addr:              cfg.Gateway.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (g *Gateway) SetupRoutes() {
	g.router.GET("/health", g.health)

	v1 := g.router.Group("/api/v1")
	v1.Use(authenticate(g.auth))
	{
		v1.GET("/landing", g.landingMenu)
		v1.GET("/reviews", g.listReviews)
		v1.POST("/reviews", g.createReview)
		v1.POST("/reports", g.createReport)
		v1.GET("/notifications", g.listNotifications)

		menu := v1.Group("/menu")
		{
			menu.GET("/:cooker_id", g.menuItems)
			menu.POST("", g.createMenuItem)
			menu.PUT("/:id", g.updateMenuItem)
			menu.DELETE("/:id", g.deleteMenuItem)
		}

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/signup", g.signUp)
			authGroup.POST("/signin", g.signIn)
			authGroup.POST("/signout", g.signOut)
			authGroup.POST("/resend", g.resendConfirmation)
			authGroup.POST("/confirm", g.confirmEmail)
			authGroup.GET("/oauth/:provider", g.oauth)
			authGroup.GET("/me", g.me)
		}

		orders := v1.Group("/orders")
		{
			orders.POST("", g.placeOrder)
			orders.GET("", g.customerOrders)
			orders.GET("/:id", g.getOrder)
			orders.PUT("/:id/status", g.updateOrderStatus)
			orders.DELETE("/:id", g.deleteOrder)
		}

		v1.GET("/cooker/orders", g.cookerOrders)

		admin := v1.Group("/admin")
		{
			admin.GET("/users", g.listUsers)
			admin.PUT("/users/:id/role", g.updateUserRole)
			admin.DELETE("/users/:id", g.deleteUser)
			admin.GET("/reports", g.listReports)
			admin.PUT("/reports/:id/status", g.updateReportStatus)
			admin.GET("/audit/:entity_id", g.auditTrail)
		}
	}

	g.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// Handler exposes the router, mainly for tests.
func (g *Gateway) Handler() http.Handler {
	return g.router
}

func (g *Gateway) Start() error {
	g.logger.Info("Gateway starting", zap.String("address", g.server.Addr))
	if err := g.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (g *Gateway) Shutdown(ctx context.Context) error {
	return g.server.Shutdown(ctx)
}

// health godoc
// @Summary  Liveness and backend connectivity
// @Tags     health
// @Produce  json
// @Success  200 {object} map[string]string
// @Router   /health [get]
func (g *Gateway) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"backend": g.status().String(),
	})
}
