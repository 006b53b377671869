package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/eventstock/eventstock/internal/api/handlers"
	"github.com/eventstock/eventstock/internal/api/middleware"
)

type Router struct {
	engine            *gin.Engine
	logger            *zap.Logger
	collectionHandler *handlers.CollectionHandler
	orderHandler      *handlers.OrderHandler
	projectHandler    *handlers.ProjectHandler
}

func NewRouter(
	logger *zap.Logger,
	collectionHandler *handlers.CollectionHandler,
	orderHandler *handlers.OrderHandler,
	projectHandler *handlers.ProjectHandler,
) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		logger:            logger,
		collectionHandler: collectionHandler,
		orderHandler:      orderHandler,
		projectHandler:    projectHandler,
	}
}

func (r *Router) Setup(mode string) *gin.Engine {
	gin.SetMode(mode)
	r.engine = gin.New()
	r.engine.Use(gin.Recovery())
	r.engine.Use(middleware.ClientInfo())
	r.engine.Use(middleware.RequestLogger(r.logger))
	r.engine.Use(middleware.Metrics())

	r.setupRoutes()
	return r.engine
}

func (r *Router) setupRoutes() {
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api.GET("/views", r.collectionHandler.Views)

	// Generic collections
	collections := api.Group("/collections/:name")
	{
		collections.GET("", r.collectionHandler.List)
		collections.PUT("", r.collectionHandler.Replace)
		collections.POST("/search", r.collectionHandler.Search)
		collections.POST("/reload", r.collectionHandler.Reload)

		collections.POST("/records", r.collectionHandler.Create)
		collections.GET("/records/:id", r.collectionHandler.Get)
		collections.PUT("/records/:id", r.collectionHandler.Update)
		collections.DELETE("/records/:id", r.collectionHandler.Delete)
	}

	// Orders and their price tiers
	orders := api.Group("/orders")
	{
		orders.POST("", r.orderHandler.Create)
		orders.GET("/:id", r.orderHandler.Get)
		orders.PUT("/:id", r.orderHandler.Update)
		orders.GET("/:id/export", r.orderHandler.Export)

		orders.POST("/:id/items", r.orderHandler.AddItem)
		orders.DELETE("/:id/items/:item", r.orderHandler.RemoveItem)
		orders.POST("/:id/items/:item/tiers", r.orderHandler.AddTier)
		orders.PUT("/:id/items/:item/tiers/:tier", r.orderHandler.ReplaceTier)
		orders.DELETE("/:id/items/:item/tiers/:tier", r.orderHandler.RemoveTier)
	}

	// Products booked for projects
	projects := api.Group("/projects/:id")
	{
		projects.GET("/products", r.projectHandler.Products)
		projects.POST("/products", r.projectHandler.AddProduct)
		projects.DELETE("/products/:productId", r.projectHandler.RemoveProduct)
	}
}
