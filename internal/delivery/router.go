package delivery

import (
	"net/http"
	"time"

	"shop_service/internal/domain"
	"shop_service/internal/middleware"
	"shop_service/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// MaxBodyBytes caps JSON and multipart request bodies.
const MaxBodyBytes = 10 << 20

type RouterConfig struct {
	Auth       AuthService
	Categories CategoryService
	Products   ProductService
	Carts      CartService
	Orders     OrderService

	Tokens   middleware.TokenParser
	Observer middleware.RequestObserver
	Gatherer prometheus.Gatherer

	// UploadDir is served under /uploads when set.
	UploadDir   string
	CORSOrigins []string
	Log         *logrus.Logger
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}

func NewRouter(rc RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(rc.Log))
	router.Use(middleware.SecurityHeaders())
	router.Use(cors.New(corsConfig(rc.CORSOrigins)))
	if rc.Observer != nil {
		router.Use(middleware.Metrics(rc.Observer))
	}

	router.GET("/health", Health)
	if rc.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(rc.Gatherer, promhttp.HandlerOpts{})))
	}
	if rc.UploadDir != "" {
		router.Static(storage.URLPrefix, rc.UploadDir)
	}

	api := router.Group("/api")
	api.Use(middleware.BodyLimit(MaxBodyBytes))

	authed := api.Group("")
	authed.Use(middleware.Auth(rc.Tokens, rc.Log))
	admin := api.Group("")
	admin.Use(middleware.Auth(rc.Tokens, rc.Log), middleware.RequireRole(domain.RoleAdmin, rc.Log))

	NewAuthHandler(rc.Auth, rc.Log).RegisterRoutes(api)
	NewCategoryHandler(rc.Categories, rc.Log).RegisterRoutes(api, admin)
	NewProductHandler(rc.Products, rc.Log).RegisterRoutes(api, admin)
	NewCartHandler(rc.Carts, rc.Log).RegisterRoutes(authed)
	NewOrderHandler(rc.Orders, rc.Log).RegisterRoutes(authed)

	router.NoRoute(func(c *gin.Context) {
		FailResponse(c, http.StatusNotFound, "Route not found")
	})

	return router
}
