package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ecommerce/pkg/logger"
	"ecommerce/pkg/metrics"
)

const serviceName = "product-service"

// SetupRoutes настраивает маршруты product-service.
// Запись товаров только для admin, оценка - для любого аутентифицированного пользователя.
func SetupRoutes(productHandler *ProductHandler, filterHandler *FilterHandler, authMiddleware *AuthMiddleware) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(logger.GinLoggerMiddleware())
	router.Use(metrics.GinPrometheusMiddleware(serviceName))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowWildcard:    true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authCheck := authMiddleware.Authenticate()
	adminCheck := authMiddleware.RequireRole("admin")

	router.POST("/product", authCheck, adminCheck, productHandler.Create)
	router.GET("/product/:slug", productHandler.Read)
	router.PUT("/product/:slug", authCheck, adminCheck, productHandler.Update)
	router.DELETE("/product/:slug", authCheck, adminCheck, productHandler.Remove)

	router.PUT("/product/star/:productId", authCheck, productHandler.Star)
	router.GET("/product/related/:productId", productHandler.ListRelated)

	// статический /products/total имеет приоритет над /products/:count
	router.GET("/products/total", productHandler.Count)
	router.GET("/products/:count", productHandler.ListAll)
	router.POST("/products", productHandler.List)

	router.POST("/search/filters", filterHandler.SearchFilters)

	return router
}
