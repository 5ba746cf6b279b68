package api

import (
	"net/http"
	"time"

	"github.com/Arisudan/Varshini-Industrries/internal/logging"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterConfig carries the HTTP-level settings.
type RouterConfig struct {
	CORSOrigins []string
	UploadDir   string
	Limiter     *RateLimiter
}

// NewRouter builds the gin engine with every route of the API.
func NewRouter(h *Handler, rc RouterConfig) *gin.Engine {
	router := gin.New()

	router.Use(logging.JSONLogger())
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(rc.CORSOrigins)))

	if rc.UploadDir != "" {
		router.Static("/uploads", rc.UploadDir)
	}

	router.GET("/live", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/ready", h.Health)
	router.GET("/health", h.Health)

	submit := func(c *gin.Context) { c.Next() }
	if rc.Limiter != nil {
		submit = rc.Limiter.Middleware()
	}

	api := router.Group("/api")
	{
		api.POST("/login", h.Login)
		api.POST("/logout", h.Logout)
		api.GET("/check-auth", h.CheckAuth)

		api.GET("/public/products", h.GetPublicProducts)
		api.GET("/public/spec-options", h.GetSpecOptions)
		api.GET("/categories", h.GetCategories)
		api.POST("/leads", submit, h.SubmitLead)
		api.POST("/warranties", submit, h.SubmitWarranty)

		api.GET("/cart", h.GetCart)
		api.POST("/cart", h.AddToCart)
		api.DELETE("/cart/:id", h.RemoveFromCart)
		api.GET("/cart/enquiry", h.CartEnquiry)

		admin := api.Group("")
		admin.Use(RequireAuth(h.strategy))
		{
			admin.GET("/dashboard", h.GetDashboard)
			admin.GET("/dashboard/charts", h.GetCharts)

			admin.POST("/products", h.CreateProduct)
			admin.PUT("/products/:id", h.UpdateProduct)
			admin.DELETE("/products/:id", h.DeleteProduct)

			admin.GET("/leads", h.GetLeads)
			admin.POST("/leads/status", h.UpdateLeadStatus)
			admin.DELETE("/leads/:id", h.DeleteLead)

			admin.POST("/categories", h.CreateCategory)
			admin.DELETE("/categories/:id", h.DeleteCategory)

			admin.GET("/warranties", h.GetWarranties)
			admin.PUT("/warranties/:id", h.UpdateWarranty)
			admin.DELETE("/warranties/:id", h.DeleteWarranty)
		}
	}

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "varshini-api",
			"version": "1.0.0",
			"status":  "running",
		})
	})

	return router
}

// corsConfig allows credentials for the configured origins, or any origin
// without credentials when none are configured.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
