package server

import (
	"context"
	"strings"
	"time"

	"anadara.com/exportmarket/internal/config"
	"anadara.com/exportmarket/internal/middleware"

	adminHttp "anadara.com/exportmarket/internal/modules/admin/delivery/http"
	adminService "anadara.com/exportmarket/internal/modules/admin/service"

	categoryHttp "anadara.com/exportmarket/internal/modules/category/delivery/http"
	categoryRepo "anadara.com/exportmarket/internal/modules/category/repository"
	categoryService "anadara.com/exportmarket/internal/modules/category/service"

	productHttp "anadara.com/exportmarket/internal/modules/product/delivery/http"
	productRepo "anadara.com/exportmarket/internal/modules/product/repository"
	productService "anadara.com/exportmarket/internal/modules/product/service"

	searchService "anadara.com/exportmarket/internal/modules/search/service"

	statHttp "anadara.com/exportmarket/internal/modules/stat/delivery/http"
	statService "anadara.com/exportmarket/internal/modules/stat/service"

	userHttp "anadara.com/exportmarket/internal/modules/user/delivery/http"
	userRepo "anadara.com/exportmarket/internal/modules/user/repository"
	userService "anadara.com/exportmarket/internal/modules/user/service"

	viewService "anadara.com/exportmarket/internal/modules/view/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	users := userRepo.NewUserRepository(db)
	categories := categoryRepo.NewCategoryRepository(db)
	products := productRepo.NewProductRepository(db)

	// Search is optional: without a Meilisearch host, category search falls
	// back to the database and product indexing is skipped.
	var categoryIndex categoryService.SearchIndex
	var productIndex productService.SearchIndex
	if cfg.MeiliSearchHost != "" {
		meiliHost := cfg.MeiliSearchHost
		if !strings.HasPrefix(meiliHost, "http") {
			meiliHost = "http://" + meiliHost + ":7700"
		}
		meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		searchSvc := searchService.NewSearchService(meiliClient)
		categoryIndex = searchSvc
		productIndex = searchSvc
	}

	categorySvc := categoryService.NewCategoryService(categories, products, categoryIndex, redisClient)
	productSvc := productService.NewProductService(products, categorySvc, productIndex)

	viewSvc := viewService.NewViewService(redisClient, products)
	if redisClient != nil {
		go viewSvc.StartViewSyncWorker(context.Background(), cfg.ViewSyncInterval)
	}

	authSvc := userService.NewAuthService(users, redisClient, cfg.JWTSecret, cfg.JWTExpiry, cfg.RateLimitLogin)
	authHandler := userHttp.NewAuthHandler(authSvc)

	adminSvc := adminService.NewAdminService(users)
	adminHandler := adminHttp.NewAdminHandler(adminSvc)

	statSvc := statService.NewStatService(users, productSvc, categorySvc)
	statHandler := statHttp.NewStatHandler(statSvc)

	categoryHandler := categoryHttp.NewCategoryHandler(categorySvc, productSvc)
	productHandler := productHttp.NewProductHandler(productSvc, viewSvc)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(users, cfg.JWTSecret)

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", authMiddleware.RequireAuth(), authHandler.Me)
	}

	categoryGroup := api.Group("/categories")
	{
		categoryGroup.GET("", categoryHandler.ListCategories)
		categoryGroup.GET("/search/:query", categoryHandler.SearchCategories)
		categoryGroup.GET("/:id", categoryHandler.GetCategory)
		categoryGroup.GET("/:id/products", categoryHandler.GetCategoryProducts)

		adminOnly := categoryGroup.Group("")
		adminOnly.Use(authMiddleware.RequireAuth(), authMiddleware.RequireAdmin())
		{
			adminOnly.POST("", categoryHandler.CreateCategory)
			adminOnly.PUT("/:id", categoryHandler.UpdateCategory)
			adminOnly.DELETE("/:id", categoryHandler.DeleteCategory)
			adminOnly.POST("/:id/reorder", categoryHandler.ReorderCategory)
			adminOnly.PUT("/:id/toggle-status", categoryHandler.ToggleCategoryStatus)
		}
	}

	productGroup := api.Group("/products")
	{
		productGroup.GET("", productHandler.ListProducts)
		productGroup.GET("/:id", authMiddleware.OptionalAuth(), productHandler.GetProduct)
		productGroup.POST("/:id/view", authMiddleware.OptionalAuth(), productHandler.RecordView)

		productGroup.POST("",
			authMiddleware.RequireAuth(),
			authMiddleware.RequireRoles("exporter"),
			authMiddleware.RequireVerified(),
			productHandler.CreateProduct)

		owned := productGroup.Group("")
		owned.Use(authMiddleware.RequireAuth(), authMiddleware.RequireOwnerOrAdmin(productHttp.OwnerExtractor(productSvc)))
		{
			owned.PUT("/:id", productHandler.UpdateProduct)
			owned.DELETE("/:id", productHandler.DeleteProduct)
		}
	}

	adminGroup := api.Group("/admin")
	adminGroup.Use(authMiddleware.RequireAuth(), authMiddleware.RequireAdmin())
	{
		adminGroup.GET("/users", adminHandler.ListUsers)
		adminGroup.PUT("/users/:id/toggle-status", adminHandler.ToggleUserStatus)
		adminGroup.PUT("/users/:id/verify", adminHandler.VerifyUser)
	}

	api.GET("/stats", statHandler.GetStats)

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
