package router

import (
	"time"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/infra"
	"storefront/internal/middleware"
	"storefront/internal/permission"
	"storefront/internal/repository"
	"storefront/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, storage infra.Storage) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	staffRepo := repository.NewStaffRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	historyRepo := repository.NewProductHistoryRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	refreshRepo := repository.NewRefreshTokenRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	auditSvc := service.NewAuditService(auditRepo)
	authSvc := service.NewAuthService(staffRepo, userRepo, refreshRepo, auditSvc, cfg)
	categorySvc := service.NewCategoryService(categoryRepo, productRepo, auditSvc)
	productSvc := service.NewProductService(productRepo, categoryRepo, historyRepo, auditSvc)
	orderSvc := service.NewOrderService(orderRepo, productRepo, historyRepo, auditSvc)
	staffSvc := service.NewStaffService(staffRepo, roleRepo, auditSvc)
	roleSvc := service.NewRoleService(roleRepo, staffRepo, auditSvc)
	userSvc := service.NewUserService(userRepo, auditSvc)
	catalogSvc := service.NewCatalogService(productSvc, categorySvc, rdb)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc, cfg)
	categoriesH := handler.NewCategoriesHandler(categorySvc, catalogSvc)
	productsH := handler.NewProductsHandler(productSvc, catalogSvc, storage)
	ordersH := handler.NewOrdersHandler(orderSvc)
	staffH := handler.NewStaffHandler(staffSvc, roleSvc)
	usersH := handler.NewUsersHandler(userSvc)
	auditH := handler.NewAuditHandler(auditSvc)
	catalogH := handler.NewCatalogHandler(catalogSvc)

	jwtMW := middleware.JWTAuth(cfg.JWTSecret)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/healthz", handler.Health(db, rdb))
	r.GET("/metrics", middleware.MetricsHandler())

	// Local-disk images are served straight from the uploads directory; with
	// S3 configured the URLs point at the bucket/CDN instead.
	if cfg.S3Bucket == "" {
		r.Static("/uploads", cfg.UploadsDir)
	}

	// Refresh-token endpoints shared by staff and customers; the cookie is
	// scoped to this path.
	auth := r.Group("/api/auth")
	{
		auth.POST("/refresh", authH.Refresh)
		auth.POST("/logout", authH.Logout)
	}

	// Public storefront surface
	public := r.Group("/api/public")
	{
		public.GET("/catalog", catalogH.Catalog)
		public.GET("/categories", categoriesH.List)
		public.GET("/categories/:id", categoriesH.Get)
		public.GET("/products", productsH.PublicList)
		public.GET("/products/:id", productsH.Get)

		public.POST("/auth/telegram", middleware.AuthRateLimiter(), authH.TelegramLogin)

		// Customer endpoints: user JWT, scope pinned to :own in the service
		me := public.Group("", jwtMW)
		{
			me.GET("/me", usersH.Me)
			me.POST("/orders", middleware.RequirePermission(permission.OrdersCreate), ordersH.Create)
			me.GET("/orders", middleware.RequirePermission(permission.OrdersReadOwn, permission.OrdersReadAll), ordersH.List)
			me.GET("/orders/:id", middleware.RequirePermission(permission.OrdersReadOwn, permission.OrdersReadAll), ordersH.Get)
			me.PATCH("/orders/:id/status", middleware.RequirePermission(permission.OrdersUpdateOwn, permission.OrdersUpdateAll), ordersH.UpdateStatus)
		}
	}

	// Back-office surface
	private := r.Group("/api/private")
	{
		private.POST("/auth/login", middleware.AuthRateLimiter(), authH.Login)

		p := private.Group("", jwtMW)
		{
			p.POST("/categories", middleware.RequirePermission(permission.CategoriesCreate), categoriesH.Create)
			p.GET("/categories", middleware.RequirePermission(permission.CategoriesRead), categoriesH.List)
			p.GET("/categories/:id", middleware.RequirePermission(permission.CategoriesRead), categoriesH.Get)
			p.PUT("/categories/:id", middleware.RequirePermission(permission.CategoriesUpdate), categoriesH.Update)
			p.DELETE("/categories/:id", middleware.RequirePermission(permission.CategoriesDelete), categoriesH.Delete)

			p.POST("/products", middleware.RequirePermission(permission.ProductsCreate), productsH.Create)
			p.GET("/products", middleware.RequirePermission(permission.ProductsRead), productsH.List)
			p.GET("/products/:id", middleware.RequirePermission(permission.ProductsRead), productsH.Get)
			p.PUT("/products/:id", middleware.RequirePermission(permission.ProductsUpdate), productsH.Update)
			p.DELETE("/products/:id", middleware.RequirePermission(permission.ProductsDelete), productsH.Delete)
			p.PATCH("/products/:id/restore", middleware.RequirePermission(permission.ProductsDelete), productsH.Restore)
			p.PATCH("/products/:id/stock", middleware.RequirePermission(permission.ProductsAdjustStock), productsH.AdjustStock)
			p.POST("/products/:id/image", middleware.RequirePermission(permission.ProductsUpdate), productsH.UploadImage)
			p.GET("/products/:id/history", middleware.RequirePermission(permission.ProductsRead), productsH.History)

			p.POST("/orders", middleware.RequirePermission(permission.OrdersCreate), ordersH.Create)
			p.GET("/orders", middleware.RequirePermission(permission.OrdersReadOwn, permission.OrdersReadAll), ordersH.List)
			p.GET("/orders/:id", middleware.RequirePermission(permission.OrdersReadOwn, permission.OrdersReadAll), ordersH.Get)
			p.PATCH("/orders/:id/status", middleware.RequirePermission(permission.OrdersUpdateOwn, permission.OrdersUpdateAll), ordersH.UpdateStatus)
			p.DELETE("/orders/:id", middleware.RequirePermission(permission.OrdersDelete), ordersH.Delete)

			p.POST("/staff", middleware.RequirePermission(permission.StaffCreate), staffH.Create)
			p.GET("/staff", middleware.RequirePermission(permission.StaffRead), staffH.List)
			p.GET("/staff/:id", middleware.RequirePermission(permission.StaffRead), staffH.Get)
			p.PUT("/staff/:id", middleware.RequirePermission(permission.StaffUpdate), staffH.Update)
			p.DELETE("/staff/:id", middleware.RequirePermission(permission.StaffDelete), staffH.Deactivate)

			p.POST("/roles", middleware.RequirePermission(permission.RolesCreate), staffH.CreateRole)
			p.GET("/roles", middleware.RequirePermission(permission.RolesRead), staffH.ListRoles)
			p.GET("/roles/:id", middleware.RequirePermission(permission.RolesRead), staffH.GetRole)
			p.PUT("/roles/:id", middleware.RequirePermission(permission.RolesUpdate), staffH.UpdateRole)
			p.DELETE("/roles/:id", middleware.RequirePermission(permission.RolesDelete), staffH.DeleteRole)

			p.GET("/users", middleware.RequirePermission(permission.UsersRead), usersH.List)
			p.GET("/users/:id", middleware.RequirePermission(permission.UsersRead), usersH.Get)
			p.PUT("/users/:id", middleware.RequirePermission(permission.UsersUpdate), usersH.Update)
			p.DELETE("/users/:id", middleware.RequirePermission(permission.UsersDelete), usersH.Deactivate)

			p.GET("/audit", middleware.RequirePermission(permission.AuditRead), auditH.List)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
