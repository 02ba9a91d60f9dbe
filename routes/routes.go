package routes

import (
	"github.com/LeoAkay/qr-menu-sub000/configs"
	"github.com/LeoAkay/qr-menu-sub000/controllers"
	"github.com/LeoAkay/qr-menu-sub000/middlewares"
	"github.com/LeoAkay/qr-menu-sub000/repository"
	"github.com/LeoAkay/qr-menu-sub000/services"
	"github.com/LeoAkay/qr-menu-sub000/ws"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// RegisterRoutes ต่อสายทุกชั้น แล้วคืน hub ให้ main สั่ง Run
// (hub สร้างที่เดียวตรงนี้ ใครอยาก publish ได้ก็รับ reference ไป)
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *configs.Config, cache *redis.Client) *ws.OrderHub {
	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	// Repositories
	userRepo := repository.NewUserRepository(db)
	restRepo := repository.NewRestaurantRepository(db)
	menuRepo := repository.NewMenuRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// Services
	restSvc := services.NewRestaurantService(db, restRepo, userRepo)
	authSvc := services.NewAuthService(userRepo, restRepo, cfg.JWTSecret, cfg.JWTTTL)
	menuSvc := services.NewMenuService(menuRepo, restRepo, cache, cfg.UploadDir)

	hub := ws.NewOrderHub(restSvc)
	orderSvc := services.NewOrderService(db, orderRepo, menuRepo, restRepo, hub)

	// Controllers
	authCtrl := controllers.NewAuthController(authSvc)
	adminCtrl := controllers.NewAdminController(restSvc)
	menuCtrl := controllers.NewMenuController(menuSvc, restSvc)
	orderCtrl := controllers.NewOrderController(orderSvc, restSvc)
	publicCtrl := controllers.NewPublicController(menuSvc, orderSvc, restSvc)

	// Auth
	a := r.Group("/auth")
	{
		a.POST("/login", authCtrl.Login)
		a.GET("/me", middlewares.AuthMiddleware(cfg.JWTSecret), authCtrl.Me)
	}

	// Public (ลูกค้าสแกน QR — ไม่มี auth, คุมด้วย rate limit)
	pub := r.Group("/menu", middlewares.RateLimit("60-M"))
	{
		pub.GET("/:slug", publicCtrl.Menu)
		pub.POST("/:slug/orders", publicCtrl.CreateOrder)
	}

	// Partner (owner/admin) — dashboard ร้าน
	partner := r.Group("/partner", middlewares.AuthMiddleware(cfg.JWTSecret, "owner", "admin"))
	{
		partner.GET("/menu", menuCtrl.List)
		partner.POST("/menu/categories", menuCtrl.CreateCategory)
		partner.PATCH("/menu/categories/:id", menuCtrl.UpdateCategory)
		partner.DELETE("/menu/categories/:id", menuCtrl.DeleteCategory)
		partner.POST("/menu/items", menuCtrl.CreateItem)
		partner.PATCH("/menu/items/:id", menuCtrl.UpdateItem)
		partner.DELETE("/menu/items/:id", menuCtrl.DeleteItem)
		partner.POST("/menu/pdf", menuCtrl.UploadPDF)
		partner.PATCH("/menu/mode", menuCtrl.SetMode)

		partner.GET("/orders", orderCtrl.List)
		partner.POST("/orders/:id/pay", orderCtrl.Pay)
		partner.POST("/orders/:id/cancel", orderCtrl.Cancel)
		partner.DELETE("/orders/:id", orderCtrl.Delete)
	}

	// Admin (admin only) — จัดการ tenant
	admin := r.Group("/admin", middlewares.AuthMiddleware(cfg.JWTSecret, "admin"))
	{
		admin.GET("/dashboard", adminCtrl.Dashboard)
		admin.GET("/tenants", adminCtrl.Tenants)
		admin.POST("/tenants", adminCtrl.CreateTenant)
		admin.PATCH("/tenants/:id/activate", adminCtrl.Activate)
		admin.PATCH("/tenants/:id/deactivate", adminCtrl.Deactivate)
		admin.DELETE("/tenants/:id", adminCtrl.DeleteTenant)
	}

	// WebSocket — dashboard subscribe order event ของร้านตัวเอง
	r.GET("/ws/orders", middlewares.WSAuthMiddleware(cfg.JWTSecret), hub.HandleWebSocket)

	return hub
}
