package middlewares

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware สำหรับหน้าเมนูลูกค้า + dashboard ร้าน
// API นี้ใช้แค่ GET/POST/PATCH/DELETE กับ header สองตัว ไม่เปิดเกินนั้น
func CORSMiddleware() gin.HandlerFunc {
	cfg := cors.Config{
		AllowOrigins: []string{"*"}, // dev เท่านั้น; prod ใส่โดเมนจริง
		AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}
	return cors.New(cfg)
}
