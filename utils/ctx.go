package utils

import "github.com/gin-gonic/gin"

// ค่าพวกนี้ middleware auth เป็นคน Set ไว้เสมอ (uint/string ตาม Claims)
// ไม่มีค่า = request หลุด middleware มา ให้ zero value แล้วชั้น service ปัดเอง

func CurrentUserID(c *gin.Context) uint {
	if v, ok := c.Get("userId"); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

func CurrentRole(c *gin.Context) string {
	if v, ok := c.Get("role"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
