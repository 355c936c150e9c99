package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/blues/memberadmin/internal/handler"
	"github.com/blues/memberadmin/internal/logger"
	"github.com/blues/memberadmin/internal/logic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// requestID 透传或生成请求 ID
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("%s %s %d %s request_id=%s",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start), c.GetString(requestIDHeader))
	}
}

// authRequired 校验 Bearer token, 写入管理员用户名
func authRequired(auth *logic.AuthLogic) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if header == "" || token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.Response{Success: false, Message: "missing bearer token"})
			return
		}

		claims, err := auth.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.Response{Success: false, Message: "invalid token"})
			return
		}

		c.Set(handler.ContextUserKey, claims.Username)
		c.Next()
	}
}
