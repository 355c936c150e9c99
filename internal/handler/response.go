package handler

import (
	"errors"
	"net/http"

	"github.com/blues/memberadmin/internal/logger"
	"github.com/blues/memberadmin/internal/logic"
	"github.com/blues/memberadmin/internal/settlement"
	"github.com/gin-gonic/gin"
)

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Data:    nil,
	})
}

// StatusOf 错误对应的 HTTP 状态码
func StatusOf(err error) int {
	var (
		verr   *logic.ValidationError
		cfgErr *settlement.ConfigurationError
	)
	switch {
	case errors.As(err, &verr), errors.As(err, &cfgErr):
		return http.StatusBadRequest
	case errors.Is(err, settlement.ErrInvalidConfiguration),
		errors.Is(err, settlement.ErrEmptyCycle),
		errors.Is(err, settlement.ErrIncompleteCycle),
		errors.Is(err, settlement.ErrCycleMismatch),
		errors.Is(err, settlement.ErrDuplicatePeriod),
		errors.Is(err, settlement.ErrUnknownAccount):
		return http.StatusBadRequest
	case errors.Is(err, logic.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, logic.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, logic.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// HandleError 按错误类型返回 4xx/5xx, 5xx 只返回通用信息
func HandleError(c *gin.Context, err error) {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		logger.Error("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		ErrorResponse(c, status, "internal server error")
		return
	}

	var verr *logic.ValidationError
	if errors.As(err, &verr) {
		c.JSON(status, Response{Success: false, Message: err.Error(), Data: verr})
		return
	}
	ErrorResponse(c, status, err.Error())
}

// bindJSON 解析请求体, 失败时已写入 400 响应
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}
