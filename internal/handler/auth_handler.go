package handler

import (
	"net/http"

	"github.com/blues/memberadmin/internal/logic"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authLogic *logic.AuthLogic
}

func NewAuthHandler(l *logic.AuthLogic) *AuthHandler {
	return &AuthHandler{authLogic: l}
}

// Login 管理员登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.authLogic.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "登录成功", result)
}
