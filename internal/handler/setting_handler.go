package handler

import (
	"net/http"

	"github.com/blues/memberadmin/internal/logic"
	"github.com/gin-gonic/gin"
)

type SettingHandler struct {
	settingLogic *logic.SettingLogic
	buttonLogic  *logic.ButtonLogic
}

func NewSettingHandler(settings *logic.SettingLogic, buttons *logic.ButtonLogic) *SettingHandler {
	return &SettingHandler{settingLogic: settings, buttonLogic: buttons}
}

// GetSettings 全部系统设置
func (h *SettingHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingLogic.List(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", settings)
}

// UpdateSetting 修改单个设置
func (h *SettingHandler) UpdateSetting(c *gin.Context) {
	var req struct {
		Value string `json:"value"`
	}
	if !bindJSON(c, &req) {
		return
	}
	setting, err := h.settingLogic.Set(c.Request.Context(), c.Param("key"), req.Value)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "设置已保存", setting)
}

// GetButtons 自定义按钮配置
func (h *SettingHandler) GetButtons(c *gin.Context) {
	cfg, err := h.buttonLogic.Get(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", cfg)
}

// UpdateButtons 保存自定义按钮配置
func (h *SettingHandler) UpdateButtons(c *gin.Context) {
	var cfg logic.ButtonConfig
	if !bindJSON(c, &cfg) {
		return
	}
	saved, err := h.buttonLogic.Update(c.Request.Context(), cfg)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "按钮配置已保存", saved)
}
