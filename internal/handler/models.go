package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/memberadmin/internal/logic"
	"github.com/gin-gonic/gin"
)

// ContextUserKey 认证中间件写入的管理员用户名
const ContextUserKey = "admin_username"

// 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// 分页信息结构
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"pageSize"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"totalPage"`
}

// ListResponse 分页列表
type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination Pagination  `json:"pagination"`
}

// NewPagination 根据总数计算总页数
func NewPagination(page logic.Page, total int64) Pagination {
	page = page.Normalize()
	size := int64(page.PageSize)
	return Pagination{
		Page:      page.Page,
		PageSize:  page.PageSize,
		Total:     total,
		TotalPage: (total + size - 1) / size,
	}
}

// pageFromQuery 读取 page 和 page_size 参数
func pageFromQuery(c *gin.Context) logic.Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return logic.Page{Page: page, PageSize: pageSize}.Normalize()
}

// parseID 读取路径中的数字 ID, 失败时已写入 400 响应
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		ErrorResponse(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

// operator 当前操作人
func operator(c *gin.Context) string {
	return c.GetString(ContextUserKey)
}
