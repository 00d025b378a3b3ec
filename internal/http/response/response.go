package response

import (
	"github.com/gin-gonic/gin"
)

const requestIDKey = "request_id"

// Pagination 分页信息
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"total_page"`
}

// NewPagination 计算总页数
func NewPagination(page, pageSize int, total int64) Pagination {
	totalPage := int64(0)
	if pageSize > 0 {
		totalPage = (total + int64(pageSize) - 1) / int64(pageSize)
	}
	return Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	}
}

// OK 200 响应
func OK(c *gin.Context, body interface{}) {
	c.JSON(CodeOK, body)
}

// Created 201 响应
func Created(c *gin.Context, body interface{}) {
	c.JSON(CodeCreated, body)
}

// Error 错误响应：{error, request_id}
func Error(c *gin.Context, statusCode int, msg string) {
	c.JSON(statusCode, attachRequestID(c, gin.H{"error": msg}))
}

// ErrorWithData 错误响应（附带业务字段）
func ErrorWithData(c *gin.Context, statusCode int, msg string, data gin.H) {
	body := gin.H{}
	for key, value := range data {
		body[key] = value
	}
	body["error"] = msg
	c.JSON(statusCode, attachRequestID(c, body))
}

// NotFound 404响应
func NotFound(c *gin.Context, msg string) {
	Error(c, CodeNotFound, msg)
}

// Unauthorized 401响应
func Unauthorized(c *gin.Context, msg string) {
	Error(c, CodeUnauthorized, msg)
}

// Forbidden 403响应
func Forbidden(c *gin.Context, msg string) {
	Error(c, CodeForbidden, msg)
}

// BadRequest 400响应
func BadRequest(c *gin.Context, msg string) {
	Error(c, CodeBadRequest, msg)
}

func attachRequestID(c *gin.Context, body gin.H) gin.H {
	if c == nil {
		return body
	}
	if value, ok := c.Get(requestIDKey); ok {
		if id, ok := value.(string); ok && id != "" {
			if _, exists := body[requestIDKey]; !exists {
				body[requestIDKey] = id
			}
		}
	}
	return body
}
