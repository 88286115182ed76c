package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "sudooom.daifugo/pkg/errors"
)

// Response 统一响应结构
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// Success 成功响应
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Code:    appErrors.CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Error 从 AppError 生成错误响应，其他错误按服务器错误处理
func Error(c *gin.Context, err error) {
	c.JSON(http.StatusOK, Response{
		Code:    appErrors.GetCode(err),
		Message: appErrors.GetMessage(err),
		Data:    nil,
	})
}

// ErrorWithData 错误响应，附带错误上下文
func ErrorWithData(c *gin.Context, err error, data any) {
	c.JSON(http.StatusOK, Response{
		Code:    appErrors.GetCode(err),
		Message: appErrors.GetMessage(err),
		Data:    data,
	})
}

// ErrorWithMsg 自定义错误消息
func ErrorWithMsg(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}
