// Package response はJSONエラーレスポンスとリクエストバインドの共通処理を提供します。
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// エラーメッセージ。クライアントに内部の詳細を漏らさないよう固定文言を使います。
const (
	MsgUnauthorized    = "unauthorized"
	MsgForbidden       = "access denied"
	MsgInvalidRequest  = "invalid request"
	MsgTooManyRequests = "too many requests"
	MsgInternal        = "internal server error"
)

// Error は {"error": message} 形式でステータスを返し、後続のハンドラーを中断します。
func Error(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// BadRequest は400を返します。
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized は詳細を含まない401を返します。
func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, MsgUnauthorized)
}

// Forbidden は403を返します。
func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, MsgForbidden)
}

// NotFound は404を返します。
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// Internal は500を返します。原因は呼び出し元でログに記録してください。
func Internal(c *gin.Context) {
	Error(c, http.StatusInternalServerError, MsgInternal)
}
