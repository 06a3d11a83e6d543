package response

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"kanban_backend/internal/platform/pagination"
)

// PathID はパスパラメータnameを正の整数IDとして読み取ります。
// 不正な値の場合は400を返し、falseを返します。
func PathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":  MsgInvalidRequest,
			"fields": []FieldError{{Field: name, Rule: "id", Message: "must be a positive integer"}},
		})
		return 0, false
	}
	return uint(id), true
}

// PageQuery は page と size のクエリパラメータを読み取ります。
// 整数でない値の場合は400を返し、falseを返します。
func PageQuery(c *gin.Context) (pagination.Request, bool) {
	req, err := pagination.FromQuery(c.Request.URL.Query())
	if err != nil {
		field := "page"
		var pe *pagination.ParamError
		if errors.As(err, &pe) {
			field = pe.Param
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":  MsgInvalidRequest,
			"fields": []FieldError{{Field: field, Rule: "type", Message: "must be an integer"}},
		})
		return pagination.Request{}, false
	}
	return req, true
}
