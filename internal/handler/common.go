package handler

import (
	"encoding/json"
	"strings"

	"github.com/gin-gonic/gin"
)

// parseCallbackPayload 上游回调载荷统一转成 map。
// 表单每个键取第一个值;JSON body 原样解码。
func parseCallbackPayload(c *gin.Context) map[string]interface{} {
	payload := make(map[string]interface{})

	ct := c.GetHeader("Content-Type")
	if strings.Contains(ct, "application/json") {
		_ = json.NewDecoder(c.Request.Body).Decode(&payload)
		return payload
	}

	_ = c.Request.ParseForm()
	for k, vs := range c.Request.PostForm {
		if len(vs) > 0 {
			payload[k] = vs[0]
		}
	}
	// GET 查询串里的字段也收进来
	for k, vs := range c.Request.URL.Query() {
		if _, exists := payload[k]; !exists && len(vs) > 0 {
			payload[k] = vs[0]
		}
	}
	return payload
}
