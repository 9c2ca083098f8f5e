package reqlog

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderRequestID = "X-Request-ID"
	ctxKey          = "request_id"
)

// RequestID は X-Request-ID を引き継ぐか新しく払い出し、レスポンスにも返す。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(ctxKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// ID returns the request id set by RequestID, or "-".
func ID(c *gin.Context) string {
	if v, ok := c.Get(ctxKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return "-"
}

// Logger is gin's access log with the request id appended.
func Logger() gin.HandlerFunc {
	return gin.LoggerWithFormatter(Format)
}

func Format(p gin.LogFormatterParams) string {
	id, _ := p.Keys[ctxKey].(string)
	if id == "" {
		id = "-"
	}
	return fmt.Sprintf("[GIN] %s | %3d | %13v | %15s | %-7s %#v | req=%s %s\n",
		p.TimeStamp.Format(time.RFC3339),
		p.StatusCode,
		p.Latency,
		p.ClientIP,
		p.Method,
		p.Path,
		id,
		p.ErrorMessage,
	)
}
