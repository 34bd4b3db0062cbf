package middleware

import (
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// set by the registration handlers
const (
	registrationIDKey     = "registration_id"
	registrationSourceKey = "registration_source"
)

// query parameters that may carry a parent's name or email
var redactedParams = []string{"term"}

// Logger writes one structured line per request. Registration submissions
// that fell back to local storage are logged as warnings.
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := redactQuery(c.Request.URL.RawQuery)

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		fields := []zap.Field{
			zap.Int("status", statusCode),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("route", c.FullPath()),
			zap.String("query", query),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", latency),
			zap.String("request_id", c.GetString(requestIDKey)),
		}
		if uid := c.GetString("user_id"); uid != "" {
			fields = append(fields, zap.String("user_id", uid))
		}
		regID := c.GetString(registrationIDKey)
		if regID != "" {
			fields = append(fields, zap.String("registration_id", regID))
		}
		source := c.GetString(registrationSourceKey)
		if source != "" {
			fields = append(fields, zap.String("registration_source", source))
		}

		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.ByType(gin.ErrorTypePrivate).String()))
		}

		switch {
		case statusCode >= 500:
			logger.Error("request failed", fields...)
		case statusCode >= 400:
			logger.Warn("client error", fields...)
		case source == "local":
			logger.Warn("registration kept in local storage", fields...)
		default:
			logger.Info("request completed", fields...)
		}
	}
}

func redactQuery(raw string) string {
	if raw == "" {
		return ""
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return "[unparsable]"
	}
	changed := false
	for _, k := range redactedParams {
		if values.Has(k) {
			values.Set(k, "[redacted]")
			changed = true
		}
	}
	if !changed {
		return raw
	}
	return values.Encode()
}
