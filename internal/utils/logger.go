package utils

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "request_id"

	requestLoggerKey = "request_logger"
)

// Logger is the handler side logging surface. Services take a *slog.Logger
// directly; Slog hands them the same sink.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	With(args ...any) Logger
	// LogError logs err under the "error" key at error level.
	LogError(err error, msg string, args ...any)
	Slog() *slog.Logger
}

type slogLogger struct {
	*slog.Logger
}

func NewSlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return slogLogger{Logger: logger}
}

// NewLogger writes JSON at info level in production and text at debug level
// everywhere else.
func NewLogger(environment string) Logger {
	if environment == "production" {
		return NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})))
	}
	return NewSlogLogger(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))
}

func (l slogLogger) With(args ...any) Logger {
	return slogLogger{Logger: l.Logger.With(args...)}
}

func (l slogLogger) LogError(err error, msg string, args ...any) {
	l.Logger.Error(msg, append([]any{"error", err}, args...)...)
}

func (l slogLogger) Slog() *slog.Logger {
	return l.Logger
}

// ToSlogLogger unwraps logger for the service layer
func ToSlogLogger(logger Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger.Slog()
}

func levelForStatus(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// ContextLogger tags every request with an id, echoed back in the response,
// and stores a logger carrying it for handlers.
func ContextLogger(logger Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)
		c.Set(RequestIDKey, requestID)
		c.Set(requestLoggerKey, logger.With(RequestIDKey, requestID))
		c.Next()
	}
}

// LoggerMiddleware writes one line per finished request. Client errors are
// logged as warnings and server errors as errors.
func LoggerMiddleware(logger Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		GetLoggerFromContext(c, logger).Slog().Log(c.Request.Context(), levelForStatus(status), "Request completed",
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
		)
	}
}

// GetLoggerFromContext returns the request logger stored by ContextLogger, or
// fallback outside of it.
func GetLoggerFromContext(c *gin.Context, fallback Logger) Logger {
	if v, ok := c.Get(requestLoggerKey); ok {
		if logger, ok := v.(Logger); ok {
			return logger
		}
	}
	return fallback
}
