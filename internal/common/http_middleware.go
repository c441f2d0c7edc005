package common

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type HttpContextKey string

const (
	HttpContextRequestId HttpContextKey = "http-request-id"
	HttpContextLogger    HttpContextKey = "http-logger"
)

type HttpRequestLogger func(LogLevel, string)

func GetRequestLoggerMiddleware(serviceLogs chan<- ServiceLog) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			var requestId string
			if r.Header.Get("X-Trace-Id") != "" {
				requestId = r.Header.Get("X-Trace-Id")
			} else {
				requestId = uuid.New().String()
			}
			requestContext := context.WithValue(r.Context(), HttpContextRequestId, requestId)
			requestContext = context.WithValue(requestContext, HttpContextLogger, HttpRequestLogger(func(level LogLevel, message string) {
				serviceLogs <- ServiceLogf(level, "req[%s] %s", requestId, message)
			}))
			serviceLogs <- ServiceLogf(LogLevelDebug, "req[%s] received %s at %s", requestId, r.Method, r.RequestURI)
			next.ServeHTTP(w, r.WithContext(requestContext))
			serviceLogs <- ServiceLogf(LogLevelInfo, "req[%s] [%s %s %s %s] from remote[%s] completed in %v", requestId, r.Proto, r.Host, r.Method, r.RequestURI, r.RemoteAddr, time.Since(start))
		})
	}
}
