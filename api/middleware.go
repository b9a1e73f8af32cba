package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/coreybb/dietlog/auth"
	"github.com/coreybb/dietlog/webutil"
)

// RequestLogger logs one line per request after it completes.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote", r.RemoteAddr),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

// RequireSession resolves the session cookie to a user and stores it on the
// request context. Requests without a cookie, or with a token no user holds, get 401.
func RequireSession(sessions *auth.Service, cookieName string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return webutil.MakeHandler(logger, func(w http.ResponseWriter, r *http.Request) error {
			var token string
			if c, err := r.Cookie(cookieName); err == nil {
				token = c.Value
			}

			user, err := sessions.Resolve(r.Context(), token)
			if err != nil {
				return err
			}
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
			return nil
		})
	}
}

// SetHeader is a middleware to set a response header.
func SetHeader(key, value string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(key, value)
			next.ServeHTTP(w, r)
		})
	}
}
