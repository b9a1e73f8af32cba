package webutil

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/coreybb/dietlog/models"
)

// AppHandler represents a handler function that returns an error.
type AppHandler func(w http.ResponseWriter, r *http.Request) error

// MakeHandler adapts an AppHandler to the standard http.HandlerFunc signature.
// A returned error is logged and rendered as a JSON error body, unless the
// handler already started the response.
func MakeHandler(logger *zap.Logger, handler AppHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		err := handler(ww, r)
		if err == nil {
			return
		}

		httpErr := toHTTPError(err)
		level := zapcore.WarnLevel
		if httpErr.Code >= http.StatusInternalServerError {
			level = zapcore.ErrorLevel
		}
		logger.Log(level, "request failed",
			zap.Int("code", httpErr.Code),
			zap.String("msg", httpErr.Message),
			zap.String("path", r.URL.Path),
			zap.String("method", r.Method),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)

		if ww.Status() != 0 {
			logger.Warn("handler returned error after writing response header",
				zap.String("path", r.URL.Path),
				zap.String("method", r.Method),
			)
			return
		}

		RespondWithError(ww, httpErr.Code, httpErr.Message)
	}
}

// toHTTPError classifies err. Explicit HTTPErrors win, then domain sentinels;
// everything else is an opaque 500.
func toHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr
	case errors.Is(err, models.ErrUnauthenticated):
		return ErrUnauthorized("")
	case errors.Is(err, models.ErrForbidden):
		return ErrForbidden("Not allowed for this user")
	case errors.Is(err, models.ErrNotFound), errors.Is(err, sql.ErrNoRows):
		return ErrNotFound("")
	case errors.Is(err, models.ErrValidation):
		return ErrBadRequest(err.Error())
	case errors.Is(err, models.ErrConflict):
		return ErrConflict("")
	default:
		return ErrInternalServer("")
	}
}
