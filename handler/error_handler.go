package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alqudsguide/backend/pkg/binder"
	"github.com/alqudsguide/backend/pkg/logger"
	"github.com/alqudsguide/backend/pkg/requestid"
	"github.com/alqudsguide/backend/pkg/validator"
)

// ErrorMapper translates a domain error into an HTTPError. It returns false
// for errors it does not know.
type ErrorMapper func(err error) (HTTPError, bool)

// ErrorInfo is the classified form of an error.
type ErrorInfo struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string][]string
	LogLevel   slog.Level
}

func classifyError(err error, mappers []ErrorMapper) ErrorInfo {
	info := ErrorInfo{
		StatusCode: ErrInternal.Code,
		Code:       ErrInternal.Key,
		Message:    ErrInternal.Message,
	}

	var (
		httpErr HTTPError
		verrs   validator.ValidationErrors
	)
	switch {
	case errors.As(err, &verrs):
		info.StatusCode = http.StatusBadRequest
		info.Code = "validation_error"
		info.Message = "validation failed"
		info.Details = verrs.Fields()
	case binder.IsBindingError(err):
		info.StatusCode = http.StatusBadRequest
		info.Code = "invalid_request"
		info.Message = err.Error()
		if errors.Is(err, binder.ErrBodyTooLarge) {
			info.StatusCode = http.StatusRequestEntityTooLarge
		}
	default:
		mapped := false
		for _, m := range mappers {
			if h, ok := m(err); ok {
				httpErr, mapped = h, true
				break
			}
		}
		if mapped || errors.As(err, &httpErr) {
			info.StatusCode = httpErr.Code
			info.Code = httpErr.Key
			info.Message = httpErr.Error()
		}
	}

	switch {
	case info.StatusCode >= http.StatusInternalServerError:
		info.LogLevel = slog.LevelError
	case info.StatusCode == http.StatusTooManyRequests:
		info.LogLevel = slog.LevelWarn
	default:
		info.LogLevel = slog.LevelInfo
	}
	return info
}

// writeError renders the envelope. The request id goes into meta so a 500
// can be correlated with the server log.
func writeError(w http.ResponseWriter, r *http.Request, info ErrorInfo) {
	body := JSONResponse{
		Error: &ErrorDetail{
			Code:    info.Code,
			Message: info.Message,
			Details: info.Details,
		},
	}
	if id := requestid.FromContext(r.Context()); id != "" {
		body.Meta = map[string]any{"requestId": id}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(info.StatusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError classifies err and writes the envelope. Middleware that runs
// outside Wrap uses it to answer in the same format.
func WriteError(w http.ResponseWriter, r *http.Request, err error, mappers ...ErrorMapper) {
	writeError(w, r, classifyError(err, mappers))
}

// NewErrorHandler returns the JSON error handler. Server errors are logged
// with the underlying error; clients only see the generic message.
func NewErrorHandler(log *slog.Logger, mappers ...ErrorMapper) ErrorHandler[Context] {
	if log == nil {
		log = logger.Discard()
	}
	log = log.With(logger.Component("error_handler"))

	return func(ctx Context, err error) {
		r := ctx.Request()
		info := classifyError(err, mappers)

		log.LogAttrs(r.Context(), info.LogLevel, "request failed",
			logger.RequestID(requestid.FromContext(r.Context())),
			logger.Error(err),
			slog.Int("status", info.StatusCode),
			slog.String("code", info.Code),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)

		writeError(ctx.ResponseWriter(), r, info)
	}
}
