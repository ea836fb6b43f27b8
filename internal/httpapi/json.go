package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"teklip/marketplace/internal/apperr"
	"teklip/marketplace/internal/model"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	StatusCode int                `json:"statusCode"`
	Message    string             `json:"message"`
	ErrorCode  string             `json:"errorCode"`
	Errors     []model.FieldError `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, msg string) {
	writeJSON(w, status, errorResponse{StatusCode: status, Message: msg, ErrorCode: code})
}

func statusFor(k apperr.Kind) int {
	switch k {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindBadRequest, apperr.KindConflict:
		return http.StatusBadRequest
	case apperr.KindUnprocessable:
		return http.StatusUnprocessableEntity
	case apperr.KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as an error body. Internal errors are logged with their
// cause; clients only see the code.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	ae := apperr.As(err)
	status := statusFor(ae.Kind)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", chimw.GetReqID(r.Context())),
			zap.String("error_code", ae.Code),
			zap.Error(err),
		)
	}
	writeJSON(w, status, errorResponse{
		StatusCode: status,
		Message:    ae.Message,
		ErrorCode:  ae.Code,
		Errors:     ae.Fields,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return nil
	}
	var mbe *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		return apperr.BadRequest(apperr.CodeBadRequest, "request body is empty")
	case errors.As(err, &mbe):
		return apperr.BadRequest(apperr.CodeBadRequest, "request body too large")
	default:
		return apperr.BadRequest(apperr.CodeBadRequest, "invalid JSON")
	}
}
