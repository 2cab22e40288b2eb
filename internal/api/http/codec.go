package http

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	jsoniter "github.com/json-iterator/go"

	"library-circulation/internal/domain"
	"library-circulation/internal/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxBodyBytes = 1 << 20

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
	RequestID string `json:"request_id,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type listResponse[T any] struct {
	Items    []T   `json:"items"`
	Total    int32 `json:"total"`
	Page     int32 `json:"page"`
	PageSize int32 `json:"page_size"`
}

type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

type validatable interface {
	Validate() error
}

// decode reads a JSON body into dst and validates it.
func decode(w http.ResponseWriter, r *http.Request, dst validatable) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return badRequest{msg: "malformed request body: " + err.Error()}
	}
	return dst.Validate()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeErrorCode(w http.ResponseWriter, r *http.Request, status int, code, msg string, retryable bool) {
	writeJSON(w, status, errorResponse{Error: errorBody{
		Code:      code,
		Message:   msg,
		Retryable: retryable,
		RequestID: RequestIDFromContext(r.Context()),
	}})
}

// writeError maps an error to its HTTP status. Service errors carry a kind;
// validation errors are 400; anything else is a 500 whose detail is only logged.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verrs validation.Errors
		bad   badRequest
		derr  *domain.Error
	)
	switch {
	case errors.As(err, &verrs), errors.As(err, &bad):
		writeErrorCode(w, r, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error(), false)
	case errors.As(err, &derr):
		switch derr.Kind {
		case domain.KindInvalidState:
			writeErrorCode(w, r, http.StatusConflict, string(derr.Kind), err.Error(), false)
		case domain.KindNotFound:
			writeErrorCode(w, r, http.StatusNotFound, string(derr.Kind), err.Error(), false)
		case domain.KindConflict:
			writeErrorCode(w, r, http.StatusConflict, string(derr.Kind), "concurrent modification, retry the request", true)
		default:
			logger.ErrorContext(r.Context(), "Store failure", "request_id", RequestIDFromContext(r.Context()), "error", err)
			writeErrorCode(w, r, http.StatusInternalServerError, string(domain.KindStoreFailure), "internal error", false)
		}
	default:
		logger.ErrorContext(r.Context(), "Unhandled error", "request_id", RequestIDFromContext(r.Context()), "error", err)
		writeErrorCode(w, r, http.StatusInternalServerError, "INTERNAL", "internal error", false)
	}
}
