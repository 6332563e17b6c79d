package api

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/dihm/leveldiagram/pkg/errors"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps structured error codes onto HTTP statuses. Unknown
// errors become 500s with the message suppressed.
func writeError(w http.ResponseWriter, logger *log.Logger, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)

	if status >= 500 {
		logger.Error("request failed", "err", err)
		writeJSON(w, status, errorBody{
			Code:    string(errors.ErrCodeInternal),
			Message: "internal error",
		})
		return
	}

	logger.Debug("request rejected", "err", err)
	writeJSON(w, status, errorBody{
		Code:    string(code),
		Message: errors.UserMessage(err),
	})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidDiagram,
		errors.ErrCodeInvalidLevel,
		errors.ErrCodeInvalidTransition,
		errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidScale,
		errors.ErrCodeInvalidConfig,
		errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound,
		errors.ErrCodeDocumentNotFound,
		errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
