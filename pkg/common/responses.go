package common

import (
	"encoding/json"
	"net/http"

	apperrors "retrogames/pkg/errors"
)

// DataResponse wraps a list or record returned to the client
type DataResponse struct {
	Data interface{} `json:"data"`
}

// MessageResponse carries a human readable outcome
type MessageResponse struct {
	Message string      `json:"message"`
	Schema  interface{} `json:"schema,omitempty"`
}

// ErrorResponse is the body of infrastructure failures
type ErrorResponse struct {
	Error string `json:"error"`
}

// RespondJSON sends body as JSON with the given status
func RespondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// RespondData sends {"data": data}
func RespondData(w http.ResponseWriter, status int, data interface{}) {
	RespondJSON(w, status, DataResponse{Data: data})
}

// RespondMessage sends {"message": message}
func RespondMessage(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, MessageResponse{Message: message})
}

// RespondError maps err onto a response. Client errors keep their message;
// anything else becomes a 500 with a sanitized message and never the cause.
func RespondError(w http.ResponseWriter, err error) {
	appErr := apperrors.GetAppError(err)
	if appErr == nil {
		RespondJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	status := apperrors.StatusOf(appErr)
	if apperrors.IsClientError(appErr) {
		RespondMessage(w, status, appErr.Message)
		return
	}
	RespondJSON(w, status, ErrorResponse{Error: appErr.Message})
}
