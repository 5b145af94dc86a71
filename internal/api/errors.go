package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/gray-logic-interaction/internal/animation"
	"github.com/nerrad567/gray-logic-interaction/internal/control"
	"github.com/nerrad567/gray-logic-interaction/internal/inventory"
)

// Error is the body of every non-2xx response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeNotFound     = "not_found"
	ErrCodeUnauthorized = "unauthorised"
	ErrCodeConflict     = "conflict"
	ErrCodeInternal     = "internal_error"
	ErrCodeValidation   = "validation_error"
	ErrCodeUnavailable  = "service_unavailable"
)

// domainErrors maps sentinel errors to responses, first match wins.
// A locked door (ErrBusy) is a conflict the caller can retry once the
// session ends; an unclassified door never will be, hence 422.
var domainErrors = []struct {
	err    error
	status int
	code   string
}{
	{inventory.ErrDoorNotFound, http.StatusNotFound, ErrCodeNotFound},
	{inventory.ErrRoomNotFound, http.StatusNotFound, ErrCodeNotFound},
	{control.ErrInvalidAction, http.StatusBadRequest, ErrCodeBadRequest},
	{control.ErrInvalidRequest, http.StatusBadRequest, ErrCodeBadRequest},
	{animation.ErrBusy, http.StatusConflict, ErrCodeConflict},
	{animation.ErrInvalidTransition, http.StatusConflict, ErrCodeConflict},
	{animation.ErrUnclassified, http.StatusUnprocessableEntity, ErrCodeValidation},
	{animation.ErrInvalidParams, http.StatusUnprocessableEntity, ErrCodeValidation},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{Status: status, Code: code, Message: message})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

func writeUnavailable(w http.ResponseWriter, message string) {
	writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, message)
}

// writeDomainError writes the response domainErrors assigns to err, or a
// 500 for anything unrecognised.
func writeDomainError(w http.ResponseWriter, err error) {
	for _, m := range domainErrors {
		if errors.Is(err, m.err) {
			writeError(w, m.status, m.code, err.Error())
			return
		}
	}
	writeInternalError(w, err.Error())
}
