package server

import (
	"encoding/json"
	"net/http"

	errs "github.com/matzehuels/trackgrid/pkg/errors"
)

type errorBody struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// writeError maps err to its HTTP status. Errors without a code are
// reported as internal errors without leaking their text.
func writeError(w http.ResponseWriter, err error) {
	code := errs.GetCode(err)
	msg := errs.UserMessage(err)
	if code == "" {
		code = errs.ErrCodeInternal
		msg = "internal error"
	}
	writeJSON(w, errs.HTTPStatus(code), errorBody{Code: code, Message: msg})
}

func writeArtifact(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func errNotFound(format string, args ...any) error {
	return errs.New(errs.ErrCodeNotFound, format, args...)
}
