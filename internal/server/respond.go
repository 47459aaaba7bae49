package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/matzehuels/geoset/pkg/errors"
)

// errorBody is the JSON error response.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorBody{
		Error: errors.UserMessage(err),
		Code:  string(errors.GetCode(err)),
	})
}

// statusFor maps an error code to an HTTP status. Backend failures caused
// by bad input are the client's fault.
func statusFor(err error) int {
	code := errors.GetCode(err)
	if code == errors.ErrCodeExportBackend {
		if inner := innerCode(err); inner != "" {
			code = inner
		}
	}
	switch {
	case code == errors.ErrCodeSessionNotFound, code == errors.ErrCodeNotFound:
		return http.StatusNotFound
	case strings.HasPrefix(string(code), "INVALID_"),
		code == errors.ErrCodeSameTier, code == errors.ErrCodeNonAdjacentTier:
		return http.StatusUnprocessableEntity
	case code == errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case code == errors.ErrCodeExportBackend, code == errors.ErrCodeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// innerCode returns the code of the first coded error below the outermost.
func innerCode(err error) errors.Code {
	var outer *errors.Error
	if !stderrors.As(err, &outer) || outer.Cause == nil {
		return ""
	}
	return errors.GetCode(outer.Cause)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body: %v", err)
	}
	return nil
}
