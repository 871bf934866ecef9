package web

import (
	"encoding/json"
	"net/http"

	"github.com/hpungsan/bestiary/internal/errors"
)

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderError writes err as {"error": message, "code": code, "status": status}.
// Unknown errors become INTERNAL.
func renderError(w http.ResponseWriter, err error) {
	bErr := errors.As(err)
	renderJSON(w, bErr.Status, map[string]any{
		"error":  bErr.Message,
		"code":   string(bErr.Code),
		"status": bErr.Status,
	})
}
