package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Handlers only — routes are mounted in main.go.

var validate = validator.New()

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// decodeValid decodes the body into dst and runs struct validation.
// Returns false after writing the error response.
func decodeValid(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		http.Error(w, "validation: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}
