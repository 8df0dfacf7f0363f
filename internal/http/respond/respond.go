// Package respond writes the API's JSON envelopes.
package respond

import (
	"encoding/json"
	"net/http"
)

// OK writes {"success": true, ...fields}.
func OK(w http.ResponseWriter, status int, fields map[string]any) {
	body := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["success"] = true
	write(w, status, body)
}

// Error writes {"success": false, "error": msg}.
func Error(w http.ResponseWriter, status int, msg string) {
	write(w, status, map[string]any{"success": false, "error": msg})
}

func write(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
