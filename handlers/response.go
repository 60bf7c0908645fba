// handlers/response.go
package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// respondWithJSON writes payload as the JSON response body.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, `{"error":"Failed to marshal JSON response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
