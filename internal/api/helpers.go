package api

import (
	"encoding/json"
	"log"
	"net/http"
)

// WriteJSONResponse writes the payload as JSON. It returns false if
// encoding fails, in which case the error has already been logged and a
// partial body may have been written.
func WriteJSONResponse(w http.ResponseWriter, payload any) bool {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("API: Failed to encode JSON response: %v", err)
		return false
	}
	return true
}

// WriteMutationResult maps a store mutation outcome onto HTTP: unknown
// ids (applied == false) become 404, persistence failures become 500,
// and success reports {"applied": true}.
func WriteMutationResult(w http.ResponseWriter, applied bool, err error) {
	if err != nil {
		log.Printf("API: Mutation failed to persist: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if !applied {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	WriteJSONResponse(w, map[string]bool{"applied": true})
}
