package middleware

import (
	"encoding/json"
	"net/http"
)

// writeJSONMessage writes a {"message": ...} body with the given status
func writeJSONMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
