package handler

import "net/http"

// HandleHealthz reports liveness. It needs no token and does not touch the
// store or the users API.
func HandleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
