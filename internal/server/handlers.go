package server

import (
	"net/http"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"version": version,
		"service": "rebound",
	}

	writeJSON(w, http.StatusOK, response, s.log)
}
