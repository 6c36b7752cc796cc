package handler

import "net/http"

// VersionResponse represents the deployed build information
type VersionResponse struct {
	Version string `json:"version"`
	Service string `json:"service"`
}

// HandleVersion reports the deployed version for rollout verification
func HandleVersion(service, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, VersionResponse{Version: version, Service: service})
	}
}
