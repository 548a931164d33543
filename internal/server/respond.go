package server

import (
	"encoding/json"
	"net/http"
)

type errorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) // client probably disconnected
}

func writeError(w http.ResponseWriter, status int, msg, kind, reqID string) {
	writeJSON(w, status, errorResponse{Error: msg, Kind: kind, RequestID: reqID})
}

func badRequest(w http.ResponseWriter, msg, reqID string) {
	writeError(w, http.StatusBadRequest, msg, "validation", reqID)
}
