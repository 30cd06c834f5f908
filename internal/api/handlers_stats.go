package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	if s.model == nil || s.stats == nil {
		jsonError(w, "llm stats unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"model": s.model.Model(),
		"stats": s.stats.Snapshot(),
	})
}

func (s *Server) handleCheckServices(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := map[string]any{"lm_studio": true, "ready": true}
	if err := s.model.HealthCheck(ctx); err != nil {
		s.log.Warn("summarization server check failed", "error", err)
		resp["lm_studio"] = false
		resp["ready"] = false
		resp["error"] = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.cfg)
}
