package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "conversion stats unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"queue_depth": s.orchestrator.QueueDepth(),
		"conversions": s.stats.Snapshot(),
	})
}

type ruleStatus struct {
	Resource string `json:"resource"`
	Path     string `json:"path,omitempty"`
	State    string `json:"state"`
	Degraded bool   `json:"degraded"`
	Reason   string `json:"reason,omitempty"`
}

// handleRules reports how each rules resource loaded.
func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	diags := s.rules.Diagnostics()
	out := make([]ruleStatus, 0, len(diags))
	for _, d := range diags {
		out = append(out, ruleStatus{
			Resource: d.Resource,
			Path:     d.Path,
			State:    string(d.State),
			Degraded: d.Degraded(),
			Reason:   d.Reason(),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"resources": out})
}
