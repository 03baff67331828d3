package adapthttp

import (
	"net/http"

	"growt/internal/app"
	"growt/internal/domain"
)

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	items, err := s.logs.Dashboard(r.Context(), userFromContext(r).ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	stats, err := s.logs.Stats(r.Context(), userFromContext(r).ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handlePublicLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	tag := r.PathValue("tag")
	items, err := s.logs.PublicLog(r.Context(), tag)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tag": tag, "items": items})
}

func (s *Server) handleChartsAnimal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	tag := r.PathValue("tag")
	days := min(intQuery(r, "days", 90), app.MaxChartDays)
	unit := r.URL.Query().Get("unit")
	if unit == "" {
		unit = domain.UnitKg
	}

	points, err := s.charts.AnimalTrend(r.Context(), userFromContext(r).ID, tag, days, unit)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tag":   tag,
		"days":  days,
		"unit":  unit,
		"items": points,
	})
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var msg domain.ContactMessage
	if err := parseJSON(r, &msg); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.contact.Send(r.Context(), msg); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}
