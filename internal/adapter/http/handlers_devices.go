package adapthttp

import (
	"errors"
	"net/http"
	"strings"

	"growt/internal/app"
)

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)

	switch r.Method {
	case http.MethodGet:
		items, err := s.devices.List(r.Context(), user.ID)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})

	case http.MethodPost:
		var body struct {
			Serial string `json:"serial"`
			Name   string `json:"name"`
		}
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		d, err := s.devices.Register(r.Context(), user.ID, body.Serial, body.Name)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, d)

	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleDeviceApprove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	d, token, err := s.devices.Approve(r.Context(), userFromContext(r).ID, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	// The token is shown once; it is not stored.
	writeJSON(w, http.StatusOK, map[string]any{"device": d, "token": token})
}

func (s *Server) handleDeviceDeactivate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	d, err := s.devices.Deactivate(r.Context(), userFromContext(r).ID, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"device": d})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || strings.TrimSpace(bearer) == "" {
		writeError(w, http.StatusUnauthorized, errors.New("missing device token"))
		return
	}

	var req app.IngestRequest
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	reading, err := s.ingest.Submit(r.Context(), strings.TrimSpace(bearer), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, reading)
}
