package adapthttp

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path"

	"growt/internal/app"
)

func (s *Server) handleAnimals(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)

	switch r.Method {
	case http.MethodGet:
		items, err := s.animals.List(r.Context(), user.ID)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})

	case http.MethodPost:
		var in app.AnimalInput
		if err := parseJSON(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		a, err := s.animals.Create(r.Context(), user.ID, in)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, a)

	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleAnimal(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)
	id := r.PathValue("id")

	switch r.Method {
	case http.MethodGet:
		a, err := s.animals.Get(r.Context(), user.ID, id)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, a)

	case http.MethodPut:
		var in app.AnimalInput
		if err := parseJSON(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		a, err := s.animals.Update(r.Context(), user.ID, id, in)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, a)

	case http.MethodDelete:
		if err := s.animals.Delete(r.Context(), user.ID, id); err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleAnimalPublic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var body struct {
		Public bool `json:"public"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	a, err := s.animals.SetPublic(r.Context(), userFromContext(r).ID, r.PathValue("id"), body.Public)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// multipartOverhead is the allowance for form boundaries and headers on
// top of the photo itself.
const multipartOverhead = 64 << 10

func (s *Server) handleAnimalPhoto(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, app.MaxPhotoBytes+multipartOverhead)
	if err := r.ParseMultipartForm(app.MaxPhotoBytes + multipartOverhead); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid upload: %w", err))
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("photo field is required"))
		return
	}
	defer file.Close() //nolint:errcheck

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mime.TypeByExtension(path.Ext(header.Filename))
	}

	a, err := s.animals.UploadPhoto(r.Context(), userFromContext(r).ID, r.PathValue("id"), header.Filename, contentType, file, header.Size)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
