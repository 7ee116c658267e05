package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atenjiha/MAHSA-LEARN/internal/model"
)

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := s.app.ListCourses(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	course, err := s.app.GetCourse(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	var req model.Course
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	course, err := s.app.CreateCourse(r.Context(), req)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, course)
}

func (s *Server) handleUpdateCourse(w http.ResponseWriter, r *http.Request) {
	var req model.Course
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	course, err := s.app.UpdateCourse(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (s *Server) handleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	if err := s.app.DeleteCourse(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.app.Categories(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// Badges

func (s *Server) handleListBadges(w http.ResponseWriter, r *http.Request) {
	badges, err := s.app.ListBadges(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, badges)
}

func (s *Server) handleGetBadge(w http.ResponseWriter, r *http.Request) {
	badge, err := s.app.GetBadge(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, badge)
}

func (s *Server) handleCreateBadge(w http.ResponseWriter, r *http.Request) {
	var req model.Badge
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	badge, err := s.app.CreateBadge(r.Context(), req)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, badge)
}
