package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atenjiha/MAHSA-LEARN/internal/app"
	"github.com/atenjiha/MAHSA-LEARN/internal/model"
)

// Educator routes return the full user record, PIN included, which the
// roster screens edit directly.

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.app.ListUsers(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.app.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req model.User
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	user, err := s.app.CreateUser(r.Context(), req)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

type updateUserRequest struct {
	Name             *string     `json:"name"`
	PIN              *string     `json:"pin"`
	Role             *model.Role `json:"role"`
	Avatar           *string     `json:"avatar"`
	XP               *int        `json:"xp"`
	Streak           *int        `json:"streak"`
	Badges           []string    `json:"badges"`
	CompletedCourses []string    `json:"completedCourses"`
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	user, err := s.app.UpdateUser(r.Context(), chi.URLParam(r, "id"), app.UserUpdate{
		Name:             req.Name,
		PIN:              req.PIN,
		Role:             req.Role,
		Avatar:           req.Avatar,
		XP:               req.XP,
		Streak:           req.Streak,
		Badges:           req.Badges,
		CompletedCourses: req.CompletedCourses,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if err := s.app.DeleteUser(r.Context(), claims.UserID, chi.URLParam(r, "id")); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleImportUsers(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxImportBytes)
	summary, err := s.app.ImportUsers(r.Context(), body)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleExportUsers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="mahsa_users.csv"`)
	if err := s.app.ExportUsers(r.Context(), w); err != nil {
		writeAppError(w, err)
	}
}

func (s *Server) handleRecordQuizAttempt(w http.ResponseWriter, r *http.Request) {
	var req model.QuizAttempt
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	user, err := s.app.RecordQuizAttempt(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, app.ProfileOf(user))
}

type completionRequest struct {
	CourseID string `json:"courseId"`
	EarnedXP int    `json:"earnedXp"`
}

type completionResponse struct {
	User          app.Profile `json:"user"`
	Applied       bool        `json:"applied"`
	EarnedXP      int         `json:"earnedXp"`
	GrantedBadges []string    `json:"grantedBadges"`
}

func (s *Server) handleCompleteCourse(w http.ResponseWriter, r *http.Request) {
	var req completionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.CourseID == "" {
		writeError(w, http.StatusBadRequest, "missing_course_id")
		return
	}
	result, err := s.app.CompleteCourse(r.Context(), chi.URLParam(r, "id"), req.CourseID, req.EarnedXP)
	if err != nil {
		writeAppError(w, err)
		return
	}
	granted := result.GrantedBadges
	if granted == nil {
		granted = []string{}
	}
	writeJSON(w, http.StatusOK, completionResponse{
		User:          app.ProfileOf(result.User),
		Applied:       result.Applied,
		EarnedXP:      result.EarnedXP,
		GrantedBadges: granted,
	})
}
