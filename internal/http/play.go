package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atenjiha/MAHSA-LEARN/internal/app"
)

func (s *Server) handleStartCourse(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	view, err := s.app.StartCourse(r.Context(), claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handlePlayerState(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	view, err := s.app.PlayerState(r.Context(), claims.UserID, chi.URLParam(r, "sessionId"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type answerRequest struct {
	Option *int `json:"option"`
}

func (s *Server) handleAnswerQuiz(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(r, &req); err != nil || req.Option == nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	claims := claimsFromContext(r.Context())
	result, err := s.app.AnswerQuiz(r.Context(), claims.UserID, chi.URLParam(r, "sessionId"), *req.Option)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type nextResponse struct {
	Player        app.PlayerView `json:"player"`
	Completed     bool           `json:"completed"`
	User          *app.Profile   `json:"user,omitempty"`
	EarnedXP      int            `json:"earnedXp,omitempty"`
	GrantedBadges []string       `json:"grantedBadges,omitempty"`
}

func (s *Server) handleNextSlide(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	result, err := s.app.Next(r.Context(), claims.UserID, chi.URLParam(r, "sessionId"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	resp := nextResponse{Player: result.Player, Completed: result.Completed}
	if result.Completion != nil {
		profile := app.ProfileOf(result.Completion.User)
		resp.User = &profile
		resp.EarnedXP = result.Completion.EarnedXP
		resp.GrantedBadges = result.Completion.GrantedBadges
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClosePlayer(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if err := s.app.ClosePlayer(r.Context(), claims.UserID, chi.URLParam(r, "sessionId")); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Views

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	board, err := s.app.Leaderboard(r.Context(), claims.UserID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	dashboard, err := s.app.Dashboard(r.Context(), claims.UserID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func (s *Server) handleCompliance(w http.ResponseWriter, r *http.Request) {
	compliance, err := s.app.Compliance(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, compliance)
}
