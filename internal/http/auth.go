package http

import (
	"net/http"
	"strings"

	"github.com/atenjiha/MAHSA-LEARN/internal/app"
	"github.com/atenjiha/MAHSA-LEARN/internal/auth"
)

type loginRequest struct {
	ID  string `json:"id"`
	PIN string `json:"pin"`
}

type loginResponse struct {
	AccessToken string      `json:"access_token"`
	User        app.Profile `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req.ID = strings.TrimSpace(req.ID)
	if req.ID == "" || req.PIN == "" {
		writeError(w, http.StatusBadRequest, "missing_credentials")
		return
	}

	user, err := s.app.Login(r.Context(), req.ID, req.PIN)
	if err != nil {
		writeAppError(w, err)
		return
	}
	token, err := auth.NewAccessToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.AccessTokenTTL, auth.Claims{
		UserID: user.ID,
		Role:   string(user.Role),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token_error")
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{AccessToken: token, User: app.ProfileOf(user)})
}

type resetPINRequest struct {
	ID  string `json:"id"`
	PIN string `json:"pin"`
}

func (s *Server) handleResetPIN(w http.ResponseWriter, r *http.Request) {
	var req resetPINRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	loginID, err := s.app.ResetPIN(r.Context(), req.ID, req.PIN)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"loginId": loginID})
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	user, err := s.app.GetUser(r.Context(), claims.UserID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app.ProfileOf(user))
}

type changePINRequest struct {
	PIN string `json:"pin"`
}

func (s *Server) handleChangePIN(w http.ResponseWriter, r *http.Request) {
	var req changePINRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	claims := claimsFromContext(r.Context())
	user, err := s.app.ChangePIN(r.Context(), claims.UserID, req.PIN)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app.ProfileOf(user))
}
