package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/atenjiha/MAHSA-LEARN/internal/app"
	"github.com/atenjiha/MAHSA-LEARN/internal/auth"
	"github.com/atenjiha/MAHSA-LEARN/internal/config"
	"github.com/atenjiha/MAHSA-LEARN/internal/model"
)

const (
	apiVersion     = "1.0.0"
	maxImportBytes = 1 << 20
)

type Server struct {
	cfg config.Config
	app *app.Service
}

func NewServer(cfg config.Config, service *app.Service) *Server {
	return &Server{cfg: cfg, app: service}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if s.cfg.StoreTimeout > 0 {
		r.Use(middleware.Timeout(s.cfg.StoreTimeout))
	}
	r.Use(cors.New(cors.Options{
		AllowedOrigins: s.cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler)

	r.Get("/", s.handleWelcome)
	r.Get("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "OK", "message": "Server is running"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/auth/login", s.handleLogin)
	r.Post("/api/auth/reset-pin", s.handleResetPIN)
	r.With(s.authMiddleware).Get("/api/me", s.handleGetMe)
	r.With(s.authMiddleware).Put("/api/me/pin", s.handleChangePIN)

	r.Route("/api/users", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.With(s.requireEducator).Get("/", s.handleListUsers)
		r.With(s.requireEducator).Post("/", s.handleCreateUser)
		r.With(s.requireEducator).Post("/import", s.handleImportUsers)
		r.With(s.requireEducator).Get("/export", s.handleExportUsers)
		r.With(s.requireEducator).Get("/{id}", s.handleGetUser)
		r.With(s.requireEducator).Put("/{id}", s.handleUpdateUser)
		r.With(s.requireEducator).Delete("/{id}", s.handleDeleteUser)
		r.With(s.requireSelfOrEducator).Post("/{id}/quiz-attempts", s.handleRecordQuizAttempt)
		r.With(s.requireSelf).Post("/{id}/completions", s.handleCompleteCourse)
	})

	r.Route("/api/courses", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/", s.handleListCourses)
		r.With(s.requireEducator).Post("/", s.handleCreateCourse)
		r.Get("/{id}", s.handleGetCourse)
		r.With(s.requireEducator).Put("/{id}", s.handleUpdateCourse)
		r.With(s.requireEducator).Delete("/{id}", s.handleDeleteCourse)
		r.Post("/{id}/play", s.handleStartCourse)
	})
	r.With(s.authMiddleware).Get("/api/categories", s.handleCategories)

	r.Route("/api/badges", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/", s.handleListBadges)
		r.With(s.requireEducator).Post("/", s.handleCreateBadge)
		r.Get("/{id}", s.handleGetBadge)
	})

	r.Route("/api/play/{sessionId}", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/", s.handlePlayerState)
		r.Post("/answer", s.handleAnswerQuiz)
		r.Post("/next", s.handleNextSlide)
		r.Delete("/", s.handleClosePlayer)
	})

	r.With(s.authMiddleware).Get("/api/leaderboard", s.handleLeaderboard)
	r.With(s.authMiddleware).Get("/api/dashboard", s.handleDashboard)
	r.With(s.authMiddleware, s.requireEducator).Get("/api/compliance", s.handleCompliance)

	return r
}

func (s *Server) handleWelcome(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Welcome to MAHSA Backend API",
		"version": apiVersion,
		"endpoints": map[string]string{
			"users":       "/api/users",
			"courses":     "/api/courses",
			"badges":      "/api/badges",
			"health":      "/api/health",
			"auth":        "/api/auth/login",
			"leaderboard": "/api/leaderboard",
			"dashboard":   "/api/dashboard",
			"compliance":  "/api/compliance",
		},
	})
}

// Auth

type claimsKey struct{}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing_token")
			return
		}
		claims, err := auth.ParseToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimsFromContext(ctx context.Context) *auth.Claims {
	value := ctx.Value(claimsKey{})
	claims, _ := value.(*auth.Claims)
	return claims
}

func (s *Server) requireEducator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !claimsFromContext(r.Context()).IsEducator() {
			writeError(w, http.StatusForbidden, "educator_only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireSelf admits only the user named by the {id} path parameter.
func (s *Server) requireSelf(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFromContext(r.Context())
		if claims == nil || claims.UserID != chi.URLParam(r, "id") {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireSelfOrEducator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFromContext(r.Context())
		if claims == nil || (claims.UserID != chi.URLParam(r, "id") && !claims.IsEducator()) {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Errors

func statusFor(code string) int {
	switch code {
	case app.CodeInvalidRequest, app.CodeValidationFailed, app.CodeInvalidPIN,
		app.CodeNotAQuizSlide, app.CodeEmptyCourse:
		return http.StatusBadRequest
	case app.CodeInvalidCredentials:
		return http.StatusUnauthorized
	case app.CodeCannotDeleteSelf:
		return http.StatusForbidden
	case app.CodeStaffNotFound, app.CodeUserNotFound, app.CodeCourseNotFound,
		app.CodeBadgeNotFound, app.CodeSessionNotFound:
		return http.StatusNotFound
	case app.CodeDuplicateID, app.CodePlayerClosed:
		return http.StatusConflict
	case app.CodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type validationErrorResponse struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func writeAppError(w http.ResponseWriter, err error) {
	code := app.ErrorCode(err)
	status := statusFor(code)
	var verr *model.ValidationError
	if code == app.CodeValidationFailed && errors.As(err, &verr) {
		writeJSON(w, status, validationErrorResponse{Error: code, Field: verr.Field, Message: verr.Message})
		return
	}
	writeError(w, status, code)
}

// Helpers

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
