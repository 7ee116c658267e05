package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/atenjiha/MAHSA-LEARN/internal/app"
	"github.com/atenjiha/MAHSA-LEARN/internal/auth"
	"github.com/atenjiha/MAHSA-LEARN/internal/config"
	"github.com/atenjiha/MAHSA-LEARN/internal/repository"
	"github.com/atenjiha/MAHSA-LEARN/internal/seed"
	"github.com/atenjiha/MAHSA-LEARN/internal/sessions"
	"github.com/atenjiha/MAHSA-LEARN/internal/store"
)

const (
	nurseID    = "12345"
	educatorID = "admin"
)

func newTestApp(t *testing.T) (*httptest.Server, config.Config) {
	t.Helper()
	cfg := config.Config{
		HTTPAddr:           ":0",
		JWTSecret:          "test-secret",
		JWTIssuer:          "test-issuer",
		AccessTokenTTL:     15 * time.Minute,
		CORSAllowedOrigins: []string{"*"},
	}
	repo := repository.NewStore(store.NewMemory())
	if err := seed.Load(context.Background(), repo, seed.Default(time.Now()), true); err != nil {
		t.Fatalf("seed error: %v", err)
	}
	server := NewServer(cfg, app.NewService(repo, sessions.NewMemory(time.Hour)))
	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)
	return ts, cfg
}

func TestWelcomeAndHealth(t *testing.T) {
	ts, _ := newTestApp(t)

	resp := doReq(t, http.MethodGet, ts.URL+"/", "", nil)
	var welcome struct {
		Message   string            `json:"message"`
		Version   string            `json:"version"`
		Endpoints map[string]string `json:"endpoints"`
	}
	decodeBody(t, resp, &welcome)
	if welcome.Message != "Welcome to MAHSA Backend API" || welcome.Endpoints["health"] != "/api/health" {
		t.Fatalf("unexpected welcome: %+v", welcome)
	}

	resp = doReq(t, http.MethodGet, ts.URL+"/api/health", "", nil)
	var health map[string]string
	decodeBody(t, resp, &health)
	if resp.StatusCode != http.StatusOK || health["status"] != "OK" {
		t.Fatalf("unexpected health %d %v", resp.StatusCode, health)
	}
}

func TestLogin(t *testing.T) {
	ts, cfg := newTestApp(t)

	resp := doReq(t, http.MethodPost, ts.URL+"/api/auth/login", "", map[string]string{"id": nurseID, "pin": "0000"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	resp = doReq(t, http.MethodPost, ts.URL+"/api/auth/login", "", map[string]string{"id": nurseID, "pin": "1234"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var login struct {
		AccessToken string                 `json:"access_token"`
		User        map[string]interface{} `json:"user"`
	}
	decodeBody(t, resp, &login)
	if _, leaked := login.User["pin"]; leaked {
		t.Fatalf("login response must not include the pin")
	}
	claims, err := auth.ParseToken(cfg.JWTSecret, cfg.JWTIssuer, login.AccessToken)
	if err != nil || claims.UserID != nurseID || claims.Role != "Nurse" {
		t.Fatalf("unexpected token claims %+v err %v", claims, err)
	}

	resp = doReq(t, http.MethodGet, ts.URL+"/api/me", login.AccessToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from /api/me, got %d", resp.StatusCode)
	}
}

func TestResetPINThenLogin(t *testing.T) {
	ts, _ := newTestApp(t)

	resp := doReq(t, http.MethodPost, ts.URL+"/api/auth/reset-pin", "", map[string]string{"id": "00000", "pin": "4321"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown staff, got %d", resp.StatusCode)
	}

	resp = doReq(t, http.MethodPost, ts.URL+"/api/auth/reset-pin", "", map[string]string{"id": nurseID, "pin": "12a4"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid pin, got %d", resp.StatusCode)
	}

	resp = doReq(t, http.MethodPost, ts.URL+"/api/auth/reset-pin", "", map[string]string{"id": nurseID, "pin": "4321"})
	var reset map[string]string
	decodeBody(t, resp, &reset)
	if reset["loginId"] != nurseID {
		t.Fatalf("expected loginId %s, got %v", nurseID, reset)
	}

	resp = doReq(t, http.MethodPost, ts.URL+"/api/auth/login", "", map[string]string{"id": nurseID, "pin": "4321"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected login with new pin, got %d", resp.StatusCode)
	}
}

func TestEducatorOnlyRoutes(t *testing.T) {
	ts, cfg := newTestApp(t)
	nurseToken := mustToken(t, cfg, nurseID, "Nurse")
	educatorToken := mustToken(t, cfg, educatorID, "Educator")

	resp := doReq(t, http.MethodGet, ts.URL+"/api/users", "", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	resp = doReq(t, http.MethodGet, ts.URL+"/api/users", nurseToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for nurse, got %d", resp.StatusCode)
	}

	resp = doReq(t, http.MethodGet, ts.URL+"/api/users", educatorToken, nil)
	var users []map[string]interface{}
	decodeBody(t, resp, &users)
	if resp.StatusCode != http.StatusOK || len(users) != 4 {
		t.Fatalf("expected 4 users, got %d (%d)", len(users), resp.StatusCode)
	}

	resp = doReq(t, http.MethodGet, ts.URL+"/api/compliance", nurseToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 on compliance for nurse, got %d", resp.StatusCode)
	}

	resp = doReq(t, http.MethodDelete, ts.URL+"/api/users/"+educatorID, educatorToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 deleting self, got %d", resp.StatusCode)
	}
}

func TestCreateUserValidation(t *testing.T) {
	ts, cfg := newTestApp(t)
	educatorToken := mustToken(t, cfg, educatorID, "Educator")

	resp := doReq(t, http.MethodPost, ts.URL+"/api/users", educatorToken, map[string]interface{}{
		"id": "77777", "pin": "12", "name": "Nurse Joy", "role": "Nurse",
	})
	var verr map[string]string
	decodeBody(t, resp, &verr)
	if resp.StatusCode != http.StatusBadRequest || verr["error"] != "validation_failed" || verr["field"] != "pin" {
		t.Fatalf("unexpected validation response %d %v", resp.StatusCode, verr)
	}

	resp = doReq(t, http.MethodPost, ts.URL+"/api/users", educatorToken, map[string]interface{}{
		"id": nurseID, "pin": "1234", "name": "Copy", "role": "Nurse",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate id, got %d", resp.StatusCode)
	}
}

func TestCompleteCourseTwiceKeepsXP(t *testing.T) {
	ts, cfg := newTestApp(t)
	token := mustToken(t, cfg, nurseID, "Nurse")
	url := ts.URL + "/api/users/" + nurseID + "/completions"

	var first, second struct {
		User struct {
			XP int `json:"xp"`
		} `json:"user"`
		Applied bool `json:"applied"`
	}
	resp := doReq(t, http.MethodPost, url, token, map[string]interface{}{"courseId": "c1", "earnedXp": 100})
	decodeBody(t, resp, &first)
	if resp.StatusCode != http.StatusOK || !first.Applied || first.User.XP != 1350 {
		t.Fatalf("unexpected first completion %d %+v", resp.StatusCode, first)
	}
	resp = doReq(t, http.MethodPost, url, token, map[string]interface{}{"courseId": "c1", "earnedXp": 100})
	decodeBody(t, resp, &second)
	if second.Applied || second.User.XP != 1350 {
		t.Fatalf("expected replay to leave xp at 1350, got %+v", second)
	}

	other := doReq(t, http.MethodPost, ts.URL+"/api/users/54321/completions", token, map[string]interface{}{"courseId": "c1", "earnedXp": 100})
	other.Body.Close()
	if other.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 completing for another user, got %d", other.StatusCode)
	}
}

func TestPlayCourse(t *testing.T) {
	ts, cfg := newTestApp(t)
	token := mustToken(t, cfg, nurseID, "Nurse")

	resp := doReq(t, http.MethodPost, ts.URL+"/api/courses/c1/play", token, nil)
	var view app.PlayerView
	decodeBody(t, resp, &view)
	if resp.StatusCode != http.StatusCreated || view.SessionID == "" || view.SlideCount != 4 {
		t.Fatalf("unexpected start %d %+v", resp.StatusCode, view)
	}
	playURL := ts.URL + "/api/play/" + view.SessionID

	next := func() (result struct {
		Completed bool `json:"completed"`
		User      *struct {
			XP               int      `json:"xp"`
			CompletedCourses []string `json:"completedCourses"`
		} `json:"user"`
	}) {
		resp := doReq(t, http.MethodPost, playURL+"/next", token, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("next status %d", resp.StatusCode)
		}
		decodeBody(t, resp, &result)
		return result
	}

	next()
	next()
	resp = doReq(t, http.MethodPost, playURL+"/answer", token, map[string]int{"option": 2})
	var answer app.AnswerResult
	decodeBody(t, resp, &answer)
	if !answer.Attempt.IsCorrect || answer.Player.EarnedXP != 50 {
		t.Fatalf("unexpected answer %+v", answer)
	}
	next()
	done := next()
	if !done.Completed || done.User == nil || done.User.XP != 1300 {
		t.Fatalf("unexpected completion %+v", done)
	}

	resp = doReq(t, http.MethodGet, playURL, token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected finished session to be gone, got %d", resp.StatusCode)
	}
}

func TestImportExportRoster(t *testing.T) {
	ts, cfg := newTestApp(t)
	token := mustToken(t, cfg, educatorID, "Educator")

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/users/import", strings.NewReader("99999,\"John Doe\",1234,Nurse\n"))
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "text/csv")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("http error: %v", err)
	}
	var summary app.ImportSummary
	decodeBody(t, resp, &summary)
	if summary.Created != 1 || summary.Updated != 0 {
		t.Fatalf("unexpected import summary %+v", summary)
	}

	resp = doReq(t, http.MethodGet, ts.URL+"/api/users/export", token, nil)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/csv") {
		t.Fatalf("expected csv content type, got %s", resp.Header.Get("Content-Type"))
	}
	if !strings.Contains(string(body), "12345,\"Sarah Jenkins\",1234,Nurse,1250\n") ||
		!strings.Contains(string(body), "99999,\"John Doe\",1234,Nurse,0\n") {
		t.Fatalf("unexpected export:\n%s", body)
	}
}

func TestDashboardAndLeaderboard(t *testing.T) {
	ts, cfg := newTestApp(t)
	token := mustToken(t, cfg, nurseID, "Nurse")

	resp := doReq(t, http.MethodGet, ts.URL+"/api/dashboard", token, nil)
	var dash app.Dashboard
	decodeBody(t, resp, &dash)
	if dash.Level != 3 || dash.Rank != 2 || len(dash.Categories) != 3 {
		t.Fatalf("unexpected dashboard %+v", dash)
	}

	resp = doReq(t, http.MethodGet, ts.URL+"/api/leaderboard", token, nil)
	var board app.Leaderboard
	decodeBody(t, resp, &board)
	if len(board.Entries) != 3 || board.Entries[0].ID != "99901" || board.Rank != 2 {
		t.Fatalf("unexpected leaderboard %+v", board)
	}
}

func TestStatusFor(t *testing.T) {
	cases := map[string]int{
		app.CodeValidationFailed:   http.StatusBadRequest,
		app.CodeInvalidCredentials: http.StatusUnauthorized,
		app.CodeCannotDeleteSelf:   http.StatusForbidden,
		app.CodeCourseNotFound:     http.StatusNotFound,
		app.CodeDuplicateID:        http.StatusConflict,
		app.CodeStoreUnavailable:   http.StatusServiceUnavailable,
		app.CodeServerError:        http.StatusInternalServerError,
	}
	for code, want := range cases {
		if got := statusFor(code); got != want {
			t.Fatalf("expected %d for %s, got %d", want, code, got)
		}
	}
}

func mustToken(t *testing.T, cfg config.Config, userID, role string) string {
	token, err := auth.NewAccessToken(cfg.JWTSecret, cfg.JWTIssuer, 10*time.Minute, auth.Claims{
		UserID: userID,
		Role:   role,
	})
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	return token
}

func doReq(t *testing.T, method, url, token string, body interface{}) *http.Response {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode error: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("http error: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode error: %v", err)
	}
}
