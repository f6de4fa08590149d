package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/anota-labs/anota-core/internal/core/domain"
	"github.com/anota-labs/anota-core/internal/core/ports/driving"
)

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// Health endpoints

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Auth endpoints

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.authService.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyExists):
			writeError(w, http.StatusConflict, "email already registered")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "email, password and first name are required")
		default:
			writeError(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.authService.Login(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "email and password are required")
		default:
			writeError(w, http.StatusInternalServerError, "login failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r)
	if err := s.authService.Logout(r.Context(), token); err != nil {
		writeError(w, http.StatusInternalServerError, "logout failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, authCtx)
}

// Google integration endpoints

func (s *Server) handleGoogleAuthURL(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	authURL := s.googleTasksService.GetAuthorizationURL(authCtx.UserID)
	writeJSON(w, http.StatusOK, map[string]string{"url": authURL})
}

// handleGoogleCallback receives the browser redirect from Google's consent
// screen. It is unauthenticated: the user's identity travels in the state
// parameter. The browser is always redirected back to the frontend, with
// the outcome in query parameters.
func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if remoteErr := q.Get("error"); remoteErr != "" {
		s.redirectToFrontend(w, r, "error", remoteErr)
		return
	}

	code := q.Get("code")
	state := q.Get("state")
	if code == "" || state == "" {
		s.redirectToFrontend(w, r, "error", "missing code or state")
		return
	}

	// The state parameter carries the user ID that initiated the flow
	decoded, err := base64.StdEncoding.DecodeString(state)
	if err != nil || len(decoded) == 0 {
		s.redirectToFrontend(w, r, "error", "invalid state")
		return
	}
	callerUserID := string(decoded)

	if err := s.googleTasksService.ExchangeCode(r.Context(), code, state, callerUserID); err != nil {
		var integrationErr *driving.IntegrationError
		if errors.As(err, &integrationErr) {
			s.redirectToFrontend(w, r, "error", integrationErr.Description)
		} else {
			s.redirectToFrontend(w, r, "error", "connection failed")
		}
		return
	}

	s.redirectToFrontend(w, r, "success", "")
}

// redirectToFrontend sends the browser back to the tasks page with the
// OAuth outcome in the query string.
func (s *Server) redirectToFrontend(w http.ResponseWriter, r *http.Request, result, message string) {
	params := url.Values{"google": {result}}
	if message != "" {
		params.Set("message", message)
	}
	http.Redirect(w, r, s.frontendBaseURL+"/tareas?"+params.Encode(), http.StatusFound)
}

func (s *Server) handleGoogleStatus(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	status, err := s.googleTasksService.GetConnectionStatus(r.Context(), authCtx.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check connection status")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleGoogleDisconnect(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := s.googleTasksService.Disconnect(r.Context(), authCtx.UserID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no active google integration")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to disconnect")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "disconnected"})
}

// Google Tasks endpoints

func (s *Server) handleGoogleTaskLists(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	lists, err := s.googleTasksService.GetTaskLists(r.Context(), authCtx.UserID)
	if err != nil {
		writeGoogleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

func (s *Server) handleGoogleTasks(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	listID := r.URL.Query().Get("taskListId")
	tasks, err := s.googleTasksService.GetTasks(r.Context(), authCtx.UserID, listID)
	if err != nil {
		writeGoogleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleGoogleTaskComplete(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	listID := r.PathValue("listId")
	taskID := r.PathValue("taskId")
	completed := r.URL.Query().Get("completed") == "true"

	if err := s.googleTasksService.SetTaskCompletion(r.Context(), authCtx.UserID, listID, taskID, completed); err != nil {
		writeGoogleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"completed": completed})
}

func (s *Server) handleGoogleTaskUpdate(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		Title string `json:"title"`
		Due   string `json:"due"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	listID := r.PathValue("listId")
	taskID := r.PathValue("taskId")

	if err := s.googleTasksService.UpdateTask(r.Context(), authCtx.UserID, listID, taskID, req.Title, req.Due); err != nil {
		writeGoogleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleGoogleTaskDelete(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	listID := r.PathValue("listId")
	taskID := r.PathValue("taskId")

	if err := s.googleTasksService.DeleteTask(r.Context(), authCtx.UserID, listID, taskID); err != nil {
		writeGoogleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Transcription endpoint

const maxAudioSize = 25 << 20 // matches the Whisper upload limit

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAudioSize)

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	text, err := s.transcriptionService.TranscribeAudio(r.Context(), file, header.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, http.StatusBadGateway, "transcription failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeGoogleError maps integration failures to HTTP statuses
func writeGoogleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotConnected):
		writeError(w, http.StatusBadRequest, "google integration not connected")
	case errors.Is(err, domain.ErrRemoteAPI):
		writeError(w, http.StatusBadGateway, "google api request failed")
	default:
		writeError(w, http.StatusInternalServerError, "request failed")
	}
}
