package goodserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gooddollar/facetec-go/models"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const ErrorInternal = "error:internal"
const ERR_MARSHAL = "failed to marshal response message"
const ERR_DECODE = "failed to decode request body"
const ERR_TOKEN_ISSUE = "failed to issue session token"
const ERR_INVALID_SESSION = "invalid or expired capture session"

type ServerConfig struct {
	Host           string `json:"host"`
	Port           int    `json:"port"`
	UseTls         bool   `json:"use_tls,omitempty"`
	TlsPrivKeyPath string `json:"tls_priv_key_path,omitempty"`
	TlsCertPath    string `json:"tls_cert_path,omitempty"`
}

// ServerState carries the collaborators of the verification endpoints.
type ServerState struct {
	Sessions   Storage
	Evaluator  EnrollmentEvaluator
	AuthSecret []byte
}

type Server struct {
	server *http.Server
	config ServerConfig
}

func (s *Server) ListenAndServe() error {
	if s.config.UseTls {
		slog.Info("Starting server with TLS", "host", s.config.Host, "port", s.config.Port, "cert", s.config.TlsCertPath, "key", s.config.TlsPrivKeyPath)
		return s.server.ListenAndServeTLS(s.config.TlsCertPath, s.config.TlsPrivKeyPath)
	} else {
		slog.Info("Starting server without TLS", "host", s.config.Host, "port", s.config.Port)
		return s.server.ListenAndServe()
	}
}

func (s *Server) Stop() error {
	slog.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := s.server.Shutdown(ctx)
	if err != nil {
		slog.Error("Error during server shutdown", "error", err)
	} else {
		slog.Info("Server shut down successfully")
	}
	return err
}

func NewServer(state *ServerState, config ServerConfig) (*Server, error) {
	slog.Info("Creating new server", "host", config.Host, "port", config.Port, "tls", config.UseTls)

	addr := fmt.Sprintf("%v:%v", config.Host, config.Port)
	srv := &http.Server{
		Handler: NewRouter(state),
		Addr:    addr,
		// Good practice: enforce timeouts for servers you create!
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	slog.Info("Server created successfully", "address", addr)
	return &Server{
		server: srv,
		config: config,
	}, nil
}

// NewRouter builds the verification API routes. Split out of NewServer so
// tests can drive the handlers through httptest.
func NewRouter(state *ServerState) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("Health check request received")
		if err := json.NewEncoder(w).Encode(map[string]bool{"ok": true}); err != nil {
			slog.Error("failed to write body to http response", "error", err)
		}
	})

	verify := router.PathPrefix("/verify/face").Subrouter()
	verify.Use(func(next http.Handler) http.Handler {
		return bearerAuth(state.AuthSecret, next)
	})

	verify.HandleFunc("/session", func(w http.ResponseWriter, r *http.Request) {
		handleCreateSession(state, w, r)
	}).Methods(http.MethodPost)

	verify.HandleFunc("/{enrollmentIdentifier}", func(w http.ResponseWriter, r *http.Request) {
		handleEnroll(state, w, r)
	}).Methods(http.MethodPut)

	slog.Debug("Registered all API routes")
	return router
}

// handleCreateSession issues a one-time capture session token.
func handleCreateSession(state *ServerState, w http.ResponseWriter, r *http.Request) {
	defer closeRequestBody(r)

	slog.Info("Received request to create a capture session")

	sessionToken := uuid.NewString()
	if err := state.Sessions.Store(sessionToken, "issued"); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_TOKEN_ISSUE, err)
		return
	}

	response := models.SessionTokenResponse{
		Success:      true,
		SessionToken: sessionToken,
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
		return
	}

	slog.Info("Capture session created", "session_token", sessionToken)
}

// handleEnroll evaluates an uploaded enrollment payload. Verdicts always go
// out with status 200; non-2xx is reserved for requests the server could not
// process at all.
func handleEnroll(state *ServerState, w http.ResponseWriter, r *http.Request) {
	defer closeRequestBody(r)

	enrollmentIdentifier := mux.Vars(r)["enrollmentIdentifier"]
	slog.Info("Received enrollment request", "identifier", enrollmentIdentifier)

	var request models.EnrollmentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondWithErr(w, http.StatusBadRequest, "invalid request", ERR_DECODE, err)
		return
	}

	if err := validateCaptureSession(state.Sessions, request.SessionID); err != nil {
		slog.Warn("enrollment with unknown capture session",
			"identifier", enrollmentIdentifier, "session_id", request.SessionID)
		verdict := models.EnrollmentResponse{Success: false, Error: ERR_INVALID_SESSION}
		if err := writeJSON(w, http.StatusOK, verdict); err != nil {
			respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
		}
		return
	}

	verdict := state.Evaluator.Evaluate(enrollmentIdentifier, request)

	if verdict.Success {
		// One-time token: consumed by the verdict that ends the session.
		// Retryable failures keep it alive for the next capture attempt.
		removeCaptureSession(state.Sessions, request.SessionID)
	}

	if err := writeJSON(w, http.StatusOK, verdict); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
		return
	}

	slog.Info("Enrollment request completed",
		"identifier", enrollmentIdentifier, "success", verdict.Success)
}

// -----------------------------------------------------------------------------------

func validateCaptureSession(sessions Storage, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("%s", ERR_INVALID_SESSION)
	}
	if _, err := sessions.Retrieve(sessionID); err != nil {
		return fmt.Errorf("%s: %w", ERR_INVALID_SESSION, err)
	}
	return nil
}

func removeCaptureSession(sessions Storage, sessionID string) {
	slog.Debug("Removing capture session token", "session_id", sessionID)
	if err := sessions.Remove(sessionID); err != nil {
		slog.Warn("failed to remove capture session token", "session_id", sessionID, "error", err)
	}
}

func respondWithErr(w http.ResponseWriter, code int, responseBody string, logMsg string, e error) {
	slog.Error(logMsg, "error", e, "status_code", code, "response_body", responseBody)
	w.WriteHeader(code)
	if _, err := w.Write([]byte(responseBody)); err != nil {
		slog.Error("failed to write body to http response", "error", err)
	}
}

func closeRequestBody(r *http.Request) {
	if err := r.Body.Close(); err != nil {
		slog.Error("failed to close request body", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		slog.Error("Failed to marshal JSON payload", "error", err)
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err = w.Write(payload); err != nil {
		slog.Error("failed to write body to http response", "error", err)
	}
	return nil
}
