// Package api provides the REST API server for PDFCompare.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/RobinCoderZhao/pdfcompare/internal/history"
	"github.com/RobinCoderZhao/pdfcompare/internal/user"
	"github.com/RobinCoderZhao/pdfcompare/pkg/llm"
)

// Options configures a Server.
type Options struct {
	JWTSecret   string
	MaxUploadMB int
	// LLM holds server-side default provider settings. Request fields
	// override them per call; the API key is never echoed back.
	LLM llm.Config
}

// Server holds the dependencies for the API.
type Server struct {
	userStore    *user.Store
	historyStore *history.Store
	llmDefaults  llm.Config
	maxUploadMB  int64
	jwtSecret    []byte
	logger       *slog.Logger

	// newLLMClient is swapped out in tests.
	newLLMClient func(llm.Config) (llm.Client, error)
}

// NewServer creates a new API Server instance.
func NewServer(uStore *user.Store, hStore *history.Store, opts Options) *Server {
	maxMB := int64(opts.MaxUploadMB)
	if maxMB <= 0 {
		maxMB = 50
	}
	return &Server{
		userStore:    uStore,
		historyStore: hStore,
		llmDefaults:  opts.LLM,
		maxUploadMB:  maxMB,
		jwtSecret:    []byte(opts.JWTSecret),
		logger:       slog.Default(),
		newLLMClient: llm.NewClient,
	}
}

// Routes returns the configured http.Handler (ServeMux) for the API.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /api/config", s.handleGetConfig())
	mux.HandleFunc("POST /api/auth/register", s.handleRegister())
	mux.HandleFunc("POST /api/auth/login", s.handleLogin())
	mux.HandleFunc("POST /api/llm-report", s.handleLLMReport())

	// Comparison works without an account; with a valid token the result
	// is also saved to the user's history.
	mux.Handle("POST /api/compare", s.optionalAuth(http.HandlerFunc(s.handleCompare())))

	// Protected
	mux.Handle("GET /api/history", s.requireAuth(http.HandlerFunc(s.handleListHistory())))
	mux.Handle("GET /api/history/{id}", s.requireAuth(http.HandlerFunc(s.handleGetHistory())))

	return mux
}

// handleGetConfig exposes non-secret server defaults to the frontend.
// Only a boolean indicates whether an API key is configured.
func (s *Server) handleGetConfig() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{
			"llm_provider":  s.llmDefaults.Provider,
			"llm_model":     s.llmDefaults.Model,
			"llm_endpoint":  s.llmDefaults.BaseURL,
			"has_api_key":   s.llmDefaults.APIKey != "",
			"providers":     llm.Providers(),
			"max_upload_mb": s.maxUploadMB,
		})
	}
}

// --- Helpers ---

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
