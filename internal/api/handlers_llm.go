package api

import (
	"encoding/json"
	"net/http"

	"github.com/RobinCoderZhao/pdfcompare/internal/compare"
	"github.com/RobinCoderZhao/pdfcompare/internal/report"
	"github.com/RobinCoderZhao/pdfcompare/pkg/llm"
)

type llmReportRequest struct {
	Provider    string              `json:"provider"`
	UnifiedDiff *string             `json:"unified_diff"`
	Stats       *compare.Statistics `json:"stats"`
	NameA       string              `json:"name_a"`
	NameB       string              `json:"name_b"`
	Config      struct {
		Model    string `json:"model"`
		APIKey   string `json:"api_key"`
		Endpoint string `json:"endpoint"`
	} `json:"config"`
}

// handleLLMReport generates an LLM-powered analysis from a previous
// comparison. Server-side defaults are used as a base; request fields
// override them.
func (s *Server) handleLLMReport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req llmReportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "JSON body required.")
			return
		}
		if req.UnifiedDiff == nil || req.Stats == nil || req.NameA == "" || req.NameB == "" {
			respondError(w, http.StatusBadRequest, "Fields unified_diff, stats, name_a and name_b are required.")
			return
		}

		cfg := s.llmDefaults
		if req.Provider != "" {
			cfg.Provider = llm.Provider(req.Provider)
		}
		if cfg.Provider == "" {
			respondError(w, http.StatusBadRequest, "No LLM provider specified.")
			return
		}
		if req.Config.Model != "" {
			cfg.Model = req.Config.Model
		}
		if req.Config.APIKey != "" {
			cfg.APIKey = req.Config.APIKey
		}
		if req.Config.Endpoint != "" {
			cfg.BaseURL = req.Config.Endpoint
		}

		client, err := s.newLLMClient(cfg)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		defer client.Close()

		resp, err := client.Generate(r.Context(), &llm.Request{
			System: report.SystemPrompt,
			Messages: []llm.Message{{
				Role:    "user",
				Content: report.BuildPrompt(*req.UnifiedDiff, *req.Stats, req.NameA, req.NameB),
			}},
		})
		if err != nil {
			s.logger.Error("LLM report generation failed", "provider", cfg.Provider, "error", err)
			respondError(w, http.StatusBadGateway, "LLM request failed. Check provider settings and try again.")
			return
		}

		respondJSON(w, http.StatusOK, map[string]any{
			"report": resp.Content,
			"model":  resp.Model,
			"cost":   resp.Cost,
		})
	}
}
