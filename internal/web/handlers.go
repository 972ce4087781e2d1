package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/JonMunkholm/conform/internal/core"
	"github.com/go-chi/chi/v5"
)

type healthResponse struct {
	Status string                `json:"status"`
	Tables int                   `json:"tables"`
	Runs   core.RunLimiterStatus `json:"runs"`
	Error  string                `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status: "ok",
		Tables: core.TableCount(),
		Runs:   s.service.LimiterStatus(),
	}
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			resp.Status = "unavailable"
			resp.Error = core.MapError(err).Message
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type tablesResponse struct {
	Tables []core.TableInfo            `json:"tables"`
	Groups map[string][]core.TableInfo `json:"groups"`
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, tablesResponse{
		Tables: s.service.ListTables(),
		Groups: s.service.ListTablesByGroup(),
	})
}

func (s *Server) handleRunStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.LimiterStatus())
}

// runRequest optionally narrows POST /api/runs to some tables.
type runRequest struct {
	Tables []string `json:"tables"`
}

func (s *Server) handleRunAll(w http.ResponseWriter, r *http.Request) {
	keys, err := decodeTables(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid request body",
			Message: "invalid request body",
			Action:  `Send {"tables": ["crm_cust_info", ...]} or an empty body`,
			Code:    "REQ001",
		})
		return
	}

	result, err := s.service.Run(r.Context(), keys...)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeRunResult(w, result)
}

func (s *Server) handleRunTable(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.Run(r.Context(), chi.URLParam(r, "tableKey"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeRunResult(w, result)
}

func (s *Server) handleLoadBronze(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.LoadBronze(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeRunResult(w, result)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "tableKey")
	if err := s.service.Reset(r.Context(), key); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset", "table": key})
}

func (s *Server) handleResetAll(w http.ResponseWriter, r *http.Request) {
	if err := s.service.ResetAll(r.Context()); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// writeRunResult answers 200 when every table loaded and 500 otherwise. The
// body always carries the per-table outcome.
func writeRunResult(w http.ResponseWriter, result core.RunResult) {
	status := http.StatusOK
	if len(result.Failed()) > 0 {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, result)
}

func decodeTables(r *http.Request) ([]string, error) {
	if r.Body == nil {
		return nil, nil
	}
	var req runRequest
	err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&req)
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return req.Tables, nil
}
