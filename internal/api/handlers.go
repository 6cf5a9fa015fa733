package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/utxoscope/pkg/entity"
	"github.com/matzehuels/utxoscope/pkg/errors"
	"github.com/matzehuels/utxoscope/pkg/layout"
	"github.com/matzehuels/utxoscope/pkg/pipeline"
	"github.com/matzehuels/utxoscope/pkg/store"
)

// layoutRequest is the POST /v1/layouts body: pipeline options plus
// optional inline records (instead of an address) and a save flag.
type layoutRequest struct {
	pipeline.Options
	Records []entity.Record `json:"records,omitempty"`
	Save    bool            `json:"save,omitempty"`
}

// layoutResponse is the POST /v1/layouts response. Artifacts are
// base64-encoded per encoding/json []byte semantics.
type layoutResponse struct {
	RunID     string             `json:"run_id,omitempty"`
	GraphHash string             `json:"graph_hash"`
	VizType   string             `json:"viz_type"`
	Stats     statsResponse      `json:"stats"`
	Cache     pipeline.CacheInfo `json:"cache"`
	Layout    layout.Layout      `json:"layout"`
	Artifacts map[string][]byte  `json:"artifacts"`
}

type statsResponse struct {
	RecordCount  int   `json:"record_count"`
	NodeCount    int   `json:"node_count"`
	LinkCount    int   `json:"link_count"`
	FetchMillis  int64 `json:"fetch_ms"`
	LayoutMillis int64 `json:"layout_ms"`
	RenderMillis int64 `json:"render_ms"`
}

type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid request body: %v", err))
		return
	}

	opts := req.Options
	if len(req.Records) > 0 {
		opts.Records = req.Records
	}
	opts.Logger = s.logger

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := layoutResponse{
		GraphHash: result.GraphHash,
		VizType:   result.Layout.VizType,
		Stats: statsResponse{
			RecordCount:  result.Stats.RecordCount,
			NodeCount:    result.Stats.NodeCount,
			LinkCount:    result.Stats.LinkCount,
			FetchMillis:  result.Stats.FetchTime.Milliseconds(),
			LayoutMillis: result.Stats.LayoutTime.Milliseconds(),
			RenderMillis: result.Stats.RenderTime.Milliseconds(),
		},
		Cache:     result.CacheInfo,
		Layout:    result.Layout,
		Artifacts: result.Artifacts,
	}

	if req.Save {
		run, err := s.store.Save(r.Context(), store.Run{
			Address: opts.Address,
			VizType: result.Layout.VizType,
			Graph:   result.Graph,
			Layout:  result.Layout,
		})
		if err != nil {
			s.writeError(w, err)
			return
		}
		resp.RunID = run.ID
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid limit: %q", v))
			return
		}
		limit = n
	}

	runs, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	s.writeJSON(w, httpStatus(code), errorResponse{
		Error: errors.UserMessage(err),
		Code:  code,
	})
}

// httpStatus maps pipeline error codes onto HTTP statuses.
func httpStatus(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidAddress, errors.ErrCodeInvalidAmount,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidVizType, errors.ErrCodeInvalidRecords,
		errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeAddressNotFound,
		errors.ErrCodeFileNotFound, errors.ErrCodeRunNotFound:
		return http.StatusNotFound
	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case errors.ErrCodeNetwork, errors.ErrCodeTimeout:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
