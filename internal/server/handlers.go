package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/arnavj/consultmatch/internal/ai"
	"github.com/arnavj/consultmatch/internal/docload"
	"github.com/arnavj/consultmatch/internal/pipeline"
)

type compareRequest struct {
	JobID            string           `json:"job_id"`
	JDTitle          string           `json:"jd_title"`
	JDContent        string           `json:"jd_content"`
	Profiles         []profilePayload `json:"profiles,omitempty"`
	ARRequestorEmail string           `json:"ar_requestor_email"`
	RecruiterEmail   string           `json:"recruiter_email"`
	CreatedBy        string           `json:"created_by"`
}

type profilePayload struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	profiles := make([]ai.Profile, 0, len(req.Profiles))
	for _, p := range req.Profiles {
		profiles = append(profiles, ai.Profile{ID: p.ID, Name: p.Name, Content: p.Content})
	}

	// An empty profile list means "match against the whole pool".
	if len(profiles) == 0 {
		pool, err := s.store.ListProfiles(r.Context())
		if err != nil {
			s.logger.Error("listing consultant profiles", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load consultant profiles"})
			return
		}
		profiles = pool
	}

	title := strings.TrimSpace(req.JDTitle)
	if title == "" {
		title = docload.ParseJDTitle(req.JDContent)
	}

	result, err := s.pipeline.Run(r.Context(), &pipeline.Request{
		JobID:            req.JobID,
		JDTitle:          title,
		JDContent:        req.JDContent,
		Profiles:         profiles,
		ARRequestorEmail: req.ARRequestorEmail,
		RecruiterEmail:   req.RecruiterEmail,
		CreatedBy:        req.CreatedBy,
	})

	switch {
	case errors.Is(err, pipeline.ErrEmptyInput), errors.Is(err, pipeline.ErrMissingRecipient):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case err != nil && result != nil:
		// Notification went out but the audit trail is broken; return the
		// partial result alongside the error.
		s.logger.Error("pipeline run failed after notification", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, result)
	case err != nil:
		s.logger.Error("pipeline run failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
