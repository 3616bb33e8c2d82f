package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/forPelevin/ytdigest/internal/types"
	"github.com/forPelevin/ytdigest/internal/usecase"
)

type playlistRequest struct {
	URL any `json:"url"`
}

func (s *Server) handlePlaylist(w http.ResponseWriter, r *http.Request) {
	var req playlistRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.URL == nil {
		s.writeError(w, http.StatusBadRequest, "No URL provided")
		return
	}
	url, ok := req.URL.(string)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "URL must be a string")
		return
	}
	if strings.TrimSpace(url) == "" {
		s.writeError(w, http.StatusBadRequest, "No URL provided")
		return
	}

	videos, err := s.svc.Playlist(r.Context(), url)
	switch {
	case err == nil:
	case errors.Is(err, types.ErrValidation), errors.Is(err, types.ErrNotAccessible):
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, types.ErrTimeout):
		s.writeError(w, http.StatusRequestTimeout, err.Error())
		return
	default:
		s.log.Error("playlist fetch failed", slog.Any("error", err))
		s.writeError(w, http.StatusInternalServerError, "An unexpected error occurred")
		return
	}
	if videos == nil {
		videos = []types.VideoSummary{}
	}
	writeSuccess(w, map[string]any{"videos": videos})
}

type batchRequest struct {
	VideoIDs []string `json:"video_ids"`
	Style    string   `json:"style"`
}

func (s *Server) handleTranscriptBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if len(req.VideoIDs) == 0 {
		s.writeError(w, http.StatusBadRequest, "No video IDs provided")
		return
	}

	d, err := s.svc.Digest(r.Context(), req.VideoIDs, types.Style(req.Style))
	switch {
	case err == nil:
	case errors.Is(err, types.ErrEmptyBatch):
		s.writeError(w, http.StatusBadRequest, "No video IDs provided")
		return
	case errors.Is(err, types.ErrNothingToProcess):
		s.writeError(w, http.StatusInternalServerError, "Failed to process any transcripts")
		return
	default:
		s.writeError(w, http.StatusInternalServerError, "Server error: "+err.Error())
		return
	}
	if d.Document == "" {
		s.writeError(w, http.StatusInternalServerError, "Failed to generate output")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="transcripts.txt"`)
	w.Header().Set("X-Run-ID", d.RunID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(d.Document))
}

type progressRequest struct {
	VideoIDs []string `json:"video_ids"`
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	var req progressRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if len(req.VideoIDs) == 0 {
		s.writeError(w, http.StatusBadRequest, "No video IDs provided")
		return
	}
	writeSuccess(w, map[string]any{"progress": s.svc.Progress().Snapshot(req.VideoIDs)})
}

// processRequest keeps transcripts raw so one malformed element fails alone.
type processRequest struct {
	Transcripts []json.RawMessage `json:"transcripts"`
	Style       string            `json:"style"`
}

func (s *Server) handleProcessTranscripts(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	entries := make([]usecase.Entry, len(req.Transcripts))
	for i, raw := range req.Transcripts {
		entries[i] = decodeEntry(raw)
	}

	d, err := s.svc.ProcessEntries(r.Context(), entries, types.Style(req.Style))
	if errors.Is(err, types.ErrEmptyBatch) {
		s.writeError(w, http.StatusBadRequest, "No transcripts provided")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Server error: "+err.Error())
		return
	}
	writeSuccess(w, map[string]any{
		"run_id":   d.RunID,
		"results":  types.Views(d.Results),
		"document": d.Document,
	})
}

// decodeEntry reads one transcript element. On failure it still recovers a
// string video_id when there is one, so the failure can be attributed.
func decodeEntry(raw json.RawMessage) usecase.Entry {
	var in types.TranscriptInput
	err := json.Unmarshal(raw, &in)
	if err == nil {
		return usecase.Entry{Input: in}
	}
	var id struct {
		VideoID any `json:"video_id"`
	}
	_ = json.Unmarshal(raw, &id)
	vid, _ := id.VideoID.(string)
	return usecase.Entry{Input: types.TranscriptInput{VideoID: vid}, Err: err}
}
