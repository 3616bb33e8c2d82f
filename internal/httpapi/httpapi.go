package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/forPelevin/ytdigest/internal/progress"
	"github.com/forPelevin/ytdigest/internal/types"
	"github.com/forPelevin/ytdigest/internal/usecase"
)

const maxBodyBytes = 10 << 20

// Digester is the slice of usecase.Service the HTTP layer needs.
type Digester interface {
	Digest(ctx context.Context, videoIDs []string, style types.Style) (usecase.Digest, error)
	ProcessEntries(ctx context.Context, entries []usecase.Entry, style types.Style) (usecase.Digest, error)
	Playlist(ctx context.Context, rawURL string) ([]types.VideoSummary, error)
	Progress() *progress.Store
}

type Server struct {
	svc     Digester
	metrics http.Handler
	log     *slog.Logger
}

// New returns a Server. metrics may be nil to leave /metrics unmounted.
func New(svc Digester, metrics http.Handler, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{svc: svc, metrics: metrics, log: log}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("POST /get_playlist", s.handlePlaylist)
	mux.HandleFunc("POST /download_transcript_batch", s.handleTranscriptBatch)
	mux.HandleFunc("POST /download_progress", s.handleProgress)
	mux.HandleFunc("POST /process_transcripts", s.handleProcessTranscripts)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}
	return s.logRequests(mux)
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", slog.String("addr", addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("elapsed", time.Since(start)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// decodeJSON rejects non-JSON requests with 415 and malformed bodies with
// 400. It reports whether the handler should continue.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mt != "application/json" {
		s.writeError(w, http.StatusUnsupportedMediaType, "Request must be JSON")
		return false
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "data": data})
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.log.Warn("error response", slog.Int("status", status), slog.String("error", msg))
	writeJSON(w, status, map[string]string{"status": "error", "error": msg})
}
