// Package server exposes the relay API and serves the built client app.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pritampani/UnivMarket/internal/apperr"
	"github.com/pritampani/UnivMarket/internal/config"
	"github.com/pritampani/UnivMarket/internal/logging"
	"github.com/pritampani/UnivMarket/internal/models"
)

// maxUploadSize caps relayed image uploads at 10MB.
const maxUploadSize = 10 << 20

// Server is the UnivMarket relay server.
type Server struct {
	cfg      *config.Config
	uploader *Uploader
}

// New builds a server from configuration.
func New(cfg *config.Config) *Server {
	return &Server{
		cfg:      cfg,
		uploader: NewUploader(cfg.ImgBBAPIKey, cfg.RemoteTimeoutDuration()),
	}
}

// Router assembles the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(logging.RequestLogger)

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/categories", s.handleCategories)
	r.Get("/api/config/firebase", s.handleFirebaseConfig)
	r.Get("/api/config/imgbb-status", s.handleImgBBStatus)
	r.Post("/api/imgbb/upload", s.handleUpload)

	r.NotFound(s.handleStatic)
	return r
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.RunAddress,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logging.Log.Info("server started", zap.String("address", s.cfg.RunAddress))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "UnivMarket server is running",
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.DefaultCategories())
}

func (s *Server) handleFirebaseConfig(w http.ResponseWriter, r *http.Request) {
	if s.cfg.FirebaseAPIKey == "" {
		writeError(w, http.StatusServiceUnavailable, apperr.ErrNotConfigured, "firebase is not configured")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"apiKey":            s.cfg.FirebaseAPIKey,
		"authDomain":        s.cfg.FirebaseProjectID + ".firebaseapp.com",
		"projectId":         s.cfg.FirebaseProjectID,
		"storageBucket":     s.cfg.FirebaseProjectID + ".appspot.com",
		"messagingSenderId": s.cfg.FirebaseMessagingSenderID,
		"appId":             s.cfg.FirebaseAppID,
	})
}

func (s *Server) handleImgBBStatus(w http.ResponseWriter, r *http.Request) {
	configured := s.uploader.Configured()
	message := "image uploads are available"
	if !configured {
		message = "set IMGBB_API_KEY to enable image uploads"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"configured": configured,
		"message":    message,
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if !s.uploader.Configured() {
		writeError(w, http.StatusServiceUnavailable, apperr.ErrNotConfigured, "image uploads are not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, apperr.ErrUploadFailed, "invalid multipart request")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, apperr.ErrUploadFailed, "missing image field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, apperr.ErrUploadFailed, "could not read image")
		return
	}

	// Never forward the client's filename upstream.
	name := uuid.New().String() + filepath.Ext(header.Filename)

	result, err := s.uploader.Upload(r.Context(), name, data)
	if err != nil {
		logging.Log.Error("image upload failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, apperr.CodeOf(err), "upload failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    result,
	})
}

// handleStatic serves the built client app, falling back to index.html for
// client-side routes. API paths that reach here are genuine 404s.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeError(w, http.StatusNotFound, "", "not found")
		return
	}

	path := filepath.Join(s.cfg.StaticDir, filepath.Clean("/"+r.URL.Path))
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		http.ServeFile(w, r, path)
		return
	}

	http.ServeFile(w, r, filepath.Join(s.cfg.StaticDir, "index.html"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Log.Error("response encode failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, code apperr.Code, message string) {
	body := map[string]string{"error": message}
	if code != "" {
		body["code"] = string(code)
	}
	writeJSON(w, status, body)
}
