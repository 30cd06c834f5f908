package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docsum/internal/parser"
	"github.com/dgallion1/docsum/internal/pipeline"
)

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %q", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	run, err := s.orchestrator.Begin(r.Context(), filename, data)
	switch {
	case err == nil:
	case errors.Is(err, pipeline.ErrRunInProgress):
		jsonError(w, err.Error(), http.StatusConflict)
		return
	case errors.Is(err, pipeline.ErrResourceUnavailable), errors.Is(err, pipeline.ErrStopped):
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	case errors.Is(err, pipeline.ErrExtraction):
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	default:
		s.log.Error("start run failed", "filename", filename, "error", err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	chapters := len(run.Document().Chapters)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success":        true,
		"message":        fmt.Sprintf("Processing started. Chapters found: %d", chapters),
		"chapters_count": chapters,
		"run_id":         run.ID,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.orchestrator.Tracker().Snapshot())
}

func (s *Server) handleCurrentRun(w http.ResponseWriter, r *http.Request) {
	run := s.orchestrator.Current()
	if run == nil {
		jsonError(w, "no run yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(run.Snapshot())
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Browsers on Windows may send a full path.
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
