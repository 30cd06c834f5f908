package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/docsum/internal/artifacts"
	"github.com/dgallion1/docsum/internal/render"
)

const docxMediaType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

func (s *Server) handleDownloadDOCX(w http.ResponseWriter, r *http.Request) {
	store := s.orchestrator.Store()
	if _, err := store.ReadSummary(); err != nil {
		s.summaryError(w, err)
		return
	}

	in, out := store.Path(artifacts.SummaryFile), store.Path(artifacts.DOCXFile)
	err := s.converter.ToDOCX(r.Context(), in, out)
	var exitErr *render.ToolExitError
	switch {
	case err == nil:
	case errors.Is(err, render.ErrToolNotInstalled):
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	case errors.As(err, &exitErr):
		s.log.Error("pandoc failed", "exit_code", exitErr.ExitCode, "stderr", exitErr.Stderr)
		jsonError(w, "pandoc error: "+exitErr.Stderr, http.StatusInternalServerError)
		return
	default:
		s.log.Error("docx conversion failed", "error", err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", docxMediaType)
	w.Header().Set("Content-Disposition", `attachment; filename="summary.docx"`)
	http.ServeFile(w, r, out)
}

func (s *Server) handleDownloadHTML(w http.ResponseWriter, r *http.Request) {
	doc, err := s.orchestrator.Store().ReadSummary()
	if err != nil {
		s.summaryError(w, err)
		return
	}
	page, err := render.HTMLPage([]byte(doc))
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

// handleChapters serves the segmentation metadata of the last document.
func (s *Server) handleChapters(w http.ResponseWriter, r *http.Request) {
	info, err := s.orchestrator.Store().ReadChapterInfo()
	if errors.Is(err, artifacts.ErrNoChapterInfo) {
		jsonError(w, "chapters_info.json not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("read chapter info failed", "error", err)
		jsonError(w, "failed to read chapter info", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(info)
}

func (s *Server) summaryError(w http.ResponseWriter, err error) {
	if errors.Is(err, artifacts.ErrNoSummary) {
		jsonError(w, "summary.md not found", http.StatusNotFound)
		return
	}
	s.log.Error("read summary failed", "error", err)
	jsonError(w, "failed to read summary", http.StatusInternalServerError)
}
