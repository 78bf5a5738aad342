package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dshills/promptmd/internal/config"
	"github.com/dshills/promptmd/internal/discover"
	"github.com/dshills/promptmd/internal/outline"
	"github.com/dshills/promptmd/internal/output"
)

var errOutsideRoot = errors.New("path escapes the prompt root")

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, "document too large", http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "failed to read body: "+err.Error(), http.StatusBadRequest)
		return
	}

	levels := config.SplitList(r.URL.Query().Get("levels"))
	cfg := s.parser(levels).Parse(string(data), s.cfg.UserConfig())
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := discover.Files(r.Context(), s.discoverOptions())
	if err != nil {
		jsonError(w, "failed to list files: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if files == nil {
		files = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"root":  s.cfg.RootPath,
		"files": files,
	})
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	rel, data, ok := s.readPrompt(w, r)
	if !ok {
		return
	}
	levels := config.SplitList(r.URL.Query().Get("levels"))
	cfg := s.parser(levels).Parse(string(data), s.cfg.UserConfig())
	writeJSON(w, http.StatusOK, output.Result{Path: rel, Config: &cfg})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	rel, data, ok := s.readPrompt(w, r)
	if !ok {
		return
	}
	levels := config.SplitList(r.URL.Query().Get("levels"))
	if len(levels) == 0 {
		levels = s.cfg.Levels
	}
	warnings := outline.Check(string(data), levels)
	if warnings == nil {
		warnings = []outline.Warning{}
	}
	writeJSON(w, http.StatusOK, output.Result{Path: rel, Warnings: warnings})
}

// readPrompt resolves the wildcard path under the root and reads it. It writes
// the error response itself and reports false on failure.
func (s *Server) readPrompt(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	rel := chi.URLParam(r, "*")
	full, err := s.confine(rel)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return "", nil, false
	}
	rel = strings.TrimPrefix(path.Clean("/"+rel), "/")
	if !discover.HasExt(rel, s.cfg.Exts) {
		jsonError(w, "not a prompt file: "+rel, http.StatusNotFound)
		return "", nil, false
	}

	data, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			jsonError(w, "file not found: "+rel, http.StatusNotFound)
			return "", nil, false
		}
		jsonError(w, "failed to read file: "+err.Error(), http.StatusInternalServerError)
		return "", nil, false
	}
	return rel, data, true
}

// confine maps a slash-separated request path to a file under the root,
// rejecting anything that resolves outside it, including through symlinks.
func (s *Server) confine(rel string) (string, error) {
	if rel == "" {
		return "", errors.New("path is required")
	}
	for _, seg := range strings.Split(rel, "/") {
		if seg == ".." {
			return "", errOutsideRoot
		}
	}
	clean := path.Clean("/" + rel)
	root, err := filepath.Abs(s.cfg.RootPath)
	if err != nil {
		return "", err
	}
	full := filepath.Join(root, filepath.FromSlash(clean))

	resolvedRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(full)
	if err != nil {
		// Missing files are reported by the read.
		return full, nil
	}
	within, err := filepath.Rel(resolvedRoot, resolved)
	if err != nil || within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) {
		return "", errOutsideRoot
	}
	return full, nil
}

func (s *Server) discoverOptions() discover.Options {
	return discover.Options{
		Root:             s.cfg.RootPath,
		Exts:             s.cfg.Exts,
		Include:          s.cfg.Includes,
		Exclude:          s.cfg.Excludes,
		RespectGitIgnore: s.cfg.GitIgnore(),
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
