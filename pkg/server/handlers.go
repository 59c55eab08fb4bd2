package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/trackgrid/pkg/buildinfo"
	"github.com/matzehuels/trackgrid/pkg/document"
	errs "github.com/matzehuels/trackgrid/pkg/errors"
	"github.com/matzehuels/trackgrid/pkg/grid"
	"github.com/matzehuels/trackgrid/pkg/pipeline"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

// handleArrange arranges the request document without touching any grid.
func (s *Server) handleArrange(w http.ResponseWriter, r *http.Request) {
	doc, err := s.readDocument(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opts, err := renderOptions(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), doc, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	format := opts.Formats[0]
	w.Header().Set("X-Layout-Hash", res.LayoutHash)
	w.Header().Set("X-Cache", cacheStatus(res.CacheInfo.LayoutHit && res.CacheInfo.RenderHit))
	writeArtifact(w, pipeline.ContentTypes[format], res.Artifacts[format])
}

type gridResponse struct {
	ID string `json:"id"`
}

type gridListResponse struct {
	Grids []string `json:"grids"`
}

func (s *Server) handleCreateGrid(w http.ResponseWriter, r *http.Request) {
	a := s.registry.Create()
	w.Header().Set("Location", "/v1/grids/"+string(a.ID()))
	writeJSON(w, http.StatusCreated, gridResponse{ID: string(a.ID())})
}

func (s *Server) handleListGrids(w http.ResponseWriter, r *http.Request) {
	ids := s.registry.IDs()
	out := gridListResponse{Grids: make([]string, len(ids))}
	for i, id := range ids {
		out.Grids[i] = string(id)
	}
	writeJSON(w, http.StatusOK, out)
}

// handlePutGrid runs a pass inside the grid. A failed pass answers with the
// error while the grid keeps serving its previous arrangement.
func (s *Server) handlePutGrid(w http.ResponseWriter, r *http.Request) {
	a, err := s.lookup(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	doc, err := s.readDocument(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	doc.ID = string(a.ID())

	l, err := s.runner.ArrangeGrid(r.Context(), a, doc)
	if err != nil {
		if errs.IsArrangement(err) && a.Last() != nil {
			w.Header().Set("X-Previous-Arrangement", "kept")
		}
		s.fail(w, r, err)
		return
	}

	s.mu.Lock()
	s.docs[a.ID()] = doc
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, l)
}

// handleGetGrid serves the last successful arrangement, as a layout or any
// pipeline format.
func (s *Server) handleGetGrid(w http.ResponseWriter, r *http.Request) {
	a, err := s.lookup(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res := a.Last()
	s.mu.RLock()
	doc := s.docs[a.ID()]
	s.mu.RUnlock()
	if res == nil || doc == nil {
		s.fail(w, r, errNotFound("grid %s has no arrangement yet", a.ID()))
		return
	}
	l, err := document.NewLayout(doc, res)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	opts, err := renderOptions(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	format := opts.Formats[0]
	if format == pipeline.FormatJSON {
		writeJSON(w, http.StatusOK, l)
		return
	}
	artifacts, err := s.runner.RenderLayout(r.Context(), l, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeArtifact(w, pipeline.ContentTypes[format], artifacts[format])
}

func (s *Server) handleDeleteGrid(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errs.ValidateGridID(id); err != nil {
		s.fail(w, r, err)
		return
	}
	if !s.registry.Remove(grid.GridID(id)) {
		s.fail(w, r, errs.New(errs.ErrCodeGridNotFound, "grid %s not found", id))
		return
	}
	s.mu.Lock()
	delete(s.docs, grid.GridID(id))
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) lookup(r *http.Request) (*grid.Arranger, error) {
	id := chi.URLParam(r, "id")
	if err := errs.ValidateGridID(id); err != nil {
		return nil, err
	}
	a, ok := s.registry.Lookup(grid.GridID(id))
	if !ok {
		return nil, errs.New(errs.ErrCodeGridNotFound, "grid %s not found", id)
	}
	return a, nil
}

// readDocument decodes the body as TOML when the content type says so and
// as JSON otherwise.
func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) (*document.Document, error) {
	format := document.FormatJSON
	if strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "toml") {
		format = document.FormatTOML
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errs.New(errs.ErrCodeInvalidInput, "document exceeds %d bytes", s.maxBody)
		}
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read body")
	}
	if len(data) == 0 {
		return nil, errs.New(errs.ErrCodeInvalidDocument, "empty document")
	}
	return pipeline.Parse(data, format, pipeline.Overrides{})
}

// renderOptions reads format, cells, guides, scale, width and refresh from
// the query string. Only one format is served per request.
func renderOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatJSON
	}
	opts := pipeline.Options{
		Formats: []string{format},
		Cells:   q.Has("cells"),
		Guides:  q.Has("guides"),
		Refresh: q.Has("refresh"),
	}
	if v := q.Get("scale"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, errs.New(errs.ErrCodeInvalidInput, "invalid scale: %q", v)
		}
		opts.Scale = f
	}
	if v := q.Get("width"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, errs.New(errs.ErrCodeInvalidInput, "invalid text width: %q", v)
		}
		opts.TextWidth = n
	}
	return opts, pipeline.ValidateFormat(format)
}

// fail writes err and logs it when it carries no code.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errs.GetCode(err) == "" {
		s.logger.Error("request failed",
			"path", r.URL.Path,
			"error", err,
			"request_id", RequestIDFrom(r.Context()))
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "error", err)
	}
	writeError(w, err)
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
