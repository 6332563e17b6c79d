package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/dihm/leveldiagram/pkg/cache"
	"github.com/dihm/leveldiagram/pkg/diagram"
	"github.com/dihm/leveldiagram/pkg/errors"
	"github.com/dihm/leveldiagram/pkg/layout"
	"github.com/dihm/leveldiagram/pkg/pipeline"
	"github.com/dihm/leveldiagram/pkg/store"

	"github.com/go-chi/chi/v5"
)

// documentRequest is the body of POST and PUT document calls.
type documentRequest struct {
	Name    string           `json:"name"`
	Owner   string           `json:"owner,omitempty"`
	Diagram diagram.Document `json:"diagram"`
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	st, ok := s.requireStore(w)
	if !ok {
		return
	}

	docs, err := st.List(r.Context(), r.URL.Query().Get("owner"))
	if err != nil {
		writeError(w, s.logger, errors.Wrap(errors.ErrCodeStorage, err, "list documents"))
		return
	}
	if docs == nil {
		docs = []*store.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	st, ok := s.requireStore(w)
	if !ok {
		return
	}

	req, ok := s.decodeDocumentRequest(w, r)
	if !ok {
		return
	}

	doc := store.New(req.Name, req.Owner, req.Diagram)
	if err := st.Put(r.Context(), doc); err != nil {
		writeError(w, s.logger, wrapPutError(err))
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	st, ok := s.requireStore(w)
	if !ok {
		return
	}
	doc, ok := s.fetchDocument(w, r, st)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handlePutDocument(w http.ResponseWriter, r *http.Request) {
	st, ok := s.requireStore(w)
	if !ok {
		return
	}
	doc, ok := s.fetchDocument(w, r, st)
	if !ok {
		return
	}

	req, ok := s.decodeDocumentRequest(w, r)
	if !ok {
		return
	}

	doc.Name = req.Name
	doc.Owner = req.Owner
	doc.Diagram = req.Diagram
	doc.Geometry = nil // stale after the diagram changed
	if err := st.Put(r.Context(), doc); err != nil {
		writeError(w, s.logger, wrapPutError(err))
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	st, ok := s.requireStore(w)
	if !ok {
		return
	}
	id, ok := s.parseDocumentID(w, r)
	if !ok {
		return
	}

	err := st.Delete(r.Context(), id)
	if err == store.ErrNotFound {
		writeError(w, s.logger, errors.New(errors.ErrCodeDocumentNotFound, "document %s not found", id))
		return
	}
	if err != nil {
		writeError(w, s.logger, errors.Wrap(errors.ErrCodeStorage, err, "delete document"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDocumentLayout computes geometry for a stored document and persists
// it alongside the diagram so the gallery can serve previews.
func (s *Server) handleDocumentLayout(w http.ResponseWriter, r *http.Request) {
	st, ok := s.requireStore(w)
	if !ok {
		return
	}
	doc, ok := s.fetchDocument(w, r, st)
	if !ok {
		return
	}

	var opts pipeline.Options
	if r.ContentLength > 0 {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&opts); err != nil {
			writeError(w, s.logger, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode options"))
			return
		}
	}

	d, err := diagram.ToDiagram(doc.Diagram)
	if err != nil {
		writeError(w, s.logger, errors.Wrap(errors.ErrCodeInvalidDiagram, err, "stored diagram invalid"))
		return
	}

	runner := s.runner
	if doc.Owner != "" {
		// Gallery layouts are keyed per owner so one owner's cache
		// entries can be evicted without touching another's.
		runner = runner.WithKeyer(cache.NewScopedKeyer(nil, "owner:"+doc.Owner+":"))
	}
	g, err := runner.ComputeLayout(r.Context(), d, opts)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	data, err := layout.MarshalGeometry(g)
	if err != nil {
		writeError(w, s.logger, errors.Wrap(errors.ErrCodeInternal, err, "serialize geometry"))
		return
	}
	doc.Geometry = data
	if err := st.Put(r.Context(), doc); err != nil {
		writeError(w, s.logger, errors.Wrap(errors.ErrCodeStorage, err, "save geometry"))
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// requireStore rejects gallery calls when no store is configured.
func (s *Server) requireStore(w http.ResponseWriter) (store.Store, bool) {
	if s.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{
			Code:    string(errors.ErrCodeUnsupported),
			Message: "document storage is not configured",
		})
		return nil, false
	}
	return s.store, true
}

func (s *Server) decodeDocumentRequest(w http.ResponseWriter, r *http.Request) (documentRequest, bool) {
	var req documentRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, s.logger, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return documentRequest{}, false
	}
	if err := errors.ValidateDocumentName(req.Name); err != nil {
		writeError(w, s.logger, err)
		return documentRequest{}, false
	}
	// Reject diagrams that cannot be rebuilt.
	if _, err := diagram.ToDiagram(req.Diagram); err != nil {
		writeError(w, s.logger, errors.Wrap(errors.ErrCodeInvalidDiagram, err, "invalid diagram"))
		return documentRequest{}, false
	}
	return req, true
}

func (s *Server) parseDocumentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.logger, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid document id"))
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) fetchDocument(w http.ResponseWriter, r *http.Request, st store.Store) (*store.Document, bool) {
	id, ok := s.parseDocumentID(w, r)
	if !ok {
		return nil, false
	}

	doc, err := st.Get(r.Context(), id)
	if err == store.ErrNotFound {
		writeError(w, s.logger, errors.New(errors.ErrCodeDocumentNotFound, "document %s not found", id))
		return nil, false
	}
	if err != nil {
		writeError(w, s.logger, errors.Wrap(errors.ErrCodeStorage, err, "fetch document"))
		return nil, false
	}
	return doc, true
}

// wrapPutError classifies store.Put failures: a duplicate name is the
// caller's mistake, anything else is a backend fault.
func wrapPutError(err error) error {
	if err == store.ErrDuplicateName {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "document name already in use")
	}
	return errors.Wrap(errors.ErrCodeStorage, err, "save document")
}
