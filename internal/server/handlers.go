package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/matzehuels/stageflow/pkg/errors"
	"github.com/matzehuels/stageflow/pkg/graph"
	"github.com/matzehuels/stageflow/pkg/pipeline"
)

// contentTypes maps render formats to response content types.
var contentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
}

// selectRequest is the body of POST /v1/select.
type selectRequest struct {
	Stages json.RawMessage `json:"stages"`
	NodeID *int            `json:"node_id"`
}

// selectResponse is the reply of POST /v1/select.
type selectResponse struct {
	NodeID int    `json:"node_id"`
	Stage  string `json:"stage"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleLayout computes a layout and returns it as JSON.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	in, opts, err := s.readRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	l, err := s.runner.Layout(r.Context(), in, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, graph.FromLayout(l))
}

// handleRender computes a layout and renders it in the format given by the
// format query parameter (default json).
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatJSON
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}

	in, opts, err := s.readRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	l, err := s.runner.Layout(r.Context(), in, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Formats = []string{format}
	artifacts, err := s.runner.Render(r.Context(), graph.FromLayout(l), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

// handleSelect maps a clicked stage id to the stage name.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}
	if req.NodeID == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "node_id is required"))
		return
	}
	in, err := graph.UnmarshalInput(req.Stages)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	name, err := s.runner.Select(in, *req.NodeID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, selectResponse{NodeID: *req.NodeID, Stage: name})
}

// readRequest decodes stage records and optional options from the body.
func (s *Server) readRequest(w http.ResponseWriter, r *http.Request) (graph.Input, pipeline.Options, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return graph.Input{}, pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}

	in, err := graph.UnmarshalInput(body)
	if err != nil {
		return graph.Input{}, pipeline.Options{}, err
	}

	opts := s.defaults
	var wrapper struct {
		Options *pipeline.Options `json:"options"`
	}
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(body, &wrapper); err != nil {
			return graph.Input{}, pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidOption, err, "decode options")
		}
		if wrapper.Options != nil {
			opts = *wrapper.Options
		}
	}
	opts.Logger = s.logger.With("request_id", RequestIDFrom(r.Context()))
	return in, opts, nil
}
