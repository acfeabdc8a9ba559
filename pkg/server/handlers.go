package server

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/nodeflow/pkg/buildinfo"
	nferrors "github.com/matzehuels/nodeflow/pkg/errors"
	"github.com/matzehuels/nodeflow/pkg/flow"
	"github.com/matzehuels/nodeflow/pkg/graph"
)

// =============================================================================
// Requests and Responses
// =============================================================================

// CreateNodeRequest is the body of POST /api/nodes.
type CreateNodeRequest struct {
	Type     string         `json:"type" validate:"required,max=64"`
	Position graph.Position `json:"position"`
}

// CreateEdgeRequest is the body of POST /api/edges.
type CreateEdgeRequest struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

// SelectionRequest is the body of POST /api/selection.
type SelectionRequest struct {
	Mode string   `json:"mode" validate:"required,oneof=all none only set"`
	ID   string   `json:"id,omitempty" validate:"required_if=Mode only"`
	IDs  []string `json:"ids,omitempty"`
}

// MoveRequest is the body of POST /api/nodes/move.
type MoveRequest struct {
	Positions map[string]graph.Position `json:"positions" validate:"required"`
}

func (r CreateNodeRequest) check() error { return nferrors.ValidateNodeType(r.Type) }

func (r CreateEdgeRequest) check() error {
	if err := nferrors.ValidateID(r.Source); err != nil {
		return err
	}
	return nferrors.ValidateID(r.Target)
}

func (r SelectionRequest) check() error {
	if r.ID != "" {
		if err := nferrors.ValidateID(r.ID); err != nil {
			return err
		}
	}
	for _, id := range r.IDs {
		if err := nferrors.ValidateID(id); err != nil {
			return err
		}
	}
	return nil
}

func (r MoveRequest) check() error {
	for id := range r.Positions {
		if err := nferrors.ValidateID(id); err != nil {
			return err
		}
	}
	return nil
}

// PasteRequest is the body of POST /api/paste.
type PasteRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// StateResponse is returned by every command.
type StateResponse struct {
	Graph   graph.Graph `json:"graph"`
	CanUndo bool        `json:"canUndo"`
	CanRedo bool        `json:"canRedo"`
	Changed *bool       `json:"changed,omitempty"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status    string         `json:"status"`
	Build     buildinfo.Info `json:"build"`
	Clipboard string         `json:"clipboard"`
	Nodes     int            `json:"nodes"`
	Edges     int            `json:"edges"`
}

func (s *Server) state() StateResponse {
	snap := s.editor.Snapshot()
	return StateResponse{
		Graph:   graph.FromState(snap.State),
		CanUndo: snap.CanUndo(),
		CanRedo: snap.CanRedo(),
	}
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	st := s.editor.State()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Build:     buildinfo.Get(),
		Clipboard: s.editor.ClipboardName(),
		Nodes:     len(st.Nodes),
		Edges:     len(st.Edges),
	})
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) putGraph(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, nferrors.Wrap(nferrors.ErrCodeInvalidInput, err, "read body"))
		return
	}
	if err := s.editor.Load(r.Context(), raw); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) exportGraph(w http.ResponseWriter, r *http.Request) {
	data, err := s.editor.Save()
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="flow.json"`)
	w.Write(data)
}

func (s *Server) listNodes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, graph.FromNodes(s.editor.State().Nodes))
}

func (s *Server) createNode(w http.ResponseWriter, r *http.Request) {
	var req CreateNodeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	pos := flow.Position{X: req.Position.X, Y: req.Position.Y}
	n, err := s.editor.CreateNode(r.Context(), flow.NodeType(req.Type), pos)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, graph.FromNodes([]flow.Node{n})[0])
}

func (s *Server) createEdge(w http.ResponseWriter, r *http.Request) {
	var req CreateEdgeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	e, err := s.editor.Connect(r.Context(), flow.NodeID(req.Source), flow.NodeID(req.Target))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, graph.FromEdges([]flow.Edge{e})[0])
}

func (s *Server) moveNodes(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	positions := make(map[flow.NodeID]flow.Position, len(req.Positions))
	for id, p := range req.Positions {
		positions[flow.NodeID(id)] = flow.Position{X: p.X, Y: p.Y}
	}
	if err := s.editor.MoveNodes(r.Context(), positions); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) setSelection(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	ctx := r.Context()
	var err error
	switch req.Mode {
	case "all":
		err = s.editor.SelectAll(ctx)
	case "none":
		err = s.editor.DeselectAll(ctx)
	case "only":
		err = s.editor.SelectOnly(ctx, flow.NodeID(req.ID))
	case "set":
		ids := make([]flow.NodeID, len(req.IDs))
		for i, id := range req.IDs {
			ids[i] = flow.NodeID(id)
		}
		err = s.editor.Select(ctx, ids)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) runCommand(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")

	var err error
	var changed *bool
	switch name {
	case "delete":
		err = s.editor.DeleteSelected(ctx)
	case "copy":
		err = s.editor.Copy(ctx)
	case "cut":
		err = s.editor.Cut(ctx)
	case "undo":
		ok := s.editor.Undo(ctx)
		changed = &ok
	case "redo":
		ok := s.editor.Redo(ctx)
		changed = &ok
	default:
		writeError(w, nferrors.New(nferrors.ErrCodeNotFound, "unknown command %q", name))
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	resp := s.state()
	resp.Changed = changed
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getClipboard(w http.ResponseWriter, r *http.Request) {
	p, err := s.editor.ReadClipboard(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if p.Nodes == nil {
		p.Nodes = []graph.Node{}
	}
	if p.Edges == nil {
		p.Edges = []graph.Edge{}
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) paste(w http.ResponseWriter, r *http.Request) {
	var req PasteRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	anchor := flow.Position{X: req.X, Y: req.Y}
	select {
	case err := <-s.editor.PasteAsync(r.Context(), anchor):
		if err != nil {
			writeError(w, err)
			return
		}
	case <-r.Context().Done():
		return
	}
	writeJSON(w, http.StatusOK, s.state())
}
