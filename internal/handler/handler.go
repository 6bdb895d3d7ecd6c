package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"flowview/internal/diagram"
	"flowview/internal/domain"
	"flowview/internal/menu"
	"flowview/internal/service"
	"flowview/internal/viewport"
)

// Surface is the layout engine side of the renderer: it receives node
// positions and knows the frame it last drew
type Surface interface {
	SetPositions(positions []domain.NodePosition)
	Frame() diagram.Frame
}

// DiagramHandler handles gesture, menu and host notification requests
type DiagramHandler struct {
	d       *service.Dispatcher
	surface Surface
	timeout time.Duration
}

// NewDiagramHandler creates a handler driving the controller behind d
func NewDiagramHandler(d *service.Dispatcher, surface Surface) *DiagramHandler {
	return &DiagramHandler{d: d, surface: surface, timeout: 5 * time.Second}
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// NodeRequest addresses one node
type NodeRequest struct {
	ID int `json:"id"`
}

// KeyRequest is one key press. Key accepts DOM names ("ArrowUp") as well as
// short spellings ("up", "ctrl+down").
type KeyRequest struct {
	Key  string `json:"key"`
	Ctrl bool   `json:"ctrl"`
}

// InvokeRequest names a menu action by its label
type InvokeRequest struct {
	Action string `json:"action"`
}

// ToggleRequest carries a boolean host notification
type ToggleRequest struct {
	Value bool `json:"value"`
}

// ViewportRequest reports the drawing surface size
type ViewportRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Routes registers the handler on mux
func (h *DiagramHandler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/state", h.GetState)
	mux.HandleFunc("GET /api/frame", h.GetFrame)

	mux.HandleFunc("POST /api/gesture/click", h.Click)
	mux.HandleFunc("POST /api/gesture/dblclick", h.DoubleClick)
	mux.HandleFunc("POST /api/gesture/zoomstart", h.ZoomStart)
	mux.HandleFunc("POST /api/gesture/background", h.ClickBackground)
	mux.HandleFunc("POST /api/gesture/key", h.KeyDown)

	mux.HandleFunc("GET /api/menu/{id}", h.GetMenu)
	mux.HandleFunc("POST /api/menu/{id}/invoke", h.InvokeMenu)

	mux.HandleFunc("POST /api/layout", h.SetLayout)
	mux.HandleFunc("POST /api/viewport", h.Resize)

	mux.HandleFunc("POST /api/host/data-changed", h.DataChanged)
	mux.HandleFunc("POST /api/host/file-loaded", h.FileLoaded)
	mux.HandleFunc("POST /api/host/select", h.SelectRequested)
	mux.HandleFunc("POST /api/host/event-names", h.toggle(h.d.SetEventNamesVisible))
	mux.HandleFunc("POST /api/host/event-params", h.toggle(h.d.SetEventParamsVisible))
	mux.HandleFunc("POST /api/host/actions-prohibited", h.toggle(h.d.SetActionsProhibited))
}

// GetState returns the controller state
func (h *DiagramHandler) GetState(w http.ResponseWriter, r *http.Request) {
	var state service.State
	if !h.do(w, r, func(c *service.Controller) error {
		state = c.State()
		return nil
	}) {
		return
	}
	writeJSON(w, state, http.StatusOK)
}

// GetFrame returns the frame the layout engine last received
func (h *DiagramHandler) GetFrame(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.surface.Frame(), http.StatusOK)
}

// Click selects a node
func (h *DiagramHandler) Click(w http.ResponseWriter, r *http.Request) {
	var req NodeRequest
	if !decode(w, r, &req) {
		return
	}
	if !h.do(w, r, func(c *service.Controller) error { return c.ClickNode(req.ID) }) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DoubleClick opens the host editor for a node
func (h *DiagramHandler) DoubleClick(w http.ResponseWriter, r *http.Request) {
	var req NodeRequest
	if !decode(w, r, &req) {
		return
	}
	if !h.do(w, r, func(c *service.Controller) error { return c.DoubleClickNode(req.ID) }) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ZoomStart marks the start of a pan or zoom gesture
func (h *DiagramHandler) ZoomStart(w http.ResponseWriter, r *http.Request) {
	if !h.do(w, r, func(c *service.Controller) error {
		c.ZoomStart()
		return nil
	}) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClickBackground handles a click on empty canvas
func (h *DiagramHandler) ClickBackground(w http.ResponseWriter, r *http.Request) {
	var cleared bool
	if !h.do(w, r, func(c *service.Controller) error {
		cleared = c.ClickBackground()
		return nil
	}) {
		return
	}
	writeJSON(w, map[string]bool{"cleared": cleared}, http.StatusOK)
}

// KeyDown handles a key press
func (h *DiagramHandler) KeyDown(w http.ResponseWriter, r *http.Request) {
	var req KeyRequest
	if !decode(w, r, &req) {
		return
	}
	key, err := service.ParseKey(req.Key)
	if err != nil {
		writeError(w, "Invalid key", err.Error(), http.StatusBadRequest)
		return
	}
	key.Ctrl = key.Ctrl || req.Ctrl

	if !h.do(w, r, func(c *service.Controller) error {
		c.KeyDown(key)
		return nil
	}) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetMenu returns the context menu for a node
func (h *DiagramHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var items []menu.Item
	if !h.do(w, r, func(c *service.Controller) error {
		var err error
		items, err = c.ContextMenu(id)
		return err
	}) {
		return
	}
	writeJSON(w, items, http.StatusOK)
}

// InvokeMenu runs a context menu action
func (h *DiagramHandler) InvokeMenu(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req InvokeRequest
	if !decode(w, r, &req) {
		return
	}
	action, err := menu.ParseAction(req.Action)
	if err != nil {
		writeError(w, "Invalid action", err.Error(), http.StatusBadRequest)
		return
	}
	if !h.do(w, r, func(c *service.Controller) error { return c.InvokeMenu(id, action) }) {
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// SetLayout records node positions reported by the layout engine
func (h *DiagramHandler) SetLayout(w http.ResponseWriter, r *http.Request) {
	var positions []domain.NodePosition
	if !decode(w, r, &positions) {
		return
	}
	h.surface.SetPositions(positions)
	w.WriteHeader(http.StatusNoContent)
}

// Resize records the drawing surface size
func (h *DiagramHandler) Resize(w http.ResponseWriter, r *http.Request) {
	var req ViewportRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Width <= 0 || req.Height <= 0 {
		writeError(w, "Invalid viewport", "width and height must be positive", http.StatusBadRequest)
		return
	}
	var t viewport.Transform
	if !h.do(w, r, func(c *service.Controller) error {
		c.Resize(req.Width, req.Height)
		t = c.State().Transform
		return nil
	}) {
		return
	}
	writeJSON(w, t, http.StatusOK)
}

// DataChanged relays the host's data-changed notification
func (h *DiagramHandler) DataChanged(w http.ResponseWriter, r *http.Request) {
	h.d.DataChanged()
	w.WriteHeader(http.StatusAccepted)
}

// FileLoaded relays the host's file-loaded notification
func (h *DiagramHandler) FileLoaded(w http.ResponseWriter, r *http.Request) {
	h.d.FileLoaded()
	w.WriteHeader(http.StatusAccepted)
}

// SelectRequested relays a host request to select a node
func (h *DiagramHandler) SelectRequested(w http.ResponseWriter, r *http.Request) {
	var req NodeRequest
	if !decode(w, r, &req) {
		return
	}
	h.d.SelectRequested(req.ID)
	w.WriteHeader(http.StatusAccepted)
}

func (h *DiagramHandler) toggle(set func(bool)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ToggleRequest
		if !decode(w, r, &req) {
			return
		}
		set(req.Value)
		w.WriteHeader(http.StatusAccepted)
	}
}

// do runs fn on the controller loop and writes an error response on failure
func (h *DiagramHandler) do(w http.ResponseWriter, r *http.Request, fn func(c *service.Controller) error) bool {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var opErr error
	if err := h.d.Do(ctx, func(c *service.Controller) { opErr = fn(c) }); err != nil {
		log.Printf("Controller unavailable: %v", err)
		writeError(w, "Controller unavailable", err.Error(), http.StatusServiceUnavailable)
		return false
	}
	if opErr != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(opErr, service.ErrUnknownNode):
			status = http.StatusNotFound
		case errors.Is(opErr, service.ErrActionUnavailable):
			status = http.StatusConflict
		}
		writeError(w, http.StatusText(status), opErr.Error(), status)
		return false
	}
	return true
}

// Helper functions

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, "Invalid node ID", err.Error(), http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

func writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}
