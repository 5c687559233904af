// Package dnd tracks a board drag gesture and turns a drop into at most one status change.
package dnd

import (
	"context"

	"pulse-cli/internal/model"
)

// StatusChanger applies a status change (the collection controller).
type StatusChanger interface {
	ChangeStatus(ctx context.Context, id model.ID, status model.Status) error
}

// StatusChange is the transition a drop resolved to.
type StatusChange struct {
	ID   model.ID
	From model.Status
	To   model.Status
}

// Handler is not safe for concurrent use; it is driven from the UI event loop.
type Handler struct {
	changer StatusChanger

	dragged *model.Project
	hovered *model.Status
	// depth counts nested enter/leave pairs; hover clears only when it returns to zero.
	depth int
}

// New returns a handler whose Drop applies changes through changer. Event-loop UIs that
// must not block pass nil and apply the result of Release themselves.
func New(changer StatusChanger) *Handler {
	return &Handler{changer: changer}
}

func (h *Handler) DragStart(p model.Project) {
	cp := p
	h.dragged = &cp
	h.hovered = nil
	h.depth = 0
}

func (h *Handler) DragEnter(status model.Status) {
	h.depth++
	st := status
	h.hovered = &st
}

func (h *Handler) DragLeave() {
	if h.depth > 0 {
		h.depth--
	}
	if h.depth == 0 {
		h.hovered = nil
	}
}

// DragCancel abandons the gesture without a status change.
func (h *Handler) DragCancel() {
	h.reset()
}

// Release resolves a drop on status and resets the gesture state.
// ok is false when nothing is dragged or the status is unchanged.
func (h *Handler) Release(status model.Status) (StatusChange, bool) {
	defer h.reset()
	if h.dragged == nil || h.dragged.Status == status {
		return StatusChange{}, false
	}
	return StatusChange{ID: h.dragged.ID, From: h.dragged.Status, To: status}, true
}

// Drop releases on status and applies the resulting change, if any, blocking until it is
// done. Without a changer it only resets the gesture.
func (h *Handler) Drop(ctx context.Context, status model.Status) error {
	ch, ok := h.Release(status)
	if !ok || h.changer == nil {
		return nil
	}
	return h.changer.ChangeStatus(ctx, ch.ID, ch.To)
}

func (h *Handler) reset() {
	h.dragged = nil
	h.hovered = nil
	h.depth = 0
}

// Dragged returns the project being dragged.
func (h *Handler) Dragged() (model.Project, bool) {
	if h.dragged == nil {
		return model.Project{}, false
	}
	return *h.dragged, true
}

// Hovered returns the highlighted drop target.
func (h *Handler) Hovered() (model.Status, bool) {
	if h.hovered == nil {
		return "", false
	}
	return *h.hovered, true
}

func (h *Handler) Active() bool { return h.dragged != nil }

func (h *Handler) Depth() int { return h.depth }
