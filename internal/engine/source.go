package engine

import (
	"context"

	"github.com/dshills/richtext/internal/event"
	"github.com/dshills/richtext/internal/event/events"
)

// ToggleSourceMode switches between the block view and the source buffer
// and reports the new mode. Entering copies the markup into the buffer;
// leaving loads the buffer back through the sanitizer.
func (e *Editor) ToggleSourceMode() (bool, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return false, ErrEditorClosed
	}
	if !e.sourceMode {
		e.source = e.surf.InnerHTML()
		e.sourceMode = true
	} else {
		if err := e.loadMarkupLocked(e.source); err != nil {
			e.unlock()
			return true, err
		}
		e.sourceMode = false
		e.tracker.Refresh(context.Background(), "")
	}
	mode := e.sourceMode
	e.outbox = append(e.outbox, event.NewEvent(events.TopicDocumentModeChanged, events.DocumentModeChanged{SourceMode: mode}, eventSource))
	e.unlock()
	return mode, nil
}

// SourceMode reports whether the source buffer is shown.
func (e *Editor) SourceMode() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sourceMode
}

// Source returns the source buffer.
func (e *Editor) Source() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.source
}

// SetSource replaces the source buffer. It does nothing outside source
// mode.
func (e *Editor) SetSource(markup string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.sourceMode || e.closed {
		return false
	}
	e.source = markup
	return true
}
