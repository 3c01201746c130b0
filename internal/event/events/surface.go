// Package events defines the topics and payloads published on the editor
// event bus.
package events

import "github.com/dshills/richtext/internal/event/topic"

// Native surface topics. These mirror the host events a browser editing
// region fires and are the only triggers for state re-derivation besides
// explicit commands.
const (
	// TopicSurfaceInput is published after the surface content changed.
	TopicSurfaceInput topic.Topic = "surface.input"

	// TopicSurfaceClick is published on pointer interaction with an editable.
	TopicSurfaceClick topic.Topic = "surface.click"

	// TopicSurfacePointerUp is published on pointer release.
	TopicSurfacePointerUp topic.Topic = "surface.pointer.up"

	// TopicSurfaceKeyUp is published on key release.
	TopicSurfaceKeyUp topic.Topic = "surface.key.up"

	// TopicSurfaceFocus is published when focus moves (TargetID may be empty).
	TopicSurfaceFocus topic.Topic = "surface.focus"
)

// InputType describes what kind of change produced a SurfaceInput.
type InputType string

// Input types.
const (
	InputText      InputType = "insertText"
	InputHTML      InputType = "insertHTML"
	InputFormat    InputType = "format"
	InputStructure InputType = "structure"
	// InputRetag marks a block replaced by one with another tag whose
	// annotation was carried over.
	InputRetag InputType = "retag"
	InputRemove    InputType = "remove"
	InputReplace   InputType = "replace"
)

// SurfaceInput is published after the surface content changed.
type SurfaceInput struct {
	// TargetID is the data-id of the editable that received the change,
	// empty for whole-surface replacement.
	TargetID string
	Type     InputType
	// Command is the native command name for InputFormat changes.
	Command string
}

// SurfacePointer is published for click and pointer-up events.
type SurfacePointer struct {
	// TargetID is the data-id of the editable under the pointer.
	TargetID string
}

// SurfaceKey is published for key-up events.
type SurfaceKey struct {
	// TargetID is the focused editable, if any.
	TargetID string
}

// SurfaceFocus is published when the focused editable changes.
type SurfaceFocus struct {
	PreviousID string
	TargetID   string
}
