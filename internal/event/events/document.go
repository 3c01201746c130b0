package events

import "github.com/dshills/richtext/internal/event/topic"

// Document-level topics published by the editor facade.
const (
	// TopicDocumentChanged is published when the serialized markup differs
	// from the last published markup.
	TopicDocumentChanged topic.Topic = "document.changed"

	// TopicDocumentBlockHealed is published when an empty document received
	// a default block.
	TopicDocumentBlockHealed topic.Topic = "document.block.healed"

	// TopicDocumentModeChanged is published when source mode is toggled.
	TopicDocumentModeChanged topic.Topic = "document.mode.changed"

	// TopicStyleSignatureChanged is published when the active format
	// signature changes.
	TopicStyleSignatureChanged topic.Topic = "style.signature.changed"
)

// DocumentChanged carries the new markup.
type DocumentChanged struct {
	Markup string
}

// DocumentBlockHealed identifies the inserted default block.
type DocumentBlockHealed struct {
	BlockID string
}

// DocumentModeChanged reports the new source-mode state.
type DocumentModeChanged struct {
	SourceMode bool
}

// StyleSignatureChanged carries the previous and current active tokens.
type StyleSignatureChanged struct {
	Previous []string
	Current  []string
}
