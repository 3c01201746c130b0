// Package engine provides the editor session facade.
//
// An Editor owns one headless document and combines the native command
// bridge, the style tracker, the block model and the serializer behind a
// command/query API suitable for a toolbar or script driver.
//
// # Architecture
//
// The facade is built on several sub-packages:
//
//   - surface: headless editable region standing in for the native engine
//   - bridge: the fixed native command vocabulary
//   - style: active format signature and exclusive groups
//   - block: block sequence and structural operations
//   - media: media validation and the ordered file-read queue
//   - serialize: markup, structured document and node tree output
//
// # Thread Safety
//
// Editor operations are serialized by a mutex. File-based media insertion
// reads on a worker goroutine and applies its result under the same lock,
// so completions land in call order. Bus subscribers of surface events run
// inside that lock and must not call back into the Editor; OnChange
// callbacks run after it is released.
//
// # Basic Usage
//
//	e, err := engine.New()
//	if err != nil {
//		return err
//	}
//	defer e.Close()
//
//	e.ApplyFormat("bold", "")
//	e.TypeText("Hello")
//
//	doc := e.Document() // blocks: [{text "Hello" bold}]
//
// # Loading Content
//
//	e.LoadMarkup("<p>Hi</p>")
//	e.LoadMarkdown("# Title")
//	e.LoadDocument(data) // serialized JSON
//
// Loaded markup is sanitized with the configured policy and split into
// blocks.
//
// # Source Mode
//
// ToggleSourceMode switches between the block view and a raw markup
// buffer. Entering copies the markup into the buffer once; leaving loads
// the edited buffer back. Commands are no-ops while the buffer is shown.
package engine
