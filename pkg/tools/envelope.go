package tools

import "strings"

// ErrorPrefix starts the text of every failure envelope
const ErrorPrefix = "Error: "

// TextContent represents a text content item in a response
type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Envelope is the uniform response returned for every tool call
type Envelope struct {
	Content []TextContent `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// NewEnvelope creates a new empty Envelope
func NewEnvelope() *Envelope {
	return &Envelope{
		Content: make([]TextContent, 0),
	}
}

// WithText adds a text content item to the envelope
func (e *Envelope) WithText(text string) *Envelope {
	e.Content = append(e.Content, TextContent{
		Type: "text",
		Text: text,
	})
	return e
}

// FromString creates a success envelope from a string
func FromString(text string) *Envelope {
	return NewEnvelope().WithText(text)
}

// FromError creates a failure envelope whose text is "Error: <message>"
func FromError(message string) *Envelope {
	env := NewEnvelope().WithText(ErrorPrefix + message)
	env.IsError = true
	return env
}

// Text joins the text of all content items
func (e *Envelope) Text() string {
	parts := make([]string, 0, len(e.Content))
	for _, c := range e.Content {
		parts = append(parts, c.Text)
	}
	return strings.Join(parts, "\n")
}
