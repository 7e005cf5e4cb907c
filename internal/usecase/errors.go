package usecase

import (
	"errors"
	"fmt"
)

// ErrorKind classifies tool failures
type ErrorKind int

const (
	// KindValidation covers unknown tools and bad arguments, raised before any database contact
	KindValidation ErrorKind = iota + 1
	// KindExecution covers failures reported by the database
	KindExecution
	// KindInternal covers everything else, including recovered panics
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindExecution:
		return "execution"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// ErrUnknownTool is wrapped by the error returned for names outside the catalog
var ErrUnknownTool = errors.New("unknown tool")

// ToolError is the structured failure of a tool call
type ToolError struct {
	Kind    ErrorKind
	Tool    string
	Message string
	Err     error
}

func (e *ToolError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String() + " error"
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

func validationError(tool Tool, format string, v ...interface{}) *ToolError {
	return &ToolError{
		Kind:    KindValidation,
		Tool:    string(tool),
		Message: fmt.Sprintf(format, v...),
	}
}

func unknownToolError(name string) *ToolError {
	return &ToolError{
		Kind:    KindValidation,
		Tool:    name,
		Message: "Unknown tool: " + name,
		Err:     ErrUnknownTool,
	}
}

// executionError keeps the driver's message verbatim
func executionError(tool Tool, err error) *ToolError {
	return &ToolError{
		Kind:    KindExecution,
		Tool:    string(tool),
		Message: err.Error(),
		Err:     err,
	}
}

func internalError(tool string, err error) *ToolError {
	return &ToolError{
		Kind:    KindInternal,
		Tool:    tool,
		Message: err.Error(),
		Err:     err,
	}
}

// asToolError converts any error into a ToolError, defaulting to KindInternal
func asToolError(tool string, err error) *ToolError {
	var te *ToolError
	if errors.As(err, &te) {
		return te
	}
	return internalError(tool, err)
}
