package core

// Part represents a polymorphic segment of role-based content. Concrete part
// types implement the unexported isPart marker enabling a closed set.
type Part interface{ isPart() }

// CodeLanguage is the programming language of an ExecutableCodePart.
type CodeLanguage string

const (
	LanguageUnspecified CodeLanguage = "LANGUAGE_UNSPECIFIED"
	LanguagePython      CodeLanguage = "PYTHON"
)

// Outcome is the result status of a code execution.
type Outcome string

const (
	OutcomeUnspecified      Outcome = "OUTCOME_UNSPECIFIED"
	OutcomeOK               Outcome = "OUTCOME_OK"
	OutcomeFailed           Outcome = "OUTCOME_FAILED"
	OutcomeDeadlineExceeded Outcome = "OUTCOME_DEADLINE_EXCEEDED"
)

// TextPart is a plain text content segment.
type TextPart struct {
	Text string
}

// isPart implements the Part interface for TextPart.
func (TextPart) isPart() {}

// ThoughtPart marks internal model reasoning.
type ThoughtPart struct {
	Thought bool
}

// isPart implements the Part interface for ThoughtPart.
func (ThoughtPart) isPart() {}

// ExecutableCodePart is code generated by the model for execution.
type ExecutableCodePart struct {
	Code     string
	Language CodeLanguage
}

// isPart implements the Part interface for ExecutableCodePart.
func (ExecutableCodePart) isPart() {}

// CodeExecutionResultPart is the outcome of running an ExecutableCodePart.
type CodeExecutionResultPart struct {
	Outcome Outcome
	Output  string
}

// isPart implements the Part interface for CodeExecutionResultPart.
func (CodeExecutionResultPart) isPart() {}

// FileDataPart references a file by URI.
type FileDataPart struct {
	FileURI  string
	MIMEType string
}

// isPart implements the Part interface for FileDataPart.
func (FileDataPart) isPart() {}

// InlineDataPart carries an inlined blob. Data is kept exactly as received
// (base64 on the wire).
type InlineDataPart struct {
	Data     string
	MIMEType string
}

// isPart implements the Part interface for InlineDataPart.
func (InlineDataPart) isPart() {}

// FunctionCallPart describes a tool/function invocation request.
//
// Args and Response hold values in encoding/json's decoded form (float64,
// string, bool, nil, []any, map[string]any). Other Go values encode fine but
// decode back in that form, so an int argument returns as float64.
type FunctionCallPart struct {
	ID   string // Optional stable id, echoed by the matching response
	Name string // Tool / function name
	Args any    // Decoded JSON arguments
}

// isPart implements the Part interface for FunctionCallPart.
func (FunctionCallPart) isPart() {}

// FunctionResponsePart describes the outcome of a function call. Response
// follows the same value rules as FunctionCallPart.Args.
type FunctionResponsePart struct {
	ID       string // Matches originating FunctionCallPart ID
	Name     string
	Response any
}

// isPart implements the Part interface for FunctionResponsePart.
func (FunctionResponsePart) isPart() {}

// VideoMetadataPart annotates a video segment. Offsets are duration strings
// such as "1.5s".
type VideoMetadataPart struct {
	StartOffset string
	EndOffset   string
}

// isPart implements the Part interface for VideoMetadataPart.
func (VideoMetadataPart) isPart() {}

// PartText returns the text of p if it is a TextPart.
func PartText(p Part) (string, bool) {
	t, ok := p.(TextPart)
	return t.Text, ok
}
