package markup

import "fmt"

// IssueType classifies a diagnostic.
type IssueType int

const (
	UnsupportedSyntax IssueType = iota
	MalformedBlock
	InvalidMarker
	FileError
)

func (t IssueType) String() string {
	switch t {
	case UnsupportedSyntax:
		return "UNSUPPORTED_SYNTAX"
	case MalformedBlock:
		return "MALFORMED_BLOCK"
	case InvalidMarker:
		return "INVALID_MARKER"
	case FileError:
		return "FILE_ERROR"
	}
	return "UNKNOWN"
}

// Issue is one positional diagnostic. Issues are value types and never
// mutated after creation.
type Issue struct {
	Line       int
	Type       IssueType
	Message    string
	Suggestion string
}

// String formats the issue the way the CLI prints it.
func (i Issue) String() string {
	s := fmt.Sprintf("Line %d: %s", i.Line, i.Message)
	if i.Suggestion != "" {
		s += fmt.Sprintf(" (suggestion: %s)", i.Suggestion)
	}
	return s
}
