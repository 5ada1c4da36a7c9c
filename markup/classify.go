package markup

import (
	"regexp"
	"strings"
)

// Marker is the sentinel delimiting decorated blocks.
const Marker = ";;;"

// CodeFence suspends all marker interpretation until the matching fence.
const CodeFence = "```"

// LineClass tags one input line.
type LineClass int

const (
	LineBlank LineClass = iota
	LineCodeFence
	LineBlockOpen
	LineBlockClose
	LineListItem
	LineMarkdownHeading // legacy syntax, reported by the validator
	LineText
)

func (c LineClass) String() string {
	switch c {
	case LineBlank:
		return "blank"
	case LineCodeFence:
		return "code_fence"
	case LineBlockOpen:
		return "block_open"
	case LineBlockClose:
		return "block_close"
	case LineListItem:
		return "list_item"
	case LineMarkdownHeading:
		return "markdown_heading"
	case LineText:
		return "text"
	}
	return "unknown"
}

var mdHeadingRe = regexp.MustCompile(`^#{1,6}\s+\S`)

// ClassifyLine tags a single line. Inside a code fence every line except the
// closing fence is plain text.
func ClassifyLine(line string, inCode bool) LineClass {
	trimmed := strings.TrimRight(line, " \t")
	if strings.HasPrefix(trimmed, CodeFence) {
		return LineCodeFence
	}
	if inCode {
		if strings.TrimSpace(line) == "" {
			return LineBlank
		}
		return LineText
	}
	if strings.TrimSpace(line) == "" {
		return LineBlank
	}
	if trimmed == Marker {
		return LineBlockClose
	}
	if strings.HasPrefix(trimmed, Marker) {
		return LineBlockOpen
	}
	if strings.HasPrefix(trimmed, "・") || strings.HasPrefix(trimmed, "- ") {
		return LineListItem
	}
	if mdHeadingRe.MatchString(trimmed) {
		return LineMarkdownHeading
	}
	return LineText
}

// BlockOpen is the decomposed form of a block-open line.
type BlockOpen struct {
	Keywords []string // authored order, before canonical reordering
	Attrs    *Attrs
	Raw      string
}

// ParseBlockOpen decomposes `;;;<kw>[+<kw>...][ key=value ...]`. It reports
// ok=false when the keyword list is empty or contains an empty name; the
// caller degrades to an error node, never a hard failure.
func ParseBlockOpen(line string) (BlockOpen, bool) {
	open := BlockOpen{Attrs: NewAttrs(), Raw: line}
	rest := strings.TrimPrefix(strings.TrimRight(line, " \t"), Marker)

	head := rest
	if idx := strings.IndexAny(rest, " \t"); idx >= 0 {
		head = rest[:idx]
		for _, field := range strings.Fields(rest[idx:]) {
			key, value, found := strings.Cut(field, "=")
			if !found || key == "" {
				// not key=value: keep the raw qualifier so the validator
				// can point at it
				open.Attrs.Set(field, "")
				continue
			}
			open.Attrs.Set(key, value)
		}
	}
	if head == "" {
		return open, false
	}
	for _, kw := range strings.Split(head, "+") {
		if kw == "" {
			open.Keywords = nil
			return open, false
		}
		open.Keywords = append(open.Keywords, kw)
	}
	return open, true
}

// ListItemText strips the list bullet from a list-item line.
func ListItemText(line string) string {
	trimmed := strings.TrimRight(line, " \t")
	if strings.HasPrefix(trimmed, "・") {
		return strings.TrimSpace(strings.TrimPrefix(trimmed, "・"))
	}
	return strings.TrimSpace(strings.TrimPrefix(trimmed, "- "))
}
