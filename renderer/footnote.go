package renderer

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxFootnoteLen is the content ceiling, in runes, for a single footnote.
const MaxFootnoteLen = 2000

// Footnote is one registered annotation.
type Footnote struct {
	Content string
	Number  int // sequential from 1
}

// Footnotes collects footnote content during rendering, assigns sequential
// numbers and renders the back-linked footnote block. Numbering is scoped to
// the instance and only restarts on an explicit Reset.
type Footnotes struct {
	counter int
	notes   []Footnote
}

func NewFootnotes() *Footnotes {
	return &Footnotes{}
}

// Register validates and numbers one footnote. Invalid content is rejected
// before numbering, so it never consumes a counter slot.
func (f *Footnotes) Register(content string) (int, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return 0, fmt.Errorf("脚注の内容が空です")
	}
	if utf8.RuneCountInString(trimmed) > MaxFootnoteLen {
		return 0, fmt.Errorf("脚注が長すぎます: %d 文字 (上限 %d)", utf8.RuneCountInString(trimmed), MaxFootnoteLen)
	}
	f.counter++
	f.notes = append(f.notes, Footnote{Content: trimmed, Number: f.counter})
	return f.counter, nil
}

// Notes returns the registered footnotes in numbering order.
func (f *Footnotes) Notes() []Footnote {
	return f.notes
}

// Reset restarts numbering at 1 and drops collected notes.
func (f *Footnotes) Reset() {
	f.counter = 0
	f.notes = nil
}

// Ref renders the inline reference for a registered number.
func (f *Footnotes) Ref(number int) string {
	return fmt.Sprintf(`<sup class="deco-footnote" id="fnref-%d"><a href="#fn-%d">[%d]</a></sup>`,
		number, number, number)
}

// HTML renders the footnote block with back links. No registered footnotes
// means no block at all.
func (f *Footnotes) HTML() string {
	if len(f.notes) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("<section class=\"deco-footnotes\">\n<hr>\n<ol>\n")
	for _, note := range f.notes {
		fmt.Fprintf(&sb, "<li id=\"fn-%d\">%s <a href=\"#fnref-%d\" class=\"deco-backref\">↩</a></li>\n",
			note.Number, escapeText(note.Content), note.Number)
	}
	sb.WriteString("</ol>\n</section>\n")
	return sb.String()
}
