// Package renderer turns a parsed markup tree into HTML: the document body,
// a synthesized table of contents and the collected footnote block.
package renderer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/emirpasic/gods/stacks/arraystack"
	"golang.org/x/text/unicode/norm"

	"deco2html/markup"
)

// TOCEntry is one heading in the synthesized table of contents.
type TOCEntry struct {
	Level    int
	Title    string // tag-stripped plain text
	Anchor   string // unique slug
	Children []*TOCEntry
	Parent   *TOCEntry // navigation only; Children own the tree
}

// TOC is the heading forest of one document plus the anchor assignment for
// its heading nodes. It is built once per render and discarded afterwards.
type TOC struct {
	Roots   []*TOCEntry
	anchors map[*markup.Node]string
}

// BuildTOC walks the tree in document order and collects heading nodes
// (levels 1–5) into a forest. Skipped levels (h1 directly followed by h3)
// are preserved as authored; no intermediate levels are synthesized.
func BuildTOC(root *markup.Node) *TOC {
	toc := &TOC{anchors: make(map[*markup.Node]string)}
	slugs := newSlugSet()
	stack := arraystack.New()

	walkHeadings(root, func(n *markup.Node) {
		entry := &TOCEntry{
			Level:  n.Level,
			Title:  strings.TrimSpace(n.PlainText()),
			Anchor: slugs.take(n.PlainText()),
		}
		toc.anchors[n] = entry.Anchor

		for {
			top, ok := stack.Peek()
			if !ok || top.(*TOCEntry).Level < entry.Level {
				break
			}
			stack.Pop()
		}
		if top, ok := stack.Peek(); ok {
			parent := top.(*TOCEntry)
			entry.Parent = parent
			parent.Children = append(parent.Children, entry)
		} else {
			toc.Roots = append(toc.Roots, entry)
		}
		stack.Push(entry)
	})
	return toc
}

// AnchorOf returns the anchor assigned to a heading node during the build.
func (t *TOC) AnchorOf(n *markup.Node) (string, bool) {
	a, ok := t.anchors[n]
	return a, ok
}

// HTML renders the TOC as a nested list. An empty TOC renders to nothing.
func (t *TOC) HTML() string {
	if len(t.Roots) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("<nav class=\"deco-toc\">\n<div class=\"deco-toc-title\">目次</div>\n")
	writeTOCList(&sb, t.Roots)
	sb.WriteString("</nav>\n")
	return sb.String()
}

func writeTOCList(sb *strings.Builder, entries []*TOCEntry) {
	sb.WriteString("<ol>\n")
	for _, e := range entries {
		fmt.Fprintf(sb, "<li><a href=\"#%s\">%s</a>", e.Anchor, escapeText(e.Title))
		if len(e.Children) > 0 {
			sb.WriteString("\n")
			writeTOCList(sb, e.Children)
		}
		sb.WriteString("</li>\n")
	}
	sb.WriteString("</ol>\n")
}

func walkHeadings(n *markup.Node, visit func(*markup.Node)) {
	if n.Kind == markup.KindHeading && n.Level >= 1 && n.Level <= 5 {
		visit(n)
	}
	for _, child := range n.Children() {
		walkHeadings(child, visit)
	}
}

// slugSet assigns unique anchors; colliding slugs get a numeric suffix
// counting up from 2.
type slugSet struct {
	seen map[string]int
}

func newSlugSet() *slugSet {
	return &slugSet{seen: make(map[string]int)}
}

func (s *slugSet) take(title string) string {
	slug := Slugify(title)
	n := s.seen[slug]
	s.seen[slug] = n + 1
	if n == 0 {
		return slug
	}
	return fmt.Sprintf("%s-%d", slug, n+1)
}

// Slugify derives a stable anchor slug from heading text. Text is NFKC
// normalized so full-width ASCII folds together, lowercased, and reduced to
// letters, digits and hyphens.
func Slugify(title string) string {
	folded := norm.NFKC.String(strings.TrimSpace(title))
	var sb strings.Builder
	lastHyphen := false
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(unicode.ToLower(r))
			lastHyphen = false
		case r == ' ' || r == '-' || r == '_' || r == '　':
			if !lastHyphen && sb.Len() > 0 {
				sb.WriteRune('-')
				lastHyphen = true
			}
		}
	}
	slug := strings.TrimSuffix(sb.String(), "-")
	if slug == "" {
		return "section"
	}
	return slug
}
