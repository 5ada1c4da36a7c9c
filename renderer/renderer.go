package renderer

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"sort"
	"strings"
	"text/template"

	"deco2html/markup"
)

// tagSpec is the static mapping from node kind to output tag and class.
type tagSpec struct {
	tag   string
	class string
}

var kindTags = map[markup.NodeKind]tagSpec{
	markup.KindParagraph: {"p", "deco-paragraph"},
	markup.KindListItem:  {"li", "deco-list-item"},
	markup.KindEmphasis:  {"em", "deco-em"},
	markup.KindCode:      {"code", "deco-code"},
	markup.KindRuby:      {"ruby", "deco-ruby"},
}

// voidTags are emitted without closing tags.
var voidTags = map[string]bool{
	"img": true, "br": true, "hr": true,
	"meta": true, "input": true, "link": true,
}

// Renderer walks a markup tree and emits escaped HTML. A single node's
// failure never aborts the document: the node degrades to a visible inline
// error element and the failure is logged.
type Renderer struct {
	reg       *markup.KeywordRegistry
	theme     Theme
	footnotes *Footnotes

	toc   *TOC     // set for the duration of Document
	slugs *slugSet // standalone Render fallback

	renderErrors int
}

func New(reg *markup.KeywordRegistry) *Renderer {
	if reg == nil {
		reg = markup.NewKeywordRegistry()
	}
	return &Renderer{
		reg:       reg,
		theme:     DefaultTheme(),
		footnotes: NewFootnotes(),
	}
}

func (r *Renderer) SetTheme(t Theme) { r.theme = t }

// Footnotes exposes the footnote manager, e.g. for resetting numbering
// between documents rendered by the same Renderer.
func (r *Renderer) Footnotes() *Footnotes { return r.footnotes }

// RenderErrors reports how many nodes failed and degraded to error elements
// since the renderer was created.
func (r *Renderer) RenderErrors() int { return r.renderErrors }

// Render renders any subtree to HTML.
func (r *Renderer) Render(node *markup.Node) string {
	if r.toc == nil {
		r.slugs = newSlugSet()
	}
	out, err := r.renderNode(node)
	if err != nil {
		return r.failNode(node, err)
	}
	return out
}

// DocumentMeta is what the document shell needs besides the tree.
type DocumentMeta struct {
	Title  string
	Author string
}

var docTemplate = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
{{if .Author}}<meta name="author" content="{{.Author}}">
{{end}}<style>
{{.Style}}</style>
</head>
<body>
{{.TOC}}<main>
{{.Body}}</main>
{{.Footnotes}}</body>
</html>
`))

// Document assembles the complete HTML document: DOCTYPE, embedded style
// block, synthesized TOC, rendered body, and the footnote block when any
// footnotes were registered.
func (r *Renderer) Document(root *markup.Node, meta DocumentMeta) string {
	r.toc = BuildTOC(root)
	defer func() { r.toc = nil }()
	r.footnotes.Reset()

	body := r.Render(root)

	title := meta.Title
	if title == "" {
		if len(r.toc.Roots) > 0 {
			title = r.toc.Roots[0].Title
		} else {
			title = "Document"
		}
	}

	var buf bytes.Buffer
	err := docTemplate.Execute(&buf, map[string]string{
		"Title":     escapeText(title),
		"Author":    escapeAttr(meta.Author),
		"Style":     r.theme.CSS(),
		"TOC":       r.toc.HTML(),
		"Body":      body,
		"Footnotes": r.footnotes.HTML(),
	})
	if err != nil {
		// template and data are static; this cannot normally happen
		fmt.Fprintf(os.Stderr, "[ERROR] document template failed: %v\n", err)
		return body
	}
	return buf.String()
}

func (r *Renderer) renderNode(n *markup.Node) (string, error) {
	if n == nil {
		return "", fmt.Errorf("nil node")
	}
	switch n.Kind {
	case markup.KindDocument:
		return r.renderChildren(n), nil

	case markup.KindText:
		return escapeText(n.Content()), nil

	case markup.KindError:
		return r.errorSpan(n.Content()), nil

	case markup.KindHeading:
		return r.renderHeading(n)

	case markup.KindRuby:
		reading, _ := n.Attrs.Get("reading")
		return fmt.Sprintf(`<ruby class="deco-ruby">%s<rt>%s</rt></ruby>`,
			escapeText(n.Content()), escapeText(reading)), nil

	case markup.KindCode:
		return fmt.Sprintf(`<code class="deco-code">%s</code>`, escapeText(n.Content())), nil

	case markup.KindParagraph, markup.KindListItem, markup.KindEmphasis:
		spec := kindTags[n.Kind]
		return fmt.Sprintf("<%s class=%q>%s</%s>", spec.tag, spec.class, r.renderChildren(n), spec.tag), nil

	case markup.KindBlock:
		return r.renderBlock(n)
	}
	return "", fmt.Errorf("レンダリングできないノード種別 %v", n.Kind)
}

// renderChildren renders a container body, isolating per-child failures and
// wrapping runs of list items in a list element.
func (r *Renderer) renderChildren(n *markup.Node) string {
	var sb strings.Builder
	inList := false
	block := n.Kind == markup.KindDocument || n.Kind == markup.KindBlock

	for _, child := range n.Children() {
		if child.Kind == markup.KindListItem && !inList {
			sb.WriteString("<ul class=\"deco-list\">\n")
			inList = true
		}
		if child.Kind != markup.KindListItem && inList {
			sb.WriteString("</ul>\n")
			inList = false
		}

		out, err := r.renderNode(child)
		if err != nil {
			out = r.failNode(child, err)
		}
		sb.WriteString(out)
		if block || child.Kind == markup.KindListItem {
			sb.WriteString("\n")
		}
	}
	if inList {
		sb.WriteString("</ul>\n")
	}
	return sb.String()
}

func (r *Renderer) renderHeading(n *markup.Node) (string, error) {
	if n.Level < 1 || n.Level > 5 {
		return "", fmt.Errorf("見出しレベル %d が範囲外です", n.Level)
	}
	anchor := r.headingAnchor(n)

	var body string
	if n.IsLeaf() {
		body = escapeText(n.Content())
	} else {
		// decorated heading bodies keep their inline markup
		var parts []string
		for _, child := range n.Children() {
			if child.Kind == markup.KindParagraph {
				parts = append(parts, strings.TrimRight(r.renderChildren(child), "\n"))
				continue
			}
			out, err := r.renderNode(child)
			if err != nil {
				out = r.failNode(child, err)
			}
			parts = append(parts, out)
		}
		body = strings.Join(parts, " ")
	}

	attrs := r.extraAttrs(n)
	return fmt.Sprintf(`<h%d class="deco-heading" id="%s"%s>%s</h%d>`,
		n.Level, escapeAttr(anchor), attrs, body, n.Level), nil
}

func (r *Renderer) headingAnchor(n *markup.Node) string {
	if r.toc != nil {
		if a, ok := r.toc.AnchorOf(n); ok {
			return a
		}
	}
	if r.slugs == nil {
		r.slugs = newSlugSet()
	}
	return r.slugs.take(n.PlainText())
}

func (r *Renderer) renderBlock(n *markup.Node) (string, error) {
	if n.Keyword == markup.KeywordFootnote {
		number, err := r.footnotes.Register(n.PlainText())
		if err != nil {
			return "", err
		}
		return r.footnotes.Ref(number), nil
	}
	if n.Keyword == markup.KeywordTOC {
		return "", fmt.Errorf("目次は自動生成のみです")
	}

	def, known := r.reg.Lookup(n.Keyword)
	if !known {
		// generic container for unknown keywords
		return fmt.Sprintf("<div class=\"deco-block\">%s</div>", r.renderChildren(n)), nil
	}

	if def.Tag == "pre" {
		return fmt.Sprintf("<pre class=\"deco-pre\"><code>%s</code></pre>",
			escapeText(n.PlainText())), nil
	}

	attrs := r.blockAttrs(def, n)
	if voidTags[def.Tag] {
		return fmt.Sprintf("<%s%s>", def.Tag, attrs), nil
	}
	return fmt.Sprintf("<%s%s>%s</%s>", def.Tag, attrs, r.renderChildren(n), def.Tag), nil
}

// blockAttrs assembles the attribute string for a keyword block: class
// first (definition class plus an authored one), then remaining definition
// defaults in sorted order, then authored attributes in authored order.
// A color attribute becomes an inline style.
func (r *Renderer) blockAttrs(def markup.KeywordDefinition, n *markup.Node) string {
	var sb strings.Builder

	class := def.DefaultAttrs["class"]
	if authored, ok := n.Attrs.Get("class"); ok && authored != "" {
		if class != "" {
			class += " "
		}
		class += authored
	}
	if class != "" {
		fmt.Fprintf(&sb, " class=%q", escapeAttr(class))
	}

	defKeys := make([]string, 0, len(def.DefaultAttrs))
	for k := range def.DefaultAttrs {
		if k != "class" {
			defKeys = append(defKeys, k)
		}
	}
	sort.Strings(defKeys)
	for _, k := range defKeys {
		fmt.Fprintf(&sb, " %s=%q", k, escapeAttr(def.DefaultAttrs[k]))
	}

	var style string
	for _, key := range n.Attrs.Keys() {
		value, _ := n.Attrs.Get(key)
		switch {
		case key == "class":
			// already merged
		case key == "color":
			style = "color:" + value
		case validAttrKey(key):
			fmt.Fprintf(&sb, " %s=%q", key, escapeAttr(value))
		}
	}
	if style != "" {
		fmt.Fprintf(&sb, " style=%q", escapeAttr(style))
	}
	return sb.String()
}

// extraAttrs renders authored attributes on non-keyword nodes (headings).
func (r *Renderer) extraAttrs(n *markup.Node) string {
	var sb strings.Builder
	for _, key := range n.Attrs.Keys() {
		value, _ := n.Attrs.Get(key)
		switch {
		case key == "color":
			fmt.Fprintf(&sb, " style=%q", escapeAttr("color:"+value))
		case validAttrKey(key):
			fmt.Fprintf(&sb, " %s=%q", key, escapeAttr(value))
		}
	}
	return sb.String()
}

// failNode logs an isolated node failure and returns the visible inline
// error element that takes the node's place.
func (r *Renderer) failNode(n *markup.Node, err error) string {
	r.renderErrors++
	line := 0
	if n != nil {
		line = n.Line
	}
	fmt.Fprintf(os.Stderr, "[WARN] Line %d: ノードのレンダリングに失敗しました: %v\n", line, err)
	return r.errorSpan(err.Error())
}

func (r *Renderer) errorSpan(msg string) string {
	return fmt.Sprintf(`<span class="deco-error">[エラー: %s]</span>`, escapeText(msg))
}

func validAttrKey(key string) bool {
	if key == "" {
		return false
	}
	for _, c := range key {
		valid := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
			(c >= '0' && c <= '9') || c == '-' || c == '_'
		if !valid {
			return false
		}
	}
	return true
}

func escapeText(s string) string {
	return html.EscapeString(s)
}

func escapeAttr(s string) string {
	return html.EscapeString(s)
}
