package markup

import (
	"fmt"
	"strings"
)

// Parser builds a Node tree from classified lines. One parser parses one
// document at a time; the registry it reads is fixed for the whole parse.
//
// Recoverable markup problems never abort the parse: they degrade to error
// nodes in the tree and are additionally recorded as Issues.
type Parser struct {
	reg    *KeywordRegistry
	issues []Issue
}

func NewParser(reg *KeywordRegistry) *Parser {
	if reg == nil {
		reg = NewKeywordRegistry()
	}
	return &Parser{reg: reg}
}

// Registry returns the keyword registry the parser resolves against.
func (p *Parser) Registry() *KeywordRegistry { return p.reg }

// Issues returns the diagnostics recorded during the last parse.
func (p *Parser) Issues() []Issue { return p.issues }

// blockFrame tracks one open decorated block. A compound keyword opens a
// chain of nested nodes; content always attaches to the innermost one.
type blockFrame struct {
	outer    *Node
	inner    *Node
	parent   *Node
	openLine int
}

// Parse parses a whole document.
func (p *Parser) Parse(lines []string) *Node {
	return p.ParseFrom(lines, 1)
}

// ParseFrom parses lines whose first element sits at source line firstLine.
// Chunked parsing uses the offset so diagnostics keep document-global
// positions.
func (p *Parser) ParseFrom(lines []string, firstLine int) *Node {
	p.issues = nil
	root := NewContainer(KindDocument, firstLine)

	var stack []*blockFrame
	top := func() *Node {
		if len(stack) == 0 {
			return root
		}
		return stack[len(stack)-1].inner
	}

	inCode := false
	codeStart := 0
	var codeLines []string

	for idx, line := range lines {
		lineNo := firstLine + idx

		switch ClassifyLine(line, inCode) {
		case LineCodeFence:
			if inCode {
				top().Append(codeBlockNode(codeLines, codeStart))
				inCode = false
				codeLines = nil
			} else {
				inCode = true
				codeStart = lineNo
			}

		case LineBlank:
			if inCode {
				codeLines = append(codeLines, line)
			}

		case LineBlockOpen:
			frame, ok := p.openBlock(line, lineNo, top())
			if ok {
				stack = append(stack, frame)
			}

		case LineBlockClose:
			if len(stack) == 0 {
				p.report(Issue{
					Line:    lineNo,
					Type:    MalformedBlock,
					Message: "閉じマーカー ;;; に対応する開始マーカーがありません",
				})
				top().Append(NewErrorNode("対応しない閉じマーカー", lineNo))
				continue
			}
			frame := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			p.closeBlock(frame)

		case LineListItem:
			item := NewContainer(KindListItem, lineNo)
			for _, inline := range ProcessInline(ListItemText(line), p.reg, lineNo) {
				item.Append(inline)
			}
			top().Append(item)

		case LineMarkdownHeading, LineText:
			if inCode {
				codeLines = append(codeLines, line)
				continue
			}
			para := NewContainer(KindParagraph, lineNo)
			for _, inline := range ProcessInline(strings.TrimRight(line, " \t"), p.reg, lineNo) {
				para.Append(inline)
			}
			top().Append(para)
		}
	}

	if inCode {
		p.report(Issue{
			Line:    codeStart,
			Type:    MalformedBlock,
			Message: "コードフェンスが閉じられていません",
		})
		top().Append(codeBlockNode(codeLines, codeStart))
	}

	// Unterminated blocks: report at the opening line and keep the rest of
	// the file as the block body rather than dropping it.
	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		p.report(Issue{
			Line:    frame.openLine,
			Type:    MalformedBlock,
			Message: fmt.Sprintf("ブロック %q が閉じられていません", frame.outer.Keyword),
		})
		p.closeBlock(frame)
	}

	return root
}

// openBlock decomposes a block-open line and pushes the (possibly compound)
// node chain. Invalid open lines degrade to error nodes under parent.
func (p *Parser) openBlock(line string, lineNo int, parent *Node) (*blockFrame, bool) {
	open, ok := ParseBlockOpen(line)
	if !ok {
		p.report(Issue{
			Line:    lineNo,
			Type:    InvalidMarker,
			Message: "キーワード名が空です",
		})
		parent.Append(NewErrorNode("キーワード名が空のブロックマーカー", lineNo))
		return nil, false
	}
	for _, kw := range open.Keywords {
		if strings.Contains(kw, "=") {
			p.report(Issue{
				Line:       lineNo,
				Type:       InvalidMarker,
				Message:    fmt.Sprintf("キーワード位置に属性 %q があります", kw),
				Suggestion: "属性はキーワード列の後に空白区切りで書いてください",
			})
			parent.Append(NewErrorNode("キーワード位置の属性", lineNo))
			return nil, false
		}
	}

	ordered := p.reg.OrderCompound(open.Keywords)

	var outer, inner *Node
	for _, kw := range ordered {
		node := p.keywordNode(kw, lineNo)
		if outer == nil {
			outer = node
			// authored attributes attach to the outermost node of the chain
			for _, key := range open.Attrs.Keys() {
				v, _ := open.Attrs.Get(key)
				node.Attrs.Set(key, v)
			}
		} else {
			inner.Append(node)
		}
		inner = node
	}

	parent.Append(outer)
	return &blockFrame{outer: outer, inner: inner, parent: parent, openLine: lineNo}, true
}

// keywordNode builds the node for a single keyword, warning about unknown
// and deprecated keywords without failing.
func (p *Parser) keywordNode(kw string, lineNo int) *Node {
	if level := p.reg.HeadingLevel(kw); level > 0 {
		h := NewContainer(KindHeading, lineNo)
		h.Level = level
		h.Keyword = kw
		return h
	}
	def, known := p.reg.Lookup(kw)
	if !known {
		p.report(Issue{
			Line:       lineNo,
			Type:       UnsupportedSyntax,
			Message:    fmt.Sprintf("未知のキーワード %q です", kw),
			Suggestion: "汎用コンテナとして出力します",
		})
		return NewBlock(kw, lineNo)
	}
	if def.Deprecated {
		p.report(Issue{
			Line:       lineNo,
			Type:       UnsupportedSyntax,
			Message:    fmt.Sprintf("キーワード %q は非推奨です", kw),
			Suggestion: def.Suggestion,
		})
	}
	return NewBlock(kw, lineNo)
}

// closeBlock finalizes a frame: empty bodies degrade to error nodes and
// plain-text headings collapse to content leaves.
func (p *Parser) closeBlock(frame *blockFrame) {
	if len(frame.inner.Children()) == 0 {
		p.report(Issue{
			Line:    frame.openLine,
			Type:    MalformedBlock,
			Message: "ブロックの本文が空です",
		})
		replaceChild(frame.parent, frame.outer,
			NewErrorNode(fmt.Sprintf("空のブロック %q", frame.outer.Keyword), frame.openLine))
		return
	}
	collapseHeading(frame.outer)
}

// collapseHeading turns a heading whose body is a single plain-text
// paragraph into a content leaf, which is the common case and what the TOC
// builder consumes directly.
func collapseHeading(n *Node) {
	if n.Kind != KindHeading {
		return
	}
	children := n.Children()
	if len(children) != 1 || children[0].Kind != KindParagraph {
		return
	}
	inner := children[0].Children()
	if len(inner) != 1 || inner[0].Kind != KindText {
		return
	}
	n.leaf = true
	n.content = inner[0].Content()
	n.children = nil
}

func codeBlockNode(lines []string, start int) *Node {
	code := NewBlock("コード", start)
	code.Append(NewLeaf(KindText, strings.Join(lines, "\n"), start))
	return code
}

func replaceChild(parent, old, repl *Node) {
	for i, child := range parent.children {
		if child == old {
			parent.children[i] = repl
			return
		}
	}
	parent.Append(repl)
}

func (p *Parser) report(issue Issue) {
	p.issues = append(p.issues, issue)
}
