package markup

import (
	"strings"
	"unicode"
)

// ProcessInline splits paragraph text into text and inline decoration nodes.
// Recognized, in fixed resolution order: emphasis *text*, ruby
// |base|reading|, inline code `code`, and shorthand keyword spans
// keyword;;;content;;;. The span keyword is the longest registered-keyword
// suffix of the text before the marker; Japanese prose has no word
// boundaries, so surrounding text must never be swallowed into the keyword.
// Emphasis resolves before keyword markers so nested emphasis inside a
// keyword span still renders. An unmatched opening delimiter or an
// unregistered keyword degrades to literal text; this function never fails.
func ProcessInline(text string, reg *KeywordRegistry, line int) []*Node {
	var nodes []*Node
	var buf strings.Builder

	flush := func() {
		if buf.Len() > 0 {
			nodes = append(nodes, NewLeaf(KindText, buf.String(), line))
			buf.Reset()
		}
	}

	runes := []rune(text)
	for i := 0; i < len(runes); {
		r := runes[i]

		switch {
		case r == '*':
			end := indexRune(runes, i+1, '*')
			if end < 0 || end == i+1 {
				buf.WriteRune(r)
				i++
				continue
			}
			flush()
			em := NewContainer(KindEmphasis, line)
			for _, inner := range ProcessInline(string(runes[i+1:end]), reg, line) {
				em.Append(inner)
			}
			nodes = append(nodes, em)
			i = end + 1

		case r == '|':
			base := indexRune(runes, i+1, '|')
			if base < 0 || base == i+1 {
				buf.WriteRune(r)
				i++
				continue
			}
			reading := indexRune(runes, base+1, '|')
			if reading < 0 || reading == base+1 {
				buf.WriteRune(r)
				i++
				continue
			}
			flush()
			ruby := NewLeaf(KindRuby, string(runes[i+1:base]), line)
			ruby.Attrs.Set("reading", string(runes[base+1:reading]))
			nodes = append(nodes, ruby)
			i = reading + 1

		case r == '`':
			end := indexRune(runes, i+1, '`')
			if end < 0 {
				buf.WriteRune(r)
				i++
				continue
			}
			flush()
			nodes = append(nodes, NewLeaf(KindCode, string(runes[i+1:end]), line))
			i = end + 1

		case hasMarkerAt(runes, i):
			// a keyword span needs a registered keyword directly before the marker
			kw := trailingKeyword(&buf, reg)
			if kw == "" {
				buf.WriteString(Marker)
				i += len([]rune(Marker))
				continue
			}
			closing := indexMarker(runes, i+len([]rune(Marker)))
			if closing < 0 {
				// unmatched: restore the keyword and keep everything literal
				buf.WriteString(kw)
				buf.WriteString(Marker)
				i += len([]rune(Marker))
				continue
			}
			flush()
			span := NewBlock(kw, line)
			content := string(runes[i+len([]rune(Marker)) : closing])
			for _, inner := range ProcessInline(content, reg, line) {
				span.Append(inner)
			}
			nodes = append(nodes, span)
			i = closing + len([]rune(Marker))

		default:
			buf.WriteRune(r)
			i++
		}
	}
	flush()
	return nodes
}

func indexRune(runes []rune, from int, want rune) int {
	for i := from; i < len(runes); i++ {
		if runes[i] == want {
			return i
		}
	}
	return -1
}

func hasMarkerAt(runes []rune, i int) bool {
	marker := []rune(Marker)
	if i+len(marker) > len(runes) {
		return false
	}
	for j, m := range marker {
		if runes[i+j] != m {
			return false
		}
	}
	return true
}

func indexMarker(runes []rune, from int) int {
	for i := from; i < len(runes); i++ {
		if hasMarkerAt(runes, i) {
			return i
		}
	}
	return -1
}

// trailingKeyword removes and returns the longest registered-keyword suffix
// of the pending text buffer. Only the keyword-shaped tail (letters, digits,
// underscore) is considered, and within it the earliest start wins, so
// 値段は太字 resolves to 太字 and 値段は stays prose. No registered suffix
// means no span.
func trailingKeyword(buf *strings.Builder, reg *KeywordRegistry) string {
	if reg == nil {
		return ""
	}
	runes := []rune(buf.String())
	start := len(runes)
	for start > 0 && isKeywordRune(runes[start-1]) {
		start--
	}
	for i := start; i < len(runes); i++ {
		kw := string(runes[i:])
		if _, known := reg.Lookup(kw); !known && reg.HeadingLevel(kw) == 0 {
			continue
		}
		buf.Reset()
		buf.WriteString(string(runes[:i]))
		return kw
	}
	return ""
}

func isKeywordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
