package renderer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deco2html/markup"
)

func heading(level int, title string, line int) *markup.Node {
	h := markup.NewLeaf(markup.KindHeading, title, line)
	h.Level = level
	return h
}

func docWithHeadings(hs ...*markup.Node) *markup.Node {
	root := markup.NewContainer(markup.KindDocument, 1)
	for _, h := range hs {
		root.Append(h)
	}
	return root
}

func TestBuildTOCNesting(t *testing.T) {
	toc := BuildTOC(docWithHeadings(
		heading(1, "第一章", 1),
		heading(2, "一節", 2),
		heading(2, "二節", 3),
		heading(1, "第二章", 4),
	))

	require.Len(t, toc.Roots, 2)
	assert.Equal(t, "第一章", toc.Roots[0].Title)
	require.Len(t, toc.Roots[0].Children, 2)
	assert.Equal(t, "二節", toc.Roots[0].Children[1].Title)
	assert.Empty(t, toc.Roots[1].Children)
	assert.Equal(t, toc.Roots[0], toc.Roots[0].Children[0].Parent)
}

func TestBuildTOCSkippedLevels(t *testing.T) {
	// h1 followed directly by h3: the h3 nests under the h1 as authored,
	// no intermediate level is synthesized
	toc := BuildTOC(docWithHeadings(
		heading(1, "章", 1),
		heading(3, "小々節", 2),
	))

	require.Len(t, toc.Roots, 1)
	require.Len(t, toc.Roots[0].Children, 1)
	assert.Equal(t, 3, toc.Roots[0].Children[0].Level)
}

func TestBuildTOCAnchorCollisions(t *testing.T) {
	toc := BuildTOC(docWithHeadings(
		heading(1, "概要", 1),
		heading(2, "概要", 2),
		heading(2, "概要", 3),
	))

	anchors := []string{
		toc.Roots[0].Anchor,
		toc.Roots[0].Children[0].Anchor,
		toc.Roots[0].Children[1].Anchor,
	}
	assert.Equal(t, []string{"概要", "概要-2", "概要-3"}, anchors)
}

func TestTOCHTML(t *testing.T) {
	toc := BuildTOC(docWithHeadings(
		heading(1, "章", 1),
		heading(2, "節", 2),
	))
	out := toc.HTML()

	assert.True(t, strings.HasPrefix(out, `<nav class="deco-toc">`))
	assert.Contains(t, out, `<a href="#章">章</a>`)
	assert.Contains(t, out, `<a href="#節">節</a>`)
	assert.Equal(t, 2, strings.Count(out, "<ol>"), "nested list per level")
}

func TestTOCHTMLEmpty(t *testing.T) {
	toc := BuildTOC(docWithHeadings())
	assert.Empty(t, toc.HTML())
}

func TestSlugify(t *testing.T) {
	testCases := []struct {
		name  string
		title string
		want  string
	}{
		{"japanese passes through", "はじめに", "はじめに"},
		{"ascii lowered", "Getting Started", "getting-started"},
		{"fullwidth folds to ascii", "ＡＢＣ", "abc"},
		{"punctuation dropped", "第1章: 概要!", "第1章-概要"},
		{"fullwidth space separates", "前　後", "前-後"},
		{"only punctuation falls back", "!!!", "section"},
		{"empty falls back", "", "section"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Slugify(tc.title))
		})
	}
}
