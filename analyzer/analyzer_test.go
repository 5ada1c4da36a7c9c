package analyzer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeHTML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.html")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const cleanDoc = `<!DOCTYPE html>
<html lang="ja">
<head><title>T</title></head>
<body>
<nav class="deco-toc">
<ol>
<li><a href="#章">章</a><ol><li><a href="#節">節</a></li></ol></li>
</ol>
</nav>
<main>
<h1 class="deco-heading" id="章">章</h1>
<p>本文<sup class="deco-footnote" id="fnref-1"><a href="#fn-1">[1]</a></sup></p>
<h2 class="deco-heading" id="節">節</h2>
</main>
<section class="deco-footnotes">
<ol>
<li id="fn-1">注記 <a href="#fnref-1" class="deco-backref">↩</a></li>
</ol>
</section>
</body>
</html>`

func TestAnalyzeHTMLCleanDocument(t *testing.T) {
	report, err := AnalyzeHTML(writeHTML(t, cleanDoc))
	require.NoError(t, err)

	assert.True(t, report.Clean(), "problems: %v", report.Problems)
	require.Len(t, report.Headings, 2)
	assert.Equal(t, 1, report.Headings[0].Level)
	assert.Equal(t, "章", report.Headings[0].Title)
	assert.Equal(t, "節", report.Headings[1].Anchor)
	assert.Equal(t, 1, report.Footnotes)
}

func TestAnalyzeHTMLDuplicateID(t *testing.T) {
	report, err := AnalyzeHTML(writeHTML(t, `<body>
<h1 id="x">A</h1>
<h2 id="x">B</h2>
</body>`))
	require.NoError(t, err)

	require.Len(t, report.Problems, 1)
	assert.Contains(t, report.Problems[0], "duplicate id")
}

func TestAnalyzeHTMLBrokenTOCLink(t *testing.T) {
	report, err := AnalyzeHTML(writeHTML(t, `<body>
<nav class="deco-toc"><ol><li><a href="#missing">x</a></li></ol></nav>
<h1 id="present">x</h1>
</body>`))
	require.NoError(t, err)

	require.Len(t, report.Problems, 1)
	assert.Contains(t, report.Problems[0], "no target")
}

func TestAnalyzeHTMLFootnoteWithoutNote(t *testing.T) {
	report, err := AnalyzeHTML(writeHTML(t, `<body>
<sup class="deco-footnote" id="fnref-1"><a href="#fn-1">[1]</a></sup>
</body>`))
	require.NoError(t, err)

	require.Len(t, report.Problems, 1)
	assert.Contains(t, report.Problems[0], "missing note")
}

func TestAnalyzeHTMLFootnoteWithoutBackLink(t *testing.T) {
	report, err := AnalyzeHTML(writeHTML(t, `<body>
<sup class="deco-footnote" id="fnref-1"><a href="#fn-1">[1]</a></sup>
<li id="fn-1">注記</li>
</body>`))
	require.NoError(t, err)

	require.Len(t, report.Problems, 1)
	assert.Contains(t, report.Problems[0], "no back link")
}

func TestAnalyzeHTMLCountsErrorElements(t *testing.T) {
	report, err := AnalyzeHTML(writeHTML(t, `<body>
<span class="deco-error">[エラー: x]</span>
<span class="deco-error">[エラー: y]</span>
</body>`))
	require.NoError(t, err)

	assert.Equal(t, 2, report.ErrorElements)
}

func TestAnalyzeHTMLMissingFile(t *testing.T) {
	_, err := AnalyzeHTML(filepath.Join(t.TempDir(), "missing.html"))
	require.Error(t, err)
}

func TestContainsTitle(t *testing.T) {
	testCases := []struct {
		name  string
		text  string
		title string
		want  bool
	}{
		{"exact match", "第一章 はじめに", "第一章 はじめに", true},
		{"extraction mangles spacing", "第 一 章\nは じ め に", "第一章 はじめに", true},
		{"punctuation differences ignored", "1. Overview", "1 Overview", true},
		{"absent title", "まったく別の本文", "第一章", false},
		{"empty title never matches", "本文", "   ", false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, containsTitle(tc.text, tc.title))
		})
	}
}
