package converter

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deco2html/markup"
)

func TestDetectFormat(t *testing.T) {
	testCases := []struct {
		name  string
		lines []string
		want  Format
	}{
		{
			name: "three marker pairs is native",
			lines: []string{
				";;;見出し1", "A", ";;;",
				";;;引用", "B", ";;;",
				";;;太字", "C", ";;;",
			},
			want: FormatNative,
		},
		{
			name:  "markdown headings without markers",
			lines: []string{"# Title", "body", "## Sub"},
			want:  FormatMarkdown,
		},
		{
			name: "mixed syntax is ambiguous",
			lines: []string{
				"# Title",
				";;;引用", "B", ";;;",
			},
			want: FormatAmbiguous,
		},
		{
			name:  "plain text defaults to native",
			lines: []string{"ただの本文", "二行目"},
			want:  FormatNative,
		},
		{
			name: "markers inside code fence are ignored",
			lines: []string{
				"```", ";;;引用", ";;;", "```",
				"# Title",
			},
			want: FormatMarkdown,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DetectFormat(tc.lines))
		})
	}
}

func writeInput(t *testing.T, content string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	in := filepath.Join(dir, "in.deco")
	require.NoError(t, os.WriteFile(in, []byte(content), 0644))
	return in, filepath.Join(dir, "out.html")
}

func TestConvertNativeDocument(t *testing.T) {
	in, out := writeInput(t, strings.Join([]string{
		";;;見出し1", "タイトル", ";;;",
		";;;引用", "引用文", ";;;",
		";;;太字", "重要", ";;;",
	}, "\n"))

	result, err := Convert(context.Background(), Options{InputPath: in, OutputFile: out})
	require.NoError(t, err)
	assert.Equal(t, FormatNative, result.Format)
	assert.Empty(t, result.Issues)
	assert.True(t, result.Valid)

	html, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<h1")
	assert.Contains(t, string(html), "<blockquote")
	assert.Contains(t, string(html), "deco-toc")
}

func TestConvertRecoverableIssuesStillWriteOutput(t *testing.T) {
	in, out := writeInput(t, strings.Join([]string{
		";;;見出し1", "T", ";;;",
		";;;引用", "A", ";;;",
		";;;太字", "B", ";;;",
		"本文", ";;;", // dangling close
	}, "\n"))

	result, err := Convert(context.Background(), Options{InputPath: in, OutputFile: out})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Issues)

	_, statErr := os.Stat(out)
	assert.NoError(t, statErr, "HTML is produced despite recoverable errors")
}

func TestConvertStrictModeFails(t *testing.T) {
	in, out := writeInput(t, strings.Join([]string{
		";;;見出し1", "T", ";;;",
		";;;引用", "A", ";;;",
		";;;太字", "B", ";;;",
		"本文", ";;;",
	}, "\n"))

	_, err := Convert(context.Background(), Options{InputPath: in, OutputFile: out, Strict: true})
	require.Error(t, err)
}

func TestConvertMissingInput(t *testing.T) {
	_, err := Convert(context.Background(), Options{
		InputPath:  filepath.Join(t.TempDir(), "missing.deco"),
		OutputFile: filepath.Join(t.TempDir(), "out.html"),
	})
	require.Error(t, err)
}

func TestConvertMarkdownFallback(t *testing.T) {
	in, out := writeInput(t, "# Title\n\nsome *markdown* body\n")

	result, err := Convert(context.Background(), Options{InputPath: in, OutputFile: out})
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, result.Format)

	html, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<h1")
	assert.Contains(t, string(html), "<em>markdown</em>")
}

func TestConvertChunkedPipeline(t *testing.T) {
	var lines []string
	lines = append(lines, ";;;見出し1", "大きな文書", ";;;")
	for i := 0; i < 200; i++ {
		lines = append(lines, ";;;引用", "本文", ";;;")
	}
	in, out := writeInput(t, strings.Join(lines, "\n"))

	result, err := Convert(context.Background(), Options{
		InputPath:  in,
		OutputFile: out,
		ChunkSize:  50,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Report)
	assert.Greater(t, result.Report.Chunks, 1)
	assert.Equal(t, float64(1), result.Report.SuccessRatio())
}

func TestMergeIssuesDeduplicates(t *testing.T) {
	a := []markup.Issue{{Line: 5, Type: markup.MalformedBlock, Message: "x"}}
	b := []markup.Issue{
		{Line: 5, Type: markup.MalformedBlock, Message: "x again"},
		{Line: 2, Type: markup.InvalidMarker, Message: "y"},
	}

	merged := mergeIssues(a, b)
	require.Len(t, merged, 2)
	assert.Equal(t, 2, merged[0].Line, "merged issues come back in line order")
	assert.Equal(t, 5, merged[1].Line)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deco.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
document:
  title: 設定のタイトル
chunk_size: 500
strict_validation: true
keywords:
  - name: 注意
    tag: aside
    attrs:
      class: caution
`), 0644))

	cfg := LoadConfig(path)
	assert.Equal(t, "設定のタイトル", cfg.Document.Title)
	assert.Equal(t, 500, cfg.ChunkSize)
	assert.True(t, cfg.StrictValidation)

	reg := cfg.Registry()
	def, ok := reg.Lookup("注意")
	require.True(t, ok)
	assert.Equal(t, "aside", def.Tag)
	assert.Equal(t, "caution", def.DefaultAttrs["class"])

	// builtins survive custom registration
	_, ok = reg.Lookup("太字")
	assert.True(t, ok)
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Equal(t, DefaultConfig().ErrorThreshold, cfg.ErrorThreshold)
	assert.Zero(t, cfg.ChunkSize)
}
