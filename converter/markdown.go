package converter

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// mdTemplate mirrors the native document shell so both paths produce
// the same kind of standalone page.
var mdTemplate = template.Must(template.New("markdown").Parse(`<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
{{- if .Author}}
<meta name="author" content="{{.Author}}">
{{- end}}
<style>
{{.CSS}}</style>
</head>
<body>
<main class="deco-document">
{{.Body}}</main>
</body>
</html>
`))

// convertMarkdown is the fallback path for input that is clearly
// Markdown rather than deco markup. Conversion is best-effort: goldmark
// failures abort, everything else passes through.
func convertMarkdown(lines []string, cfg Config, opts Options, result *Result) (*Result, error) {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Table,
			extension.Footnote,
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	var body bytes.Buffer
	if err := md.Convert([]byte(strings.Join(lines, "\n")), &body); err != nil {
		return nil, fmt.Errorf("markdown conversion failed: %w", err)
	}

	var buf bytes.Buffer
	err := mdTemplate.Execute(&buf, struct {
		Title  string
		Author string
		CSS    string
		Body   string
	}{
		Title:  cfg.Document.Title,
		Author: cfg.Document.Author,
		CSS:    cfg.Theme.CSS(),
		Body:   body.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	if err := os.WriteFile(opts.OutputFile, buf.Bytes(), 0644); err != nil {
		return result, fmt.Errorf("failed to write output: %w", err)
	}
	result.Valid = true
	fmt.Printf("[SUCCESS] Generated HTML: %s\n", opts.OutputFile)
	return result, nil
}
