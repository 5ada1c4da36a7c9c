// Package converter drives the deco-to-HTML pipeline: format detection,
// validation, parsing (plain or chunked) and document rendering.
package converter

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"deco2html/markup"
	"deco2html/renderer"
	"deco2html/validator"
)

// Format is the detected input format.
type Format int

const (
	FormatNative Format = iota
	FormatMarkdown
	FormatAmbiguous
)

func (f Format) String() string {
	switch f {
	case FormatNative:
		return "native"
	case FormatMarkdown:
		return "markdown"
	case FormatAmbiguous:
		return "ambiguous"
	}
	return "unknown"
}

// DetectFormat guesses whether the input is deco markup or Markdown.
// At least three marker pairs and no Markdown headings means native;
// Markdown headings without any marker pairs means Markdown. A mix of
// both is reported as ambiguous instead of silently guessed, and
// ambiguous input is processed as native.
func DetectFormat(lines []string) Format {
	markerLines := 0
	mdHeadings := 0
	inCode := false
	for _, line := range lines {
		switch markup.ClassifyLine(line, inCode) {
		case markup.LineCodeFence:
			inCode = !inCode
		case markup.LineBlockOpen, markup.LineBlockClose:
			markerLines++
		case markup.LineMarkdownHeading:
			mdHeadings++
		}
	}
	pairs := markerLines / 2

	switch {
	case pairs >= 3 && mdHeadings == 0:
		return FormatNative
	case pairs == 0 && mdHeadings > 0:
		return FormatMarkdown
	case pairs > 0 && mdHeadings > 0:
		return FormatAmbiguous
	default:
		return FormatNative
	}
}

// Options for one conversion. Non-zero fields override the config file.
type Options struct {
	InputPath  string
	OutputFile string
	ConfigFile string

	Title  string
	Author string

	ChunkSize int  // >0 forces chunked parsing with this chunk size
	Strict    bool // escalate validation issues to a failed conversion
}

// Result reports what one conversion produced.
type Result struct {
	OutputPath string
	Format     Format
	Issues     []markup.Issue
	Report     *ChunkReport // nil unless the parse was chunked
	NodeErrors int          // parse error nodes plus isolated render failures
	Valid      bool         // NodeErrors within the configured threshold
}

// Convert runs the full pipeline for one file: detect, validate, parse,
// render, write. Recoverable markup problems become Issues and inline
// error elements and the HTML file is still produced. Only I/O failures
// and strict-mode escalation return an error.
func Convert(ctx context.Context, opts Options) (*Result, error) {
	cfg := LoadConfig(opts.ConfigFile)
	if opts.ChunkSize > 0 {
		cfg.ChunkSize = opts.ChunkSize
	}
	if opts.Strict {
		cfg.StrictValidation = true
	}
	cfg.Document.Title = resolveValue(opts.Title, cfg.Document.Title, "Document")
	cfg.Document.Author = resolveValue(opts.Author, cfg.Document.Author, "")

	data, err := os.ReadFile(opts.InputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	lines := splitLines(string(data))
	fmt.Printf("[INFO] Read %s lines from %s\n", humanize.Comma(int64(len(lines))), opts.InputPath)

	result := &Result{OutputPath: opts.OutputFile, Format: DetectFormat(lines)}

	if result.Format == FormatMarkdown {
		fmt.Printf("[INFO] Input looks like Markdown, converting best-effort\n")
		return convertMarkdown(lines, cfg, opts, result)
	}
	if result.Format == FormatAmbiguous {
		result.Issues = append(result.Issues, markup.Issue{
			Line:       1,
			Type:       markup.UnsupportedSyntax,
			Message:    "デコ記法とMarkdownの見出しが混在しています",
			Suggestion: "デコ記法として処理します",
		})
		fmt.Fprintf(os.Stderr, "[WARN] Mixed markup detected, treating input as native\n")
	}

	reg := cfg.Registry()
	result.Issues = append(result.Issues, validator.Validate(lines)...)

	var root *markup.Node
	if cfg.ChunkSize > 0 && len(lines) > cfg.ChunkSize {
		fmt.Printf("[INFO] Chunked parse: %d-line chunks, %d workers\n", cfg.ChunkSize, cfg.workerCount())
		chunkRoot, parseIssues, report, err := ParseChunked(ctx, lines, reg, cfg, NewCache())
		if err != nil {
			return nil, err
		}
		root = chunkRoot
		result.Report = report
		result.Issues = mergeIssues(result.Issues, parseIssues)
		fmt.Printf("[INFO] Chunks: %d total, %d failed (success %.1f%%)\n",
			report.Chunks, len(report.Failed), report.SuccessRatio()*100)
	} else {
		p := markup.NewParser(reg)
		root = p.Parse(lines)
		result.Issues = mergeIssues(result.Issues, p.Issues())
	}

	for _, issue := range result.Issues {
		fmt.Fprintf(os.Stderr, "[WARN] %s\n", issue)
	}
	if cfg.StrictValidation && len(result.Issues) > 0 {
		return result, fmt.Errorf("strict validation failed with %d issues", len(result.Issues))
	}

	r := renderer.New(reg)
	r.SetTheme(cfg.Theme)
	html := r.Document(root, renderer.DocumentMeta{
		Title:  cfg.Document.Title,
		Author: cfg.Document.Author,
	})

	result.NodeErrors = countErrorNodes(root) + r.RenderErrors()
	result.Valid = result.NodeErrors <= cfg.ErrorThreshold
	if !result.Valid {
		fmt.Fprintf(os.Stderr, "[WARN] %d node errors exceed threshold %d, document marked invalid\n",
			result.NodeErrors, cfg.ErrorThreshold)
	}

	if err := os.WriteFile(opts.OutputFile, []byte(html), 0644); err != nil {
		return result, fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Printf("[SUCCESS] Generated HTML: %s\n", opts.OutputFile)
	return result, nil
}

func countErrorNodes(n *markup.Node) int {
	count := 0
	if n.Kind == markup.KindError {
		count++
	}
	for _, child := range n.Children() {
		count += countErrorNodes(child)
	}
	return count
}

func resolveValue(cliValue, configValue, defaultVal string) string {
	if cliValue != "" {
		return cliValue
	}
	if configValue != "" {
		return configValue
	}
	return defaultVal
}

// mergeIssues combines validator and parser diagnostics, dropping
// duplicates both passes reported for the same line.
func mergeIssues(a, b []markup.Issue) []markup.Issue {
	seen := make(map[string]bool, len(a))
	key := func(i markup.Issue) string {
		return fmt.Sprintf("%d/%d", i.Line, i.Type)
	}
	merged := make([]markup.Issue, 0, len(a)+len(b))
	for _, issue := range a {
		seen[key(issue)] = true
		merged = append(merged, issue)
	}
	for _, issue := range b {
		if !seen[key(issue)] {
			seen[key(issue)] = true
			merged = append(merged, issue)
		}
	}
	sortIssues(merged)
	return merged
}

func sortIssues(issues []markup.Issue) {
	for i := 1; i < len(issues); i++ {
		for j := i; j > 0 && issues[j].Line < issues[j-1].Line; j-- {
			issues[j], issues[j-1] = issues[j-1], issues[j]
		}
	}
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}
