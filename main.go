// deco2html - converts deco block markup to standalone HTML documents,
// with optional validation-only runs, PDF export, and post-export checks.
//
// Usage: deco2html -i <input.deco> -o <output.html> [options]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"deco2html/analyzer"
	"deco2html/converter"
	"deco2html/pdf"
	"deco2html/validator"
)

var (
	BuildVersion = "1.0.0"
	BuildTime    = ""
)

func main() {
	inputFile := flag.String("i", "", "Input markup file (required)")
	outputFile := flag.String("o", "", "Output HTML or PDF file path")

	title := flag.String("title", "", "Document title (overrides config)")
	author := flag.String("author", "", "Author name (overrides config)")

	var configFile string
	flag.StringVar(&configFile, "c", "", "Config file path (deco.yml)")
	flag.StringVar(&configFile, "config", "", "Config file path (deco.yml)")

	validateOnly := flag.Bool("validate-only", false, "Validate the input and report issues without converting")
	strict := flag.Bool("strict", false, "Treat validation issues as fatal")
	chunkSize := flag.Int("chunk-size", 0, "Force chunked parsing with this many lines per chunk")

	pdfOut := flag.Bool("pdf", false, "Also export the generated HTML to PDF")
	checkOutput := flag.Bool("check", false, "Run structural checks on the generated HTML")

	showVersion := flag.Bool("v", false, "Show version")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "deco2html - deco markup to HTML converter\n\n")
		fmt.Fprintf(os.Stderr, "Usage: deco2html -i <input.deco> -o <output.html> [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("deco2html v%s (%s)\n", BuildVersion, BuildTime)
		return
	}

	if *inputFile == "" {
		flag.Usage()
		os.Exit(1)
	}

	// === Validate-only mode ===
	if *validateOnly {
		issues, err := validator.ValidateFile(*inputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[ERROR] Validation failed: %v\n", err)
			os.Exit(1)
		}
		for _, issue := range issues {
			fmt.Println(issue)
		}
		if len(issues) > 0 {
			fmt.Fprintf(os.Stderr, "[WARN] %d issues found\n", len(issues))
			if *strict {
				os.Exit(1)
			}
			return
		}
		fmt.Println("[SUCCESS] No issues found")
		return
	}

	if *outputFile == "" {
		flag.Usage()
		os.Exit(1)
	}

	htmlFile := *outputFile
	if *pdfOut || strings.HasSuffix(strings.ToLower(*outputFile), ".pdf") {
		*pdfOut = true
		htmlFile = strings.TrimSuffix(*outputFile, filepath.Ext(*outputFile)) + ".html"
	}

	opts := converter.Options{
		InputPath:  *inputFile,
		OutputFile: htmlFile,
		ConfigFile: configFile,
		Title:      *title,
		Author:     *author,
		ChunkSize:  *chunkSize,
		Strict:     *strict,
	}

	result, err := converter.Convert(context.Background(), opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] Conversion failed: %v\n", err)
		os.Exit(1)
	}
	if !result.Valid {
		fmt.Fprintf(os.Stderr, "[WARN] Document generated with %d node errors\n", result.NodeErrors)
	}

	if *checkOutput {
		report, err := analyzer.AnalyzeHTML(htmlFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[ERROR] HTML check failed: %v\n", err)
			os.Exit(1)
		}
		for _, problem := range report.Problems {
			fmt.Fprintf(os.Stderr, "[WARN] %s\n", problem)
		}
		if report.Clean() {
			fmt.Printf("[INFO] Structure OK: %d headings, %d footnotes\n",
				len(report.Headings), report.Footnotes)
		}
	}

	if *pdfOut {
		pdfFile := strings.TrimSuffix(*outputFile, filepath.Ext(*outputFile)) + ".pdf"
		if err := pdf.Render(htmlFile, pdfFile, pdf.Options{}); err != nil {
			fmt.Fprintf(os.Stderr, "[ERROR] PDF export failed: %v\n", err)
			os.Exit(1)
		}
	}
}
