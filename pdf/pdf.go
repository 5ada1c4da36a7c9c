// Package pdf exports generated HTML documents to PDF through a
// headless Chrome/Chromium instance.
package pdf

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Options control the print run.
type Options struct {
	Landscape bool
	Scale     float64
	Timeout   int // seconds
}

// Render prints an HTML file to PDF. Fonts for Japanese text must be
// available to the browser; rendering waits for the page to settle so
// web fonts have a chance to load.
func Render(inputHTML, outputPDF string, opts Options) error {
	if inputHTML == "" {
		return fmt.Errorf("input HTML file path is required")
	}
	if outputPDF == "" {
		outputPDF = strings.TrimSuffix(inputHTML, filepath.Ext(inputHTML)) + ".pdf"
	}

	absInput, err := filepath.Abs(inputHTML)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	scale := opts.Scale
	if scale <= 0 {
		scale = 1.0
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 120
	}

	fileURL := "file://" + absInput
	fmt.Printf("[INFO] Printing: %s\n", absInput)
	fmt.Printf("[INFO] Output: %s\n", outputPDF)

	allocCtx, allocCancel := chromedp.NewExecAllocator(
		context.Background(),
		append(
			chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("disable-extensions", true),
			chromedp.Flag("disable-background-networking", true),
		)...,
	)
	defer allocCancel()

	ctx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(log.Printf))
	defer cancel()

	ctx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	if err := chromedp.Run(ctx,
		chromedp.Navigate(fileURL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(2*time.Second),
	); err != nil {
		return fmt.Errorf("failed to load page: %w", err)
	}

	var buf []byte
	printParams := page.PrintToPDF().
		WithPrintBackground(true).
		WithPreferCSSPageSize(true).
		WithScale(scale).
		WithLandscape(opts.Landscape).
		WithMarginTop(0).
		WithMarginBottom(0).
		WithMarginLeft(0).
		WithMarginRight(0)

	if err := chromedp.Run(ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, _, err = printParams.Do(ctx)
			return err
		}),
	); err != nil {
		return fmt.Errorf("failed to generate PDF: %w", err)
	}

	if dir := filepath.Dir(outputPDF); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(outputPDF, buf, 0644); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}

	fmt.Printf("[SUCCESS] Generated PDF: %s (%.1f MB)\n", outputPDF, float64(len(buf))/(1024*1024))
	return nil
}
