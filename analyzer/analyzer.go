// Package analyzer inspects generated documents: structural checks on
// the HTML output and page mapping for exported PDFs.
package analyzer

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
)

// HeadingInfo is one rendered heading.
type HeadingInfo struct {
	Level  int    `json:"level"`
	Title  string `json:"title"`
	Anchor string `json:"anchor"`
	Page   int    `json:"page,omitempty"`
}

// HTMLReport summarizes structural checks on a generated document.
type HTMLReport struct {
	Headings      []HeadingInfo `json:"headings"`
	Footnotes     int           `json:"footnotes"`
	ErrorElements int           `json:"error_elements"`
	Problems      []string      `json:"problems,omitempty"`
}

// Clean reports whether every structural check passed.
func (r *HTMLReport) Clean() bool { return len(r.Problems) == 0 }

// AnalyzeHTML checks a generated document for structural defects:
// duplicate anchors, table-of-contents links pointing nowhere, and
// footnote references without a matching note or back link.
func AnalyzeHTML(path string) (*HTMLReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open HTML: %w", err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	report := &HTMLReport{}
	ids := make(map[string]int)
	doc.Find("[id]").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("id")
		ids[id]++
	})
	for id, n := range ids {
		if n > 1 {
			report.Problems = append(report.Problems, fmt.Sprintf("duplicate id %q (%d occurrences)", id, n))
		}
	}

	doc.Find("h1, h2, h3, h4, h5").Each(func(_ int, s *goquery.Selection) {
		anchor, _ := s.Attr("id")
		report.Headings = append(report.Headings, HeadingInfo{
			Level:  int(s.Get(0).Data[1] - '0'),
			Title:  strings.TrimSpace(s.Text()),
			Anchor: anchor,
		})
	})

	doc.Find("nav.deco-toc a").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !strings.HasPrefix(href, "#") {
			report.Problems = append(report.Problems, fmt.Sprintf("toc link %q is not a fragment", href))
			return
		}
		if _, ok := ids[href[1:]]; !ok {
			report.Problems = append(report.Problems, fmt.Sprintf("toc link %q has no target", href))
		}
	})

	doc.Find("sup.deco-footnote").Each(func(_ int, s *goquery.Selection) {
		report.Footnotes++
		refID, _ := s.Attr("id")
		href, _ := s.Find("a").Attr("href")
		if !strings.HasPrefix(href, "#fn-") {
			report.Problems = append(report.Problems, fmt.Sprintf("footnote ref %q has no note link", refID))
			return
		}
		noteID := href[1:]
		if _, ok := ids[noteID]; !ok {
			report.Problems = append(report.Problems, fmt.Sprintf("footnote ref %q points to missing note %q", refID, noteID))
			return
		}
		back := doc.Find(fmt.Sprintf("#%s a[href='#%s']", noteID, refID))
		if back.Length() == 0 {
			report.Problems = append(report.Problems, fmt.Sprintf("note %q has no back link to %q", noteID, refID))
		}
	})

	report.ErrorElements = doc.Find("span.deco-error").Length()
	return report, nil
}

// PDFReport maps document headings to the PDF pages they landed on.
type PDFReport struct {
	TotalPages int           `json:"total_pages"`
	Headings   []HeadingInfo `json:"headings"`
}

// AnalyzePDF scans an exported PDF and records the first page each
// heading title appears on. skipPages skips front matter such as a
// cover or table of contents; zero means scan from the first page.
func AnalyzePDF(pdfPath string, headings []HeadingInfo, skipPages int) (*PDFReport, error) {
	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	totalPages := r.NumPage()
	fmt.Fprintf(os.Stderr, "[INFO] PDF has %d pages\n", totalPages)

	report := &PDFReport{TotalPages: totalPages}
	report.Headings = append(report.Headings, headings...)

	for pageNum := skipPages + 1; pageNum <= totalPages; pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		for i := range report.Headings {
			if report.Headings[i].Page == 0 && containsTitle(text, report.Headings[i].Title) {
				report.Headings[i].Page = pageNum - skipPages
				fmt.Fprintf(os.Stderr, "[FOUND] %q on page %d\n",
					report.Headings[i].Title, report.Headings[i].Page)
			}
		}
	}
	return report, nil
}

// SavePDFReport writes the page mapping as JSON.
func SavePDFReport(report *PDFReport, outputPath string) error {
	jsonOutput, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(outputPath, jsonOutput, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	fmt.Fprintf(os.Stderr, "[SUCCESS] Page mapping saved to %s\n", outputPath)
	return nil
}

// containsTitle matches loosely: PDF text extraction mangles spacing,
// so comparison ignores whitespace and punctuation.
func containsTitle(text, title string) bool {
	if strings.TrimSpace(title) == "" {
		return false
	}
	strip := regexp.MustCompile(`[\s\p{P}]+`)
	cleanText := strip.ReplaceAllString(text, "")
	cleanTitle := strip.ReplaceAllString(title, "")
	if cleanTitle == "" {
		return false
	}
	return strings.Contains(cleanText, cleanTitle)
}
