// Package validator checks deco markup sources line by line and reports
// positional diagnostics. It works on raw lines, independent of the block
// parser, so validation still works for documents a full parse would
// mangle. It is read-only and safe to run concurrently with parsing.
package validator

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"deco2html/markup"
)

var (
	boldLegacyRe = regexp.MustCompile(`\*\*[^*]+\*\*`)
	colorChainRe = regexp.MustCompile(`color=[^ \t]*\+`)
)

// ValidateFile reads and validates one file. An unreadable file is fatal for
// that file only: it yields a single FILE_ERROR issue plus the Go error.
func ValidateFile(path string) ([]markup.Issue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		issue := markup.Issue{
			Line:    0,
			Type:    markup.FileError,
			Message: fmt.Sprintf("ファイルを読み込めません: %v", err),
		}
		return []markup.Issue{issue}, fmt.Errorf("validate %s: %w", path, err)
	}
	return Validate(splitLines(string(data))), nil
}

// Validate checks raw document lines and returns issues in line order.
func Validate(lines []string) []markup.Issue {
	var issues []markup.Issue
	var openLines []int // lines of currently unmatched block openers
	inCode := false

	for idx, line := range lines {
		lineNo := idx + 1

		switch markup.ClassifyLine(line, inCode) {
		case markup.LineCodeFence:
			inCode = !inCode

		case markup.LineBlockOpen:
			issues = append(issues, checkOpenLine(line, lineNo)...)
			openLines = append(openLines, lineNo)

		case markup.LineBlockClose:
			if len(openLines) == 0 {
				issues = append(issues, markup.Issue{
					Line:    lineNo,
					Type:    markup.MalformedBlock,
					Message: "閉じマーカー ;;; に対応する開始マーカーがありません",
				})
				continue
			}
			openLines = openLines[:len(openLines)-1]

		case markup.LineMarkdownHeading:
			issues = append(issues, markup.Issue{
				Line:       lineNo,
				Type:       markup.UnsupportedSyntax,
				Message:    "Markdown形式の見出し # は使用できません",
				Suggestion: ";;;見出し1 ～ ;;; ブロックを使ってください",
			})

		case markup.LineText:
			if inCode {
				continue
			}
			if boldLegacyRe.MatchString(line) {
				issues = append(issues, markup.Issue{
					Line:       lineNo,
					Type:       markup.UnsupportedSyntax,
					Message:    "Markdown形式の強調 **テキスト** は使用できません",
					Suggestion: "太字;;;テキスト;;; を使ってください",
				})
			}
		}
	}

	if inCode {
		issues = append(issues, markup.Issue{
			Line:    len(lines),
			Type:    markup.MalformedBlock,
			Message: "コードフェンスが閉じられていません",
		})
	}
	for i := len(openLines) - 1; i >= 0; i-- {
		issues = append(issues, markup.Issue{
			Line:    openLines[i],
			Type:    markup.MalformedBlock,
			Message: "ブロックが閉じられていません",
		})
	}

	sortByLine(issues)
	return issues
}

// checkOpenLine inspects one block-open line: empty keyword names, manual
// TOC authoring, and attribute-ordering misuse around color.
func checkOpenLine(line string, lineNo int) []markup.Issue {
	var issues []markup.Issue

	// color must be the last qualifier: color=...+keyword is a marker misuse
	if colorChainRe.MatchString(line) {
		issues = append(issues, markup.Issue{
			Line:       lineNo,
			Type:       markup.InvalidMarker,
			Message:    "color 属性の後にキーワードを続けることはできません",
			Suggestion: "color は行末の最後の修飾子として書いてください",
		})
	}

	open, ok := markup.ParseBlockOpen(line)
	if !ok {
		issues = append(issues, markup.Issue{
			Line:    lineNo,
			Type:    markup.InvalidMarker,
			Message: "キーワード名が空です",
		})
		return issues
	}
	for _, kw := range open.Keywords {
		if kw == markup.KeywordTOC {
			issues = append(issues, markup.Issue{
				Line:       lineNo,
				Type:       markup.UnsupportedSyntax,
				Message:    "目次ブロックは手動で記述できません",
				Suggestion: "目次は変換時に自動生成されます",
			})
		}
	}
	return issues
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Split(s, "\n")
}

// insertion sort; issue lists are short and mostly ordered already
func sortByLine(issues []markup.Issue) {
	for i := 1; i < len(issues); i++ {
		for j := i; j > 0 && issues[j].Line < issues[j-1].Line; j-- {
			issues[j], issues[j-1] = issues[j-1], issues[j]
		}
	}
}
