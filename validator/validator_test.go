package validator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deco2html/markup"
)

func TestValidateCleanDocument(t *testing.T) {
	issues := Validate([]string{
		";;;見出し1",
		"タイトル",
		";;;",
		"本文です。",
		"・項目",
	})
	assert.Empty(t, issues)
}

func TestValidateDanglingCloseMarker(t *testing.T) {
	issues := Validate([]string{"本文", ";;;"})

	require.Len(t, issues, 1)
	assert.Equal(t, markup.MalformedBlock, issues[0].Type)
	assert.Equal(t, 2, issues[0].Line)
}

func TestValidateColorChainIsSingleIssue(t *testing.T) {
	// color must come last; chaining a keyword after it is one marker
	// misuse, not a cascade of follow-up diagnostics
	issues := Validate([]string{";;;color=#ff0000+太字", "本文", ";;;"})

	require.Len(t, issues, 1)
	assert.Equal(t, markup.InvalidMarker, issues[0].Type)
	assert.Contains(t, issues[0].Message, "color")
}

func TestValidateMarkdownHeading(t *testing.T) {
	issues := Validate([]string{"# 見出し"})

	require.Len(t, issues, 1)
	assert.Equal(t, markup.UnsupportedSyntax, issues[0].Type)
	assert.Contains(t, issues[0].Suggestion, ";;;見出し1")
}

func TestValidateLegacyBold(t *testing.T) {
	issues := Validate([]string{"これは**重要**です"})

	require.Len(t, issues, 1)
	assert.Equal(t, markup.UnsupportedSyntax, issues[0].Type)
	assert.Contains(t, issues[0].Suggestion, "太字;;;")
}

func TestValidateManualTOC(t *testing.T) {
	issues := Validate([]string{";;;目次", "手動目次", ";;;"})

	require.Len(t, issues, 1)
	assert.Equal(t, markup.UnsupportedSyntax, issues[0].Type)
}

func TestValidateUnclosedBlock(t *testing.T) {
	issues := Validate([]string{";;;引用", "引用文"})

	require.Len(t, issues, 1)
	assert.Equal(t, markup.MalformedBlock, issues[0].Type)
	assert.Equal(t, 1, issues[0].Line, "reported at the opening line")
}

func TestValidateUnclosedCodeFence(t *testing.T) {
	issues := Validate([]string{"本文", "```", "コード"})

	require.Len(t, issues, 1)
	assert.Equal(t, markup.MalformedBlock, issues[0].Type)
}

func TestValidateCodeFenceSuppressesChecks(t *testing.T) {
	issues := Validate([]string{
		"```",
		"# コメント",
		"**not bold**",
		";;;目次",
		"```",
	})
	assert.Empty(t, issues)
}

func TestValidateIssuesSortedByLine(t *testing.T) {
	issues := Validate([]string{
		";;;引用",  // unclosed, reported at line 1 but discovered last
		"# 見出し", // line 2
	})

	require.Len(t, issues, 2)
	assert.Equal(t, 1, issues[0].Line)
	assert.Equal(t, 2, issues[1].Line)
}

func TestValidateFileMissing(t *testing.T) {
	issues, err := ValidateFile(filepath.Join(t.TempDir(), "no-such-file.deco"))

	require.Error(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, markup.FileError, issues[0].Type)
}

func TestValidateFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.deco")
	content := ";;;見出し1\r\nタイトル\r\n;;;\r\n# legacy\r\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	issues, err := ValidateFile(path)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, 4, issues[0].Line, "CRLF input keeps correct line numbers")
}
