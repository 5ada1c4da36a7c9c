package renderer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFootnoteNumbering(t *testing.T) {
	f := NewFootnotes()

	for i := 1; i <= 3; i++ {
		n, err := f.Register("注記")
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}
	require.Len(t, f.Notes(), 3)
	assert.Equal(t, 1, f.Notes()[0].Number)
	assert.Equal(t, 3, f.Notes()[2].Number)
}

func TestFootnoteRejectsEmpty(t *testing.T) {
	f := NewFootnotes()

	_, err := f.Register("   ")
	require.Error(t, err)

	// a rejected note must not consume a number
	n, err := f.Register("有効な注")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestFootnoteRejectsTooLong(t *testing.T) {
	f := NewFootnotes()

	_, err := f.Register(strings.Repeat("あ", MaxFootnoteLen+1))
	require.Error(t, err)

	_, err = f.Register(strings.Repeat("あ", MaxFootnoteLen))
	assert.NoError(t, err, "exactly at the ceiling is accepted")
}

func TestFootnoteReset(t *testing.T) {
	f := NewFootnotes()
	_, _ = f.Register("注")
	f.Reset()

	assert.Empty(t, f.Notes())
	n, err := f.Register("次の文書の注")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestFootnoteRefAndBlock(t *testing.T) {
	f := NewFootnotes()
	n, _ := f.Register("内容 <x>")

	ref := f.Ref(n)
	assert.Equal(t, `<sup class="deco-footnote" id="fnref-1"><a href="#fn-1">[1]</a></sup>`, ref)

	block := f.HTML()
	assert.Contains(t, block, `<li id="fn-1">内容 &lt;x&gt;`)
	assert.Contains(t, block, `href="#fnref-1"`)
}

func TestFootnoteEmptyBlock(t *testing.T) {
	assert.Empty(t, NewFootnotes().HTML())
}
