package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeadingLevel(t *testing.T) {
	reg := NewKeywordRegistry()

	testCases := []struct {
		keyword string
		want    int
	}{
		{"見出し1", 1},
		{"見出し3", 3},
		{"見出し5", 5},
		{"見出し6", 0}, // out of range
		{"見出し", 0},
		{"太字", 0},
		{"", 0},
	}
	for _, tc := range testCases {
		if got := reg.HeadingLevel(tc.keyword); got != tc.want {
			t.Errorf("HeadingLevel(%q) = %d, want %d", tc.keyword, got, tc.want)
		}
	}
}

func TestOrderCompound(t *testing.T) {
	reg := NewKeywordRegistry()

	testCases := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "heading before inline style",
			in:   []string{"太字", "見出し2"},
			want: []string{"見出し2", "太字"},
		},
		{
			name: "already canonical stays put",
			in:   []string{"枠線", "太字"},
			want: []string{"枠線", "太字"},
		},
		{
			name: "equal rank keeps authored order",
			in:   []string{"右寄せ", "中央寄せ"},
			want: []string{"右寄せ", "中央寄せ"},
		},
		{
			name: "full chain",
			in:   []string{"下線", "引用", "太字", "中央寄せ"},
			want: []string{"中央寄せ", "引用", "太字", "下線"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, reg.OrderCompound(tc.in))
		})
	}
}

func TestRegisterCustomKeyword(t *testing.T) {
	reg := NewKeywordRegistry()
	def := KeywordDefinition{
		Name:         "注意",
		Tag:          "div",
		DefaultAttrs: map[string]string{"class": "deco-custom"},
		Category:     CategoryCustom,
	}

	reg.Register(def)
	got, ok := reg.Lookup("注意")
	assert.True(t, ok)
	assert.Equal(t, "div", got.Tag)

	// re-registering the identical definition changes nothing
	reg.Register(def)
	again, _ := reg.Lookup("注意")
	assert.Equal(t, got, again)
}

func TestCustomKeywordsNestInnermostInRegistrationOrder(t *testing.T) {
	reg := NewKeywordRegistry()
	reg.Register(KeywordDefinition{Name: "甲", Tag: "div"})
	reg.Register(KeywordDefinition{Name: "乙", Tag: "div"})

	// customs come after every builtin, in registration order
	assert.Equal(t, []string{"引用", "甲", "乙"}, reg.OrderCompound([]string{"乙", "甲", "引用"}))
	// unregistered unknowns nest innermost of all
	assert.Equal(t, []string{"甲", "謎"}, reg.OrderCompound([]string{"謎", "甲"}))
}
