package markup

import "sort"

// Category groups keywords for documentation and tooling.
type Category int

const (
	CategoryBasic Category = iota
	CategoryAdvanced
	CategoryCustom
	CategoryDeprecated
)

func (c Category) String() string {
	switch c {
	case CategoryBasic:
		return "basic"
	case CategoryAdvanced:
		return "advanced"
	case CategoryCustom:
		return "custom"
	case CategoryDeprecated:
		return "deprecated"
	}
	return "unknown"
}

// KeywordDefinition maps a decoration keyword to its output tag and default
// attributes.
type KeywordDefinition struct {
	Name         string
	Tag          string
	DefaultAttrs map[string]string
	Deprecated   bool
	Category     Category
	Suggestion   string // replacement hint for deprecated keywords
}

// KeywordTOC is reserved: the table of contents is always synthesized and a
// hand-authored 目次 block is rejected by the validator.
const KeywordTOC = "目次"

// KeywordFootnote content is collected by the footnote manager instead of
// being rendered in place.
const KeywordFootnote = "脚注"

// nestingOrder fixes how compound keywords nest: structural keywords
// outermost, inline-style keywords innermost. Keywords missing from the
// table (customs, unknowns) nest innermost in authored order.
var nestingOrder = map[string]int{
	"見出し1":  10,
	"見出し2":  10,
	"見出し3":  10,
	"見出し4":  10,
	"見出し5":  10,
	"中央寄せ":  20,
	"右寄せ":   20,
	"枠線":    30,
	"背景色":   40,
	"引用":    50,
	"コード":   60,
	"脚注":    70,
	"太字":    80,
	"斜体":    90,
	"下線":    100,
	"取り消し線": 110,
	"赤字":    120,
}

func builtinKeywords() []KeywordDefinition {
	defs := []KeywordDefinition{
		{Name: "太字", Tag: "b", DefaultAttrs: map[string]string{"class": "deco-bold"}},
		{Name: "斜体", Tag: "i", DefaultAttrs: map[string]string{"class": "deco-italic"}},
		{Name: "下線", Tag: "u", DefaultAttrs: map[string]string{"class": "deco-underline"}},
		{Name: "取り消し線", Tag: "s", DefaultAttrs: map[string]string{"class": "deco-strike"}},
		{Name: "中央寄せ", Tag: "div", DefaultAttrs: map[string]string{"class": "deco-center"}},
		{Name: "右寄せ", Tag: "div", DefaultAttrs: map[string]string{"class": "deco-right"}},
		{Name: "引用", Tag: "blockquote", DefaultAttrs: map[string]string{"class": "deco-quote"}},
		{Name: "コード", Tag: "pre", DefaultAttrs: map[string]string{"class": "deco-pre"}},
		{Name: "ルビ", Tag: "ruby", DefaultAttrs: map[string]string{"class": "deco-ruby"}},
		{Name: "枠線", Tag: "div", DefaultAttrs: map[string]string{"class": "deco-frame"}, Category: CategoryAdvanced},
		{Name: "背景色", Tag: "div", DefaultAttrs: map[string]string{"class": "deco-bg"}, Category: CategoryAdvanced},
		{Name: KeywordFootnote, Tag: "sup", DefaultAttrs: map[string]string{"class": "deco-footnote"}, Category: CategoryAdvanced},
		{
			Name: "赤字", Tag: "span",
			DefaultAttrs: map[string]string{"class": "deco-red"},
			Deprecated:   true, Category: CategoryDeprecated,
			Suggestion: "color=#ff0000 属性を使ってください",
		},
	}
	for i := 1; i <= 5; i++ {
		defs = append(defs, KeywordDefinition{
			Name:         "見出し" + string(rune('0'+i)),
			Tag:          "h" + string(rune('0'+i)),
			DefaultAttrs: map[string]string{"class": "deco-heading"},
		})
	}
	return defs
}

// KeywordRegistry resolves keyword names. It is populated at construction
// (plus optional Register calls) and must not be mutated while a document
// parse is running; parsers only read it.
type KeywordRegistry struct {
	defs map[string]KeywordDefinition
	// insertion order of custom keywords, for stable compound nesting
	customRank map[string]int
}

// NewKeywordRegistry returns a registry preloaded with the built-in
// decoration keywords.
func NewKeywordRegistry() *KeywordRegistry {
	r := &KeywordRegistry{
		defs:       make(map[string]KeywordDefinition),
		customRank: make(map[string]int),
	}
	for _, def := range builtinKeywords() {
		r.defs[def.Name] = def
	}
	return r
}

// Register adds or replaces a keyword definition. Re-registering an
// identical definition leaves resolution behavior unchanged.
func (r *KeywordRegistry) Register(def KeywordDefinition) {
	if _, known := nestingOrder[def.Name]; !known {
		if _, seen := r.customRank[def.Name]; !seen {
			r.customRank[def.Name] = len(r.customRank)
		}
	}
	r.defs[def.Name] = def
}

// Lookup resolves a keyword name.
func (r *KeywordRegistry) Lookup(name string) (KeywordDefinition, bool) {
	def, ok := r.defs[name]
	return def, ok
}

// HeadingLevel reports the heading level of a keyword, or 0 if the keyword
// is not a heading.
func (r *KeywordRegistry) HeadingLevel(name string) int {
	if len(name) < len("見出し")+1 {
		return 0
	}
	if name[:len("見出し")] != "見出し" {
		return 0
	}
	d := name[len("見出し"):]
	if len(d) == 1 && d[0] >= '1' && d[0] <= '5' {
		return int(d[0] - '0')
	}
	return 0
}

// OrderCompound sorts a compound keyword list into canonical nesting order,
// outermost first. The sort is stable so equal-rank keywords keep their
// authored order.
func (r *KeywordRegistry) OrderCompound(keywords []string) []string {
	ordered := make([]string, len(keywords))
	copy(ordered, keywords)
	sort.SliceStable(ordered, func(i, j int) bool {
		return r.nestingRank(ordered[i]) < r.nestingRank(ordered[j])
	})
	return ordered
}

func (r *KeywordRegistry) nestingRank(name string) int {
	if rank, ok := nestingOrder[name]; ok {
		return rank
	}
	// customs and unknowns innermost, in registration order
	if rank, ok := r.customRank[name]; ok {
		return 1000 + rank
	}
	return 2000
}
