package renderer

import "fmt"

// Theme drives the generated <style> block. The zero value is not usable;
// start from DefaultTheme and override fields through the config file.
type Theme struct {
	Name       string      `yaml:"name"`
	Fonts      FontsTheme  `yaml:"fonts"`
	Colors     ColorsTheme `yaml:"colors"`
	MaxWidthPx int         `yaml:"maxWidth"`
}

type FontsTheme struct {
	Body string `yaml:"body"`
	Code string `yaml:"code"`
}

type ColorsTheme struct {
	Text       string `yaml:"text"`
	Muted      string `yaml:"muted"`
	Accent     string `yaml:"accent"`
	Background string `yaml:"background"`
	CodeBg     string `yaml:"codeBackground"`
	Border     string `yaml:"border"`
	Error      string `yaml:"error"`
}

// DefaultTheme is the built-in look.
func DefaultTheme() Theme {
	return Theme{
		Name: "default",
		Fonts: FontsTheme{
			Body: `"Hiragino Sans", "Noto Sans JP", "Meiryo", sans-serif`,
			Code: `"SFMono-Regular", "Consolas", monospace`,
		},
		Colors: ColorsTheme{
			Text:       "#1f2328",
			Muted:      "#6a737d",
			Accent:     "#0f4c81",
			Background: "#ffffff",
			CodeBg:     "#f6f8fa",
			Border:     "#d0d7de",
			Error:      "#b3261e",
		},
		MaxWidthPx: 860,
	}
}

// CSS renders the embedded style block for the generated document.
func (t Theme) CSS() string {
	return fmt.Sprintf(`body {
  font-family: %s;
  color: %s;
  background: %s;
  max-width: %dpx;
  margin: 0 auto;
  padding: 2rem 1rem;
  line-height: 1.8;
}
.deco-heading { color: %s; }
h1.deco-heading { border-bottom: 2px solid %s; padding-bottom: .3rem; }
.deco-center { text-align: center; }
.deco-right { text-align: right; }
.deco-frame { border: 1px solid %s; border-radius: 4px; padding: .8rem 1rem; margin: .8rem 0; }
.deco-bg { background: %s; padding: .8rem 1rem; margin: .8rem 0; }
.deco-quote { border-left: 4px solid %s; color: %s; margin: .8rem 0; padding: .2rem 1rem; }
.deco-pre { background: %s; font-family: %s; padding: .8rem 1rem; overflow-x: auto; border-radius: 4px; }
.deco-code { background: %s; font-family: %s; padding: .1rem .35rem; border-radius: 3px; }
.deco-red { color: #ff0000; }
.deco-list { margin: .5rem 0; }
.deco-toc { border: 1px solid %s; border-radius: 4px; padding: 1rem 1.5rem; margin-bottom: 2rem; }
.deco-toc-title { font-weight: bold; color: %s; margin-bottom: .5rem; }
.deco-toc ol { margin: 0; padding-left: 1.4rem; }
.deco-footnotes { margin-top: 3rem; color: %s; font-size: .9rem; }
.deco-footnote a { text-decoration: none; }
.deco-backref { text-decoration: none; }
.deco-error { color: %s; border: 1px dashed %s; padding: 0 .3rem; font-size: .85em; }
ruby.deco-ruby rt { font-size: .55em; }
`,
		t.Fonts.Body, t.Colors.Text, t.Colors.Background, t.MaxWidthPx,
		t.Colors.Accent, t.Colors.Border,
		t.Colors.Border, t.Colors.CodeBg,
		t.Colors.Border, t.Colors.Muted,
		t.Colors.CodeBg, t.Fonts.Code,
		t.Colors.CodeBg, t.Fonts.Code,
		t.Colors.Border, t.Colors.Accent,
		t.Colors.Muted,
		t.Colors.Error, t.Colors.Error)
}
