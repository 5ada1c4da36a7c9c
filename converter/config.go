package converter

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"deco2html/markup"
	"deco2html/renderer"
)

// Config is the YAML configuration file (deco2html.yml). Every field has a
// working default; CLI flags override config values.
type Config struct {
	Document struct {
		Title  string `yaml:"title"`
		Author string `yaml:"author"`
	} `yaml:"document"`

	// ChunkSize is the approximate line count per parallel parse chunk.
	// Zero disables chunked parsing.
	ChunkSize int `yaml:"chunk_size"`
	// MaxWorkers caps the parse worker pool. The pool size is
	// min(NumCPU+2, MaxWorkers).
	MaxWorkers int `yaml:"max_workers"`
	// StrictValidation escalates validation issues to a failed conversion.
	StrictValidation bool `yaml:"strict_validation"`
	// ErrorThreshold is the number of tolerated node errors (parse error
	// nodes plus isolated render failures) before the document is reported
	// overall-invalid.
	ErrorThreshold int `yaml:"error_threshold"`

	Theme renderer.Theme `yaml:"theme"`

	// Keywords are extra keyword registrations applied before parsing.
	Keywords []KeywordConfig `yaml:"keywords"`
}

// KeywordConfig registers one custom keyword from the config file.
type KeywordConfig struct {
	Name  string            `yaml:"name"`
	Tag   string            `yaml:"tag"`
	Attrs map[string]string `yaml:"attrs"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	var cfg Config
	cfg.ChunkSize = 0
	cfg.MaxWorkers = 8
	cfg.ErrorThreshold = 10
	cfg.Theme = renderer.DefaultTheme()
	return cfg
}

// LoadConfig reads a YAML config file on top of the defaults. A missing or
// broken file is reported but never fatal; the defaults carry the
// conversion.
func LoadConfig(path string) Config {
	cfg := DefaultConfig()
	if path == "" {
		return cfg
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("[WARN] Config file not found: %s\n", path)
		return cfg
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		fmt.Printf("[WARN] Failed to parse config file: %v\n", err)
		return DefaultConfig()
	}
	fmt.Printf("[INFO] Loaded config: %s\n", path)
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 8
	}
	if cfg.ErrorThreshold <= 0 {
		cfg.ErrorThreshold = 10
	}
	if cfg.Theme.Name == "" {
		cfg.Theme = renderer.DefaultTheme()
	}
	return cfg
}

// Registry builds the keyword registry for this conversion: builtins plus
// the custom registrations from the config file. The registry is complete
// before any parse starts and read-only afterwards.
func (c Config) Registry() *markup.KeywordRegistry {
	reg := markup.NewKeywordRegistry()
	for _, kw := range c.Keywords {
		if kw.Name == "" || kw.Tag == "" {
			fmt.Printf("[WARN] Ignoring custom keyword with empty name or tag\n")
			continue
		}
		attrs := kw.Attrs
		if attrs == nil {
			attrs = map[string]string{"class": "deco-custom"}
		}
		reg.Register(markup.KeywordDefinition{
			Name:         kw.Name,
			Tag:          kw.Tag,
			DefaultAttrs: attrs,
			Category:     markup.CategoryCustom,
		})
	}
	return reg
}

// workerCount sizes the chunk worker pool.
func (c Config) workerCount() int {
	n := runtime.NumCPU() + 2
	if n > c.MaxWorkers {
		n = c.MaxWorkers
	}
	if n < 1 {
		n = 1
	}
	return n
}
