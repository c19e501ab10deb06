package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/geoanalyzer/internal/fetch"
	"github.com/hyperifyio/geoanalyzer/internal/report"
)

// FileConfig is the YAML/JSON configuration file schema. Sections mirror the
// dotted flag names.
type FileConfig struct {
	URLs []string `yaml:"urls" json:"urls"`

	Fetch struct {
		UserAgent    string        `yaml:"userAgent" json:"userAgent"`
		Timeout      time.Duration `yaml:"timeout" json:"timeout"`
		MaxAttempts  int           `yaml:"maxAttempts" json:"maxAttempts"`
		MaxBodyBytes int64         `yaml:"maxBodyBytes" json:"maxBodyBytes"`
		Robots       bool          `yaml:"robots" json:"robots"`
	} `yaml:"fetch" json:"fetch"`

	Concurrency int `yaml:"concurrency" json:"concurrency"`

	Years struct {
		// Pointers so an explicit 0 can narrow the window.
		Back  *int `yaml:"back" json:"back"`
		Ahead *int `yaml:"ahead" json:"ahead"`
	} `yaml:"years" json:"years"`

	Cache struct {
		Dir         string        `yaml:"dir" json:"dir"`
		MaxAge      time.Duration `yaml:"maxAge" json:"maxAge"`
		Clear       bool          `yaml:"clear" json:"clear"`
		StrictPerms bool          `yaml:"strictPerms" json:"strictPerms"`
	} `yaml:"cache" json:"cache"`

	Out struct {
		Dir     string   `yaml:"dir" json:"dir"`
		Formats []string `yaml:"formats" json:"formats"`
	} `yaml:"out" json:"out"`

	Top     int  `yaml:"top" json:"top"`
	Verbose bool `yaml:"verbose" json:"verbose"`

	LLM struct {
		BaseURL      string `yaml:"base" json:"base"`
		Model        string `yaml:"model" json:"model"`
		APIKey       string `yaml:"key" json:"key"`
		SystemPrompt string `yaml:"systemPrompt" json:"systemPrompt"`
		MaxTokens    int    `yaml:"maxTokens" json:"maxTokens"`
	} `yaml:"llm" json:"llm"`
}

// LoadConfigFile reads YAML or JSON into FileConfig. Unknown extensions are
// tried as YAML, then JSON.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays fc onto fields of cfg that are unset or still at
// their flag default, so explicit flags keep precedence.
func ApplyFileConfig(cfg *Config, fc FileConfig) error {
	if cfg == nil {
		return nil
	}
	if len(cfg.URLs) == 0 && len(fc.URLs) > 0 {
		cfg.URLs = append([]string(nil), fc.URLs...)
	}

	if (cfg.UserAgent == "" || cfg.UserAgent == fetch.DefaultUserAgent) && fc.Fetch.UserAgent != "" {
		cfg.UserAgent = fc.Fetch.UserAgent
	}
	if (cfg.Timeout == 0 || cfg.Timeout == fetch.DefaultTimeout) && fc.Fetch.Timeout > 0 {
		cfg.Timeout = fc.Fetch.Timeout
	}
	if cfg.MaxAttempts <= 1 && fc.Fetch.MaxAttempts > 0 {
		cfg.MaxAttempts = fc.Fetch.MaxAttempts
	}
	if cfg.MaxBodyBytes == 0 && fc.Fetch.MaxBodyBytes > 0 {
		cfg.MaxBodyBytes = fc.Fetch.MaxBodyBytes
	}
	if !cfg.Robots && fc.Fetch.Robots {
		cfg.Robots = true
	}

	if (cfg.Concurrency == 0 || cfg.Concurrency == DefaultConcurrency) && fc.Concurrency > 0 {
		cfg.Concurrency = fc.Concurrency
	}
	if cfg.YearsBack == DefaultYearsBack && fc.Years.Back != nil {
		cfg.YearsBack = *fc.Years.Back
	}
	if cfg.YearsAhead == DefaultYearsAhead && fc.Years.Ahead != nil {
		cfg.YearsAhead = *fc.Years.Ahead
	}

	if cfg.CacheDir == "" && fc.Cache.Dir != "" {
		cfg.CacheDir = fc.Cache.Dir
	}
	if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge > 0 {
		cfg.CacheMaxAge = fc.Cache.MaxAge
	}
	if !cfg.CacheClear && fc.Cache.Clear {
		cfg.CacheClear = true
	}
	if !cfg.CacheStrictPerms && fc.Cache.StrictPerms {
		cfg.CacheStrictPerms = true
	}

	if (cfg.OutDir == "" || cfg.OutDir == DefaultOutDir) && fc.Out.Dir != "" {
		cfg.OutDir = fc.Out.Dir
	}
	if len(cfg.Formats) == 0 && len(fc.Out.Formats) > 0 {
		for _, s := range fc.Out.Formats {
			f, err := report.ParseFormat(s)
			if err != nil {
				return fmt.Errorf("config: out.formats: %w", err)
			}
			cfg.Formats = append(cfg.Formats, f)
		}
	}
	if (cfg.Top == 0 || cfg.Top == DefaultTop) && fc.Top != 0 {
		cfg.Top = fc.Top
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}

	if cfg.LLMBaseURL == "" && fc.LLM.BaseURL != "" {
		cfg.LLMBaseURL = fc.LLM.BaseURL
	}
	if cfg.LLMModel == "" && fc.LLM.Model != "" {
		cfg.LLMModel = fc.LLM.Model
	}
	if cfg.LLMAPIKey == "" && fc.LLM.APIKey != "" {
		cfg.LLMAPIKey = fc.LLM.APIKey
	}
	if cfg.LLMSystemPrompt == "" && fc.LLM.SystemPrompt != "" {
		cfg.LLMSystemPrompt = fc.LLM.SystemPrompt
	}
	if cfg.LLMMaxTokens == 0 && fc.LLM.MaxTokens > 0 {
		cfg.LLMMaxTokens = fc.LLM.MaxTokens
	}
	return nil
}
