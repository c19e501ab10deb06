package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/geoanalyzer/internal/fetch"
	"github.com/hyperifyio/geoanalyzer/internal/report"
)

// ApplyEnvToConfig fills fields of cfg that are still unset (zero or default)
// from GEO_* environment variables. LLM settings also accept the unprefixed
// LLM_* names.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}

	if len(cfg.URLs) == 0 {
		cfg.URLs = SplitList(os.Getenv("GEO_URLS"))
	}
	if cfg.UserAgent == "" || cfg.UserAgent == fetch.DefaultUserAgent {
		if v := os.Getenv("GEO_USER_AGENT"); v != "" {
			cfg.UserAgent = v
		}
	}
	setDuration(&cfg.Timeout, fetch.DefaultTimeout, "GEO_TIMEOUT")
	setDuration(&cfg.CacheMaxAge, 0, "GEO_CACHE_MAX_AGE")
	setInt(&cfg.MaxAttempts, 1, "GEO_MAX_ATTEMPTS")
	setInt(&cfg.Concurrency, DefaultConcurrency, "GEO_CONCURRENCY")
	setInt(&cfg.YearsBack, DefaultYearsBack, "GEO_YEARS_BACK")
	setInt(&cfg.YearsAhead, DefaultYearsAhead, "GEO_YEARS_AHEAD")
	setInt(&cfg.Top, DefaultTop, "GEO_TOP")
	setInt(&cfg.LLMMaxTokens, 0, "GEO_LLM_MAX_TOKENS")

	if cfg.CacheDir == "" {
		cfg.CacheDir = os.Getenv("GEO_CACHE_DIR")
	}
	if cfg.OutDir == "" || cfg.OutDir == DefaultOutDir {
		if v := os.Getenv("GEO_OUT_DIR"); v != "" {
			cfg.OutDir = v
		}
	}
	if len(cfg.Formats) == 0 {
		if v := os.Getenv("GEO_FORMATS"); v != "" {
			fs, err := report.ParseFormats(v)
			if err != nil {
				log.Warn().Err(err).Msg("ignoring GEO_FORMATS")
			} else {
				cfg.Formats = fs
			}
		}
	}

	setString(&cfg.LLMBaseURL, "GEO_LLM_BASE_URL", "LLM_BASE_URL")
	setString(&cfg.LLMModel, "GEO_LLM_MODEL", "LLM_MODEL")
	setString(&cfg.LLMAPIKey, "GEO_LLM_API_KEY", "LLM_API_KEY", "OPENAI_API_KEY")

	setBool(&cfg.Robots, "GEO_ROBOTS")
	setBool(&cfg.CacheClear, "GEO_CACHE_CLEAR")
	setBool(&cfg.CacheStrictPerms, "GEO_CACHE_STRICT_PERMS")
	setBool(&cfg.Verbose, "GEO_VERBOSE")
}

// setString fills an empty dst from the first non-empty key.
func setString(dst *string, keys ...string) {
	if *dst != "" {
		return
	}
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			*dst = v
			return
		}
	}
}

func setInt(dst *int, def int, key string) {
	if *dst != 0 && *dst != def {
		return
	}
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Warn().Str("env", key).Str("value", s).Msg("ignoring non-integer env value")
		return
	}
	*dst = n
}

func setDuration(dst *time.Duration, def time.Duration, key string) {
	if *dst != 0 && *dst != def {
		return
	}
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Warn().Str("env", key).Str("value", s).Msg("ignoring invalid duration")
		return
	}
	*dst = d
}

func setBool(dst *bool, key string) {
	if *dst {
		return
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		*dst = true
	}
}
