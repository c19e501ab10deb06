package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/geoanalyzer/internal/app"
	"github.com/hyperifyio/geoanalyzer/internal/fetch"
	"github.com/hyperifyio/geoanalyzer/internal/report"
)

// Exit codes.
const (
	exitOK       = 0
	exitInit     = 1
	exitAnalysis = 2
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	opts, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Error().Err(err).Msg("invalid arguments")
		os.Exit(exitInit)
	}
	if opts.version {
		fmt.Println(app.VersionString())
		return
	}

	cfg, err := resolveConfig(opts)
	if err != nil {
		log.Error().Err(err).Msg("configuration error")
		os.Exit(exitInit)
	}

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(exitCode(run(ctx, cfg)))
}

// options are the raw command line values before file and env layering.
type options struct {
	cfg        app.Config
	configPath string
	envPath    string
	formats    string
	version    bool
	// explicit holds the names of flags given on the command line.
	explicit map[string]bool
}

func parseFlags(fs *flag.FlagSet, args []string) (options, error) {
	o := options{cfg: app.DefaultConfig()}
	c := &o.cfg
	var urls string

	fs.StringVar(&urls, "url", "", "Comma-separated page URLs to analyse (positional arguments are added)")
	fs.StringVar(&o.configPath, "config", "", "Path to a YAML or JSON config file")
	fs.StringVar(&o.envPath, "env", ".env", "Dotenv file loaded before reading GEO_* variables")
	fs.StringVar(&c.UserAgent, "ua", fetch.DefaultUserAgent, "User-Agent for page and robots.txt requests")
	fs.DurationVar(&c.Timeout, "timeout", fetch.DefaultTimeout, "Per-request fetch timeout")
	fs.IntVar(&c.MaxAttempts, "max.attempts", 1, "Fetch attempts per page, including the first")
	fs.Int64Var(&c.MaxBodyBytes, "max.bodyBytes", 0, "Cap on bytes read per page (0 disables)")
	fs.BoolVar(&c.Robots, "robots", false, "Honour robots.txt before fetching")
	fs.IntVar(&c.Concurrency, "concurrency", app.DefaultConcurrency, "Pages analysed in parallel")
	fs.IntVar(&c.YearsBack, "years.back", app.DefaultYearsBack, "Years before the current one that count as recent")
	fs.IntVar(&c.YearsAhead, "years.ahead", app.DefaultYearsAhead, "Years after the current one that count as recent")
	fs.StringVar(&c.CacheDir, "cache.dir", "", "Cache directory for pages and advice (empty disables)")
	fs.DurationVar(&c.CacheMaxAge, "cache.maxAge", 0, "Max age for cache entries before purge (e.g. 24h); 0 disables")
	fs.BoolVar(&c.CacheClear, "cache.clear", false, "Clear cache directory before run")
	fs.BoolVar(&c.CacheStrictPerms, "cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")
	fs.StringVar(&o.formats, "format", "", "Comma-separated export formats: pdf, md, json")
	fs.StringVar(&c.OutDir, "out.dir", app.DefaultOutDir, "Directory for exported reports")
	fs.IntVar(&c.Top, "top", app.DefaultTop, "Issues shown in the terminal (negative shows all)")
	fs.BoolVar(&c.Verbose, "v", false, "Verbose logging")
	fs.BoolVar(&o.version, "version", false, "Print version and exit")
	fs.StringVar(&c.LLMBaseURL, "llm.base", "", "OpenAI-compatible base URL for advice")
	fs.StringVar(&c.LLMModel, "llm.model", "", "Model name; enables advice when set")
	fs.StringVar(&c.LLMAPIKey, "llm.key", "", "API key for the OpenAI-compatible server")
	fs.StringVar(&c.LLMSystemPrompt, "llm.systemPrompt", "", "Override the advice system prompt")
	fs.IntVar(&c.LLMMaxTokens, "llm.maxTokens", 0, "Cap on advice tokens (0 leaves it to the server)")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	c.URLs = append(app.SplitList(urls), fs.Args()...)
	o.explicit = map[string]bool{}
	fs.Visit(func(f *flag.Flag) { o.explicit[f.Name] = true })
	return o, nil
}

// flagFields copies one flag-bound field from src to dst. File and env
// layering only fill fields still at their zero or default value, so
// explicitly given flags are copied back afterwards; that keeps
// "-years.back 0" or "-concurrency 4" from being overridden.
var flagFields = map[string]func(dst, src *app.Config){
	"ua":                func(d, s *app.Config) { d.UserAgent = s.UserAgent },
	"timeout":           func(d, s *app.Config) { d.Timeout = s.Timeout },
	"max.attempts":      func(d, s *app.Config) { d.MaxAttempts = s.MaxAttempts },
	"max.bodyBytes":     func(d, s *app.Config) { d.MaxBodyBytes = s.MaxBodyBytes },
	"robots":            func(d, s *app.Config) { d.Robots = s.Robots },
	"concurrency":       func(d, s *app.Config) { d.Concurrency = s.Concurrency },
	"years.back":        func(d, s *app.Config) { d.YearsBack = s.YearsBack },
	"years.ahead":       func(d, s *app.Config) { d.YearsAhead = s.YearsAhead },
	"cache.dir":         func(d, s *app.Config) { d.CacheDir = s.CacheDir },
	"cache.maxAge":      func(d, s *app.Config) { d.CacheMaxAge = s.CacheMaxAge },
	"cache.clear":       func(d, s *app.Config) { d.CacheClear = s.CacheClear },
	"cache.strictPerms": func(d, s *app.Config) { d.CacheStrictPerms = s.CacheStrictPerms },
	"out.dir":           func(d, s *app.Config) { d.OutDir = s.OutDir },
	"top":               func(d, s *app.Config) { d.Top = s.Top },
	"v":                 func(d, s *app.Config) { d.Verbose = s.Verbose },
	"llm.base":          func(d, s *app.Config) { d.LLMBaseURL = s.LLMBaseURL },
	"llm.model":         func(d, s *app.Config) { d.LLMModel = s.LLMModel },
	"llm.key":           func(d, s *app.Config) { d.LLMAPIKey = s.LLMAPIKey },
	"llm.systemPrompt":  func(d, s *app.Config) { d.LLMSystemPrompt = s.LLMSystemPrompt },
	"llm.maxTokens":     func(d, s *app.Config) { d.LLMMaxTokens = s.LLMMaxTokens },
}

// resolveConfig layers flags over the config file, the environment and the
// dotenv file, in that order of precedence.
func resolveConfig(o options) (app.Config, error) {
	cfg := o.cfg
	if strings.TrimSpace(o.formats) != "" {
		fs, err := report.ParseFormats(o.formats)
		if err != nil {
			return cfg, err
		}
		cfg.Formats = fs
	}
	if err := app.LoadEnvFiles(o.envPath); err != nil {
		return cfg, fmt.Errorf("load env: %w", err)
	}
	if o.configPath != "" {
		fc, err := app.LoadConfigFile(o.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		if err := app.ApplyFileConfig(&cfg, fc); err != nil {
			return cfg, err
		}
	}
	app.ApplyEnvToConfig(&cfg)
	for name := range o.explicit {
		if copyField, ok := flagFields[name]; ok {
			copyField(&cfg, &o.cfg)
		}
	}
	if err := app.ValidateConfig(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg app.Config) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	return a.Run(ctx)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, app.ErrAnalysisFailed):
		log.Error().Err(err).Msg("some pages could not be analysed")
		return exitAnalysis
	default:
		log.Error().Err(err).Msg("run failed")
		return exitInit
	}
}

