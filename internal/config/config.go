// Package config loads fb-events settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Cache backends.
const (
	CacheFile = "file"
	CacheS3   = "s3"
	CacheNone = "none"
)

// Fetch modes.
const (
	FetchBrowser = "browser"
	FetchHTTP    = "http"
)

// Browser engines.
const (
	EngineChromium = "chromium"
	EngineFirefox  = "firefox"
)

type LogConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Pretty bool   `yaml:"pretty"` // console output instead of JSON lines
}

type S3Config struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	Region string `yaml:"region"`
}

type CacheConfig struct {
	Backend string   `yaml:"backend"` // file|s3|none
	Dir     string   `yaml:"dir"`
	S3      S3Config `yaml:"s3"`
}

type FetchConfig struct {
	Mode      string        `yaml:"mode"`     // browser|http
	BaseURL   string        `yaml:"base_url"` // pages are fetched from here
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"` // per page
}

type BrowserConfig struct {
	Engine         string        `yaml:"engine"` // chromium|firefox
	Headless       bool          `yaml:"headless"`
	ExecutablePath string        `yaml:"executable_path"`
	CookieTimeout  time.Duration `yaml:"cookie_timeout"` // wait for the cookie dialog and cover photo
	ScrollWait     time.Duration `yaml:"scroll_wait"`    // settle time after scrolling the events list
}

type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type Config struct {
	Log     LogConfig     `yaml:"log"`
	Cache   CacheConfig   `yaml:"cache"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Browser BrowserConfig `yaml:"browser"`
	Server  ServerConfig  `yaml:"server"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info"},
		Cache: CacheConfig{
			Backend: CacheFile,
			Dir:     "~/.local/share/fb-events",
			S3:      S3Config{Prefix: "memoized"},
		},
		Fetch: FetchConfig{
			Mode:      FetchBrowser,
			BaseURL:   "https://www.facebook.com",
			UserAgent: "fb-events/1.0 (github.com/pfrederiksen/fb-events)",
			Timeout:   60 * time.Second,
		},
		Browser: BrowserConfig{
			Engine:        EngineChromium,
			Headless:      true,
			CookieTimeout: 3 * time.Second,
			ScrollWait:    5 * time.Second,
		},
		Server: ServerConfig{
			Addr:         ":5000",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Minute,
		},
	}
}

// Load reads path over the defaults and applies environment overrides. An
// empty path or a missing file leaves the defaults in place.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("reading config: %w", err)
		default:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Log.Level, "FB_EVENTS_LOG_LEVEL")
	setString(&c.Cache.Backend, "FB_EVENTS_CACHE_BACKEND")
	setString(&c.Cache.Dir, "FB_EVENTS_CACHE_DIR")
	setString(&c.Cache.S3.Bucket, "FB_EVENTS_S3_BUCKET")
	setString(&c.Cache.S3.Prefix, "FB_EVENTS_S3_PREFIX")
	setString(&c.Cache.S3.Region, "AWS_REGION")
	setString(&c.Fetch.Mode, "FB_EVENTS_FETCHER")
	setString(&c.Fetch.BaseURL, "FB_EVENTS_BASE_URL")
	setString(&c.Server.Addr, "FB_EVENTS_HTTP_ADDR")
	// Heroku's chrome buildpack exposes the binary here.
	setString(&c.Browser.ExecutablePath, "GOOGLE_CHROME_SHIM")

	if v := os.Getenv("FB_EVENTS_LOG_PRETTY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid FB_EVENTS_LOG_PRETTY=%q: %w", v, err)
		}
		c.Log.Pretty = b
	}

	if v := os.Getenv("FB_EVENTS_HEADLESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid FB_EVENTS_HEADLESS=%q: %w", v, err)
		}
		c.Browser.Headless = b
	}

	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks enum fields and required values.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case CacheFile:
		if c.Cache.Dir == "" {
			return errors.New("cache.dir is required for the file cache")
		}
	case CacheS3:
		if c.Cache.S3.Bucket == "" {
			return errors.New("cache.s3.bucket is required for the s3 cache")
		}
	case CacheNone:
	default:
		return fmt.Errorf("invalid cache.backend %q (must be file, s3 or none)", c.Cache.Backend)
	}

	switch c.Fetch.Mode {
	case FetchBrowser, FetchHTTP:
	default:
		return fmt.Errorf("invalid fetch.mode %q (must be browser or http)", c.Fetch.Mode)
	}

	switch c.Browser.Engine {
	case EngineChromium, EngineFirefox:
	default:
		return fmt.Errorf("invalid browser.engine %q (must be chromium or firefox)", c.Browser.Engine)
	}

	if c.Fetch.BaseURL == "" {
		return errors.New("fetch.base_url is required")
	}

	return nil
}
