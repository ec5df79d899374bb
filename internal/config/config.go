package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	serrors "github.com/milkdragon/sitesearch/internal/errors"
)

const (
	// ProjectConfigName is the per-site config file looked up in the site root.
	ProjectConfigName = ".sitesearch.yaml"
	projectConfigAlt  = ".sitesearch.yml"

	// hexoConfigName marks the root of a Hexo site.
	hexoConfigName = "_config.yml"

	// DefaultIndexPath is where `hexo generate` writes the search index.
	DefaultIndexPath = "public/search.xml"

	envPrefix = "SITESEARCH_"
)

// Config is the complete sitesearch configuration.
type Config struct {
	Version int          `yaml:"version" json:"version"`
	Site    SiteConfig   `yaml:"site" json:"site"`
	Index   IndexConfig  `yaml:"index" json:"index"`
	Search  SearchConfig `yaml:"search" json:"search"`
	Panel   PanelConfig  `yaml:"panel" json:"panel"`
	Server  ServerConfig `yaml:"server" json:"server"`
}

// SiteConfig describes the blog the index belongs to.
type SiteConfig struct {
	// BaseURL resolves relative document URLs and, when Index.URL is empty,
	// locates <base_url>/search.xml.
	BaseURL string `yaml:"base_url" json:"base_url"`
}

// IndexConfig locates and decodes the search index.
type IndexConfig struct {
	// URL is an http(s) URL or a local path. Empty means derive from
	// Site.BaseURL, falling back to DefaultIndexPath.
	URL string `yaml:"url" json:"url"`
	// Format is xml, json, or auto.
	Format string `yaml:"format" json:"format"`
	// Timeout bounds the fetch. "0" waits forever.
	Timeout string `yaml:"timeout" json:"timeout"`
	// FetchAttempts is the total number of tries for a failed fetch.
	FetchAttempts int `yaml:"fetch_attempts" json:"fetch_attempts"`
}

// SearchConfig tunes matching and excerpts.
type SearchConfig struct {
	MaxResults     int    `yaml:"max_results" json:"max_results"`
	Debounce       string `yaml:"debounce" json:"debounce"`
	ContextBefore  int    `yaml:"context_before" json:"context_before"`
	ContextAfter   int    `yaml:"context_after" json:"context_after"`
	FallbackLength int    `yaml:"fallback_length" json:"fallback_length"`
	MarkOpen       string `yaml:"mark_open" json:"mark_open"`
	MarkClose      string `yaml:"mark_close" json:"mark_close"`
}

// PanelConfig tunes the interactive panel.
type PanelConfig struct {
	FocusDelay string `yaml:"focus_delay" json:"focus_delay"`
}

// ServerConfig configures `sitesearch serve`.
type ServerConfig struct {
	Transport string `yaml:"transport" json:"transport"`
	LogLevel  string `yaml:"log_level" json:"log_level"`
}

// NewConfig returns the built-in defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Index: IndexConfig{
			Format:        "auto",
			Timeout:       "0",
			FetchAttempts: 1,
		},
		Search: SearchConfig{
			MaxResults:     10,
			Debounce:       "300ms",
			ContextBefore:  50,
			ContextAfter:   100,
			FallbackLength: 150,
			MarkOpen:       "<mark>",
			MarkClose:      "</mark>",
		},
		Panel: PanelConfig{
			FocusDelay: "100ms",
		},
		Server: ServerConfig{
			Transport: "stdio",
			LogLevel:  "info",
		},
	}
}

// GetUserConfigPath returns $XDG_CONFIG_HOME/sitesearch/config.yaml or
// ~/.config/sitesearch/config.yaml.
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "sitesearch", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "sitesearch", "config.yaml")
	}
	return filepath.Join(home, ".config", "sitesearch", "config.yaml")
}

// GetUserConfigDir returns the directory holding the user config.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists reports whether a user config file is present.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// Load builds the effective configuration for the site in dir.
//
// Precedence, lowest first: defaults, user config, project config
// (.sitesearch.yaml in dir), SITESEARCH_* environment variables.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if path := GetUserConfigPath(); fileExists(path) {
		user := &Config{}
		if err := user.loadYAML(path); err != nil {
			return nil, err
		}
		cfg.mergeWith(user)
	}

	if path := projectConfigPath(dir); path != "" {
		project := &Config{}
		if err := project.loadYAML(path); err != nil {
			return nil, err
		}
		cfg.mergeWith(project)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func projectConfigPath(dir string) string {
	for _, name := range []string{ProjectConfigName, projectConfigAlt} {
		p := filepath.Join(dir, name)
		if fileExists(p) {
			return p
		}
	}
	return ""
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return serrors.New(serrors.ErrCodeConfigNotFound, fmt.Sprintf("read config %s", path), err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return serrors.ConfigError(fmt.Sprintf("parse config %s: %v", path, err), err).
			WithDetail("path", path)
	}
	return nil
}

// mergeWith copies every non-zero field of other onto c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Site.BaseURL != "" {
		c.Site.BaseURL = other.Site.BaseURL
	}

	if other.Index.URL != "" {
		c.Index.URL = other.Index.URL
	}
	if other.Index.Format != "" {
		c.Index.Format = other.Index.Format
	}
	if other.Index.Timeout != "" {
		c.Index.Timeout = other.Index.Timeout
	}
	if other.Index.FetchAttempts != 0 {
		c.Index.FetchAttempts = other.Index.FetchAttempts
	}

	if other.Search.MaxResults != 0 {
		c.Search.MaxResults = other.Search.MaxResults
	}
	if other.Search.Debounce != "" {
		c.Search.Debounce = other.Search.Debounce
	}
	if other.Search.ContextBefore != 0 {
		c.Search.ContextBefore = other.Search.ContextBefore
	}
	if other.Search.ContextAfter != 0 {
		c.Search.ContextAfter = other.Search.ContextAfter
	}
	if other.Search.FallbackLength != 0 {
		c.Search.FallbackLength = other.Search.FallbackLength
	}
	if other.Search.MarkOpen != "" {
		c.Search.MarkOpen = other.Search.MarkOpen
	}
	if other.Search.MarkClose != "" {
		c.Search.MarkClose = other.Search.MarkClose
	}

	if other.Panel.FocusDelay != "" {
		c.Panel.FocusDelay = other.Panel.FocusDelay
	}

	if other.Server.Transport != "" {
		c.Server.Transport = other.Server.Transport
	}
	if other.Server.LogLevel != "" {
		c.Server.LogLevel = other.Server.LogLevel
	}
}

func (c *Config) applyEnvOverrides() error {
	str := map[string]*string{
		"BASE_URL":     &c.Site.BaseURL,
		"INDEX":        &c.Index.URL,
		"INDEX_FORMAT": &c.Index.Format,
		"DEBOUNCE":     &c.Search.Debounce,
		"LOG_LEVEL":    &c.Server.LogLevel,
	}
	for key, dst := range str {
		if v := os.Getenv(envPrefix + key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"MAX_RESULTS":    &c.Search.MaxResults,
		"FETCH_ATTEMPTS": &c.Index.FetchAttempts,
	}
	for key, dst := range ints {
		v := os.Getenv(envPrefix + key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return serrors.ConfigError(fmt.Sprintf("%s%s must be an integer, got %q", envPrefix, key, v), err)
		}
		*dst = n
	}
	return nil
}

// Validate checks every value Load would hand to the engine.
func (c *Config) Validate() error {
	if c.Site.BaseURL != "" {
		u, err := url.Parse(c.Site.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return serrors.ConfigError(fmt.Sprintf("site.base_url must be an absolute URL, got %q", c.Site.BaseURL), err)
		}
	}

	switch strings.ToLower(c.Index.Format) {
	case "xml", "json", "auto":
	default:
		return serrors.ConfigError(fmt.Sprintf("index.format must be 'xml', 'json' or 'auto', got %q", c.Index.Format), nil)
	}
	if c.Index.FetchAttempts < 1 {
		return serrors.ConfigError(fmt.Sprintf("index.fetch_attempts must be at least 1, got %d", c.Index.FetchAttempts), nil)
	}

	if c.Search.MaxResults < 1 {
		return serrors.ConfigError(fmt.Sprintf("search.max_results must be positive, got %d", c.Search.MaxResults), nil)
	}
	if c.Search.ContextBefore < 0 || c.Search.ContextAfter < 0 {
		return serrors.ConfigError("search.context_before and search.context_after must be non-negative", nil)
	}
	if c.Search.FallbackLength < 1 {
		return serrors.ConfigError(fmt.Sprintf("search.fallback_length must be positive, got %d", c.Search.FallbackLength), nil)
	}

	for name, v := range map[string]string{
		"index.timeout":     c.Index.Timeout,
		"search.debounce":   c.Search.Debounce,
		"panel.focus_delay": c.Panel.FocusDelay,
	} {
		if _, err := parseDuration(v); err != nil {
			return serrors.ConfigError(fmt.Sprintf("%s: %v", name, err), err)
		}
	}

	if !strings.EqualFold(c.Server.Transport, "stdio") {
		return serrors.ConfigError(fmt.Sprintf("server.transport must be 'stdio', got %q", c.Server.Transport), nil)
	}
	switch strings.ToLower(c.Server.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return serrors.ConfigError(fmt.Sprintf("server.log_level must be 'debug', 'info', 'warn', or 'error', got %q", c.Server.LogLevel), nil)
	}
	return nil
}

// IndexLocation returns where the index should be read from.
func (c *Config) IndexLocation() string {
	if c.Index.URL != "" {
		return c.Index.URL
	}
	if c.Site.BaseURL != "" {
		return strings.TrimRight(c.Site.BaseURL, "/") + "/search.xml"
	}
	return DefaultIndexPath
}

// DebounceDelay is the parsed search.debounce.
func (c *Config) DebounceDelay() time.Duration {
	d, _ := parseDuration(c.Search.Debounce)
	return d
}

// FocusDelay is the parsed panel.focus_delay.
func (c *Config) FocusDelay() time.Duration {
	d, _ := parseDuration(c.Panel.FocusDelay)
	return d
}

// FetchTimeout is the parsed index.timeout. Zero means no timeout.
func (c *Config) FetchTimeout() time.Duration {
	d, _ := parseDuration(c.Index.Timeout)
	return d
}

// parseDuration accepts Go durations and a bare "0". Empty means zero.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must not be negative, got %s", s)
	}
	return d, nil
}

// FindSiteRoot walks up from startDir to the first directory holding a
// sitesearch config or a Hexo _config.yml. Returns the absolute startDir
// when neither is found.
func FindSiteRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", startDir, err)
	}
	for dir := abs; ; {
		if projectConfigPath(dir) != "" || fileExists(filepath.Join(dir, hexoConfigName)) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		dir = parent
	}
}

// WriteYAML writes c to path.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
