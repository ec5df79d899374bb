package mcp

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// SiteDetector detects blog metadata from the generator's config files.
type SiteDetector struct {
	rootPath string
	logger   *slog.Logger
}

// NewSiteDetector creates a detector for the site rooted at rootPath.
func NewSiteDetector(rootPath string, logger *slog.Logger) *SiteDetector {
	if logger == nil {
		logger = slog.Default()
	}
	return &SiteDetector{rootPath: rootPath, logger: logger}
}

// Detect returns site information. Detection order: _config.yml (Hexo when
// package.json depends on hexo, Jekyll otherwise) -> hugo.toml/config.toml
// -> directory name.
func (d *SiteDetector) Detect() *SiteInfo {
	info := &SiteInfo{
		RootPath:  d.rootPath,
		Name:      filepath.Base(d.rootPath),
		Generator: "unknown",
	}
	if d.rootPath == "" {
		info.Name = ""
		return info
	}

	if title, url, ok := d.detectConfigYAML(); ok {
		info.Generator = "jekyll"
		if d.dependsOnHexo() {
			info.Generator = "hexo"
		}
		if title != "" {
			info.Name = title
		}
		info.URL = url
		return info
	}

	if title, url, ok := d.detectHugo(); ok {
		info.Generator = "hugo"
		if title != "" {
			info.Name = title
		}
		info.URL = url
	}
	return info
}

// detectConfigYAML reads title and url from _config.yml.
func (d *SiteDetector) detectConfigYAML() (title, url string, ok bool) {
	data, err := os.ReadFile(filepath.Join(d.rootPath, "_config.yml"))
	if err != nil {
		return "", "", false
	}

	var cfg struct {
		Title string `yaml:"title"`
		URL   string `yaml:"url"`
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		d.logger.Debug("unreadable _config.yml", slog.String("error", err.Error()))
		return "", "", true
	}
	return cfg.Title, cfg.URL, true
}

// dependsOnHexo checks package.json for a hexo dependency.
func (d *SiteDetector) dependsOnHexo() bool {
	data, err := os.ReadFile(filepath.Join(d.rootPath, "package.json"))
	if err != nil {
		return false
	}

	var pkg struct {
		Hexo         json.RawMessage   `json:"hexo"`
		Dependencies map[string]string `json:"dependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return false
	}
	_, ok := pkg.Dependencies["hexo"]
	return ok || len(pkg.Hexo) > 0
}

// detectHugo reads title and baseURL from hugo.toml or config.toml. Only
// root-table keys are read; [params].title and the like are ignored.
func (d *SiteDetector) detectHugo() (title, url string, ok bool) {
	for _, name := range []string{"hugo.toml", "config.toml"} {
		data, err := os.ReadFile(filepath.Join(d.rootPath, name))
		if err != nil {
			continue
		}

		var cfg struct {
			Title   string `toml:"title"`
			BaseURL string `toml:"baseURL"`
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			d.logger.Debug("unreadable hugo config", slog.String("file", name), slog.String("error", err.Error()))
			return "", "", true
		}
		return cfg.Title, cfg.BaseURL, true
	}
	return "", "", false
}
