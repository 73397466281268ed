// Package config loads and validates run configuration for web2pdf.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-web2pdf/internal/fileutil"
	"github.com/alnah/go-web2pdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
)

// MaxURLLength mirrors the common browser URL limit.
const MaxURLLength = 2048

// Config holds all configuration for a capture run. Flags override any field
// the user sets explicitly.
type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Output  OutputConfig  `yaml:"output"`
	Page    PageConfig    `yaml:"page"`
	Wait    WaitConfig    `yaml:"wait"`
	Burst   BurstConfig   `yaml:"burst"`
	Browser BrowserConfig `yaml:"browser"`
}

// SourceConfig defines where the URL sequence comes from. URLsFile and
// BaseURL are mutually exclusive.
type SourceConfig struct {
	URLsFile  string `yaml:"urlsFile"`  // newline-delimited URL list
	BaseURL   string `yaml:"baseUrl"`   // pagination base; "start" param gets rewritten
	StartFrom int    `yaml:"startFrom"` // first start value
	StartTo   int    `yaml:"startTo"`   // last start value (inclusive)
	Step      int    `yaml:"step"`      // start increment (default: 10)
}

// OutputConfig defines output destinations.
type OutputConfig struct {
	Dir    string `yaml:"dir"`    // per-page PDF directory (default: "pdf_pages")
	Merged string `yaml:"merged"` // merged PDF path (default: "merged.pdf")
}

// PageConfig defines PDF paper settings.
type PageConfig struct {
	Width  string  `yaml:"width"`  // "a4" or "letter" (default: "a4")
	Margin float64 `yaml:"margin"` // inches on all sides (default: 0.4)
}

// WaitConfig defines settle and pacing delays.
type WaitConfig struct {
	SettleMS   int     `yaml:"settleMs"`   // post-load settle (default: 1500)
	MinSeconds float64 `yaml:"minSeconds"` // min random pre-navigation delay (default: 2)
	MaxSeconds float64 `yaml:"maxSeconds"` // max random pre-navigation delay (default: 5)
}

// BurstConfig defines the cooldown inserted after bursts of pages.
type BurstConfig struct {
	RestEvery       int     `yaml:"restEvery"`       // pages per burst (default: 10)
	CooldownSeconds float64 `yaml:"cooldownSeconds"` // pause after each burst (default: 1)
}

// BrowserConfig defines browser session options.
type BrowserConfig struct {
	Headful               bool   `yaml:"headful"`               // show the browser window
	UserDataDir           string `yaml:"userDataDir"`           // Chrome profile to reuse (cookies, logins)
	CaptchaTimeoutSeconds int    `yaml:"captchaTimeoutSeconds"` // manual challenge wait (default: 600)
}

// Validate checks field values and cross-field invariants.
func (c *Config) Validate() error {
	if c.Source.Step < 0 {
		return fmt.Errorf("source.step: must be >= 0, got %d", c.Source.Step)
	}
	if len(c.Source.BaseURL) > MaxURLLength {
		return fmt.Errorf("source.baseUrl: %d chars exceeds limit %d", len(c.Source.BaseURL), MaxURLLength)
	}

	if c.Page.Width != "" {
		switch strings.ToLower(c.Page.Width) {
		case "a4", "letter":
		default:
			return fmt.Errorf("page.width: invalid value %q (must be a4 or letter)", c.Page.Width)
		}
	}
	if c.Page.Margin < 0 || c.Page.Margin > 3.0 {
		return fmt.Errorf("page.margin: must be between 0 and 3.0 inches, got %.2f", c.Page.Margin)
	}

	if c.Wait.SettleMS < 0 {
		return fmt.Errorf("wait.settleMs: must be >= 0, got %d", c.Wait.SettleMS)
	}
	if c.Wait.MinSeconds < 0 || c.Wait.MaxSeconds < 0 {
		return fmt.Errorf("wait: delays must be >= 0, got min %.1f max %.1f", c.Wait.MinSeconds, c.Wait.MaxSeconds)
	}
	if c.Wait.MaxSeconds < c.Wait.MinSeconds {
		return fmt.Errorf("wait: maxSeconds %.1f is below minSeconds %.1f", c.Wait.MaxSeconds, c.Wait.MinSeconds)
	}

	if c.Burst.RestEvery < 0 {
		return fmt.Errorf("burst.restEvery: must be >= 0, got %d", c.Burst.RestEvery)
	}
	if c.Burst.CooldownSeconds < 0 {
		return fmt.Errorf("burst.cooldownSeconds: must be >= 0, got %.1f", c.Burst.CooldownSeconds)
	}

	if c.Browser.CaptchaTimeoutSeconds < 0 {
		return fmt.Errorf("browser.captchaTimeoutSeconds: must be >= 0, got %d", c.Browser.CaptchaTimeoutSeconds)
	}

	return nil
}

// DefaultConfig returns the defaults the CLI ships with.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{Step: 10},
		Output: OutputConfig{Dir: "pdf_pages", Merged: "merged.pdf"},
		Page:   PageConfig{Width: "a4", Margin: 0.4},
		Wait:   WaitConfig{SettleMS: 1500, MinSeconds: 2, MaxSeconds: 5},
		Burst:  BurstConfig{RestEvery: 10, CooldownSeconds: 1},
		Browser: BrowserConfig{
			CaptchaTimeoutSeconds: 600,
		},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-web2pdf/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	// Try current directory first (both extensions)
	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	// Try user config directory (both extensions)
	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-web2pdf", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
