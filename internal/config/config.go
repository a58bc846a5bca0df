package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all cardcheck configuration
type Config struct {
	Version  int            `toml:"version"`
	Target   TargetConfig   `toml:"target"`
	Viewport ViewportConfig `toml:"viewport"`
	Timeouts TimeoutsConfig `toml:"timeouts"`
	Browser  BrowserConfig  `toml:"browser"`
	Watch    WatchConfig    `toml:"watch"`

	// Strict makes a failed run exit non-zero.
	Strict bool `toml:"strict"`
}

type TargetConfig struct {
	BaseURL        string `toml:"base_url"`
	ScreenshotPath string `toml:"screenshot_path"`
}

type ViewportConfig struct {
	Mobile  Size `toml:"mobile"`
	Desktop Size `toml:"desktop"`
}

// Size is a viewport in CSS pixels
type Size struct {
	Width  int64 `toml:"width"`
	Height int64 `toml:"height"`
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

type TimeoutsConfig struct {
	Wait        Duration `toml:"wait"`
	Action      Duration `toml:"action"`
	Run         Duration `toml:"run"`
	SheetSettle Duration `toml:"sheet_settle"`
}

type BrowserConfig struct {
	Headless  bool   `toml:"headless"`
	NoSandbox bool   `toml:"no_sandbox"`
	ExecPath  string `toml:"exec_path"`
	UserAgent string `toml:"user_agent"`
}

type WatchConfig struct {
	Schedule string `toml:"schedule"`
	Timezone string `toml:"timezone"`
}

// Duration is a time.Duration that reads and writes as "5s" in TOML
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// Default returns a Config matching the built-in smoke test targets
func Default() *Config {
	return &Config{
		Version: 1,
		Target: TargetConfig{
			BaseURL:        "http://localhost:3001",
			ScreenshotPath: "test_failure.png",
		},
		Viewport: ViewportConfig{
			Mobile:  Size{Width: 375, Height: 667},
			Desktop: Size{Width: 1024, Height: 768},
		},
		Timeouts: TimeoutsConfig{
			Wait:        Duration{5 * time.Second},
			Action:      Duration{30 * time.Second},
			Run:         Duration{2 * time.Minute},
			SheetSettle: Duration{500 * time.Millisecond},
		},
		Browser: BrowserConfig{
			Headless: true,
		},
		Watch: WatchConfig{
			Schedule: "*/15 * * * *",
			Timezone: "Local",
		},
	}
}

// ConfigDir returns the platform-appropriate config directory
func ConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "cardcheck"), nil
}

// ConfigPath returns the full path to the config file
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads config from the default path
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads config from path. Keys missing from the file keep
// their default values.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault returns the config at path, or the defaults when no file
// exists there. Any other read error is returned.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values the runner cannot work without
func (c *Config) Validate() error {
	if c.Target.BaseURL == "" {
		return fmt.Errorf("target.base_url is required")
	}
	for name, s := range map[string]Size{"mobile": c.Viewport.Mobile, "desktop": c.Viewport.Desktop} {
		if s.Width <= 0 || s.Height <= 0 {
			return fmt.Errorf("viewport.%s must be positive, got %s", name, s)
		}
	}
	if c.Timeouts.Wait.Duration <= 0 || c.Timeouts.Action.Duration <= 0 {
		return fmt.Errorf("timeouts.wait and timeouts.action must be positive")
	}
	return nil
}

// Save writes config to the default path
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes config to path, creating its directory
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(c)
}
