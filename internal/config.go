package internal

import (
	"fmt"
	"log/slog"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Log formats.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

var (
	userRe     = regexp.MustCompile(`^[a-z_][a-z0-9_-]*$`)
	mediaURLRe = regexp.MustCompile(`^(/|https?://)`)
)

// pagerStyles are the glamour standard styles.
var pagerStyles = []any{"dark", "light", "dracula", "tokyo-night", "pink", "ascii", "notty"}

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Content  ContentConfig     `yaml:"content"`
	SQLite   SQLiteConfig      `yaml:"sqlite"`
	Auth     AuthConfig        `yaml:"auth"`
	Terminal TerminalConfig    `yaml:"terminal"`
	Identity IdentityConfig    `yaml:"identity"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Content.Validate(); err != nil {
		return fmt.Errorf("content: %w", err)
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Terminal.Validate(); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := c.Identity.Validate(); err != nil {
		return fmt.Errorf("identity: %w", err)
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string     `yaml:"log_format"`
	// LogFile, when set, receives logs instead of stdout. The console and
	// mcp commands need it since they own the terminal or stdout.
	LogFile string     `yaml:"log_file"`
	HTTP    HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.LogFormat == "" {
		c.LogFormat = LogFormatJSON
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.In(LogFormatJSON, LogFormatText)),
	); err != nil {
		return err
	}
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ContentConfig locates the posts.
type ContentConfig struct {
	// Path is the content directory holding posts/.
	Path string `yaml:"path"`
	// MediaURL prefixes image URLs, either a path served by this process
	// ("/media") or an external base URL.
	MediaURL string `yaml:"media_url"`
	// Watch reloads the catalog when files change.
	Watch bool `yaml:"watch"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.MediaURL, validation.Required, validation.Match(mediaURLRe)),
	)
}

// SQLiteConfig holds SQLite database configuration. An empty path
// disables the index; search then scans the catalog.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Enabled reports whether the index is configured.
func (c *SQLiteConfig) Enabled() bool {
	return c.Path != ""
}

// AuthConfig holds authentication configuration.
//
// Mode controls how the admin endpoints are protected:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// TerminalConfig holds the simulated shell settings.
type TerminalConfig struct {
	User string `yaml:"user"`
	Host string `yaml:"host"`
	// CodeStyle is the chroma style for fenced code in cat.
	CodeStyle string `yaml:"code_style"`
	// PagerStyle is the glamour style used by less.
	PagerStyle  string `yaml:"pager_style"`
	MaxSessions int    `yaml:"max_sessions"`
	// BaseURL prefixes post links printed by the console session.
	BaseURL string `yaml:"base_url"`
}

// Validate validates the terminal configuration.
func (c *TerminalConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.User, validation.Required, validation.Match(userRe)),
		validation.Field(&c.Host, validation.Required),
		validation.Field(&c.PagerStyle, validation.In(pagerStyles...)),
		validation.Field(&c.MaxSessions, validation.Required, validation.Min(1)),
	)
}

// IdentityConfig describes the blog author shown by whoami and the banner.
type IdentityConfig struct {
	Name    string       `yaml:"name"`
	Tagline string       `yaml:"tagline"`
	Email   string       `yaml:"email"`
	Links   []LinkConfig `yaml:"links"`
}

// Validate validates the identity configuration.
func (c *IdentityConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Links),
	)
}

// LinkConfig is a labelled contact link.
type LinkConfig struct {
	Label string `yaml:"label"`
	URL   string `yaml:"url"`
}

// Validate validates a link.
func (c LinkConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Label, validation.Required),
		validation.Field(&c.URL, validation.Required),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: LogFormatJSON,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Content: ContentConfig{
			Path:     "./content",
			MediaURL: "/media",
			Watch:    true,
		},
		SQLite: SQLiteConfig{
			Path: "./termblog.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Terminal: TerminalConfig{
			User:        "visitor",
			Host:        "termblog",
			CodeStyle:   "monokai",
			PagerStyle:  "dark",
			MaxSessions: 100,
		},
		Identity: IdentityConfig{
			Name: "termblog",
		},
	}
}
