package internal

import (
	"strings"
	"testing"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if !cfg.SQLite.Enabled() {
		t.Error("index should be enabled by default")
	}
}

func TestApplicationConfig_LogFormat(t *testing.T) {
	cfg := ApplicationConfig{HTTP: HTTPConfig{Port: 8080}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty format should default: %v", err)
	}
	if cfg.LogFormat != LogFormatJSON {
		t.Errorf("format = %q, want json", cfg.LogFormat)
	}
	cfg.LogFormat = "xml"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestContentConfig_MediaURL(t *testing.T) {
	for _, tc := range []struct {
		url string
		ok  bool
	}{
		{"/media", true},
		{"https://cdn.example.com/blog", true},
		{"media", false},
		{"", false},
	} {
		cfg := ContentConfig{Path: "./content", MediaURL: tc.url}
		if err := cfg.Validate(); (err == nil) != tc.ok {
			t.Errorf("media_url %q: err = %v, want ok=%v", tc.url, err, tc.ok)
		}
	}
}

func TestTerminalConfig_Validate(t *testing.T) {
	base := NewDefaultConfig().Terminal

	bad := base
	bad.User = "Visitor Name"
	if err := bad.Validate(); err == nil {
		t.Error("user with spaces should fail")
	}

	bad = base
	bad.MaxSessions = 0
	if err := bad.Validate(); err == nil {
		t.Error("zero max_sessions should fail")
	}

	bad = base
	bad.PagerStyle = "neon"
	if err := bad.Validate(); err == nil {
		t.Error("unknown pager style should fail")
	}
}

func TestIdentityConfig_Links(t *testing.T) {
	cfg := IdentityConfig{Name: "Ada", Links: []LinkConfig{{Label: "GitHub", URL: ""}}}
	if err := cfg.Validate(); err == nil {
		t.Error("link without url should fail")
	}
	cfg.Links[0].URL = "https://github.com/ada"
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid link: %v", err)
	}
}

func TestFullConfig_SectionNamedInError(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Terminal.Host = ""
	err := cfg.Validate()
	if err == nil || !strings.HasPrefix(err.Error(), "terminal:") {
		t.Errorf("err = %v, want terminal section", err)
	}
}
