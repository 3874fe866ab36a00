package runtimeconfig_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/flohusson/attitude-emoi/internal/runtimeconfig"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
	if cfg.Content.Backend != runtimeconfig.BackendFilesystem {
		t.Fatalf("expected filesystem backend by default, got %q", cfg.Content.Backend)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*runtimeconfig.Config)
		want   error
	}{
		{
			name:   "empty content root",
			mutate: func(cfg *runtimeconfig.Config) { cfg.Content.Root = " " },
			want:   runtimeconfig.ErrContentRootRequired,
		},
		{
			name:   "unknown backend",
			mutate: func(cfg *runtimeconfig.Config) { cfg.Content.Backend = "mongo" },
			want:   runtimeconfig.ErrContentBackendUnknown,
		},
		{
			name:   "sqlite without dsn",
			mutate: func(cfg *runtimeconfig.Config) { cfg.Content.Backend = "sqlite" },
			want:   runtimeconfig.ErrContentDSNRequired,
		},
		{
			name:   "redis without url",
			mutate: func(cfg *runtimeconfig.Config) { cfg.Content.Backend = "redis" },
			want:   runtimeconfig.ErrRedisURLRequired,
		},
		{
			name: "unknown generator provider",
			mutate: func(cfg *runtimeconfig.Config) {
				cfg.Generator.Enabled = true
				cfg.Generator.Provider = "mistral"
			},
			want: runtimeconfig.ErrGeneratorProviderUnknown,
		},
		{
			name:   "negative max tokens",
			mutate: func(cfg *runtimeconfig.Config) { cfg.Generator.MaxTokens = -1 },
			want:   runtimeconfig.ErrGeneratorMaxTokensInvalid,
		},
		{
			name:   "missing logging provider",
			mutate: func(cfg *runtimeconfig.Config) { cfg.Logging.Provider = "" },
			want:   runtimeconfig.ErrLoggingProviderRequired,
		},
		{
			name:   "unknown logging provider",
			mutate: func(cfg *runtimeconfig.Config) { cfg.Logging.Provider = "syslog" },
			want:   runtimeconfig.ErrLoggingProviderUnknown,
		},
		{
			name:   "invalid level",
			mutate: func(cfg *runtimeconfig.Config) { cfg.Logging.Level = "loud" },
			want:   runtimeconfig.ErrLoggingLevelInvalid,
		},
		{
			name: "invalid gologger format",
			mutate: func(cfg *runtimeconfig.Config) {
				cfg.Logging.Provider = "gologger"
				cfg.Logging.Format = "xml"
			},
			want: runtimeconfig.ErrLoggingFormatInvalid,
		},
		{
			name:   "missing http address",
			mutate: func(cfg *runtimeconfig.Config) { cfg.HTTP.Addr = "" },
			want:   runtimeconfig.ErrHTTPAddrRequired,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := runtimeconfig.DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestConfigValidate_IgnoresFormatForConsole(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected console provider to ignore format, got %v", err)
	}
}

func TestLoadReadsTOMLOverDefaults(t *testing.T) {
	t.Setenv(runtimeconfig.APIKeyEnv, "")
	path := filepath.Join(t.TempDir(), "attitude.toml")
	data := `
[content]
backend = "sqlite"
dsn = "file:attitude.db"

[generator]
enabled = true
provider = "openai"
model = "gpt-4o-mini"

[logging]
provider = "gologger"
format = "pretty"
focus = ["attitude.store"]
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, exists, err := runtimeconfig.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected file to be reported as present")
	}
	if cfg.Content.Backend != "sqlite" || cfg.Content.DSN != "file:attitude.db" {
		t.Fatalf("unexpected content section %+v", cfg.Content)
	}
	if cfg.Content.Root != "content" || cfg.HTTP.Addr != ":8080" {
		t.Fatalf("expected defaults kept for unset keys, got %+v %+v", cfg.Content, cfg.HTTP)
	}
	if cfg.Generator.Provider != "openai" || cfg.Generator.MaxTokens != 8192 {
		t.Fatalf("unexpected generator section %+v", cfg.Generator)
	}
	if len(cfg.Logging.Focus) != 1 || cfg.Logging.Focus[0] != "attitude.store" {
		t.Fatalf("unexpected logging focus %v", cfg.Logging.Focus)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(runtimeconfig.APIKeyEnv, "sk-test")
	cfg, exists, err := runtimeconfig.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected missing file to be reported")
	}
	if cfg.Generator.APIKey != "sk-test" {
		t.Fatalf("expected api key from environment, got %q", cfg.Generator.APIKey)
	}
}

func TestLoadRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()

	broken := filepath.Join(dir, "broken.toml")
	if err := os.WriteFile(broken, []byte("[content\nroot = "), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, err := runtimeconfig.Load(broken); err == nil {
		t.Fatal("expected parse error")
	}

	invalid := filepath.Join(dir, "invalid.toml")
	if err := os.WriteFile(invalid, []byte("[content]\nbackend = \"mongo\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, err := runtimeconfig.Load(invalid); !errors.Is(err, runtimeconfig.ErrContentBackendUnknown) {
		t.Fatalf("expected ErrContentBackendUnknown, got %v", err)
	}
}
