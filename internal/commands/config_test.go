package commands

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/dixit-research/dixit/internal/api"
	"github.com/dixit-research/dixit/internal/config"
)

func TestConfigSetAndGet(t *testing.T) {
	env := newTestEnv(t, &api.MockClient{})

	if err := setConfigValue(env.deps, "endpoint", "https://lab.example.org"); err != nil {
		t.Fatalf("set endpoint: %v", err)
	}
	if err := setConfigValue(env.deps, "suggestions", "What is RAG? | Explain BERT"); err != nil {
		t.Fatalf("set suggestions: %v", err)
	}
	if err := setConfigValue(env.deps, "markdown.style", "light"); err != nil {
		t.Fatalf("set markdown.style: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Endpoint != "https://lab.example.org" || len(cfg.Suggestions) != 2 || cfg.Markdown.Style != "light" {
		t.Errorf("saved config = %+v", cfg)
	}

	tests := []struct {
		key  string
		want string
	}{
		{"endpoint", "https://lab.example.org"},
		{"suggestions", "What is RAG?|Explain BERT"},
		{"markdown.style", "light"},
		{"timeout_seconds", "60"},
		{"health_endpoint", ""},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			env.stdout.Reset()
			if err := getConfigValue(env.deps, tt.key); err != nil {
				t.Fatal(err)
			}
			if got := strings.TrimSuffix(env.stdout.String(), "\n"); got != tt.want {
				t.Errorf("get %s = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestConfigSet_Rejected(t *testing.T) {
	env := newTestEnv(t, &api.MockClient{})

	tests := []struct{ key, value string }{
		{"colour", "blue"},
		{"backend", "stream"},
		{"timeout_seconds", "soon"},
		{"endpoint", "localhost"},
	}
	for _, tt := range tests {
		if err := setConfigValue(env.deps, tt.key, tt.value); err == nil {
			t.Errorf("set %s=%s should fail", tt.key, tt.value)
		}
	}

	if err := getConfigValue(env.deps, "markdown"); err == nil {
		t.Error("get of a non-key should fail")
	}
}

func TestConfigShowAppliesFlags(t *testing.T) {
	env := newTestEnv(t, &api.MockClient{})
	flags.endpoint = "http://override:9000"

	if err := showConfig(env.deps); err != nil {
		t.Fatal(err)
	}
	var shown config.Config
	if err := json.Unmarshal(env.stdout.Bytes(), &shown); err != nil {
		t.Fatalf("show output is not JSON: %v\n%s", err, env.stdout.String())
	}
	if shown.Endpoint != "http://override:9000" {
		t.Errorf("endpoint = %q", shown.Endpoint)
	}

	stored, _ := config.LoadConfig()
	if stored.Endpoint == "http://override:9000" {
		t.Error("show must not persist flag overrides")
	}
}

func TestConfigInit(t *testing.T) {
	env := newTestEnv(t, &api.MockClient{})

	if err := initConfig(env.deps, false); err != nil {
		t.Fatalf("first init: %v", err)
	}
	if err := initConfig(env.deps, false); err == nil || !strings.Contains(err.Error(), "--force") {
		t.Errorf("second init error = %v", err)
	}
	if err := initConfig(env.deps, true); err != nil {
		t.Errorf("forced init: %v", err)
	}
}

func TestListThemes(t *testing.T) {
	env := newTestEnv(t, &api.MockClient{})
	listThemes(env.deps)

	out := env.stdout.String()
	for _, want := range []string{"tokyonight", "catppuccin", "notty"} {
		if !strings.Contains(out, want) {
			t.Errorf("themes output missing %q", want)
		}
	}
}

func TestColorizeJSON(t *testing.T) {
	env := newTestEnv(t, &api.MockClient{})

	if got := colorizeJSON(env.deps, []byte(`{"a":1}`)); got != "{\n  \"a\": 1\n}" {
		t.Errorf("colorizeJSON() = %q", got)
	}
	if got := colorizeJSON(env.deps, []byte("not json\n")); got != "not json" {
		t.Errorf("colorizeJSON(non-JSON) = %q", got)
	}

	env.deps.StdoutIsTTY = func() bool { return true }
	if got := colorizeJSON(env.deps, []byte(`{"a":1}`)); !strings.Contains(got, "\x1b[") {
		t.Error("terminal output should be colored")
	}
}
