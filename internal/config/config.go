// Package config loads and validates the tapwake configuration file.
//
// The file is YAML for ergonomics; validation runs the decoded document
// through an embedded CUE schema so route-shape invariants (leading
// slash, no scheme separator) are rejected at load time instead of
// surfacing as fallback behavior at runtime.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/tapwake/tapwake/internal/deeplink"
	"github.com/tapwake/tapwake/internal/routing"
)

//go:embed schema.cue
var schemaSrc string

// Config is the validated application configuration.
type Config struct {
	DefaultRoute         string         `json:"default_route" yaml:"default_route"`
	Routes               []string       `json:"routes" yaml:"routes"`
	NotificationFallback string         `json:"notification_fallback,omitempty" yaml:"notification_fallback,omitempty"`
	GateWindowMS         int            `json:"gate_window_ms" yaml:"gate_window_ms"`
	StorePath            string         `json:"store_path" yaml:"store_path"`
	Rules                []routing.Rule `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse validates YAML bytes against the embedded schema and decodes
// them, with schema defaults applied.
func Parse(data []byte) (*Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}

	cctx := cuecontext.New()

	schema := cctx.CompileString(schemaSrc)
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))
	if err := def.Err(); err != nil {
		return nil, fmt.Errorf("lookup #Config: %w", err)
	}

	doc := cctx.Encode(raw)
	if err := doc.Err(); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}

	unified := def.Unify(doc)
	if err := unified.Validate(cue.Final(), cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("validate config: %s", cueerrors.Details(err, nil))
	}

	var cfg Config
	if err := unified.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	return &cfg, nil
}

// Default returns the built-in configuration used when no file exists:
// a root default route and the 500ms startup window.
func Default() *Config {
	return &Config{
		DefaultRoute: "/",
		Routes:       []string{"/"},
		GateWindowMS: 500,
		StorePath:    "tapwake.db",
	}
}

// GateWindow converts the configured window into a duration.
func (c *Config) GateWindow() time.Duration {
	return time.Duration(c.GateWindowMS) * time.Millisecond
}

// RouteSet returns the registered routes as a normalized lookup set.
// The default route and the notification fallback are always members.
func (c *Config) RouteSet() map[string]bool {
	set := make(map[string]bool, len(c.Routes)+2)
	for _, r := range c.Routes {
		set[deeplink.NormalizeRoute(r)] = true
	}
	set[deeplink.NormalizeRoute(c.DefaultRoute)] = true
	if c.NotificationFallback != "" {
		set[deeplink.NormalizeRoute(c.NotificationFallback)] = true
	}
	return set
}

// CompilePolicy compiles the configured rules into a routing policy.
// Returns nil when no rules are configured.
func (c *Config) CompilePolicy() (*routing.ExprPolicy, error) {
	if len(c.Rules) == 0 {
		return nil, nil
	}
	return routing.CompileRules(c.Rules, nil)
}
