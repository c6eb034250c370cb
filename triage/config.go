package triage

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spetersoncode/warden/agent"
	"github.com/spetersoncode/warden/internal/retry"
	"github.com/spetersoncode/warden/model"
	"github.com/spetersoncode/warden/store"
	"github.com/spetersoncode/warden/tool"
	"github.com/spetersoncode/warden/workflow"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides. Nested keys are joined with a
// double underscore: WARDEN_SMTP__HOST sets smtp.host.
const EnvPrefix = "WARDEN_"

// Config is the full configuration of a triage deployment.
type Config struct {
	// InputRef is the default page to triage.
	InputRef string `mapstructure:"input_ref" yaml:"input_ref"`

	// Model is the chat model ID backing every agent.
	Model string `mapstructure:"model" yaml:"model"`

	// MaxSteps bounds each agent's tool loop.
	MaxSteps int `mapstructure:"max_steps" yaml:"max_steps"`

	Agents     Agents              `mapstructure:"agents" yaml:"agents"`
	Tasks      Tasks               `mapstructure:"tasks" yaml:"tasks"`
	Classifier workflow.Classifier `mapstructure:"classifier" yaml:"classifier"`

	Confluence tool.ConfluenceConfig `mapstructure:"confluence" yaml:"confluence"`
	Splunk     tool.SplunkConfig     `mapstructure:"splunk" yaml:"splunk"`
	SMTP       tool.EmailConfig      `mapstructure:"smtp" yaml:"smtp"`

	// Retry applies to capability calls. Disabled by default.
	Retry retry.Config `mapstructure:"retry" yaml:"retry"`

	Timeouts Timeouts     `mapstructure:"timeouts" yaml:"timeouts"`
	Log      LogConfig    `mapstructure:"log" yaml:"log"`
	Server   ServerConfig `mapstructure:"server" yaml:"server"`

	// RemoteTools are MCP servers whose tools are granted to agents.
	RemoteTools []RemoteTools `mapstructure:"remote_tools" yaml:"remote_tools"`

	// History keeps finished runs for the HTTP and MCP surfaces.
	History store.Config `mapstructure:"history" yaml:"history"`
}

// Agents holds the persona of each agent.
type Agents struct {
	Crawler      agent.Profile `mapstructure:"crawler" yaml:"crawler"`
	Classifier   agent.Profile `mapstructure:"classifier" yaml:"classifier"`
	Investigator agent.Profile `mapstructure:"investigator" yaml:"investigator"`
	Notifier     agent.Profile `mapstructure:"notifier" yaml:"notifier"`
}

type namedProfile struct {
	name    string
	profile agent.Profile
}

func (a Agents) named() []namedProfile {
	return []namedProfile{
		{"crawler", a.Crawler},
		{"classifier", a.Classifier},
		{"investigator", a.Investigator},
		{"notifier", a.Notifier},
	}
}

// RemoteTools describes an MCP server reached over stdio (Command) or SSE (URL).
type RemoteTools struct {
	Name    string   `mapstructure:"name" yaml:"name"`
	Command string   `mapstructure:"command" yaml:"command"`
	Args    []string `mapstructure:"args" yaml:"args"`
	Env     []string `mapstructure:"env" yaml:"env"`
	URL     string   `mapstructure:"url" yaml:"url"`
	// Agents lists who may call the server's tools, by agent key.
	Agents []string `mapstructure:"agents" yaml:"agents"`
}

// Timeouts bound runs, steps and tool handlers. Zero disables a bound.
type Timeouts struct {
	Run  time.Duration `mapstructure:"run" yaml:"run"`
	Step time.Duration `mapstructure:"step" yaml:"step"`
	Tool time.Duration `mapstructure:"tool" yaml:"tool"`
}

// LogConfig selects the log level and format (text or json).
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Model:    model.Default.String(),
		MaxSteps: 10,
		Agents: Agents{
			Crawler: agent.Profile{
				Role:      "Confluence Specialist",
				Goal:      "Extract relevant information from Confluence pages",
				Backstory: "Experienced in knowledge management and Confluence navigation",
			},
			Classifier: agent.Profile{
				Role:      "Security Analyst",
				Goal:      "Determine required actions based on Confluence content",
				Backstory: "Expert in security protocols and incident response",
			},
			Investigator: agent.Profile{
				Role:      "Splunk Investigator",
				Goal:      "Retrieve relevant security logs from Splunk",
				Backstory: "Skilled in Splunk querying and log analysis",
			},
			Notifier: agent.Profile{
				Role:      "Communications Specialist",
				Goal:      "Send clear and concise security notifications",
				Backstory: "Experienced in technical communications and alerting",
			},
		},
		Tasks:      DefaultTasks(),
		Classifier: DefaultClassifier(),
		Splunk:     tool.SplunkConfig{Earliest: "-24h", MaxEvents: 50},
		SMTP:       tool.EmailConfig{Port: 587},
		Retry:      retry.Disabled(),
		Timeouts: Timeouts{
			Step: 2 * time.Minute,
			Tool: 30 * time.Second,
		},
		Log:     LogConfig{Level: "info", Format: "text"},
		Server:  ServerConfig{Addr: ":8080"},
		History: store.Config{Backend: store.BackendMemory, Capacity: store.DefaultCapacity},
	}
}

// LoadConfig reads path (YAML, optional when missing), overlays WARDEN_*
// variables from environ and decodes the result over DefaultConfig.
// environ is in os.Environ form; nil means os.Environ().
func LoadConfig(path string, environ []string) (Config, error) {
	raw := map[string]any{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("triage: read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &raw); err != nil {
				return Config{}, fmt.Errorf("triage: parse %s: %w", path, err)
			}
			if raw == nil {
				raw = map[string]any{}
			}
		}
	}

	if environ == nil {
		environ = os.Environ()
	}
	overlayEnv(raw, environ)

	cfg := DefaultConfig()
	if err := decode(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("triage: decode config: %w", err)
	}
	return cfg, nil
}

// overlayEnv writes WARDEN_A__B=v into raw as raw[a][b] = v.
func overlayEnv(raw map[string]any, environ []string) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		path := strings.Split(strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), "__")
		node := raw
		for _, p := range path[:len(path)-1] {
			child, ok := node[p].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[p] = child
			}
			node = child
		}
		node[path[len(path)-1]] = value
	}
}

func decode(raw map[string]any, out *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			intToDurationHook,
		),
		WeaklyTypedInput: true,
		ZeroFields:       true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// intToDurationHook reads bare YAML integers as seconds.
func intToDurationHook(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}
	switch v := data.(type) {
	case int:
		return time.Duration(v) * time.Second, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	}
	return data, nil
}

// Validate reports every missing or inconsistent setting.
func (c Config) Validate() error {
	var errs []error
	if _, err := model.Parse(c.Model); err != nil {
		errs = append(errs, err)
	}
	if err := c.Classifier.Validate(Labels); err != nil {
		errs = append(errs, fmt.Errorf("classifier: %w", err))
	}
	for _, a := range c.Agents.named() {
		if strings.TrimSpace(a.profile.Role) == "" {
			errs = append(errs, fmt.Errorf("agents.%s.role is required", a.name))
		}
	}
	if c.Confluence.BaseURL == "" {
		errs = append(errs, errors.New("confluence.base_url is required"))
	}
	if c.Splunk.BaseURL == "" {
		errs = append(errs, errors.New("splunk.base_url is required"))
	}
	if c.SMTP.Host == "" {
		errs = append(errs, errors.New("smtp.host is required"))
	}
	if c.SMTP.From == "" {
		errs = append(errs, errors.New("smtp.from is required"))
	}
	if c.SMTP.DefaultRecipient == "" && len(c.SMTP.Recipients) == 0 {
		errs = append(errs, errors.New("smtp.default_recipient or smtp.recipients is required"))
	}
	if c.Timeouts.Run < 0 || c.Timeouts.Step < 0 || c.Timeouts.Tool < 0 {
		errs = append(errs, errors.New("timeouts must not be negative"))
	}
	known := map[string]bool{}
	for _, a := range c.Agents.named() {
		known[a.name] = true
	}
	for i, rt := range c.RemoteTools {
		if (rt.Command == "") == (rt.URL == "") {
			errs = append(errs, fmt.Errorf("remote_tools[%d] needs exactly one of command or url", i))
		}
		for _, a := range rt.Agents {
			if !known[a] {
				errs = append(errs, fmt.Errorf("remote_tools[%d]: unknown agent %q", i, a))
			}
		}
	}
	switch c.History.Backend {
	case "", store.BackendMemory:
	case store.BackendRedis:
		if c.History.Redis.Addr == "" {
			errs = append(errs, errors.New("history.redis.addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("history.backend %q is not memory or redis", c.History.Backend))
	}
	if c.MaxSteps < 0 {
		errs = append(errs, errors.New("max_steps must not be negative"))
	}
	return errors.Join(errs...)
}
